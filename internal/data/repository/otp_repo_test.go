package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"audit-auth/internal/data/entity"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOTPRepository_Create(t *testing.T) {
	mock := newPoolMock(t)
	repo := NewOTPRepository(mock, zap.NewNop())

	now := time.Now()
	otp := &entity.OTP{
		BaseSimple: entity.BaseSimple{CreatedAt: now},
		UserID:     4,
		Code:       "123456",
		Purpose:    entity.OTPPurposeLogin,
		ExpiresAt:  now.Add(5 * time.Minute),
	}

	mock.ExpectQuery(`INSERT INTO otps \(user_id, code, type, expires_at, attempts, created_at\)`).
		WithArgs(int64(4), "123456", "login", otp.ExpiresAt, 0, now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	require.NoError(t, repo.Create(context.Background(), otp))
	assert.Equal(t, int64(11), otp.ID)
}

func TestOTPRepository_FindLatest(t *testing.T) {
	mock := newPoolMock(t)
	repo := NewOTPRepository(mock, zap.NewNop())

	now := time.Now()
	mock.ExpectQuery(`(?s)FROM otps.*ORDER BY created_at DESC, id DESC\s+LIMIT 1`).
		WithArgs(int64(4), "123456", []string{"signup", "login"}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "code", "type", "expires_at", "attempts", "created_at"}).
			AddRow(int64(11), int64(4), "123456", "login", now.Add(time.Minute), 1, now))

	otp, err := repo.FindLatest(context.Background(), 4, "123456",
		[]entity.OTPPurpose{entity.OTPPurposeSignup, entity.OTPPurposeLogin})
	require.NoError(t, err)
	require.NotNil(t, otp)
	assert.Equal(t, int64(11), otp.ID)
	assert.Equal(t, entity.OTPPurposeLogin, otp.Purpose)
	assert.Equal(t, 1, otp.Attempts)
}

func TestOTPRepository_FindLatestNone(t *testing.T) {
	mock := newPoolMock(t)
	repo := NewOTPRepository(mock, zap.NewNop())

	mock.ExpectQuery(`FROM otps`).
		WithArgs(int64(4), "000000", []string{"password_reset"}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "code", "type", "expires_at", "attempts", "created_at"}))

	otp, err := repo.FindLatest(context.Background(), 4, "000000", []entity.OTPPurpose{entity.OTPPurposePasswordReset})
	require.NoError(t, err)
	assert.Nil(t, otp)
}

func TestOTPRepository_DeleteByUserAndPurpose(t *testing.T) {
	mock := newPoolMock(t)
	repo := NewOTPRepository(mock, zap.NewNop())

	mock.ExpectExec(`DELETE FROM otps WHERE user_id = \$1 AND type = \$2`).
		WithArgs(int64(4), "login").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	n, err := repo.DeleteByUserAndPurpose(context.Background(), 4, entity.OTPPurposeLogin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestOTPRepository_DeleteMissing(t *testing.T) {
	mock := newPoolMock(t)
	repo := NewOTPRepository(mock, zap.NewNop())

	mock.ExpectExec(`DELETE FROM otps WHERE id = \$1`).
		WithArgs(int64(8)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 8), ErrNotFound)
}

func TestOTPRepository_IncrementAttempts(t *testing.T) {
	mock := newPoolMock(t)
	repo := NewOTPRepository(mock, zap.NewNop())

	now := time.Now()
	mock.ExpectExec(`UPDATE otps\s+SET attempts = attempts \+ 1`).
		WithArgs(int64(4), []string{"password_reset"}, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM otps\s+WHERE user_id = \$1 AND type = ANY\(\$2\) AND attempts >= \$3`).
		WithArgs(int64(4), []string{"password_reset"}, 5).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	burned, err := repo.IncrementAttempts(context.Background(), 4,
		[]entity.OTPPurpose{entity.OTPPurposePasswordReset}, now, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), burned)
}

func TestOTPRepository_IncrementAttemptsUnlimited(t *testing.T) {
	mock := newPoolMock(t)
	repo := NewOTPRepository(mock, zap.NewNop())

	now := time.Now()
	mock.ExpectExec(`UPDATE otps`).
		WithArgs(int64(4), []string{"login"}, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	burned, err := repo.IncrementAttempts(context.Background(), 4, []entity.OTPPurpose{entity.OTPPurposeLogin}, now, 0)
	require.NoError(t, err)
	assert.Zero(t, burned)
}

func TestOTPRepository_DeleteExpiredError(t *testing.T) {
	mock := newPoolMock(t)
	repo := NewOTPRepository(mock, zap.NewNop())

	now := time.Now()
	mock.ExpectExec(`DELETE FROM otps WHERE expires_at <= \$1`).
		WithArgs(now).
		WillReturnError(errors.New("timeout"))

	_, err := repo.DeleteExpired(context.Background(), now)
	assert.ErrorContains(t, err, "timeout")
}
