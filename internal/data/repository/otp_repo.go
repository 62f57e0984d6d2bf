package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"audit-auth/internal/data/entity"
	"audit-auth/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type OTPRepository interface {
	Create(ctx context.Context, otp *entity.OTP) error
	// FindLatest returns the most recently created row for userID whose code
	// equals code and whose purpose is one of purposes, expired or not.
	FindLatest(ctx context.Context, userID int64, code string, purposes []entity.OTPPurpose) (*entity.OTP, error)
	Delete(ctx context.Context, id int64) error
	DeleteByUserAndPurpose(ctx context.Context, userID int64, purpose entity.OTPPurpose) (int64, error)
	// IncrementAttempts bumps the counter of every unexpired row of the
	// purposes and deletes rows that reach maxAttempts (0 disables deletion).
	IncrementAttempts(ctx context.Context, userID int64, purposes []entity.OTPPurpose, now time.Time, maxAttempts int) (burned int64, err error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type otpRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewOTPRepository(db database.Querier, log *zap.Logger) OTPRepository {
	return &otpRepository{
		db:  db,
		log: log.With(zap.String("repository", "otp")),
	}
}

func (r *otpRepository) Create(ctx context.Context, otp *entity.OTP) error {
	query := `
		INSERT INTO otps (user_id, code, type, expires_at, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		otp.UserID,
		otp.Code,
		string(otp.Purpose),
		otp.ExpiresAt,
		otp.Attempts,
		otp.CreatedAt,
	).Scan(&otp.ID)

	if err != nil {
		r.log.Error("Failed to create OTP",
			zap.Error(err),
			zap.Int64("user_id", otp.UserID),
			zap.String("otp_type", string(otp.Purpose)),
		)
		return fmt.Errorf("create OTP for user %d: %w", otp.UserID, err)
	}

	return nil
}

func (r *otpRepository) FindLatest(ctx context.Context, userID int64, code string, purposes []entity.OTPPurpose) (*entity.OTP, error) {
	query := `
		SELECT id, user_id, code, type, expires_at, attempts, created_at
		FROM otps
		WHERE user_id = $1
		  AND code = $2
		  AND type = ANY($3)
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var otp entity.OTP
	var purpose string
	err := r.db.QueryRow(ctx, query, userID, code, purposeStrings(purposes)).Scan(
		&otp.ID,
		&otp.UserID,
		&otp.Code,
		&purpose,
		&otp.ExpiresAt,
		&otp.Attempts,
		&otp.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find OTP", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("find OTP for user %d: %w", userID, err)
	}

	otp.Purpose = entity.OTPPurpose(purpose)
	return &otp, nil
}

func (r *otpRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM otps WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete OTP", zap.Error(err), zap.Int64("otp_id", id))
		return fmt.Errorf("delete OTP %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete OTP %d: %w", id, ErrNotFound)
	}

	return nil
}

func (r *otpRepository) DeleteByUserAndPurpose(ctx context.Context, userID int64, purpose entity.OTPPurpose) (int64, error) {
	result, err := r.db.Exec(ctx,
		`DELETE FROM otps WHERE user_id = $1 AND type = $2`,
		userID, string(purpose),
	)
	if err != nil {
		r.log.Error("Failed to delete OTPs",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("otp_type", string(purpose)),
		)
		return 0, fmt.Errorf("delete %s OTPs for user %d: %w", purpose, userID, err)
	}

	return result.RowsAffected(), nil
}

func (r *otpRepository) IncrementAttempts(ctx context.Context, userID int64, purposes []entity.OTPPurpose, now time.Time, maxAttempts int) (int64, error) {
	types := purposeStrings(purposes)

	_, err := r.db.Exec(ctx, `
		UPDATE otps
		SET attempts = attempts + 1
		WHERE user_id = $1 AND type = ANY($2) AND expires_at > $3
	`, userID, types, now)
	if err != nil {
		r.log.Error("Failed to increment OTP attempts", zap.Error(err), zap.Int64("user_id", userID))
		return 0, fmt.Errorf("increment OTP attempts for user %d: %w", userID, err)
	}

	if maxAttempts <= 0 {
		return 0, nil
	}

	result, err := r.db.Exec(ctx, `
		DELETE FROM otps
		WHERE user_id = $1 AND type = ANY($2) AND attempts >= $3
	`, userID, types, maxAttempts)
	if err != nil {
		r.log.Error("Failed to delete exhausted OTPs", zap.Error(err), zap.Int64("user_id", userID))
		return 0, fmt.Errorf("delete exhausted OTPs for user %d: %w", userID, err)
	}

	return result.RowsAffected(), nil
}

func (r *otpRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM otps WHERE expires_at <= $1`, before)
	if err != nil {
		r.log.Error("Failed to delete expired OTPs", zap.Error(err))
		return 0, fmt.Errorf("delete expired OTPs: %w", err)
	}

	return result.RowsAffected(), nil
}

func purposeStrings(purposes []entity.OTPPurpose) []string {
	out := make([]string, len(purposes))
	for i, p := range purposes {
		out[i] = string(p)
	}
	return out
}
