package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"audit-auth/internal/data/entity"
	"audit-auth/internal/data/repository/memrepo"
	"audit-auth/internal/dto/request"
	"audit-auth/pkg/mailer"
	"audit-auth/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []mailer.OTPMessage
	err  error
}

func (n *recordingNotifier) SendOTP(_ context.Context, msg mailer.OTPMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *recordingNotifier) last(t *testing.T) mailer.OTPMessage {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent)
	return n.sent[len(n.sent)-1]
}

// queueCodes hands out queued codes, then "123456".
type queueCodes struct {
	mu    sync.Mutex
	queue []string
}

func (q *queueCodes) push(codes ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue = append(q.queue, codes...)
}

func (q *queueCodes) Generate() (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.queue) == 0 {
		return "123456", nil
	}
	code := q.queue[0]
	q.queue = q.queue[1:]
	return code, nil
}

type fixture struct {
	svc      *authService
	store    *memrepo.Store
	notifier *recordingNotifier
	codes    *queueCodes
	tokens   *utils.TokenIssuer
	config   *utils.Config
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	config := &utils.Config{
		JWT: utils.JWTConfig{Secret: "test-secret", ExpiryHours: 1},
		OTP: utils.OTPConfig{
			Length:              6,
			SignupExpiryMinutes: 5,
			LoginExpiryMinutes:  5,
			ResetExpiryMinutes:  15,
			MaxAttempts:         3,
		},
	}

	f := &fixture{
		store:    memrepo.NewStore(),
		notifier: &recordingNotifier{},
		codes:    &queueCodes{},
		tokens:   utils.NewTokenIssuer(config.JWT),
		config:   config,
		now:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	f.svc = NewAuthService(
		f.store.Repository(),
		&utils.BcryptHasher{Cost: bcrypt.MinCost},
		f.codes,
		f.tokens,
		f.notifier,
		config,
		zap.NewNop(),
	).(*authService)
	f.svc.now = func() time.Time { return f.now }

	return f
}

func jsonNumber(id int64) json.Number {
	return json.Number(strconv.FormatInt(id, 10))
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) signup(t *testing.T, email, password string) int64 {
	t.Helper()
	resp, err := f.svc.Signup(context.Background(), &request.SignupRequest{
		FullName:        "Ann",
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	require.NoError(t, err)
	return resp.UserID
}

func (f *fixture) user(t *testing.T, email string) *entity.User {
	t.Helper()
	user, err := f.svc.repo.User.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func (f *fixture) otpsOf(userID int64, purpose entity.OTPPurpose) []entity.OTP {
	var out []entity.OTP
	for _, o := range f.store.OTPs(userID) {
		if o.Purpose == purpose {
			out = append(out, o)
		}
	}
	return out
}

func TestAuthService_Signup(t *testing.T) {
	f := newFixture(t)
	f.codes.push("482913")

	resp, err := f.svc.Signup(context.Background(), &request.SignupRequest{
		FullName:        "Ann",
		Email:           "Ann@Example.com ",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, MsgSignupSuccess, resp.Message)
	assert.Positive(t, resp.UserID)

	user := f.user(t, "ann@example.com")
	assert.Equal(t, resp.UserID, user.ID)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.False(t, user.EmailVerified)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.True(t, f.svc.hasher.Compare(user.PasswordHash, "secret1"))

	otps := f.store.OTPs(user.ID)
	require.Len(t, otps, 1)
	assert.Equal(t, entity.OTPPurposeSignup, otps[0].Purpose)
	assert.Equal(t, "482913", otps[0].Code)
	assert.Equal(t, f.now.Add(5*time.Minute), otps[0].ExpiresAt)

	msg := f.notifier.last(t)
	assert.Equal(t, "ann@example.com", msg.To)
	assert.Equal(t, "482913", msg.Code)
	assert.Equal(t, mailer.PurposeSignup, msg.Purpose)
	assert.Equal(t, 5*time.Minute, msg.ExpiresIn)
}

func TestAuthService_SignupDuplicateEmailIgnoresCaseAndSpace(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "ann@example.com", "secret1")

	_, err := f.svc.Signup(context.Background(), &request.SignupRequest{
		FullName:        "Other Ann",
		Email:           "  ANN@example.COM",
		Password:        "secret2",
		ConfirmPassword: "secret2",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthService_SignupValidation(t *testing.T) {
	longName := make([]byte, 101)
	for i := range longName {
		longName[i] = 'a'
	}

	tests := []struct {
		name string
		req  request.SignupRequest
		want *AuthError
	}{
		{"missing confirm", request.SignupRequest{FullName: "Ann", Email: "ann@example.com", Password: "secret1"}, ErrMissingFields},
		{"blank name", request.SignupRequest{FullName: "   ", Email: "ann@example.com", Password: "secret1", ConfirmPassword: "secret1"}, ErrMissingFields},
		{"name too long", request.SignupRequest{FullName: string(longName), Email: "ann@example.com", Password: "secret1", ConfirmPassword: "secret1"}, ErrInvalidFullName},
		{"bad email", request.SignupRequest{FullName: "Ann", Email: "ann@", Password: "secret1", ConfirmPassword: "secret1"}, ErrInvalidEmail},
		{"short password", request.SignupRequest{FullName: "Ann", Email: "ann@example.com", Password: "abc", ConfirmPassword: "abc"}, ErrInvalidPassword},
		{"mismatch", request.SignupRequest{FullName: "Ann", Email: "ann@example.com", Password: "secret1", ConfirmPassword: "secret2"}, ErrPasswordMismatch},
		{"missing wins over bad email", request.SignupRequest{Email: "nope", Password: "secret1", ConfirmPassword: "secret1"}, ErrMissingFields},
		{"bad email wins over short password", request.SignupRequest{FullName: "Ann", Email: "nope", Password: "abc", ConfirmPassword: "abc"}, ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := tt.req
			_, err := f.svc.Signup(context.Background(), &req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.notifier.sent)
		})
	}
}

func TestAuthService_SignupPasswordByteLimit(t *testing.T) {
	f := newFixture(t)

	tooLong := strings.Repeat("a", utils.MaxPasswordBytes+1)
	_, err := f.svc.Signup(context.Background(), &request.SignupRequest{
		FullName:        "Ann",
		Email:           "ann@example.com",
		Password:        tooLong,
		ConfirmPassword: tooLong,
	})
	assert.ErrorIs(t, err, ErrInvalidPassword)

	user, err := f.svc.repo.User.FindByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	longest := strings.Repeat("a", utils.MaxPasswordBytes)
	f.signup(t, "ann@example.com", longest)
	assert.True(t, f.svc.hasher.Compare(f.user(t, "ann@example.com").PasswordHash, longest))
}

func TestAuthService_ValidationLogsFailingFields(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.WarnLevel)
	f.svc.log = zap.New(core)

	_, err := f.svc.Signup(context.Background(), &request.SignupRequest{
		FullName:        "Ann",
		Email:           "nope",
		Password:        "abc",
		ConfirmPassword: "abc",
	})
	require.ErrorIs(t, err, ErrInvalidEmail)

	entries := logs.FilterMessage("Signup validation failed").All()
	require.Len(t, entries, 1)
	fields, ok := entries[0].ContextMap()["fields"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "Invalid email format", fields["email"])
	assert.Equal(t, "Minimum length is 6", fields["password"])
	assert.NotContains(t, fields, "fullName")
}

func TestAuthService_SignupSucceedsWhenNotifierFails(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")

	userID := f.signup(t, "ann@example.com", "secret1")
	assert.Len(t, f.store.OTPs(userID), 1)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	userID := f.signup(t, "ann@example.com", "secret1")

	_, err := f.svc.Login(context.Background(), &request.LoginRequest{Email: "ann@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, f.otpsOf(userID, entity.OTPPurposeLogin))

	_, err = f.svc.Login(context.Background(), &request.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LoginValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), &request.LoginRequest{Email: "ann@example.com"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = f.svc.Login(context.Background(), &request.LoginRequest{Email: "not-an-email", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestAuthService_LoginReplacesPreviousLoginOTPs(t *testing.T) {
	f := newFixture(t)
	f.codes.push("111111", "222222", "333333")
	userID := f.signup(t, "ann@example.com", "secret1")

	resp, err := f.svc.Login(context.Background(), &request.LoginRequest{Email: " Ann@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.True(t, resp.RequiresOTP)
	assert.Equal(t, "ann@example.com", resp.Email)

	_, err = f.svc.Login(context.Background(), &request.LoginRequest{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	logins := f.otpsOf(userID, entity.OTPPurposeLogin)
	require.Len(t, logins, 1)
	assert.Equal(t, "333333", logins[0].Code)
	assert.Len(t, f.otpsOf(userID, entity.OTPPurposeSignup), 1)
	assert.Equal(t, "333333", f.notifier.last(t).Code)
}

func TestAuthService_ConcurrentLoginsLeaveOneOTP(t *testing.T) {
	f := newFixture(t)
	userID := f.signup(t, "ann@example.com", "secret1")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Login(context.Background(), &request.LoginRequest{Email: "ann@example.com", Password: "secret1"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, f.otpsOf(userID, entity.OTPPurposeLogin), 1)
}

func TestAuthService_VerifyOTPByID(t *testing.T) {
	f := newFixture(t)
	f.codes.push("111111", "222222")
	userID := f.signup(t, "ann@example.com", "secret1")
	require.NoError(t, f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{Email: "ann@example.com"}))

	resp, err := f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		ID:   jsonNumber(userID),
		Code: " 111111 ",
	})
	require.NoError(t, err)

	assert.Equal(t, userID, resp.User.ID)
	assert.Equal(t, "ann@example.com", resp.User.Email)
	assert.Equal(t, "Ann", resp.User.FullName)
	assert.True(t, resp.User.IsVerified)
	assert.True(t, f.user(t, "ann@example.com").EmailVerified)

	tokenUser, err := f.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, tokenUser)

	assert.Empty(t, f.otpsOf(userID, entity.OTPPurposeSignup))
	assert.Len(t, f.otpsOf(userID, entity.OTPPurposePasswordReset), 1, "other OTP rows stay untouched")
}

func TestAuthService_VerifyOTPByEmail(t *testing.T) {
	f := newFixture(t)
	f.codes.push("111111", "424242")
	f.signup(t, "ann@example.com", "secret1")

	_, err := f.svc.Login(context.Background(), &request.LoginRequest{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	resp, err := f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{Email: "ANN@example.com", Code: "424242"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestAuthService_VerifyOTPExpired(t *testing.T) {
	f := newFixture(t)
	f.codes.push("111111")
	userID := f.signup(t, "ann@example.com", "secret1")

	f.advance(5*time.Minute + time.Second)

	_, err := f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{ID: jsonNumber(userID), Code: "111111"})
	assert.ErrorIs(t, err, ErrOTPInvalid)
	assert.False(t, f.user(t, "ann@example.com").EmailVerified)
}

func TestAuthService_VerifyOTPNewestMatchWins(t *testing.T) {
	f := newFixture(t)
	f.config.OTP.SignupExpiryMinutes = 60
	f.codes.push("111111", "111111")
	userID := f.signup(t, "ann@example.com", "secret1")

	f.advance(time.Minute)
	_, err := f.svc.Login(context.Background(), &request.LoginRequest{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	// the newer login code has expired; the older signup code has not
	f.advance(6 * time.Minute)

	_, err = f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{ID: jsonNumber(userID), Code: "111111"})
	assert.ErrorIs(t, err, ErrOTPInvalid)
}

func TestAuthService_VerifyOTPErrors(t *testing.T) {
	f := newFixture(t)
	f.codes.push("111111")
	userID := f.signup(t, "ann@example.com", "secret1")

	tests := []struct {
		name string
		req  request.VerifyOTPRequest
		want *AuthError
	}{
		{"malformed code", request.VerifyOTPRequest{ID: jsonNumber(userID), Code: "12ab"}, ErrInvalidOTPFormat},
		{"missing code", request.VerifyOTPRequest{ID: jsonNumber(userID)}, ErrInvalidOTPFormat},
		{"bad email without id", request.VerifyOTPRequest{Email: "ann@", Code: "111111"}, ErrInvalidEmail},
		{"unknown id", request.VerifyOTPRequest{ID: "999", Code: "111111"}, ErrUserNotFound},
		{"negative id", request.VerifyOTPRequest{ID: "-1", Code: "111111"}, ErrUserNotFound},
		{"unknown email", request.VerifyOTPRequest{Email: "bob@example.com", Code: "111111"}, ErrUserNotFound},
		{"no identity", request.VerifyOTPRequest{Code: "111111"}, ErrUserNotFound},
		{"wrong code", request.VerifyOTPRequest{ID: jsonNumber(userID), Code: "999999"}, ErrOTPInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.svc.VerifyOTP(context.Background(), &req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_VerifyOTPIDTakesPrecedence(t *testing.T) {
	f := newFixture(t)
	f.codes.push("111111")
	userID := f.signup(t, "ann@example.com", "secret1")

	_, err := f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		ID:    jsonNumber(userID),
		Email: "not-an-email",
		Code:  "111111",
	})
	assert.NoError(t, err)
}

func TestAuthService_VerifyOTPRejectsResetCodes(t *testing.T) {
	f := newFixture(t)
	f.codes.push("111111", "777777")
	userID := f.signup(t, "ann@example.com", "secret1")
	require.NoError(t, f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{Email: "ann@example.com"}))

	_, err := f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{ID: jsonNumber(userID), Code: "777777"})
	assert.ErrorIs(t, err, ErrOTPInvalid)
	assert.Len(t, f.otpsOf(userID, entity.OTPPurposePasswordReset), 1)
}

func TestAuthService_VerifyOTPLocksOutAfterMaxAttempts(t *testing.T) {
	f := newFixture(t)
	f.codes.push("111111")
	userID := f.signup(t, "ann@example.com", "secret1")

	for i := 0; i < f.config.OTP.MaxAttempts; i++ {
		_, err := f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{ID: jsonNumber(userID), Code: "999999"})
		require.ErrorIs(t, err, ErrOTPInvalid)
	}
	assert.Empty(t, f.store.OTPs(userID))

	_, err := f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{ID: jsonNumber(userID), Code: "111111"})
	assert.ErrorIs(t, err, ErrOTPInvalid)
}

func TestAuthService_VerifyOTPAttemptsCountedBelowLimit(t *testing.T) {
	f := newFixture(t)
	f.codes.push("111111")
	userID := f.signup(t, "ann@example.com", "secret1")

	_, err := f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{ID: jsonNumber(userID), Code: "999999"})
	require.ErrorIs(t, err, ErrOTPInvalid)

	otps := f.store.OTPs(userID)
	require.Len(t, otps, 1)
	assert.Equal(t, 1, otps[0].Attempts)

	_, err = f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{ID: jsonNumber(userID), Code: "111111"})
	assert.NoError(t, err)
}

func TestAuthService_ForgotPasswordIsUniform(t *testing.T) {
	f := newFixture(t)
	f.codes.push("111111", "555555", "666666")
	userID := f.signup(t, "ann@example.com", "secret1")
	sentAfterSignup := len(f.notifier.sent)

	require.NoError(t, f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{Email: "nobody@example.com"}))
	assert.Len(t, f.notifier.sent, sentAfterSignup)

	require.NoError(t, f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{Email: "ann@example.com"}))
	require.NoError(t, f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{Email: "ann@example.com"}))

	resets := f.otpsOf(userID, entity.OTPPurposePasswordReset)
	require.Len(t, resets, 1)
	assert.Equal(t, "666666", resets[0].Code)
	assert.Equal(t, f.now.Add(15*time.Minute), resets[0].ExpiresAt)
	assert.Equal(t, mailer.PurposePasswordReset, f.notifier.last(t).Purpose)
}

func TestAuthService_ForgotPasswordInvalidEmail(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{Email: "nope"}), ErrInvalidEmail)
	assert.ErrorIs(t, f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{}), ErrInvalidEmail)
}

func TestAuthService_ResetPassword(t *testing.T) {
	f := newFixture(t)
	f.codes.push("111111", "555555")
	userID := f.signup(t, "ann@example.com", "secret1")
	require.NoError(t, f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{Email: "ann@example.com"}))

	err := f.svc.ResetPassword(context.Background(), &request.ResetPasswordRequest{
		Email:           "ann@example.com",
		Code:            "555555",
		NewPassword:     "newsecret",
		ConfirmPassword: "newsecret",
	})
	require.NoError(t, err)

	user := f.user(t, "ann@example.com")
	assert.True(t, f.svc.hasher.Compare(user.PasswordHash, "newsecret"))
	assert.False(t, f.svc.hasher.Compare(user.PasswordHash, "secret1"))
	assert.Empty(t, f.otpsOf(userID, entity.OTPPurposePasswordReset))

	_, err = f.svc.Login(context.Background(), &request.LoginRequest{Email: "ann@example.com", Password: "newsecret"})
	assert.NoError(t, err)
}

func TestAuthService_ResetPasswordShortPassword(t *testing.T) {
	f := newFixture(t)
	f.codes.push("111111", "555555")
	userID := f.signup(t, "ann@example.com", "secret1")
	require.NoError(t, f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{Email: "ann@example.com"}))
	before := f.user(t, "ann@example.com").PasswordHash

	err := f.svc.ResetPassword(context.Background(), &request.ResetPasswordRequest{
		Email:           "ann@example.com",
		Code:            "555555",
		NewPassword:     "abc",
		ConfirmPassword: "abc",
	})
	assert.ErrorIs(t, err, ErrInvalidPassword)
	assert.Len(t, f.otpsOf(userID, entity.OTPPurposePasswordReset), 1)
	assert.Equal(t, before, f.user(t, "ann@example.com").PasswordHash)
}

func TestAuthService_ResetPasswordByteLimit(t *testing.T) {
	f := newFixture(t)
	f.codes.push("111111", "555555")
	userID := f.signup(t, "ann@example.com", "secret1")
	require.NoError(t, f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{Email: "ann@example.com"}))

	tooLong := strings.Repeat("é", 37)
	err := f.svc.ResetPassword(context.Background(), &request.ResetPasswordRequest{
		Email:           "ann@example.com",
		Code:            "555555",
		NewPassword:     tooLong,
		ConfirmPassword: tooLong,
	})
	assert.ErrorIs(t, err, ErrInvalidPassword)
	assert.Len(t, f.otpsOf(userID, entity.OTPPurposePasswordReset), 1)
	assert.True(t, f.svc.hasher.Compare(f.user(t, "ann@example.com").PasswordHash, "secret1"))
}

func TestAuthService_ResetPasswordErrors(t *testing.T) {
	f := newFixture(t)
	f.codes.push("111111", "555555")
	f.signup(t, "ann@example.com", "secret1")
	require.NoError(t, f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{Email: "ann@example.com"}))

	tests := []struct {
		name string
		req  request.ResetPasswordRequest
		want *AuthError
	}{
		{"missing code", request.ResetPasswordRequest{Email: "ann@example.com", NewPassword: "newsecret", ConfirmPassword: "newsecret"}, ErrMissingFields},
		{"mismatch", request.ResetPasswordRequest{Email: "ann@example.com", Code: "555555", NewPassword: "newsecret", ConfirmPassword: "other1"}, ErrPasswordMismatch},
		{"bad email", request.ResetPasswordRequest{Email: "ann", Code: "555555", NewPassword: "newsecret", ConfirmPassword: "newsecret"}, ErrInvalidEmail},
		{"unknown user", request.ResetPasswordRequest{Email: "bob@example.com", Code: "555555", NewPassword: "newsecret", ConfirmPassword: "newsecret"}, ErrUserNotFound},
		{"malformed code", request.ResetPasswordRequest{Email: "ann@example.com", Code: "abc", NewPassword: "newsecret", ConfirmPassword: "newsecret"}, ErrOTPInvalid},
		{"signup code", request.ResetPasswordRequest{Email: "ann@example.com", Code: "111111", NewPassword: "newsecret", ConfirmPassword: "newsecret"}, ErrOTPInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			assert.ErrorIs(t, f.svc.ResetPassword(context.Background(), &req), tt.want)
		})
	}
}

func TestAuthService_ResetPasswordExpired(t *testing.T) {
	f := newFixture(t)
	f.codes.push("111111", "555555")
	f.signup(t, "ann@example.com", "secret1")
	require.NoError(t, f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{Email: "ann@example.com"}))

	f.advance(15 * time.Minute)

	err := f.svc.ResetPassword(context.Background(), &request.ResetPasswordRequest{
		Email:           "ann@example.com",
		Code:            "555555",
		NewPassword:     "newsecret",
		ConfirmPassword: "newsecret",
	})
	assert.ErrorIs(t, err, ErrOTPInvalid)
}
