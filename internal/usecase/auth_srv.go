package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"audit-auth/internal/data/entity"
	"audit-auth/internal/data/repository"
	"audit-auth/internal/dto/request"
	"audit-auth/internal/dto/response"
	"audit-auth/pkg/mailer"
	"audit-auth/pkg/utils"

	"go.uber.org/zap"
)

const (
	MsgSignupSuccess  = "Signup successful. Please verify the code sent to your email."
	MsgLoginOTPSent   = "OTP sent to your email"
	MsgForgotPassword = "If an account with that email exists, a password reset code has been sent."
	MsgResetPassword  = "Password reset successful"
)

// verifiablePurposes are the codes accepted by VerifyOTP. Reset codes are
// only redeemable through ResetPassword.
var verifiablePurposes = []entity.OTPPurpose{entity.OTPPurposeSignup, entity.OTPPurposeLogin}

var resetPurposes = []entity.OTPPurpose{entity.OTPPurposePasswordReset}

type AuthService interface {
	Signup(ctx context.Context, req *request.SignupRequest) (*response.SignupResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error)
	VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) (*response.VerifyOTPResponse, error)
	ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error
}

type CodeGenerator interface {
	Generate() (string, error)
}

type TokenIssuer interface {
	Issue(userID int64) (string, time.Time, error)
}

type authService struct {
	repo     *repository.Repository
	hasher   utils.PasswordHasher
	codes    CodeGenerator
	tokens   TokenIssuer
	notifier mailer.Notifier
	config   *utils.Config
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(
	repo *repository.Repository,
	hasher utils.PasswordHasher,
	codes CodeGenerator,
	tokens TokenIssuer,
	notifier mailer.Notifier,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:     repo,
		hasher:   hasher,
		codes:    codes,
		tokens:   tokens,
		notifier: notifier,
		config:   config,
		log:      log.With(zap.String("service", "auth")),
		now:      time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, req *request.SignupRequest) (*response.SignupResponse, error) {
	req.Normalize()
	if err := s.checkRequest("Signup", req); err != nil {
		return nil, err
	}

	existing, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		s.log.Warn("Signup with registered email", zap.Int64("user_id", existing.ID))
		return nil, ErrEmailExists
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	if err := entity.ValidateUser(user); err != nil {
		return nil, fmt.Errorf("build user: %w", err)
	}

	var otp *entity.OTP
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}

		otp, err = s.newOTP(user.ID, entity.OTPPurposeSignup)
		if err != nil {
			return err
		}
		return tx.OTP.Create(ctx, otp)
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// lost a race with a concurrent signup for the same address
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.notify(ctx, user, otp)

	s.log.Info("User signed up", zap.Int64("user_id", user.ID))

	return &response.SignupResponse{
		Message: MsgSignupSuccess,
		UserID:  user.ID,
	}, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error) {
	req.Normalize()
	if err := s.checkRequest("Login", req); err != nil {
		return nil, err
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	// same error for unknown email and wrong password
	if user == nil {
		s.log.Warn("Login for unknown email")
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Compare(user.PasswordHash, req.Password) {
		s.log.Warn("Login with wrong password", zap.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	otp, err := s.replaceOTP(ctx, user.ID, entity.OTPPurposeLogin)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, user, otp)

	s.log.Info("Login OTP issued", zap.Int64("user_id", user.ID))

	return &response.LoginResponse{
		Message:     MsgLoginOTPSent,
		RequiresOTP: true,
		Email:       user.Email,
	}, nil
}

func (s *authService) VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) (*response.VerifyOTPResponse, error) {
	req.Normalize()
	if req.HasID() {
		// id takes precedence; an email sent alongside it is ignored
		req.Email = ""
	}
	if err := s.checkRequest("Verify OTP", req); err != nil {
		return nil, err
	}

	user, err := s.resolveUser(ctx, req)
	if err != nil {
		return nil, err
	}

	otp, err := s.findRedeemable(ctx, user.ID, req.Code, verifiablePurposes)
	if err != nil {
		return nil, err
	}

	var token string
	var expiresAt time.Time
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.User.LockByID(ctx, user.ID); err != nil {
			return err
		}
		if !user.EmailVerified {
			if err := tx.User.MarkVerified(ctx, user.ID); err != nil {
				return err
			}
		}
		if err := tx.OTP.Delete(ctx, otp.ID); err != nil {
			return err
		}

		token, expiresAt, err = s.tokens.Issue(user.ID)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		// consumed by a concurrent request
		return nil, ErrOTPInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("consume OTP: %w", err)
	}

	user.EmailVerified = true

	s.log.Info("OTP verified",
		zap.Int64("user_id", user.ID),
		zap.String("otp_type", string(otp.Purpose)),
	)

	return &response.VerifyOTPResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      response.UserToResponse(user),
	}, nil
}

// ForgotPassword reports success for every well-formed email so callers
// cannot probe which addresses are registered.
func (s *authService) ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error {
	req.Normalize()
	if err := s.checkRequest("Forgot password", req); err != nil {
		return ErrInvalidEmail
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to look up user for password reset", zap.Error(err))
		return nil
	}
	if user == nil {
		s.log.Info("Password reset requested for unknown email")
		return nil
	}

	otp, err := s.replaceOTP(ctx, user.ID, entity.OTPPurposePasswordReset)
	if err != nil {
		s.log.Error("Failed to issue password reset OTP", zap.Error(err), zap.Int64("user_id", user.ID))
		return nil
	}

	s.notify(ctx, user, otp)

	s.log.Info("Password reset OTP issued", zap.Int64("user_id", user.ID))
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error {
	req.Normalize()
	if err := s.checkRequest("Reset password", req); err != nil {
		return err
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		s.log.Warn("Password reset for unknown email")
		return ErrUserNotFound
	}

	otp, err := s.findRedeemable(ctx, user.ID, req.Code, resetPurposes)
	if err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.User.LockByID(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.OTP.Delete(ctx, otp.ID); err != nil {
			return err
		}
		return tx.User.UpdatePassword(ctx, user.ID, passwordHash)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrOTPInvalid
	}
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	s.log.Info("Password reset", zap.Int64("user_id", user.ID))
	return nil
}

func (s *authService) resolveUser(ctx context.Context, req *request.VerifyOTPRequest) (*entity.User, error) {
	var user *entity.User
	var err error

	switch {
	case req.HasID():
		id, parseErr := req.ID.Int64()
		if parseErr != nil || id <= 0 {
			s.log.Warn("Verify OTP with unusable id", zap.String("id", req.ID.String()))
			return nil, ErrUserNotFound
		}
		user, err = s.repo.User.FindByID(ctx, id)
	case req.Email != "":
		user, err = s.repo.User.FindByEmail(ctx, req.Email)
	default:
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if user == nil {
		s.log.Warn("Verify OTP for unknown user")
		return nil, ErrUserNotFound
	}
	return user, nil
}

// findRedeemable returns the newest row matching code, or ErrOTPInvalid after
// charging a failed attempt against the user's outstanding codes.
func (s *authService) findRedeemable(ctx context.Context, userID int64, code string, purposes []entity.OTPPurpose) (*entity.OTP, error) {
	now := s.now()

	var otp *entity.OTP
	if utils.IsValidOTP(code) {
		var err error
		otp, err = s.repo.OTP.FindLatest(ctx, userID, code, purposes)
		if err != nil {
			return nil, fmt.Errorf("find OTP: %w", err)
		}
	}

	maxAttempts := s.config.OTP.MaxAttempts
	switch {
	case otp == nil:
		s.log.Warn("OTP mismatch", zap.Int64("user_id", userID))
	case otp.Expired(now):
		s.log.Warn("OTP expired", zap.Int64("user_id", userID), zap.Int64("otp_id", otp.ID))
	case maxAttempts > 0 && otp.Attempts >= maxAttempts:
		s.log.Warn("OTP attempts exhausted", zap.Int64("user_id", userID), zap.Int64("otp_id", otp.ID))
	default:
		return otp, nil
	}

	burned, err := s.repo.OTP.IncrementAttempts(ctx, userID, purposes, now, maxAttempts)
	if err != nil {
		s.log.Error("Failed to record OTP attempt", zap.Error(err), zap.Int64("user_id", userID))
	} else if burned > 0 {
		s.log.Warn("OTPs invalidated after too many attempts",
			zap.Int64("user_id", userID),
			zap.Int64("count", burned),
		)
	}

	return nil, ErrOTPInvalid
}

// replaceOTP swaps every outstanding code of purpose for a fresh one. The
// user row lock serializes concurrent issuance for the same user.
func (s *authService) replaceOTP(ctx context.Context, userID int64, purpose entity.OTPPurpose) (*entity.OTP, error) {
	otp, err := s.newOTP(userID, purpose)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.User.LockByID(ctx, userID); err != nil {
			return err
		}
		removed, err := tx.OTP.DeleteByUserAndPurpose(ctx, userID, purpose)
		if err != nil {
			return err
		}
		if removed > 0 {
			s.log.Debug("Replaced outstanding OTPs",
				zap.Int64("user_id", userID),
				zap.String("otp_type", string(purpose)),
				zap.Int64("count", removed),
			)
		}
		return tx.OTP.Create(ctx, otp)
	})
	if err != nil {
		return nil, fmt.Errorf("issue %s OTP: %w", purpose, err)
	}

	return otp, nil
}

func (s *authService) newOTP(userID int64, purpose entity.OTPPurpose) (*entity.OTP, error) {
	code, err := s.codes.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate OTP: %w", err)
	}

	now := s.now()
	otp := &entity.OTP{
		BaseSimple: entity.BaseSimple{CreatedAt: now},
		UserID:     userID,
		Code:       code,
		Purpose:    purpose,
		ExpiresAt:  now.Add(s.expiry(purpose)),
	}
	if err := entity.ValidateOTP(otp); err != nil {
		return nil, fmt.Errorf("build OTP: %w", err)
	}
	return otp, nil
}

func (s *authService) expiry(purpose entity.OTPPurpose) time.Duration {
	var minutes int
	switch purpose {
	case entity.OTPPurposeSignup:
		minutes = s.config.OTP.SignupExpiryMinutes
	case entity.OTPPurposeLogin:
		minutes = s.config.OTP.LoginExpiryMinutes
	case entity.OTPPurposePasswordReset:
		minutes = s.config.OTP.ResetExpiryMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// notify hands the code to the notifier. Delivery problems never fail the
// request; the code is already stored.
func (s *authService) notify(ctx context.Context, user *entity.User, otp *entity.OTP) {
	err := s.notifier.SendOTP(ctx, mailer.OTPMessage{
		To:        user.Email,
		Code:      otp.Code,
		Purpose:   string(otp.Purpose),
		ExpiresIn: otp.ExpiresAt.Sub(otp.CreatedAt),
	})
	if err != nil {
		s.log.Error("Failed to dispatch OTP",
			zap.Error(err),
			zap.Int64("user_id", user.ID),
			zap.String("otp_type", string(otp.Purpose)),
		)
	}
}
