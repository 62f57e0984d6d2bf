package entity

import (
	"errors"
	"fmt"
	"time"
)

type OTPPurpose string

const (
	OTPPurposeSignup        OTPPurpose = "signup"
	OTPPurposeLogin         OTPPurpose = "login"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

func (p OTPPurpose) Valid() bool {
	switch p {
	case OTPPurposeSignup, OTPPurposeLogin, OTPPurposePasswordReset:
		return true
	}
	return false
}

type OTP struct {
	BaseSimple
	UserID    int64      `db:"user_id"`
	Code      string     `db:"code"`
	Purpose   OTPPurpose `db:"type"`
	ExpiresAt time.Time  `db:"expires_at"`
	Attempts  int        `db:"attempts"`
}

// Expired reports whether the code can no longer be redeemed at now.
func (o *OTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

func ValidateOTP(o *OTP) error {
	if o.UserID <= 0 {
		return errors.New("otp owner is required")
	}
	if l := len(o.Code); l < 4 || l > 8 {
		return fmt.Errorf("otp code must be 4 to 8 characters, got %d", l)
	}
	if !o.Purpose.Valid() {
		return fmt.Errorf("unknown otp purpose %q", o.Purpose)
	}
	if o.ExpiresAt.IsZero() {
		return errors.New("otp expiry is required")
	}
	if o.Attempts < 0 {
		return errors.New("otp attempts must not be negative")
	}
	return nil
}
