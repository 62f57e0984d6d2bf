// Package mailer delivers one-time codes to users.
package mailer

import (
	"context"
	"time"
)

// Purposes match the purpose tag stored with each code.
const (
	PurposeSignup        = "signup"
	PurposeLogin         = "login"
	PurposePasswordReset = "password_reset"
)

type OTPMessage struct {
	To        string
	Code      string
	Purpose   string
	ExpiresIn time.Duration
}

// Notifier sends a one-time code to its recipient.
type Notifier interface {
	SendOTP(ctx context.Context, msg OTPMessage) error
}
