package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes codes to the log instead of mailing them. Development only.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.With(zap.String("notifier", "log"))}
}

func (n *LogNotifier) SendOTP(_ context.Context, msg OTPMessage) error {
	n.log.Info("OTP issued (SMTP not configured)",
		zap.String("to", msg.To),
		zap.String("purpose", msg.Purpose),
		zap.String("code", msg.Code),
		zap.Duration("expires_in", msg.ExpiresIn),
	)
	return nil
}
