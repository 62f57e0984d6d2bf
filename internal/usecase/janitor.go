package usecase

import (
	"context"
	"time"

	"audit-auth/internal/data/repository"

	"go.uber.org/zap"
)

// OTPJanitor periodically deletes expired OTP rows.
type OTPJanitor struct {
	otps     repository.OTPRepository
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewOTPJanitor(otps repository.OTPRepository, interval time.Duration, log *zap.Logger) *OTPJanitor {
	return &OTPJanitor{
		otps:     otps,
		interval: interval,
		log:      log.With(zap.String("component", "otp_janitor")),
		now:      time.Now,
	}
}

// Run sweeps every interval until ctx is done.
func (j *OTPJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.log.Info("OTP janitor started", zap.Duration("interval", j.interval))

	for {
		select {
		case <-ctx.Done():
			j.log.Info("OTP janitor stopped")
			return
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil && ctx.Err() == nil {
				j.log.Error("Failed to purge expired OTPs", zap.Error(err))
			}
		}
	}
}

func (j *OTPJanitor) Sweep(ctx context.Context) (int64, error) {
	n, err := j.otps.DeleteExpired(ctx, j.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		j.log.Info("Purged expired OTPs", zap.Int64("count", n))
	}
	return n, nil
}
