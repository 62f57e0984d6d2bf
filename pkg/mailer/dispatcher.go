package mailer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var ErrDispatcherClosed = errors.New("mail dispatcher closed")

type DispatcherConfig struct {
	MaxRetries  uint64
	BaseBackoff time.Duration
	// SendTimeout bounds a single delivery including its retries.
	SendTimeout time.Duration
	// MaxInFlight caps concurrent deliveries; SendOTP waits for a free slot.
	MaxInFlight int64
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		MaxRetries:  3,
		BaseBackoff: 500 * time.Millisecond,
		SendTimeout: 30 * time.Second,
		MaxInFlight: 16,
	}
}

// Dispatcher delivers through next in the background with exponential
// backoff. SendOTP returns as soon as the delivery is scheduled.
type Dispatcher struct {
	next  Notifier
	cfg   DispatcherConfig
	log   *zap.Logger
	slots *semaphore.Weighted

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(next Notifier, cfg DispatcherConfig, log *zap.Logger) *Dispatcher {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = DefaultDispatcherConfig().MaxInFlight
	}
	return &Dispatcher{
		next:  next,
		cfg:   cfg,
		log:   log.With(zap.String("component", "mail_dispatcher")),
		slots: semaphore.NewWeighted(cfg.MaxInFlight),
	}
}

// SendOTP blocks while MaxInFlight deliveries are running, until a slot
// frees up or ctx is done.
func (d *Dispatcher) SendOTP(ctx context.Context, msg OTPMessage) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.wg.Add(1)
	d.mu.Unlock()

	if err := d.slots.Acquire(ctx, 1); err != nil {
		d.wg.Done()
		return fmt.Errorf("schedule OTP delivery: %w", err)
	}

	go d.deliver(context.WithoutCancel(ctx), msg)
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, msg OTPMessage) {
	defer d.wg.Done()
	defer d.slots.Release(1)

	ctx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(d.cfg.MaxRetries, retry.NewExponential(d.cfg.BaseBackoff))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := d.next.SendOTP(ctx, msg); err != nil {
			d.log.Warn("OTP delivery attempt failed",
				zap.Error(err),
				zap.Int("attempt", attempt),
				zap.String("purpose", msg.Purpose),
			)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		d.log.Error("Failed to deliver OTP",
			zap.Error(err),
			zap.String("to", msg.To),
			zap.String("purpose", msg.Purpose),
		)
		return
	}

	d.log.Debug("OTP delivered", zap.String("purpose", msg.Purpose), zap.Int("attempts", attempt))
}

// Close stops accepting messages and waits for in-flight deliveries or ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
