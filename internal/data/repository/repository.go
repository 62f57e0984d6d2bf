package repository

import (
	"context"
	"errors"

	"audit-auth/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrNotFound       = errors.New("record not found")
)

// TxFunc runs fn with a Repository bound to a single transaction.
type TxFunc func(ctx context.Context, fn func(tx *Repository) error) error

// Repository groups the stores used by the auth flow.
type Repository struct {
	User UserRepository
	OTP  OTPRepository

	pinger func(ctx context.Context) error
	withTx TxFunc
}

// NewRepository builds postgres-backed repositories over db.
func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := newQuerierRepository(db, log)
	repo.pinger = db.Ping
	repo.withTx = func(ctx context.Context, fn func(tx *Repository) error) error {
		return database.WithTx(ctx, db, func(tx pgx.Tx) error {
			return fn(newQuerierRepository(tx, log))
		})
	}
	return repo
}

// New assembles a Repository from other store implementations.
func New(user UserRepository, otp OTPRepository, withTx TxFunc, pinger func(ctx context.Context) error) *Repository {
	return &Repository{User: user, OTP: otp, withTx: withTx, pinger: pinger}
}

func newQuerierRepository(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		User: NewUserRepository(q, log),
		OTP:  NewOTPRepository(q, log),
	}
}

// WithTx runs fn atomically. A Repository that is already transactional
// runs fn inline.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.withTx == nil {
		return fn(r)
	}
	return r.withTx(ctx, fn)
}

// Ping checks the backing store is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if r.pinger == nil {
		return nil
	}
	return r.pinger(ctx)
}
