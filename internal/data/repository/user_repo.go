package repository

import (
	"context"
	"errors"
	"fmt"

	"audit-auth/internal/data/entity"
	"audit-auth/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const pgUniqueViolation = "23505"

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// LockByID takes a row lock held until the surrounding transaction ends.
	LockByID(ctx context.Context, id int64) error
	MarkVerified(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type userRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewUserRepository(db database.Querier, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

// Create inserts user and fills in its generated id and timestamps.
func (ur *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (full_name, email, password, email_verified)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := ur.db.QueryRow(ctx, query,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.EmailVerified,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateEmail
		}
		ur.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	return nil
}

func (ur *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `
		SELECT id, full_name, email, password, email_verified, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user, err := ur.scanOne(ur.db.QueryRow(ctx, query, id))
	if err != nil {
		ur.log.Error("Failed to find user by ID", zap.Error(err), zap.Int64("user_id", id))
		return nil, fmt.Errorf("find user by ID %d: %w", id, err)
	}

	return user, nil
}

func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `
		SELECT id, full_name, email, password, email_verified, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user, err := ur.scanOne(ur.db.QueryRow(ctx, query, email))
	if err != nil {
		ur.log.Error("Failed to find user by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("find user by email %s: %w", email, err)
	}

	return user, nil
}

func (ur *userRepository) LockByID(ctx context.Context, id int64) error {
	var locked int64
	err := ur.db.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		return fmt.Errorf("lock user %d: %w", id, err)
	}
	return nil
}

func (ur *userRepository) MarkVerified(ctx context.Context, id int64) error {
	query := `
		UPDATE users
		SET email_verified = true, updated_at = NOW()
		WHERE id = $1
	`

	return ur.execOne(ctx, "mark user verified", id, query, id)
}

func (ur *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `
		UPDATE users
		SET password = $2, updated_at = NOW()
		WHERE id = $1
	`

	return ur.execOne(ctx, "update password", id, query, id, passwordHash)
}

// scanOne returns (nil, nil) when the row does not exist.
func (ur *userRepository) scanOne(row pgx.Row) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.EmailVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (ur *userRepository) execOne(ctx context.Context, op string, id int64, query string, args ...any) error {
	result, err := ur.db.Exec(ctx, query, args...)
	if err != nil {
		ur.log.Error("Failed to "+op, zap.Error(err), zap.Int64("user_id", id))
		return fmt.Errorf("%s for user %d: %w", op, id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s: user %d not found", op, id)
	}

	return nil
}
