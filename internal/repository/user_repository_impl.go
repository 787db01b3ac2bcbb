package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/eventmap/internal/model"
)

// UserRepositoryImpl implements UserRepository using PostgreSQL.
type UserRepositoryImpl struct {
	pool *pgxpool.Pool
}

// NewUserRepositoryImpl creates a new UserRepository implementation.
func NewUserRepositoryImpl(pool *pgxpool.Pool) UserRepository {
	return &UserRepositoryImpl{pool: pool}
}

// Create stores a new user with its signup-time role.
func (r *UserRepositoryImpl) Create(ctx context.Context, user *model.User) error {
	_, err := activeQuerier(ctx, r.pool).Exec(ctx,
		`INSERT INTO users (uid, role, email, display_name) VALUES ($1, $2, $3, $4)`,
		user.UID, string(user.Role), user.Email, user.DisplayName,
	)

	return err
}

// GetByID retrieves a user by UID.
func (r *UserRepositoryImpl) GetByID(ctx context.Context, uid string) (*model.User, error) {
	var (
		user model.User
		role string
	)

	err := activeQuerier(ctx, r.pool).QueryRow(ctx,
		`SELECT uid, role, email, display_name FROM users WHERE uid = $1`,
		uid,
	).Scan(&user.UID, &role, &user.Email, &user.DisplayName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}

		return nil, err
	}

	user.Role = model.Role(role)

	return &user, nil
}
