package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/eventmap/internal/model"
)

// Postgres unique_violation.
const uniqueViolationCode = "23505"

// RegistrationRepositoryImpl implements RegistrationRepository using PostgreSQL.
// The (user_id, event_id) unique index is the second line of defense behind the
// service-level duplicate pre-check.
type RegistrationRepositoryImpl struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepositoryImpl creates a new RegistrationRepository implementation.
func NewRegistrationRepositoryImpl(pool *pgxpool.Pool) RegistrationRepository {
	return &RegistrationRepositoryImpl{pool: pool}
}

// Create inserts a registration, the snapshot fields included. A duplicate
// pair surfaces as model.ErrAlreadyRegistered.
func (r *RegistrationRepositoryImpl) Create(
	ctx context.Context, params *model.CreateRegistrationParams,
) (*model.Registration, error) {
	reg := &model.Registration{
		ID:           uuid.NewString(),
		UserID:       params.UserID,
		EventID:      params.EventID,
		Name:         params.Name,
		Email:        params.Email,
		RegisteredAt: time.Now().UTC(),
	}

	_, err := activeQuerier(ctx, r.pool).Exec(ctx,
		`INSERT INTO registrations (id, user_id, event_id, name, email, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		reg.ID, reg.UserID, reg.EventID, reg.Name, reg.Email, reg.RegisteredAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, model.ErrAlreadyRegistered
		}

		return nil, err
	}

	return reg, nil
}

// Get retrieves the single registration for a (user, event) pair, or nil when
// none exists.
func (r *RegistrationRepositoryImpl) Get(
	ctx context.Context, userID, eventID string,
) (*model.Registration, error) {
	var reg model.Registration

	err := activeQuerier(ctx, r.pool).QueryRow(ctx,
		`SELECT id, user_id, event_id, name, email, registered_at
		FROM registrations WHERE user_id = $1 AND event_id = $2`,
		userID, eventID,
	).Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.Name, &reg.Email, &reg.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return &reg, nil
}

// Delete removes the registration for a pair and reports whether one existed.
func (r *RegistrationRepositoryImpl) Delete(ctx context.Context, userID, eventID string) (bool, error) {
	tag, err := activeQuerier(ctx, r.pool).Exec(ctx,
		`DELETE FROM registrations WHERE user_id = $1 AND event_id = $2`,
		userID, eventID,
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// ListByEvent returns the registrations for an event in registration order.
func (r *RegistrationRepositoryImpl) ListByEvent(
	ctx context.Context, eventID string,
) ([]*model.Registration, error) {
	rows, err := activeQuerier(ctx, r.pool).Query(ctx,
		`SELECT id, user_id, event_id, name, email, registered_at
		FROM registrations WHERE event_id = $1 ORDER BY registered_at`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []*model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(
			&reg.ID, &reg.UserID, &reg.EventID, &reg.Name, &reg.Email, &reg.RegisteredAt,
		); err != nil {
			return nil, err
		}
		regs = append(regs, &reg)
	}

	return regs, rows.Err()
}

// CountByEvent returns the ledger's registration count at read time.
func (r *RegistrationRepositoryImpl) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	var count int64

	err := activeQuerier(ctx, r.pool).QueryRow(ctx,
		`SELECT count(*) FROM registrations WHERE event_id = $1`, eventID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}
