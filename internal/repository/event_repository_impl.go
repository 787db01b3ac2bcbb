package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/eventmap/internal/model"
)

const eventColumns = `id, name, description, category, date_time,
	venue_building, venue_floor, venue_room,
	organizer_name, organizer_phone, image_urls, lat, lon, created_by, created_at`

// EventRepositoryImpl implements EventRepository using PostgreSQL.
type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

// NewEventRepositoryImpl creates a new EventRepository implementation.
func NewEventRepositoryImpl(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{pool: pool}
}

// Create persists a new event. The store assigns the ID and creation time;
// an unset date_time defaults to the creation time.
func (r *EventRepositoryImpl) Create(
	ctx context.Context, params *model.EventParams, createdBy string,
) (*model.Event, error) {
	id := uuid.NewString()
	createdAt := time.Now().UTC()

	dateTime := params.DateTime
	if dateTime.IsZero() {
		dateTime = createdAt
	}

	var lat, lon *float64
	if params.Location != nil {
		lat = &params.Location.Latitude
		lon = &params.Location.Longitude
	}

	_, err := activeQuerier(ctx, r.pool).Exec(ctx,
		`INSERT INTO events (id, name, description, category, date_time,
			venue_building, venue_floor, venue_room,
			organizer_name, organizer_phone, image_urls, lat, lon, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		id, params.Name, params.Description, string(params.Category), dateTime,
		params.Venue.Building, params.Venue.Floor, params.Venue.Room,
		params.OrganizerInfo.Name, params.OrganizerInfo.PhoneNumber,
		params.ImageURLs, lat, lon, createdBy, createdAt,
	)
	if err != nil {
		return nil, err
	}

	event := eventFromParams(params)
	event.ID = id
	event.DateTime = dateTime
	event.CreatedBy = createdBy
	event.CreatedAt = createdAt

	return event, nil
}

// GetByID retrieves an event by ID.
func (r *EventRepositoryImpl) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := activeQuerier(ctx, r.pool).QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEventNotFound
		}

		return nil, err
	}

	return event, nil
}

// Update overwrites the mutable fields of an event. created_by and created_at
// are never part of the statement.
func (r *EventRepositoryImpl) Update(
	ctx context.Context, id string, params *model.EventParams,
) (*model.Event, error) {
	var lat, lon *float64
	if params.Location != nil {
		lat = &params.Location.Latitude
		lon = &params.Location.Longitude
	}

	// An unset start time keeps the stored one.
	var dateTime *time.Time
	if !params.DateTime.IsZero() {
		dateTime = &params.DateTime
	}

	tag, err := activeQuerier(ctx, r.pool).Exec(ctx,
		`UPDATE events SET name = $2, description = $3, category = $4,
			date_time = COALESCE($5, date_time),
			venue_building = $6, venue_floor = $7, venue_room = $8,
			organizer_name = $9, organizer_phone = $10, image_urls = $11,
			lat = COALESCE($12, lat), lon = COALESCE($13, lon)
		WHERE id = $1`,
		id, params.Name, params.Description, string(params.Category), dateTime,
		params.Venue.Building, params.Venue.Floor, params.Venue.Room,
		params.OrganizerInfo.Name, params.OrganizerInfo.PhoneNumber,
		params.ImageURLs, lat, lon,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, model.ErrEventNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes an event. Registrations are intentionally left in place.
func (r *EventRepositoryImpl) Delete(ctx context.Context, id string) error {
	tag, err := activeQuerier(ctx, r.pool).Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEventNotFound
	}

	return nil
}

// List returns all events ordered by start time.
func (r *EventRepositoryImpl) List(ctx context.Context) ([]*model.Event, error) {
	rows, err := activeQuerier(ctx, r.pool).Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY date_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListByOrganizer returns the events created by the given organizer.
func (r *EventRepositoryImpl) ListByOrganizer(ctx context.Context, uid string) ([]*model.Event, error) {
	rows, err := activeQuerier(ctx, r.pool).Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE created_by = $1 ORDER BY date_time`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

func eventFromParams(params *model.EventParams) *model.Event {
	return &model.Event{
		Name:          params.Name,
		Description:   params.Description,
		Category:      params.Category,
		DateTime:      params.DateTime,
		Venue:         params.Venue,
		OrganizerInfo: params.OrganizerInfo,
		ImageURLs:     params.ImageURLs,
		Location:      params.Location,
	}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		event    model.Event
		category string
		lat, lon *float64
	)

	err := row.Scan(
		&event.ID, &event.Name, &event.Description, &category, &event.DateTime,
		&event.Venue.Building, &event.Venue.Floor, &event.Venue.Room,
		&event.OrganizerInfo.Name, &event.OrganizerInfo.PhoneNumber,
		&event.ImageURLs, &lat, &lon, &event.CreatedBy, &event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Category = model.Category(category)
	if lat != nil && lon != nil {
		event.Location = &model.GeoPoint{Latitude: *lat, Longitude: *lon}
	}

	return &event, nil
}

func collectEvents(rows pgx.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}
