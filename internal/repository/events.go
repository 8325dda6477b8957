package repository

import (
	"context"
	"database/sql"

	"gatepass/internal/database"
	"gatepass/internal/models"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Archive stores a snapshot of a freshly created event
func (r *EventRepository) Archive(ctx context.Context, event models.Event) error {
	query := `
		INSERT INTO events_archive (id, name, metadata_ref, event_date, price, capacity, organizer)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Name,
		event.MetadataRef,
		event.Date,
		event.Price,
		event.Capacity,
		event.Organizer,
	)
	return err
}

// GetByID returns an archived event, or nil when not present
func (r *EventRepository) GetByID(ctx context.Context, id uint64) (*models.Event, error) {
	event := &models.Event{}
	query := `
		SELECT id, name, metadata_ref, event_date, price, capacity, organizer
		FROM events_archive
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.MetadataRef,
		&event.Date,
		&event.Price,
		&event.Capacity,
		&event.Organizer,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return event, err
}
