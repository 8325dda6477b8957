package catalog

import (
	"sync"
	"time"

	apperrors "gatepass/internal/errors"
	"gatepass/internal/models"
)

// Catalog owns all event records. Event ids are assigned sequentially
// from 0 with no gaps; events are never deleted and only MintedCount
// changes after creation.
type Catalog struct {
	mu     sync.RWMutex
	events []*models.Event

	now func() time.Time
}

func NewCatalog() *Catalog {
	return &Catalog{now: time.Now}
}

// SetClock overrides the time source. Test hook only.
func (c *Catalog) SetClock(now func() time.Time) {
	c.now = now
}

// Create validates and appends a new event record, returning its id.
// The date must be strictly in the future and capacity at least 1.
func (c *Catalog) Create(organizer models.AccountID, name, metadataRef string, date time.Time, price, capacity uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !date.After(c.now()) {
		return 0, apperrors.ErrInvalidSchedule
	}
	if capacity == 0 {
		return 0, apperrors.ErrInvalidCapacity
	}

	event := &models.Event{
		ID:          uint64(len(c.events)),
		Name:        name,
		MetadataRef: metadataRef,
		Date:        date,
		Price:       price,
		Capacity:    capacity,
		Organizer:   organizer,
	}
	c.events = append(c.events, event)

	return event.ID, nil
}

// ReserveSlot consumes one unit of the event's capacity and returns
// the price and organizer for downstream use. The capacity check and
// the increment are a single atomic step.
func (c *Catalog) ReserveSlot(eventID uint64) (price uint64, organizer models.AccountID, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if eventID >= uint64(len(c.events)) {
		return 0, "", apperrors.ErrInvalidEvent
	}

	event := c.events[eventID]
	if event.MintedCount == event.Capacity {
		return 0, "", apperrors.ErrSoldOut
	}

	event.MintedCount++
	return event.Price, event.Organizer, nil
}

// ReleaseSlot hands a reserved slot back. Used only to roll back a
// mint whose later steps failed.
func (c *Catalog) ReleaseSlot(eventID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if eventID < uint64(len(c.events)) && c.events[eventID].MintedCount > 0 {
		c.events[eventID].MintedCount--
	}
}

// GetByID returns a copy of the event record
func (c *Catalog) GetByID(eventID uint64) (models.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if eventID >= uint64(len(c.events)) {
		return models.Event{}, apperrors.ErrInvalidEvent
	}
	return *c.events[eventID], nil
}

// Count returns the number of created events
func (c *Catalog) Count() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return uint64(len(c.events))
}

// List returns a page of event records in creation order
func (c *Catalog) List(page, pageSize int) []models.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start := (page - 1) * pageSize
	if start >= len(c.events) || start < 0 {
		return nil
	}
	end := start + pageSize
	if end > len(c.events) {
		end = len(c.events)
	}

	result := make([]models.Event, 0, end-start)
	for _, event := range c.events[start:end] {
		result = append(result, *event)
	}
	return result
}
