package service

import (
	"context"
	"time"

	"gatepass/internal/cache"
	"gatepass/internal/engine"
	"gatepass/internal/logger"
	"gatepass/internal/messaging"
	"gatepass/internal/metrics"
	"gatepass/internal/models"
	"gatepass/internal/repository"
	"gatepass/internal/search"
)

type EventService struct {
	engine       *engine.Engine
	repos        *repository.Repositories
	natsClient   *messaging.NATSClient
	valkeyClient *cache.ValkeyClient
	esClient     *search.ElasticsearchClient
}

func NewEventService(eng *engine.Engine, repos *repository.Repositories, natsClient *messaging.NATSClient, valkeyClient *cache.ValkeyClient, esClient *search.ElasticsearchClient) *EventService {
	return &EventService{
		engine:       eng,
		repos:        repos,
		natsClient:   natsClient,
		valkeyClient: valkeyClient,
		esClient:     esClient,
	}
}

// Create runs createEvent through the engine, then archives, indexes
// and announces the new event
func (s *EventService) Create(ctx context.Context, caller models.AccountID, req *models.CreateEventRequest) (*models.CreateEventResponse, error) {
	start := time.Now()

	eventID, err := s.engine.CreateEvent(ctx, caller, req.Name, req.MetadataRef, req.Date, req.Price, req.Capacity)
	metrics.Observe("create_event", start, err)
	if err != nil {
		return nil, err
	}

	event, _ := s.engine.EventByID(eventID)

	if s.repos != nil {
		if err := s.repos.Events.Archive(ctx, event); err != nil {
			logger.WithContext(ctx).Error("Failed to archive event", "error", err, "event_id", eventID)
		}
	}

	if s.esClient != nil {
		if err := s.esClient.IndexEvent(ctx, event); err != nil {
			logger.WithContext(ctx).Error("Failed to index event", "error", err, "event_id", eventID)
		}
	}

	if s.natsClient != nil {
		notification := models.EventCreatedNotification{
			EventID:     event.ID,
			Name:        event.Name,
			MetadataRef: event.MetadataRef,
			Date:        event.Date,
			Price:       event.Price,
			Capacity:    event.Capacity,
			Organizer:   event.Organizer,
			Timestamp:   time.Now(),
		}
		if err := s.natsClient.Publish(models.SubjectEventCreated, notification); err != nil {
			logger.WithContext(ctx).Error("Failed to publish event created notification",
				"error", err, "event_id", eventID)
		}
	}

	return &models.CreateEventResponse{ID: eventID}, nil
}

// GetByID returns an event record, preferring the read cache
func (s *EventService) GetByID(ctx context.Context, eventID uint64) (*models.Event, error) {
	if s.valkeyClient != nil {
		if event, err := s.valkeyClient.GetEvent(ctx, eventID); err == nil {
			return event, nil
		}
	}

	event, err := s.engine.EventByID(eventID)
	if err != nil {
		return nil, err
	}

	if s.valkeyClient != nil {
		s.valkeyClient.SetEvent(ctx, event)
	}

	return &event, nil
}

// List returns a page of events. With a query string the search index
// resolves matching ids; without one the catalog is paged directly.
func (s *EventService) List(ctx context.Context, query string, page, pageSize int) (models.ListEventsResponse, error) {
	if query != "" && s.esClient != nil {
		ids, err := s.esClient.SearchEvents(ctx, query, page, pageSize)
		if err != nil {
			logger.WithContext(ctx).Error("Event search failed, falling back to catalog", "error", err)
		} else {
			result := make(models.ListEventsResponse, 0, len(ids))
			for _, id := range ids {
				event, err := s.engine.EventByID(id)
				if err != nil {
					continue
				}
				result = append(result, listItem(event))
			}
			return result, nil
		}
	}

	events := s.engine.ListEvents(page, pageSize)
	result := make(models.ListEventsResponse, 0, len(events))
	for _, event := range events {
		result = append(result, listItem(event))
	}
	return result, nil
}

func listItem(event models.Event) models.ListEventsResponseItem {
	return models.ListEventsResponseItem{
		ID:          event.ID,
		Name:        event.Name,
		Date:        event.Date,
		Price:       event.Price,
		Capacity:    event.Capacity,
		MintedCount: event.MintedCount,
	}
}

// Withdraw pays the event's escrow out to its organizer and journals
// the movement
func (s *EventService) Withdraw(ctx context.Context, caller models.AccountID, eventID uint64) error {
	amount := s.engine.EscrowBalance(eventID)

	start := time.Now()
	err := s.engine.Withdraw(ctx, caller, eventID)
	metrics.Observe("withdraw", start, err)
	if err != nil {
		return err
	}

	if s.repos != nil {
		if err := s.repos.Escrow.RecordMovement(ctx, eventID, amount, "withdraw", caller); err != nil {
			logger.WithContext(ctx).Error("Failed to journal withdrawal", "error", err, "event_id", eventID)
		}
	}

	if s.natsClient != nil {
		notification := models.EscrowWithdrawnNotification{
			EventID:   eventID,
			Organizer: caller,
			Amount:    amount,
			Timestamp: time.Now(),
		}
		if err := s.natsClient.Publish(models.SubjectEscrowWithdrawn, notification); err != nil {
			logger.WithContext(ctx).Error("Failed to publish withdrawal notification",
				"error", err, "event_id", eventID)
		}
	}

	return nil
}

// EscrowBalance returns the event's accumulated escrow. The event must
// exist.
func (s *EventService) EscrowBalance(ctx context.Context, eventID uint64) (uint64, error) {
	if _, err := s.engine.EventByID(eventID); err != nil {
		return 0, err
	}
	return s.engine.EscrowBalance(eventID), nil
}
