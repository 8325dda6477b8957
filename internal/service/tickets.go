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
)

type TicketService struct {
	engine       *engine.Engine
	repos        *repository.Repositories
	natsClient   *messaging.NATSClient
	valkeyClient *cache.ValkeyClient
}

func NewTicketService(eng *engine.Engine, repos *repository.Repositories, natsClient *messaging.NATSClient, valkeyClient *cache.ValkeyClient) *TicketService {
	return &TicketService{
		engine:       eng,
		repos:        repos,
		natsClient:   natsClient,
		valkeyClient: valkeyClient,
	}
}

// Mint sells one slot of the event to the caller, then archives and
// announces the new ticket
func (s *TicketService) Mint(ctx context.Context, caller models.AccountID, req *models.MintTicketRequest) (*models.MintTicketResponse, error) {
	start := time.Now()

	ticketID, err := s.engine.MintTicket(ctx, caller, req.EventID, req.PaymentAmount)
	metrics.Observe("mint_ticket", start, err)
	if err != nil {
		return nil, err
	}

	if s.repos != nil {
		ticket := models.Ticket{ID: ticketID, EventID: req.EventID, Owner: caller}
		if err := s.repos.Tickets.Archive(ctx, ticket); err != nil {
			logger.WithContext(ctx).Error("Failed to archive ticket", "error", err, "ticket_id", ticketID)
		}

		event, lookupErr := s.engine.EventByID(req.EventID)
		if lookupErr == nil {
			if err := s.repos.Escrow.RecordMovement(ctx, req.EventID, event.Price, "credit", caller); err != nil {
				logger.WithContext(ctx).Error("Failed to journal escrow credit", "error", err, "event_id", req.EventID)
			}
		}
	}

	if s.valkeyClient != nil {
		s.valkeyClient.InvalidateEvent(ctx, req.EventID)
	}

	if s.natsClient != nil {
		notification := models.TicketMintedNotification{
			TicketID:  ticketID,
			EventID:   req.EventID,
			Owner:     caller,
			Timestamp: time.Now(),
		}
		if err := s.natsClient.Publish(models.SubjectTicketMinted, notification); err != nil {
			logger.WithContext(ctx).Error("Failed to publish ticket minted notification",
				"error", err, "ticket_id", ticketID)
		}
	}

	return &models.MintTicketResponse{TicketID: ticketID}, nil
}

// Resale performs the single permitted ownership transfer, then
// records it
func (s *TicketService) Resale(ctx context.Context, caller models.AccountID, ticketID uint64, req *models.ResaleTicketRequest) error {
	start := time.Now()

	err := s.engine.ResaleTicket(ctx, caller, ticketID, req.Seller, req.Buyer, req.PaymentAmount)
	metrics.Observe("resale_ticket", start, err)
	if err != nil {
		return err
	}

	if s.repos != nil {
		if err := s.repos.Tickets.RecordResale(ctx, ticketID, req.Buyer); err != nil {
			logger.WithContext(ctx).Error("Failed to record resale", "error", err, "ticket_id", ticketID)
		}
	}

	if s.natsClient != nil {
		ticket, _ := s.engine.TicketByID(ticketID)
		notification := models.TicketResoldNotification{
			TicketID:      ticketID,
			EventID:       ticket.EventID,
			Seller:        req.Seller,
			Buyer:         req.Buyer,
			PaymentAmount: req.PaymentAmount,
			Timestamp:     time.Now(),
		}
		if err := s.natsClient.Publish(models.SubjectTicketResold, notification); err != nil {
			logger.WithContext(ctx).Error("Failed to publish resale notification",
				"error", err, "ticket_id", ticketID)
		}
	}

	return nil
}

// Transfer is the generic ownership-transfer entry point. It always
// fails: ticket movement goes through Resale or not at all.
func (s *TicketService) Transfer(ctx context.Context, caller models.AccountID, ticketID uint64, to models.AccountID) error {
	start := time.Now()
	err := s.engine.TransferTicket(ctx, caller, ticketID, to)
	metrics.Observe("transfer_ticket", start, err)
	return err
}

// OwnerOf returns the current owner of a ticket
func (s *TicketService) OwnerOf(ctx context.Context, ticketID uint64) (models.AccountID, error) {
	return s.engine.OwnerOf(ticketID)
}

// MetadataOf returns the metadata reference of the ticket's event,
// preferring the read cache
func (s *TicketService) MetadataOf(ctx context.Context, ticketID uint64) (string, error) {
	if s.valkeyClient != nil {
		if ref, err := s.valkeyClient.GetTicketMetadata(ctx, ticketID); err == nil {
			return ref, nil
		}
	}

	ref, err := s.engine.MetadataOf(ticketID)
	if err != nil {
		return "", err
	}

	if s.valkeyClient != nil {
		s.valkeyClient.SetTicketMetadata(ctx, ticketID, ref)
	}

	return ref, nil
}
