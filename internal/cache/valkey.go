package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gatepass/internal/models"

	"github.com/redis/go-redis/v9"
)

// ValkeyClient is a read cache in front of the catalog and ledger.
// Event records and ticket metadata are immutable apart from the
// minted counter, so entries carry a short TTL instead of precise
// invalidation.
type ValkeyClient struct {
	client *redis.Client
	ttl    time.Duration
}

type Config struct {
	Addr     string
	Password string
	TTLSec   int
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	if cfg.TTLSec == 0 {
		cfg.TTLSec = 30
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client: rdb,
		ttl:    time.Duration(cfg.TTLSec) * time.Second,
	}, nil
}

func eventKey(eventID uint64) string {
	return fmt.Sprintf("event:%d", eventID)
}

func metadataKey(ticketID uint64) string {
	return fmt.Sprintf("ticket:%d:metadata", ticketID)
}

// GetEvent returns a cached event record
func (v *ValkeyClient) GetEvent(ctx context.Context, eventID uint64) (*models.Event, error) {
	raw, err := v.client.Get(ctx, eventKey(eventID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("event not in cache")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}

	var event models.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("invalid event in cache: %w", err)
	}
	return &event, nil
}

// SetEvent stores an event record. Errors are ignored; the catalog is
// authoritative.
func (v *ValkeyClient) SetEvent(ctx context.Context, event models.Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		return
	}
	v.client.Set(ctx, eventKey(event.ID), raw, v.ttl)
}

// InvalidateEvent drops a cached event record after its minted counter
// changed
func (v *ValkeyClient) InvalidateEvent(ctx context.Context, eventID uint64) {
	v.client.Del(ctx, eventKey(eventID))
}

// GetTicketMetadata returns a cached metadata reference
func (v *ValkeyClient) GetTicketMetadata(ctx context.Context, ticketID uint64) (string, error) {
	ref, err := v.client.Get(ctx, metadataKey(ticketID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", fmt.Errorf("metadata not in cache")
		}
		return "", fmt.Errorf("cache lookup error: %w", err)
	}
	return ref, nil
}

// SetTicketMetadata stores a metadata reference. A ticket's event
// never changes, so no invalidation path is needed.
func (v *ValkeyClient) SetTicketMetadata(ctx context.Context, ticketID uint64, ref string) {
	v.client.Set(ctx, metadataKey(ticketID), ref, v.ttl)
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
