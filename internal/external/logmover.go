package external

import (
	"context"
	"log/slog"

	"gatepass/internal/models"
)

// LogMover is the fund mover used when no payment gateway is
// configured. It records transfers in the log and always succeeds.
// Development and local runs only.
type LogMover struct{}

func (LogMover) Transfer(ctx context.Context, to models.AccountID, amount uint64) error {
	slog.Info("simulated fund transfer", "to", to, "amount", amount)
	return nil
}
