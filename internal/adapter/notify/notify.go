package notify

import (
	"context"
	"errors"

	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/port"
)

// Multi delivers an event to every notifier and joins their errors.
type Multi []port.Notifier

func (m Multi) Notify(ctx context.Context, event domain.OrderEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log writes each event to the standard logger.
type Log struct {
	Printf func(format string, args ...any)
}

func (l Log) Notify(ctx context.Context, event domain.OrderEvent) error {
	tx := event.Transaction
	if event.PreviousStatus != "" {
		l.Printf("order %s %s: %s -> %s", tx.TrackingNumber, event.Kind, event.PreviousStatus, tx.Status)
		return nil
	}
	l.Printf("order %s %s: %s", tx.TrackingNumber, event.Kind, tx.Status)
	return nil
}
