package port

import (
	"context"

	"github.com/rl1809/micro-shop/internal/core/domain"
)

type Notifier interface {
	Notify(ctx context.Context, event domain.OrderEvent) error
}
