package earningsrepo

import (
	"context"

	"github.com/tuncanbit/ses/internal/domain"
)

type IEarningsRepository interface {
	// GetCachedBalance returns the precomputed running total for a
	// participant, or nil when no usable cache row exists.
	GetCachedBalance(ctx context.Context, participantID string) (*float64, error)
	ListEntries(ctx context.Context, participantID string) ([]domain.EarningsEntry, error)
	ListDeliveredOrders(ctx context.Context, participantID string) ([]domain.OrderSnapshot, error)
}
