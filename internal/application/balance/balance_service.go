package balance

import (
	"context"

	"github.com/tuncanbit/ses/internal/domain"
)

type IBalanceService interface {
	// ComputeEarned derives a participant's total accrued earnings from the
	// prioritized source chain. Never negative.
	ComputeEarned(ctx context.Context, participantID string) (float64, error)
	// ComputeReserved sums amounts already committed against the
	// participant (approved and paid requests).
	ComputeReserved(ctx context.Context, participantID string) (float64, error)
	// Breakdown returns earned, reserved and available, each rounded to the
	// payment network's scale.
	Breakdown(ctx context.Context, participantID string) (domain.BalanceBreakdown, error)
}
