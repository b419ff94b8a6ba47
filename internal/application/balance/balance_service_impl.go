package balance

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/tuncanbit/ses/internal/domain"
	"github.com/tuncanbit/ses/internal/repositories/earningsrepo"
	"github.com/tuncanbit/ses/internal/repositories/withdrawalrepo"
	"github.com/tuncanbit/ses/pkg/amount"
)

// earningsSource is one named strategy in the accrual chain. ok reports
// whether the source yielded usable data; the chain stops at the first ok.
type earningsSource struct {
	name string
	load func(ctx context.Context, participantID string) (float64, bool, error)
}

type balanceService struct {
	sources     []earningsSource
	withdrawals withdrawalrepo.IWithdrawalRepository
	logger      zerolog.Logger
}

func NewBalanceService(
	earnings earningsrepo.IEarningsRepository,
	withdrawals withdrawalrepo.IWithdrawalRepository,
	logger zerolog.Logger,
) IBalanceService {
	s := &balanceService{
		withdrawals: withdrawals,
		logger:      logger,
	}

	// Accrual sources in strict priority order. Older deployments only have
	// order snapshots; newer ones add the ledger and then the cache. The
	// chain degrades without fabricating earnings from incomplete data.
	s.sources = []earningsSource{
		{name: "cached_balance", load: func(ctx context.Context, id string) (float64, bool, error) {
			cached, err := earnings.GetCachedBalance(ctx, id)
			if err != nil {
				return 0, false, err
			}
			if cached == nil {
				return 0, false, nil
			}
			return *cached, true, nil
		}},
		{name: "ledger_entries", load: func(ctx context.Context, id string) (float64, bool, error) {
			entries, err := earnings.ListEntries(ctx, id)
			if err != nil {
				return 0, false, err
			}
			if len(entries) == 0 {
				return 0, false, nil
			}
			var total float64
			for _, entry := range entries {
				total += amount.ToFloat(entry.Amount)
			}
			return total, true, nil
		}},
		{name: "order_snapshots", load: func(ctx context.Context, id string) (float64, bool, error) {
			orders, err := earnings.ListDeliveredOrders(ctx, id)
			if err != nil {
				return 0, false, err
			}
			var total float64
			for _, order := range orders {
				total += orderEarnings(order)
			}
			return total, true, nil
		}},
	}

	return s
}

func (s *balanceService) ComputeEarned(ctx context.Context, participantID string) (float64, error) {
	var lastErr error
	for i, source := range s.sources {
		earned, ok, err := source.load(ctx, participantID)
		if err != nil {
			// A broken source must not discard legitimately earned amounts
			// a later source can still account for.
			lastErr = err
			s.logger.Warn().
				Err(err).
				Str("participant_id", participantID).
				Str("source", source.name).
				Msg("Earnings source failed, trying next")
			continue
		}
		if !ok {
			continue
		}
		if i > 0 {
			s.logger.Debug().
				Str("participant_id", participantID).
				Str("source", source.name).
				Msg("Earnings derived from fallback source")
		}
		return amount.ClampNonNegative(earned), nil
	}
	if lastErr != nil {
		return 0, lastErr
	}
	return 0, nil
}

func (s *balanceService) ComputeReserved(ctx context.Context, participantID string) (float64, error) {
	reserved, err := s.withdrawals.SumByStatuses(ctx, participantID, domain.ReservedStatuses...)
	if err != nil {
		return 0, err
	}
	return amount.ClampNonNegative(reserved), nil
}

func (s *balanceService) Breakdown(ctx context.Context, participantID string) (domain.BalanceBreakdown, error) {
	earned, err := s.ComputeEarned(ctx, participantID)
	if err != nil {
		return domain.BalanceBreakdown{}, err
	}
	reserved, err := s.ComputeReserved(ctx, participantID)
	if err != nil {
		return domain.BalanceBreakdown{}, err
	}
	return domain.BalanceBreakdown{
		Earned:    amount.Round7(earned),
		Reserved:  amount.Round7(reserved),
		Available: amount.Round7(amount.ClampNonNegative(earned - reserved)),
	}, nil
}

// orderEarnings computes the payout one delivered order contributes.
// Snapshots priced in the target asset pay gross minus the platform fee.
// Source-currency orders pay price plus delivery fee, or the order's
// source-currency total minus its fee when neither was recorded, then
// translate through the embedded rate; with no usable base or rate the
// order contributes nothing rather than a fabricated amount.
func orderEarnings(order domain.OrderSnapshot) float64 {
	gross := amount.ToFloat(order.GrossTotal)
	if gross > 0 {
		return math.Max(0, gross-amount.ToFloat(order.PlatformFee))
	}

	price := amount.ToFloat(order.Price)
	deliveryFee := amount.ToFloat(order.DeliveryFee)
	base := price + deliveryFee
	if price == 0 && deliveryFee == 0 {
		base = math.Max(0, amount.ToFloat(order.SourceTotal)-amount.ToFloat(order.SourceFee))
	}
	rate := amount.ToFloat(order.ConversionRate)
	if base > 0 && rate > 0 {
		return base / rate
	}
	return 0
}
