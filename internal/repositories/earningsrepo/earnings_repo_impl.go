package earningsrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tuncanbit/ses/internal/domain"
)

// Orders are capped to bound a single balance derivation; participants do
// not accumulate more delivered orders than this between accrual runs.
const orderFetchLimit = 2000

type EarningsRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *sql.DB, logger zerolog.Logger) IEarningsRepository {
	return &EarningsRepository{
		db:     db,
		logger: logger,
	}
}

func (r *EarningsRepository) GetCachedBalance(ctx context.Context, participantID string) (*float64, error) {
	var balance sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `
		SELECT balance
		FROM balance_cache
		WHERE participant_id = $1`,
		participantID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Err(err).Str("participant_id", participantID).Msg("Failed to load cached balance")
		return nil, err
	}
	if !balance.Valid {
		return nil, nil
	}
	return &balance.Float64, nil
}

func (r *EarningsRepository) ListEntries(ctx context.Context, participantID string) ([]domain.EarningsEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, participant_id, amount, created_at
		FROM earnings_ledger
		WHERE participant_id = $1`,
		participantID,
	)
	if err != nil {
		r.logger.Err(err).Str("participant_id", participantID).Msg("Failed to load earnings entries")
		return nil, err
	}
	defer rows.Close()

	var entries []domain.EarningsEntry
	for rows.Next() {
		var entry domain.EarningsEntry
		var entryAmount sql.NullFloat64
		if err := rows.Scan(&entry.ID, &entry.ParticipantID, &entryAmount, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Amount = entryAmount.Float64
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *EarningsRepository) ListDeliveredOrders(ctx context.Context, participantID string) ([]domain.OrderSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, participant_id, status, gross_total, platform_fee, price, delivery_fee, source_total, source_fee, conversion_rate
		FROM delivery_orders
		WHERE participant_id = $1 AND status = 'delivered'
		LIMIT $2`,
		participantID, orderFetchLimit,
	)
	if err != nil {
		r.logger.Err(err).Str("participant_id", participantID).Msg("Failed to load delivered orders")
		return nil, err
	}
	defer rows.Close()

	var orders []domain.OrderSnapshot
	for rows.Next() {
		var order domain.OrderSnapshot
		var grossTotal, platformFee, price, deliveryFee, sourceTotal, sourceFee, conversionRate sql.NullFloat64
		if err := rows.Scan(
			&order.ID,
			&order.ParticipantID,
			&order.Status,
			&grossTotal,
			&platformFee,
			&price,
			&deliveryFee,
			&sourceTotal,
			&sourceFee,
			&conversionRate,
		); err != nil {
			return nil, err
		}
		order.GrossTotal = nullableFloat(grossTotal)
		order.PlatformFee = nullableFloat(platformFee)
		order.Price = nullableFloat(price)
		order.DeliveryFee = nullableFloat(deliveryFee)
		order.SourceTotal = nullableFloat(sourceTotal)
		order.SourceFee = nullableFloat(sourceFee)
		order.ConversionRate = nullableFloat(conversionRate)
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
