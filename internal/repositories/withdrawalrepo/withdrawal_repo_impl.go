package withdrawalrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/tuncanbit/ses/internal/domain"
)

type WithdrawalRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *sql.DB, logger zerolog.Logger) IWithdrawalRepository {
	return &WithdrawalRepository{
		db:     db,
		logger: logger,
	}
}

func (r *WithdrawalRepository) Create(ctx context.Context, request *domain.WithdrawalRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO withdrawal_requests (id, participant_id, amount, destination, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())`,
		request.ID, request.ParticipantID, request.Amount, request.Destination, request.Status,
	)
	if err != nil {
		r.logger.Err(err).Str("request_id", request.ID).Msg("Failed to create withdrawal request")
		return err
	}
	return nil
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, requestID string) (*domain.WithdrawalRequest, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, participant_id, amount, destination, status, note, transaction_id, created_at, updated_at
		FROM withdrawal_requests
		WHERE id = $1`,
		requestID,
	)

	var request domain.WithdrawalRequest
	var note, transactionID sql.NullString
	err := row.Scan(
		&request.ID,
		&request.ParticipantID,
		&request.Amount,
		&request.Destination,
		&request.Status,
		&note,
		&transactionID,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Err(err).Str("request_id", requestID).Msg("Failed to load withdrawal request")
		return nil, err
	}

	request.Note = note.String
	request.TransactionID = transactionID.String
	return &request, nil
}

func (r *WithdrawalRepository) SumByStatuses(ctx context.Context, participantID string, statuses ...domain.WithdrawalStatus) (float64, error) {
	states := make([]string, len(statuses))
	for i, s := range statuses {
		states[i] = string(s)
	}

	var total sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM withdrawal_requests
		WHERE participant_id = $1 AND status = ANY($2)`,
		participantID, pq.Array(states),
	).Scan(&total)
	if err != nil {
		r.logger.Err(err).Str("participant_id", participantID).Msg("Failed to sum withdrawal requests")
		return 0, err
	}
	return total.Float64, nil
}

func (r *WithdrawalRepository) UpdateIfStatus(ctx context.Context, requestID string, expected domain.WithdrawalStatus, update domain.WithdrawalUpdate) (bool, error) {
	var transactionID, note sql.NullString
	if update.TransactionID != nil {
		transactionID = sql.NullString{String: *update.TransactionID, Valid: true}
	}
	if update.Note != nil {
		note = sql.NullString{String: *update.Note, Valid: true}
	}
	var amt sql.NullFloat64
	if update.Amount != nil {
		amt = sql.NullFloat64{Float64: *update.Amount, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE withdrawal_requests
		SET status = $1,
		    amount = COALESCE($2, amount),
		    transaction_id = COALESCE($3, transaction_id),
		    note = COALESCE($4, note),
		    updated_at = now()
		WHERE id = $5 AND status = $6`,
		update.Status, amt, transactionID, note, requestID, expected,
	)
	if err != nil {
		r.logger.Err(err).Str("request_id", requestID).Msg("Failed to apply conditional update")
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *WithdrawalRepository) SetNote(ctx context.Context, requestID, note string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE withdrawal_requests
		SET note = $1, updated_at = now()
		WHERE id = $2`,
		note, requestID,
	)
	if err != nil {
		r.logger.Err(err).Str("request_id", requestID).Msg("Failed to update withdrawal note")
	}
	return err
}

func (r *WithdrawalRepository) CountRecentByParticipant(ctx context.Context, participantID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM withdrawal_requests
		WHERE participant_id = $1 AND created_at >= $2`,
		participantID, since,
	).Scan(&count)
	if err != nil {
		r.logger.Err(err).Str("participant_id", participantID).Msg("Failed to count recent withdrawal requests")
		return 0, err
	}
	return count, nil
}

func (r *WithdrawalRepository) HasRecentDuplicate(ctx context.Context, participantID, destination string, amount float64, since time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM withdrawal_requests
			WHERE participant_id = $1 AND destination = $2 AND amount = $3 AND created_at >= $4
		)`,
		participantID, destination, amount, since,
	).Scan(&exists)
	if err != nil {
		r.logger.Err(err).Str("participant_id", participantID).Msg("Failed to check for duplicate withdrawal request")
		return false, err
	}
	return exists, nil
}
