package settlement

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tuncanbit/ses/internal/application/balance"
	"github.com/tuncanbit/ses/internal/domain"
	"github.com/tuncanbit/ses/internal/repositories/withdrawalrepo"
	"github.com/tuncanbit/ses/pkg/amount"
	"github.com/tuncanbit/ses/pkg/config"
)

type settlementService struct {
	withdrawals      withdrawalrepo.IWithdrawalRepository
	balances         balance.IBalanceService
	gateway          IPaymentGateway
	validDestination DestinationValidator
	cfg              config.SettlementConfig
	logger           zerolog.Logger
}

func NewSettlementService(
	withdrawals withdrawalrepo.IWithdrawalRepository,
	balances balance.IBalanceService,
	gateway IPaymentGateway,
	validDestination DestinationValidator,
	cfg config.SettlementConfig,
	logger zerolog.Logger,
) ISettlementService {
	return &settlementService{
		withdrawals:      withdrawals,
		balances:         balances,
		gateway:          gateway,
		validDestination: validDestination,
		cfg:              cfg,
		logger:           logger,
	}
}

// Settle drives the request through the state machine:
//
//	pending -> approved -> paid
//	pending -> approved -> pending  (insufficient balance, retryable payment failure)
//	pending -> approved -> failed   (non-retryable payment failure)
//
// The approved hop is a claim taken with a conditional update, so two
// concurrent attempts on one request race on the claim and only the
// winner ever reaches the payment network.
func (s *settlementService) Settle(ctx context.Context, req domain.SettleRequest) (*domain.SettlementResult, error) {
	attemptID := uuid.New().String()
	log := s.logger.With().
		Str("attempt_id", attemptID).
		Str("request_id", req.RequestID).
		Str("participant_id", req.ParticipantID).
		Logger()

	request, err := s.withdrawals.GetByID(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}

	if verr := ValidateRequest(request, req.ParticipantID, req.Amount, req.Destination, s.cfg.MinWithdrawal, s.validDestination); verr != nil {
		// Ownership and tamper rejections are security-relevant.
		log.Warn().Str("reason", string(verr.Reason)).Msg("Settlement rejected by validation")
		return nil, verr
	}

	// Claim the request before anything else can act on it. Losing the
	// claim means another attempt is already processing (or processed)
	// this request, so duplicates never reach the payment network.
	// A row taken in without an amount carries no hold of its own, so the
	// claim pins the requested amount onto it; the reservation sum below
	// then counts exactly what this settlement will pay out.
	hold := request.Amount
	claimUpdate := domain.WithdrawalUpdate{Status: domain.WithdrawalStatusApproved}
	if hold <= 0 {
		hold = amount.Round7(req.Amount)
		claimUpdate.Amount = &hold
	}
	claimed, err := s.withdrawals.UpdateIfStatus(ctx, req.RequestID, domain.WithdrawalStatusPending, claimUpdate)
	if err != nil {
		return nil, err
	}
	if !claimed {
		log.Warn().Msg("Settlement lost the claim race")
		return nil, &domain.ValidationError{Reason: domain.RejectAlreadyProcessed, Detail: "request is already being processed"}
	}

	earned, err := s.balances.ComputeEarned(ctx, req.ParticipantID)
	if err != nil {
		s.releaseClaim(ctx, log, req.RequestID)
		return nil, err
	}
	reserved, err := s.balances.ComputeReserved(ctx, req.ParticipantID)
	if err != nil {
		s.releaseClaim(ctx, log, req.RequestID)
		return nil, err
	}

	// The claim itself is counted in reserved; availability for this
	// request excludes its own hold.
	available := amount.ClampNonNegative(earned - (reserved - hold))
	if !amount.GTE(available, req.Amount) {
		s.releaseClaim(ctx, log, req.RequestID)
		log.Info().
			Float64("available", available).
			Float64("requested", req.Amount).
			Msg("Settlement rejected: insufficient balance")
		return nil, &domain.InsufficientBalanceError{Available: amount.Round7(available), Requested: req.Amount}
	}

	payCtx, cancel := context.WithTimeout(ctx, s.cfg.PaymentTimeout)
	defer cancel()

	transactionID, payErr := s.gateway.Execute(payCtx, req.Destination, req.Amount)
	if payErr != nil {
		return nil, s.recordPaymentFailure(ctx, log, req.RequestID, payErr)
	}

	paid, err := s.withdrawals.UpdateIfStatus(ctx, req.RequestID, domain.WithdrawalStatusApproved,
		domain.WithdrawalUpdate{Status: domain.WithdrawalStatusPaid, TransactionID: &transactionID})
	if err != nil || !paid {
		// The transfer went out but the local transition could not be
		// confirmed. Never swallowed: operations must reconcile by hand.
		// The note is written unconditionally so the transaction id
		// survives on the row whatever state it ended up in.
		log.Error().
			Err(err).
			Str("transaction_id", transactionID).
			Bool("applied", paid).
			Msg("RECONCILIATION REQUIRED: payment sent but request not marked paid")
		if nerr := s.withdrawals.SetNote(ctx, req.RequestID, "settled on network as "+transactionID+"; local state requires reconciliation"); nerr != nil {
			log.Error().Err(nerr).Msg("Failed to record reconciliation note")
		}
		return nil, &domain.ReconciliationError{RequestID: req.RequestID, TransactionID: transactionID, Cause: err}
	}

	log.Info().
		Str("transaction_id", transactionID).
		Float64("amount", req.Amount).
		Msg("Settlement completed")
	return &domain.SettlementResult{
		TransactionID: transactionID,
		AmountSettled: amount.Round7(req.Amount),
	}, nil
}

// releaseClaim returns a claimed request to pending after a rejection
// that must leave no state behind.
func (s *settlementService) releaseClaim(ctx context.Context, log zerolog.Logger, requestID string) {
	released, err := s.withdrawals.UpdateIfStatus(ctx, requestID, domain.WithdrawalStatusApproved,
		domain.WithdrawalUpdate{Status: domain.WithdrawalStatusPending})
	if err != nil || !released {
		log.Error().Err(err).Bool("released", released).Msg("Failed to release settlement claim")
	}
}

// recordPaymentFailure releases or terminates the claim depending on the
// failure class. Recoverable failures (fee spikes, sequence contention,
// unreachable network, an underfunded custodial wallet awaiting top-up)
// return the request to pending with a diagnostic note so it can be
// settled again without re-intake; bad destinations, unclassifiable
// errors and unknown outcomes are terminal.
func (s *settlementService) recordPaymentFailure(ctx context.Context, log zerolog.Logger, requestID string, payErr error) error {
	note := payErr.Error()
	nextStatus := domain.WithdrawalStatusFailed

	var perr *domain.PaymentError
	if errors.As(payErr, &perr) {
		switch {
		case perr.UnknownOutcome:
			log.Error().
				Str("classification", string(perr.Code)).
				Msg("RECONCILIATION REQUIRED: payment outcome unknown")
		case perr.Code == domain.PaymentErrInvalidDestination, perr.Code == domain.PaymentErrUnknown:
			// terminal
		default:
			nextStatus = domain.WithdrawalStatusPending
		}
	}

	applied, err := s.withdrawals.UpdateIfStatus(ctx, requestID, domain.WithdrawalStatusApproved,
		domain.WithdrawalUpdate{Status: nextStatus, Note: &note})
	if err != nil {
		log.Error().Err(err).Msg("Failed to record payment failure")
	} else if !applied {
		log.Error().Str("note", note).Msg("Claimed request changed state underneath failure handling")
	}

	log.Warn().
		Str("status", string(nextStatus)).
		Str("note", note).
		Msg("Payment failed")
	return payErr
}

// Intake creates a pending withdrawal request once the abuse guards
// pass: a per-participant attempt budget and a short identical-request
// window.
func (s *settlementService) Intake(ctx context.Context, req domain.IntakeRequest) (*domain.WithdrawalRequest, error) {
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount <= s.cfg.MinWithdrawal {
		return nil, &domain.ValidationError{Reason: domain.RejectInvalidAmount}
	}
	if !s.validDestination(req.Destination) {
		return nil, &domain.ValidationError{Reason: domain.RejectInvalidDestination}
	}

	now := time.Now()
	recent, err := s.withdrawals.CountRecentByParticipant(ctx, req.ParticipantID, now.Add(-s.cfg.RateLimitWindow))
	if err != nil {
		return nil, err
	}
	if recent >= s.cfg.RateLimitMax {
		s.logger.Warn().Str("participant_id", req.ParticipantID).Msg("Withdrawal intake rate limited")
		return nil, &domain.ValidationError{Reason: domain.RejectRateLimited}
	}

	duplicate, err := s.withdrawals.HasRecentDuplicate(ctx, req.ParticipantID, req.Destination, req.Amount, now.Add(-s.cfg.DuplicateWindow))
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, &domain.ValidationError{Reason: domain.RejectDuplicateRequest}
	}

	request := &domain.WithdrawalRequest{
		ID:            uuid.New().String(),
		ParticipantID: req.ParticipantID,
		Amount:        amount.Round7(req.Amount),
		Destination:   req.Destination,
		Status:        domain.WithdrawalStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.withdrawals.Create(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("request_id", request.ID).
		Str("participant_id", req.ParticipantID).
		Float64("amount", request.Amount).
		Msg("Withdrawal request created")
	return request, nil
}
