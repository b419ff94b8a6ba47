package domain

import (
	"fmt"
)

type RejectionReason string

const (
	RejectNotFound            RejectionReason = "not_found"
	RejectForbidden           RejectionReason = "forbidden"
	RejectAlreadyProcessed    RejectionReason = "already_processed"
	RejectAmountMismatch      RejectionReason = "amount_mismatch"
	RejectDestinationMismatch RejectionReason = "destination_mismatch"
	RejectInvalidDestination  RejectionReason = "invalid_destination"
	RejectInvalidAmount       RejectionReason = "invalid_amount"
	RejectRateLimited         RejectionReason = "rate_limited"
	RejectDuplicateRequest    RejectionReason = "duplicate_request"
)

// ValidationError is a synchronous rejection. It never implies a state
// change on the withdrawal request.
type ValidationError struct {
	Reason RejectionReason
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// InsufficientBalanceError rejects a settlement whose amount exceeds the
// participant's available balance.
type InsufficientBalanceError struct {
	Available float64
	Requested float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %.7f, requested %.7f", e.Available, e.Requested)
}

// ReconciliationError signals that the payment network accepted a transfer
// but the local terminal transition could not be confirmed. Money has
// moved; the request must be reconciled manually, never retried.
type ReconciliationError struct {
	RequestID     string
	TransactionID string
	Cause         error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("settlement for request %s needs reconciliation (tx %s)", e.RequestID, e.TransactionID)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Cause
}
