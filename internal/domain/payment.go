package domain

import (
	"fmt"
)

type PaymentErrorCode string

const (
	PaymentErrInsufficientNetworkFee PaymentErrorCode = "insufficient_network_fee"
	PaymentErrSourceUnderfunded      PaymentErrorCode = "source_underfunded"
	PaymentErrInvalidDestination     PaymentErrorCode = "invalid_or_inactive_destination"
	PaymentErrSequenceConflict       PaymentErrorCode = "sequence_conflict"
	PaymentErrNetworkUnreachable     PaymentErrorCode = "network_unreachable"
	PaymentErrUnknown                PaymentErrorCode = "unknown"
)

// PaymentError classifies a failed payment network interaction.
// UnknownOutcome marks submissions whose result was lost (timeout): the
// transfer may have been accepted, so the request must not be retried
// until reconciled.
type PaymentError struct {
	Code           PaymentErrorCode
	Detail         string
	UnknownOutcome bool
}

func (e *PaymentError) Error() string {
	if e.Detail == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Retryable reports whether the participant may safely resubmit.
// Fee spikes and sequence contention resolve on their own; an unreachable
// network is a transient or configuration problem. Underfunded source and
// bad destinations need operator action, and unknown outcomes risk a
// duplicate transfer.
func (e *PaymentError) Retryable() bool {
	if e.UnknownOutcome {
		return false
	}
	switch e.Code {
	case PaymentErrInsufficientNetworkFee, PaymentErrSequenceConflict, PaymentErrNetworkUnreachable:
		return true
	default:
		return false
	}
}

type PaymentResult struct {
	TransactionID string
}
