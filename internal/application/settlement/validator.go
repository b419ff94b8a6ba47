package settlement

import (
	"fmt"
	"math"

	"github.com/tuncanbit/ses/internal/domain"
	"github.com/tuncanbit/ses/pkg/amount"
)

// DestinationValidator checks whether an address is syntactically valid
// for the target payment network.
type DestinationValidator func(address string) bool

// ValidateRequest runs the ordered pre-settlement checks against the
// stored request. Pure; fails fast on the first violation. A nil request
// means the identifier resolved to nothing.
func ValidateRequest(
	request *domain.WithdrawalRequest,
	participantID string,
	requestAmount float64,
	destination string,
	minAmount float64,
	validDestination DestinationValidator,
) *domain.ValidationError {
	if request == nil {
		return &domain.ValidationError{Reason: domain.RejectNotFound, Detail: "withdrawal request does not exist"}
	}
	if request.ParticipantID != participantID {
		return &domain.ValidationError{Reason: domain.RejectForbidden, Detail: "request belongs to another participant"}
	}
	if request.Status != domain.WithdrawalStatusPending {
		return &domain.ValidationError{
			Reason: domain.RejectAlreadyProcessed,
			Detail: fmt.Sprintf("request is %s", request.Status),
		}
	}
	if request.Amount > 0 && !amount.Equal(request.Amount, requestAmount) {
		return &domain.ValidationError{
			Reason: domain.RejectAmountMismatch,
			Detail: fmt.Sprintf("stored amount %.7f does not match %.7f", request.Amount, requestAmount),
		}
	}
	if request.Destination != "" && request.Destination != destination {
		return &domain.ValidationError{Reason: domain.RejectDestinationMismatch, Detail: "stored destination does not match"}
	}
	if !validDestination(destination) {
		return &domain.ValidationError{Reason: domain.RejectInvalidDestination, Detail: "destination is not a valid account address"}
	}
	if math.IsNaN(requestAmount) || math.IsInf(requestAmount, 0) || requestAmount <= minAmount {
		return &domain.ValidationError{
			Reason: domain.RejectInvalidAmount,
			Detail: fmt.Sprintf("amount must exceed %.7f", minAmount),
		}
	}
	return nil
}
