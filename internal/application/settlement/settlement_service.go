package settlement

import (
	"context"

	"github.com/tuncanbit/ses/internal/domain"
)

// IPaymentGateway is the payment network boundary: move funds, return the
// network transaction identifier or a classified *domain.PaymentError.
type IPaymentGateway interface {
	Execute(ctx context.Context, destination string, amount float64) (string, error)
}

type ISettlementService interface {
	// Settle validates, debits and externally transfers funds for one
	// withdrawal request. At most one successful payment is executed per
	// request identifier.
	Settle(ctx context.Context, req domain.SettleRequest) (*domain.SettlementResult, error)
	// Intake creates the pending request row settlement later operates on.
	Intake(ctx context.Context, req domain.IntakeRequest) (*domain.WithdrawalRequest, error)
}
