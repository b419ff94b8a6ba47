package withdrawalrepo

import (
	"context"
	"time"

	"github.com/tuncanbit/ses/internal/domain"
)

type IWithdrawalRepository interface {
	Create(ctx context.Context, request *domain.WithdrawalRequest) error
	GetByID(ctx context.Context, requestID string) (*domain.WithdrawalRequest, error)
	SumByStatuses(ctx context.Context, participantID string, statuses ...domain.WithdrawalStatus) (float64, error)
	// UpdateIfStatus applies update only when the stored status still equals
	// expected, in a single atomic round-trip. Returns whether a row changed.
	UpdateIfStatus(ctx context.Context, requestID string, expected domain.WithdrawalStatus, update domain.WithdrawalUpdate) (bool, error)
	// SetNote writes a diagnostic note regardless of the row's status, for
	// annotations that must land even after a lost status race.
	SetNote(ctx context.Context, requestID, note string) error
	CountRecentByParticipant(ctx context.Context, participantID string, since time.Time) (int, error)
	HasRecentDuplicate(ctx context.Context, participantID, destination string, amount float64, since time.Time) (bool, error)
}
