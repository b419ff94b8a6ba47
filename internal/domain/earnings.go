package domain

import (
	"time"
)

// EarningsEntry is one explicit accrual row for a participant, written by
// an upstream business process. Read-only here.
type EarningsEntry struct {
	ID            string    `json:"id" db:"id"`
	ParticipantID string    `json:"participant_id" db:"participant_id"`
	Amount        float64   `json:"amount" db:"amount"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// OrderSnapshot is a completed delivery order from which earnings can be
// derived when no cached balance or ledger entries exist. GrossTotal and
// PlatformFee are denominated in the target asset; Price, DeliveryFee,
// SourceTotal and SourceFee are in the source currency and need
// ConversionRate to translate. Pointers distinguish absent columns from
// explicit zeros.
type OrderSnapshot struct {
	ID             string   `json:"id" db:"id"`
	ParticipantID  string   `json:"participant_id" db:"participant_id"`
	Status         string   `json:"status" db:"status"`
	GrossTotal     *float64 `json:"gross_total,omitempty" db:"gross_total"`
	PlatformFee    *float64 `json:"platform_fee,omitempty" db:"platform_fee"`
	Price          *float64 `json:"price,omitempty" db:"price"`
	DeliveryFee    *float64 `json:"delivery_fee,omitempty" db:"delivery_fee"`
	SourceTotal    *float64 `json:"source_total,omitempty" db:"source_total"`
	SourceFee      *float64 `json:"source_fee,omitempty" db:"source_fee"`
	ConversionRate *float64 `json:"conversion_rate,omitempty" db:"conversion_rate"`
}

type BalanceBreakdown struct {
	Earned    float64 `json:"earned"`
	Reserved  float64 `json:"reserved"`
	Available float64 `json:"available"`
}
