package domain

import (
	"time"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusPaid     WithdrawalStatus = "paid"
	WithdrawalStatusFailed   WithdrawalStatus = "failed"
)

// ReservedStatuses are the statuses whose amounts count against a
// participant's available balance. Paid requests stay reserved forever:
// once paid they are a permanent reduction, not a temporary hold.
// Approved covers requests currently claimed by an in-flight settlement.
var ReservedStatuses = []WithdrawalStatus{WithdrawalStatusApproved, WithdrawalStatusPaid}

// WithdrawalRequest is the central mutable entity of the settlement engine.
// A request leaves pending at most once; rows are never deleted.
type WithdrawalRequest struct {
	ID            string           `json:"id" db:"id"`
	ParticipantID string           `json:"participant_id" db:"participant_id"`
	Amount        float64          `json:"amount" db:"amount"`
	Destination   string           `json:"destination" db:"destination"`
	Status        WithdrawalStatus `json:"status" db:"status"`
	Note          string           `json:"note,omitempty" db:"note"`
	TransactionID string           `json:"transaction_id,omitempty" db:"transaction_id"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// WithdrawalUpdate carries the fields a conditional status transition may
// set. Nil pointers leave the stored value untouched.
type WithdrawalUpdate struct {
	Status        WithdrawalStatus
	Amount        *float64
	TransactionID *string
	Note          *string
}
