package domain

// SettleRequest is the inbound settlement call.
type SettleRequest struct {
	RequestID     string  `json:"request_id" binding:"required"`
	ParticipantID string  `json:"participant_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
	Destination   string  `json:"destination" binding:"required"`
}

type SettlementResult struct {
	TransactionID string  `json:"transaction_id"`
	AmountSettled float64 `json:"amount_settled"`
}

// IntakeRequest creates a pending withdrawal request row ahead of
// settlement.
type IntakeRequest struct {
	ParticipantID string  `json:"participant_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
	Destination   string  `json:"destination" binding:"required"`
}
