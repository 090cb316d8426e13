package funding

import "time"

// AmountRequest carries the amount for a deposit or withdrawal, in the
// smallest currency unit.
type AmountRequest struct {
	Amount int64 `json:"amount"`
}

// FundingResponse represents the API response for funding actions.
type FundingResponse struct {
	TransactionID int64     `json:"transaction_id"`
	WalletID      string    `json:"wallet_id"`
	Type          string    `json:"type"`
	Amount        int64     `json:"amount"`
	Balance       int64     `json:"balance"`
	CompletedAt   time.Time `json:"completed_at"`
}
