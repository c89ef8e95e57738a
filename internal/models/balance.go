package models

// Balance is the account balance of a user.
type Balance struct {
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency,omitempty"`
}

// FillupRequest tops up a user's balance.
type FillupRequest struct {
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
}

// FillupResult is the outcome of a top up. Balance is nil when the
// service did not report the new balance.
type FillupResult struct {
	Balance       *float64 `json:"balance,omitempty"`
	TransactionID string   `json:"transactionId,omitempty"`
}
