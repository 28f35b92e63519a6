package domain

import "github.com/shopspring/decimal"

// TransferParams is the input data for a transfer between two accounts.
type TransferParams struct {
	FromAccountID int64           `json:"from_id"`
	ToAccountID   int64           `json:"to_id"`
	Amount        decimal.Decimal `json:"amount"` // must be positive
}

// TransferResult holds both accounts as they are after the transfer.
type TransferResult struct {
	FromAccount Account `json:"account"`
	ToAccount   Account `json:"to_account"`
}
