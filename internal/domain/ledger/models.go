package ledger

import (
	"time"
)

// Transaction is a single ledger entry as read from the transaction store,
// with its category name already joined in. Transactions are externally
// owned: this service only ever reads them.
//
// Amount is in signed minor units (cents). The sign convention (debits
// negative vs. positive) belongs to the provider; detection works on
// magnitudes and never depends on it.
type Transaction struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"userId"`
	CategoryID   int64     `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
	Amount       int64     `json:"amount"`
	Date         time.Time `json:"date"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
