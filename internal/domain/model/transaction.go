package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryPageSize is the backend's fixed page size for transaction history.
const HistoryPageSize = 10

// Transaction is one successful payment. Amount arrives as a decimal string.
type Transaction struct {
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// TransactionPage is the backend's offset-paginated envelope.
type TransactionPage struct {
	Count    int           `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  []Transaction `json:"results"`
}

// TotalPages returns ceil(count / pageSize). A non-positive size yields 0.
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// HistoryState is the controller's view of the payment history: the
// current page only, never a cache of earlier pages.
type HistoryState struct {
	Page    int           `json:"page"`
	Loading bool          `json:"loading"`
	Count   int           `json:"count"`
	Results []Transaction `json:"results"`
}

func (h HistoryState) TotalPages() int { return TotalPages(h.Count, HistoryPageSize) }

func (h HistoryState) Empty() bool { return len(h.Results) == 0 }
