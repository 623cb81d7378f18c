package market

import "github.com/quantmill/bookback/internal/id"

// Side of a trade. Stored as a string so journal rows and JSONL dumps
// stay human-readable.
type Side string

const (
	Buy  Side = "Buy"
	Sell Side = "Sell"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Status of a trade. The only legal transition is Pending to exactly
// one of Filled, Rejected or Unfilled.
type Status string

const (
	Pending  Status = "pending"
	Filled   Status = "filled"
	Rejected Status = "rejected"
	Unfilled Status = "unfilled"
)

// Trade is a single proposal emitted by a strategy. The execution
// simulator owns the status and slippage-adjusted price; the ledger
// owns the recorded copy and only ever corrects status.
type Trade struct {
	ID       string
	Time     int64 // epoch milliseconds
	Symbol   string
	Side     Side
	Price    float64
	Quantity float64
	Status   Status
}

// NewTrade creates a pending trade with a fresh time-sortable id.
func NewTrade(timeMs int64, symbol string, side Side, price, quantity float64) *Trade {
	return &Trade{
		ID:       id.New(),
		Time:     timeMs,
		Symbol:   symbol,
		Side:     side,
		Price:    price,
		Quantity: quantity,
		Status:   Pending,
	}
}
