package market

import "errors"

// Error taxonomy shared across the engine. Callers wrap these with
// fmt.Errorf("%w: ...") so errors.Is keeps working through the stack.
var (
	// ErrDataLoading means a data source was unreadable. Fatal for a run.
	ErrDataLoading = errors.New("data loading error")

	// ErrInvalidOrderBook means a snapshot had unparsable price or
	// quantity fields. Fatal for a run; records are never skipped
	// silently.
	ErrInvalidOrderBook = errors.New("invalid order book")

	// ErrInvalidTradeParameters means bad configuration, caught before
	// a run starts.
	ErrInvalidTradeParameters = errors.New("invalid trade parameters")

	// ErrTradeNotFound means a status update referenced an unknown
	// trade id. The ledger recovers locally and reports a failure flag.
	ErrTradeNotFound = errors.New("trade not found")

	// ErrPositionLimitExceeded and ErrInsufficientMargin are reserved
	// for stricter execution policies; the default fill model treats
	// them as advisory.
	ErrPositionLimitExceeded = errors.New("position limit exceeded")
	ErrInsufficientMargin    = errors.New("insufficient margin")
)
