// Package pnl converts a run's filled trades into realized and
// unrealized profit-and-loss plus derived risk metrics.
//
// Two lot-matching methods are supported and intentionally kept as
// independent views: FIFO matches closing trades against the oldest
// open lots, Position realizes against a weighted-average cost basis.
// They agree on strictly alternating open/close sequences and are
// expected to diverge once multiple same-direction lots at different
// prices exist.
package pnl

import (
	"fmt"

	"github.com/quantmill/bookback/market"
)

// Method selects the lot-matching algorithm.
type Method string

const (
	FIFO     Method = "fifo"
	Position Method = "position"
)

// ParseMethod maps a user-supplied name onto a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case FIFO, Position:
		return Method(s), nil
	}
	return "", fmt.Errorf("%w: unknown pnl method %q (fifo, position)", market.ErrInvalidTradeParameters, s)
}

// ClosedTrade is one realized match between an opening and a closing
// fill. Immutable once created.
type ClosedTrade struct {
	OpenSide   market.Side
	OpenPrice  float64
	CloseSide  market.Side
	ClosePrice float64
	Quantity   float64
	PnL        float64
}

// Result is a fresh value per Calculate call. RemainingQty is signed,
// positive for net long.
type Result struct {
	RealizedPnL   float64
	UnrealizedPnL float64
	ClosedTrades  []ClosedTrade
	TotalFees     float64
	RemainingQty  float64
}

// Calculate computes P&L over the given trades with the selected
// method. Only trades with status "filled" participate; everything
// else is excluded up front. An empty (or fill-free) input yields a
// zero result. The computation is pure: identical inputs produce
// identical results.
//
// The method must be one of the Method constants; run user input
// through ParseMethod first. Anything else falls back to FIFO.
func Calculate(trades []market.Trade, method Method) Result {
	var filled []market.Trade
	for _, t := range trades {
		if t.Status == market.Filled {
			filled = append(filled, t)
		}
	}
	if len(filled) == 0 {
		return Result{}
	}

	lastPrices := lastFillPrices(filled)

	switch method {
	case Position:
		closed, open := positionRealized(filled)
		unrealized, remaining := positionUnrealized(open, lastPrices)
		return Result{
			RealizedPnL:   sumPnL(closed),
			UnrealizedPnL: unrealized,
			ClosedTrades:  closed,
			RemainingQty:  remaining,
		}
	default:
		closed, open := fifoRealized(filled)
		unrealized, remaining := fifoUnrealized(open, lastPrices)
		return Result{
			RealizedPnL:   sumPnL(closed),
			UnrealizedPnL: unrealized,
			ClosedTrades:  closed,
			RemainingQty:  remaining,
		}
	}
}

func sumPnL(closed []ClosedTrade) float64 {
	var total float64
	for _, c := range closed {
		total += c.PnL
	}
	return total
}

// lastFillPrices is the last traded price per symbol, the mark used
// for unrealized P&L.
func lastFillPrices(filled []market.Trade) map[string]float64 {
	out := make(map[string]float64)
	for _, t := range filled {
		out[t.Symbol] = t.Price
	}
	return out
}
