package pnl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantmill/bookback/market"
)

func filled(timeMs int64, side market.Side, price, qty float64) market.Trade {
	t := market.NewTrade(timeMs, "ETHUSDT", side, price, qty)
	t.Status = market.Filled
	return *t
}

func TestParseMethod(t *testing.T) {
	t.Parallel()

	m, err := ParseMethod("fifo")
	assert.NoError(t, err)
	assert.Equal(t, FIFO, m)

	m, err = ParseMethod("position")
	assert.NoError(t, err)
	assert.Equal(t, Position, m)

	_, err = ParseMethod("lifo")
	assert.ErrorIs(t, err, market.ErrInvalidTradeParameters)
}

func TestCalculateUnknownMethodFallsBackToFIFO(t *testing.T) {
	t.Parallel()

	trades := []market.Trade{
		filled(1, market.Buy, 100, 1),
		filled(2, market.Buy, 120, 1),
		filled(3, market.Sell, 110, 1),
	}

	assert.Equal(t, Calculate(trades, FIFO), Calculate(trades, Method("lifo")))
}

func TestCalculateEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Result{}, Calculate(nil, FIFO))

	// Non-filled trades never participate.
	pending := *market.NewTrade(1, "ETHUSDT", market.Buy, 100, 1)
	rejected := *market.NewTrade(2, "ETHUSDT", market.Sell, 101, 1)
	rejected.Status = market.Rejected

	assert.Equal(t, Result{}, Calculate([]market.Trade{pending, rejected}, FIFO))
	assert.Equal(t, Result{}, Calculate([]market.Trade{pending, rejected}, Position))
}

func TestCalculateRoundTrip(t *testing.T) {
	t.Parallel()

	trades := []market.Trade{
		filled(1, market.Buy, 100, 1),
		filled(2, market.Sell, 110, 1),
	}

	for _, method := range []Method{FIFO, Position} {
		got := Calculate(trades, method)
		assert.InDelta(t, 10.0, got.RealizedPnL, 1e-9)
		assert.InDelta(t, 0.0, got.UnrealizedPnL, 1e-9)
		assert.InDelta(t, 0.0, got.RemainingQty, 1e-9)
		assert.Len(t, got.ClosedTrades, 1)
		assert.Equal(t, market.Buy, got.ClosedTrades[0].OpenSide)
		assert.InDelta(t, 100.0, got.ClosedTrades[0].OpenPrice, 1e-9)
		assert.InDelta(t, 110.0, got.ClosedTrades[0].ClosePrice, 1e-9)
	}
}

func TestCalculateShortRoundTrip(t *testing.T) {
	t.Parallel()

	trades := []market.Trade{
		filled(1, market.Sell, 110, 1),
		filled(2, market.Buy, 100, 1),
	}

	for _, method := range []Method{FIFO, Position} {
		got := Calculate(trades, method)
		assert.InDelta(t, 10.0, got.RealizedPnL, 1e-9)
		assert.InDelta(t, 0.0, got.RemainingQty, 1e-9)
	}
}

func TestFIFOPartialClose(t *testing.T) {
	t.Parallel()

	trades := []market.Trade{
		filled(1, market.Buy, 100, 2),
		filled(2, market.Sell, 110, 0.5),
	}

	got := Calculate(trades, FIFO)
	assert.InDelta(t, 5.0, got.RealizedPnL, 1e-9)
	assert.InDelta(t, 1.5, got.RemainingQty, 1e-9)
	// 1.5 still open at 100, marked at the last fill price 110.
	assert.InDelta(t, 15.0, got.UnrealizedPnL, 1e-9)
}

func TestFIFOMatchesOldestFirst(t *testing.T) {
	t.Parallel()

	trades := []market.Trade{
		filled(1, market.Buy, 100, 1),
		filled(2, market.Buy, 120, 1),
		filled(3, market.Sell, 110, 1),
	}

	got := Calculate(trades, FIFO)
	// The sell consumes the 100 lot, not the 120 one.
	assert.Len(t, got.ClosedTrades, 1)
	assert.InDelta(t, 10.0, got.RealizedPnL, 1e-9)
	assert.InDelta(t, 100.0, got.ClosedTrades[0].OpenPrice, 1e-9)
	// Left open: 1 @ 120 marked at 110.
	assert.InDelta(t, -10.0, got.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 1.0, got.RemainingQty, 1e-9)
}

func TestFIFOCloseSpansLots(t *testing.T) {
	t.Parallel()

	trades := []market.Trade{
		filled(1, market.Buy, 100, 1),
		filled(2, market.Buy, 102, 1),
		filled(3, market.Sell, 104, 1.5),
	}

	got := Calculate(trades, FIFO)
	assert.Len(t, got.ClosedTrades, 2)
	// (104-100)*1 + (104-102)*0.5
	assert.InDelta(t, 5.0, got.RealizedPnL, 1e-9)
	assert.InDelta(t, 0.5, got.RemainingQty, 1e-9)
}

func TestPositionAverageCost(t *testing.T) {
	t.Parallel()

	trades := []market.Trade{
		filled(1, market.Buy, 100, 1),
		filled(2, market.Buy, 120, 1),
		filled(3, market.Sell, 110, 1),
	}

	got := Calculate(trades, Position)
	// Average cost 110: the sell realizes nothing.
	assert.InDelta(t, 0.0, got.RealizedPnL, 1e-9)
	assert.InDelta(t, 1.0, got.RemainingQty, 1e-9)
	// 1 left at avg 110, marked at 110.
	assert.InDelta(t, 0.0, got.UnrealizedPnL, 1e-9)
}

func TestMethodsDivergeOnMultipleLots(t *testing.T) {
	t.Parallel()

	trades := []market.Trade{
		filled(1, market.Buy, 100, 1),
		filled(2, market.Buy, 120, 1),
		filled(3, market.Sell, 110, 1),
	}

	fifo := Calculate(trades, FIFO)
	position := Calculate(trades, Position)

	// Same total economics, different realized/unrealized split.
	assert.InDelta(t, fifo.RealizedPnL+fifo.UnrealizedPnL,
		position.RealizedPnL+position.UnrealizedPnL, 1e-9)
	assert.NotEqual(t, fifo.RealizedPnL, position.RealizedPnL)
}

func TestPositionFlipThroughZero(t *testing.T) {
	t.Parallel()

	trades := []market.Trade{
		filled(1, market.Buy, 100, 1),
		filled(2, market.Sell, 110, 3),
	}

	got := Calculate(trades, Position)
	// 1 closed at +10, 2 opened short at 110.
	assert.InDelta(t, 10.0, got.RealizedPnL, 1e-9)
	assert.InDelta(t, -2.0, got.RemainingQty, 1e-9)
	assert.InDelta(t, 0.0, got.UnrealizedPnL, 1e-9) // marked at 110
}

func TestFIFOFlipThroughZero(t *testing.T) {
	t.Parallel()

	trades := []market.Trade{
		filled(1, market.Buy, 100, 1),
		filled(2, market.Sell, 110, 3),
		filled(3, market.Buy, 105, 1),
	}

	got := Calculate(trades, FIFO)
	// +10 on the long, then +5 buying back 1 of the 2 shorts at 110.
	assert.InDelta(t, 15.0, got.RealizedPnL, 1e-9)
	assert.InDelta(t, -1.0, got.RemainingQty, 1e-9)
	// 1 short at 110, marked at 105.
	assert.InDelta(t, 5.0, got.UnrealizedPnL, 1e-9)
}

func TestCalculateMultipleSymbols(t *testing.T) {
	t.Parallel()

	eth := filled(1, market.Buy, 100, 1)
	btc := filled(2, market.Buy, 50_000, 0.1)
	btc.Symbol = "BTCUSDT"
	ethClose := filled(3, market.Sell, 105, 1)
	btcClose := filled(4, market.Sell, 51_000, 0.1)
	btcClose.Symbol = "BTCUSDT"

	got := Calculate([]market.Trade{eth, btc, ethClose, btcClose}, FIFO)
	assert.InDelta(t, 5.0+100.0, got.RealizedPnL, 1e-9)
	assert.InDelta(t, 0.0, got.RemainingQty, 1e-9)
}

func TestCalculateIsPure(t *testing.T) {
	t.Parallel()

	trades := []market.Trade{
		filled(1, market.Buy, 100, 2),
		filled(2, market.Sell, 103, 1),
		filled(3, market.Sell, 99, 0.5),
		filled(4, market.Buy, 101, 1),
	}

	first := Calculate(trades, FIFO)
	second := Calculate(trades, FIFO)
	assert.Equal(t, first, second)
}
