// Package strategy holds the decision engines driven by the replay
// loop. A strategy sees one order book snapshot at a time and may emit
// at most one trade proposal per snapshot.
package strategy

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quantmill/bookback/market"
)

// Strategy is the contract the replay loop drives.
type Strategy interface {
	// Propose may return nil when the snapshot warrants no action.
	Propose(book market.OrderBook) *market.Trade

	// OnExecution is called for every executed proposal, filled or not,
	// so the strategy can update inventory only on fills.
	OnExecution(t *market.Trade, filled bool)

	Name() string

	// PositionOf is the strategy's net signed inventory for a symbol.
	PositionOf(symbol string) float64

	// Reset clears all rolling state.
	Reset()
}

// Noop proposes nothing. Baseline for wiring tests.
type Noop struct{}

func (Noop) Propose(market.OrderBook) *market.Trade { return nil }
func (Noop) OnExecution(*market.Trade, bool)        {}
func (Noop) Name() string                           { return "noop" }
func (Noop) PositionOf(string) float64              { return 0 }
func (Noop) Reset()                                 {}

// ByName builds a strategy from its configured name.
func ByName(name, symbol string, cfg MakerConfig, log *zap.Logger) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return Noop{}, nil
	case "market-maker", "maker", "mm":
		return NewMarketMaker(symbol, cfg, log)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q (supported: noop, market-maker)",
			market.ErrInvalidTradeParameters, name)
	}
}
