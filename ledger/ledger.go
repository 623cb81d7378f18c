// Package ledger is the append-only record of a single backtest run:
// every proposal the strategy emitted and every snapshot it acted on.
package ledger

import (
	"go.uber.org/zap"

	"github.com/quantmill/bookback/market"
)

// Ledger is owned by exactly one replay loop while the run is live.
// Accounting reads it only after the run finishes. Trades are stored
// by value; the single mutation allowed after append is the status
// transition out of pending.
type Ledger struct {
	trades []market.Trade
	books  []market.OrderBook
	log    *zap.Logger
}

func New(log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{log: log}
}

// AddTrade appends a copy of the proposal.
func (l *Ledger) AddTrade(t market.Trade) {
	l.trades = append(l.trades, t)
}

// AddBook appends a snapshot.
func (l *Ledger) AddBook(b market.OrderBook) {
	l.books = append(l.books, b)
}

// ChangeStatus applies the one allowed transition: pending to a
// terminal status. An unknown id or an already-settled trade is
// logged and reported as false; this is the only locally recovered
// error in the engine.
func (l *Ledger) ChangeStatus(tradeID string, status market.Status) bool {
	for i := range l.trades {
		if l.trades[i].ID != tradeID {
			continue
		}
		if l.trades[i].Status != market.Pending {
			l.log.Warn("trade already settled",
				zap.String("trade_id", tradeID),
				zap.String("status", string(l.trades[i].Status)),
			)
			return false
		}
		l.trades[i].Status = status
		return true
	}
	l.log.Warn("trade not found", zap.String("trade_id", tradeID))
	return false
}

// AllTrades returns every recorded proposal in order.
func (l *Ledger) AllTrades() []market.Trade {
	out := make([]market.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// FilledTrades returns only fills, in order.
func (l *Ledger) FilledTrades() []market.Trade {
	var out []market.Trade
	for _, t := range l.trades {
		if t.Status == market.Filled {
			out = append(out, t)
		}
	}
	return out
}

// FailedTrades returns everything that did not fill: rejected,
// unfilled and still-pending records.
func (l *Ledger) FailedTrades() []market.Trade {
	var out []market.Trade
	for _, t := range l.trades {
		if t.Status != market.Filled {
			out = append(out, t)
		}
	}
	return out
}

// PositionOf is the net filled quantity for a symbol, positive long.
func (l *Ledger) PositionOf(symbol string) float64 {
	var pos float64
	for _, t := range l.trades {
		if t.Symbol != symbol || t.Status != market.Filled {
			continue
		}
		if t.Side == market.Buy {
			pos += t.Quantity
		} else {
			pos -= t.Quantity
		}
	}
	return pos
}

// LastFillAge is the time in milliseconds between nowMs and the most
// recent fill for symbol, 0 when the symbol has no fills.
func (l *Ledger) LastFillAge(symbol string, nowMs int64) int64 {
	for i := len(l.trades) - 1; i >= 0; i-- {
		t := l.trades[i]
		if t.Symbol == symbol && t.Status == market.Filled {
			return nowMs - t.Time
		}
	}
	return 0
}

// Books returns every recorded snapshot in order.
func (l *Ledger) Books() []market.OrderBook {
	out := make([]market.OrderBook, len(l.books))
	copy(out, l.books)
	return out
}

// Len is the number of recorded trades.
func (l *Ledger) Len() int { return len(l.trades) }
