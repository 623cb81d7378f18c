package pnl

import "github.com/quantmill/bookback/market"

// openLot is an as-yet unmatched parcel from an opening fill.
type openLot struct {
	side     market.Side
	price    float64
	quantity float64
}

// fifoRealized matches each fill against per-symbol open lot queues,
// oldest first. A same-side fill enqueues a lot; an opposite-side
// fill consumes lots front-to-back, splitting the front lot on
// partial consumption. Any unmatched remainder of the incoming fill
// becomes a new open lot on its own side.
func fifoRealized(fills []market.Trade) ([]ClosedTrade, map[string][]openLot) {
	open := make(map[string][]openLot)
	var closed []ClosedTrade

	for _, t := range fills {
		queue := open[t.Symbol]

		if len(queue) == 0 || queue[0].side == t.Side {
			open[t.Symbol] = append(queue, openLot{side: t.Side, price: t.Price, quantity: t.Quantity})
			continue
		}

		remaining := t.Quantity
		for remaining > 0 && len(queue) > 0 {
			front := &queue[0]
			matched := remaining
			if front.quantity < matched {
				matched = front.quantity
			}

			// Sign is oriented by the closing side: buying back a short
			// profits when the open price is above, selling out a long
			// profits when the close price is above.
			var pnl float64
			if t.Side == market.Buy {
				pnl = (front.price - t.Price) * matched
			} else {
				pnl = (t.Price - front.price) * matched
			}

			closed = append(closed, ClosedTrade{
				OpenSide:   front.side,
				OpenPrice:  front.price,
				CloseSide:  t.Side,
				ClosePrice: t.Price,
				Quantity:   matched,
				PnL:        pnl,
			})

			remaining -= matched
			front.quantity -= matched
			if front.quantity == 0 {
				queue = queue[1:]
			}
		}

		if remaining > 0 {
			queue = append(queue, openLot{side: t.Side, price: t.Price, quantity: remaining})
		}

		if len(queue) == 0 {
			delete(open, t.Symbol)
		} else {
			open[t.Symbol] = queue
		}
	}

	return closed, open
}

// fifoUnrealized marks every remaining lot against the symbol's last
// traded price. Remaining quantity is signed across all symbols.
func fifoUnrealized(open map[string][]openLot, lastPrices map[string]float64) (float64, float64) {
	var unrealized, remaining float64
	for symbol, queue := range open {
		last := lastPrices[symbol]
		for _, l := range queue {
			if l.side == market.Buy {
				unrealized += (last - l.price) * l.quantity
				remaining += l.quantity
			} else {
				unrealized += (l.price - last) * l.quantity
				remaining -= l.quantity
			}
		}
	}
	return unrealized, remaining
}
