package pnl

import "github.com/quantmill/bookback/market"

// netPosition is the average-cost aggregate for one symbol. Quantity
// is signed, positive long.
type netPosition struct {
	quantity  float64
	avgPrice  float64
	totalCost float64
}

// positionRealized tracks one aggregated position per symbol. Fills
// in the position's direction fold into the weighted average price;
// opposing fills realize P&L against the current average, and any
// excess beyond the position flips it to the new side at the fill
// price.
func positionRealized(fills []market.Trade) ([]ClosedTrade, map[string]*netPosition) {
	positions := make(map[string]*netPosition)
	var closed []ClosedTrade

	for _, t := range fills {
		pos := positions[t.Symbol]
		if pos == nil {
			pos = &netPosition{}
			positions[t.Symbol] = pos
		}

		signed := t.Quantity
		if t.Side == market.Sell {
			signed = -t.Quantity
		}

		switch {
		case pos.quantity == 0:
			pos.quantity = signed
			pos.avgPrice = t.Price
			pos.totalCost = t.Price * t.Quantity

		case sameDirection(pos.quantity, signed):
			newQty := pos.quantity + signed
			pos.totalCost += t.Price * t.Quantity
			pos.avgPrice = pos.totalCost / abs(newQty)
			pos.quantity = newQty

		default:
			remaining := t.Quantity

			if pos.quantity > 0 {
				matched := min(remaining, pos.quantity)
				pnl := (t.Price - pos.avgPrice) * matched
				pos.quantity -= matched
				remaining -= matched
				closed = append(closed, ClosedTrade{
					OpenSide:   market.Buy,
					OpenPrice:  pos.avgPrice,
					CloseSide:  market.Sell,
					ClosePrice: t.Price,
					Quantity:   matched,
					PnL:        pnl,
				})
			} else {
				matched := min(remaining, -pos.quantity)
				pnl := (pos.avgPrice - t.Price) * matched
				pos.quantity += matched
				remaining -= matched
				closed = append(closed, ClosedTrade{
					OpenSide:   market.Sell,
					OpenPrice:  pos.avgPrice,
					CloseSide:  market.Buy,
					ClosePrice: t.Price,
					Quantity:   matched,
					PnL:        pnl,
				})
			}

			if pos.quantity != 0 {
				pos.totalCost = pos.avgPrice * abs(pos.quantity)
			} else {
				pos.totalCost = 0
				pos.avgPrice = 0
			}

			// Position flips through zero: the excess opens on the new
			// side at the fill price.
			if remaining > 0 {
				pos.quantity = remaining
				if t.Side == market.Sell {
					pos.quantity = -remaining
				}
				pos.avgPrice = t.Price
				pos.totalCost = t.Price * remaining
			}
		}
	}

	return closed, positions
}

// positionUnrealized marks each remaining position against its
// symbol's last traded price.
func positionUnrealized(positions map[string]*netPosition, lastPrices map[string]float64) (float64, float64) {
	var unrealized, remaining float64
	for symbol, pos := range positions {
		if pos.quantity == 0 {
			continue
		}
		last := lastPrices[symbol]
		if pos.quantity > 0 {
			unrealized += (last - pos.avgPrice) * pos.quantity
		} else {
			unrealized += (pos.avgPrice - last) * -pos.quantity
		}
		remaining += pos.quantity
	}
	return unrealized, remaining
}

func sameDirection(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
