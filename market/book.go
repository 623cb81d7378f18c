package market

// Level is one price level of an order book side.
type Level struct {
	Price    float64
	Quantity float64
}

// OrderBook is a point-in-time snapshot: bids descending, asks
// ascending, timestamp in epoch milliseconds.
//
// All derived values are defined for empty sides and return zero
// rather than an error, so callers never have to special-case thin
// books.
type OrderBook struct {
	Symbol string
	Bids   []Level
	Asks   []Level
	Time   int64
}

// topDepth is how many levels the imbalance and depth metrics look at.
const topDepth = 5

// MidPrice is the midpoint of the best bid and best ask.
func (b OrderBook) MidPrice() float64 {
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return 0
	}
	return (b.Bids[0].Price + b.Asks[0].Price) / 2
}

// SpreadAbs is the absolute bid/ask spread.
func (b OrderBook) SpreadAbs() float64 {
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return 0
	}
	return b.Asks[0].Price - b.Bids[0].Price
}

// SpreadPct is the spread relative to the mid price.
func (b OrderBook) SpreadPct() float64 {
	mid := b.MidPrice()
	if mid == 0 {
		return 0
	}
	return b.SpreadAbs() / mid
}

// Imbalance is the top-5 order book imbalance, normalized to [-1, 1].
// Positive values mean more resting bid volume than ask volume.
func (b OrderBook) Imbalance() float64 {
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return 0
	}

	bidVol := sideVolume(b.Bids, topDepth)
	askVol := sideVolume(b.Asks, topDepth)
	if bidVol+askVol == 0 {
		return 0
	}
	return (bidVol - askVol) / (bidVol + askVol)
}

// AvgTopBidDepth is the average resting quantity over the top bid levels.
func (b OrderBook) AvgTopBidDepth() float64 {
	if len(b.Bids) == 0 {
		return 0
	}
	n := len(b.Bids)
	if n > topDepth {
		n = topDepth
	}
	return sideVolume(b.Bids, topDepth) / float64(n)
}

func sideVolume(levels []Level, depth int) float64 {
	var vol float64
	for i, lvl := range levels {
		if i >= depth {
			break
		}
		vol += lvl.Quantity
	}
	return vol
}
