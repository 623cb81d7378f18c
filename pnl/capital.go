package pnl

import "github.com/quantmill/bookback/market"

// safetyBufferRate is the slice of open exposure held back on top of
// margin when sizing required capital.
const safetyBufferRate = 0.02

// CapitalMetrics summarize how much capital the run would have tied
// up, derived from a per-fill time series.
type CapitalMetrics struct {
	MaxRequiredCapital float64
	MaxDrawdown        float64 // deepest unrealized loss, reported positive
	MaxExposure        float64 // largest open position notional
	AverageUtilization float64 // mean required capital across the series
	PeakMargin         float64
	MaxUnrealizedLoss  float64
}

// CapitalPoint is the capital state immediately after one fill.
type CapitalPoint struct {
	Time       int64
	Required   float64
	Margin     float64
	Exposure   float64
	Unrealized float64
}

// CapitalTimeline replays the fills against an average-cost position
// and marks it with the first snapshot at or after each fill (falling
// back to the fill price when the run has no later snapshot). Required
// capital per point is margin plus cover for any unrealized loss plus
// a safety buffer of the open exposure.
func CapitalTimeline(fills []market.Trade, books []market.OrderBook, marginRate float64) []CapitalPoint {
	positions := make(map[string]float64)
	avgPrices := make(map[string]float64)
	points := make([]CapitalPoint, 0, len(fills))

	bookIdx := 0
	for _, t := range fills {
		for bookIdx < len(books) && books[bookIdx].Time < t.Time {
			bookIdx++
		}
		markPrice := t.Price
		if bookIdx < len(books) {
			markPrice = books[bookIdx].MidPrice()
		}

		applyFill(positions, avgPrices, t)
		points = append(points, capitalPoint(t.Time, positions, avgPrices, map[string]float64{t.Symbol: markPrice}, marginRate))
	}

	return points
}

// CapitalUsage reduces the capital timeline to its summary metrics.
func CapitalUsage(fills []market.Trade, books []market.OrderBook, marginRate float64) CapitalMetrics {
	return reduceCapital(CapitalTimeline(fills, books, marginRate))
}

// applyFill updates the average-cost position for one fill. Additions
// fold into the weighted average; reductions keep the average until
// the position zeroes out.
func applyFill(positions, avgPrices map[string]float64, t market.Trade) {
	quantity := positions[t.Symbol]
	avgPrice := avgPrices[t.Symbol]

	signed := t.Quantity
	if t.Side == market.Sell {
		signed = -t.Quantity
	}

	newAvg := avgPrice
	switch {
	case quantity == 0:
		newAvg = t.Price
	case sameDirection(quantity, signed):
		totalValue := abs(quantity)*avgPrice + abs(signed)*t.Price
		newAvg = totalValue / (abs(quantity) + abs(signed))
	}

	newQty := quantity + signed
	if abs(newQty) < 1e-8 {
		positions[t.Symbol] = 0
		avgPrices[t.Symbol] = 0
		return
	}
	positions[t.Symbol] = newQty
	avgPrices[t.Symbol] = newAvg
}

func capitalPoint(timeMs int64, positions, avgPrices, marks map[string]float64, marginRate float64) CapitalPoint {
	var unrealized, margin, exposure float64

	for symbol, quantity := range positions {
		if abs(quantity) < 1e-8 {
			continue
		}
		avgPrice := avgPrices[symbol]
		mark, ok := marks[symbol]
		if !ok || mark == 0 {
			mark = avgPrice
		}

		if quantity > 0 {
			unrealized += (mark - avgPrice) * quantity
		} else {
			unrealized += (avgPrice - mark) * -quantity
		}

		value := abs(quantity) * mark
		exposure += value
		margin += value * marginRate
	}

	return CapitalPoint{
		Time:       timeMs,
		Required:   margin + max(0, -unrealized) + exposure*safetyBufferRate,
		Margin:     margin,
		Exposure:   exposure,
		Unrealized: unrealized,
	}
}

func reduceCapital(points []CapitalPoint) CapitalMetrics {
	if len(points) == 0 {
		return CapitalMetrics{}
	}

	var m CapitalMetrics
	var totalRequired float64
	worstUnrealized := 0.0

	for _, p := range points {
		if p.Required > m.MaxRequiredCapital {
			m.MaxRequiredCapital = p.Required
		}
		if p.Exposure > m.MaxExposure {
			m.MaxExposure = p.Exposure
		}
		if p.Margin > m.PeakMargin {
			m.PeakMargin = p.Margin
		}
		if p.Unrealized < worstUnrealized {
			worstUnrealized = p.Unrealized
		}
		totalRequired += p.Required
	}

	m.AverageUtilization = totalRequired / float64(len(points))
	m.MaxUnrealizedLoss = -worstUnrealized
	m.MaxDrawdown = -worstUnrealized
	return m
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
