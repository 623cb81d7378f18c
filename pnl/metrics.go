package pnl

import "math"

// TradeMetrics are risk statistics derived from the realized-pnl
// series in trade order.
type TradeMetrics struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	TotalPnL      float64

	MaxDrawdown    float64 // currency, peak-to-trough of cumulative pnl
	MaxDrawdownPct float64 // relative to the running peak
	SharpeRatio    float64 // annualized, sqrt(252)

	WinRate      float64
	AvgWin       float64
	AvgLoss      float64
	ProfitFactor float64
}

// Metrics derives risk statistics from closed trades. Zero-valued for
// an empty input.
func Metrics(closed []ClosedTrade) TradeMetrics {
	if len(closed) == 0 {
		return TradeMetrics{}
	}

	m := TradeMetrics{TotalTrades: len(closed)}

	var grossWin, grossLoss float64
	for _, c := range closed {
		m.TotalPnL += c.PnL
		switch {
		case c.PnL > 0:
			m.WinningTrades++
			grossWin += c.PnL
		case c.PnL < 0:
			m.LosingTrades++
			grossLoss += -c.PnL
		}
	}

	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
	if m.WinningTrades > 0 {
		m.AvgWin = grossWin / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = grossLoss / float64(m.LosingTrades)
	}
	switch {
	case grossLoss > 0:
		m.ProfitFactor = grossWin / grossLoss
	case grossWin > 0:
		m.ProfitFactor = math.Inf(1)
	}

	m.MaxDrawdown, m.MaxDrawdownPct = maxDrawdown(closed)
	m.SharpeRatio = sharpeRatio(closed)
	return m
}

// maxDrawdown walks the cumulative realized pnl, tracking the running
// peak and the deepest decline from it, in currency and in percent of
// the peak.
func maxDrawdown(closed []ClosedTrade) (dd float64, ddPct float64) {
	var cumulative float64
	peak := closed[0].PnL

	for _, c := range closed {
		cumulative += c.PnL
		if cumulative > peak {
			peak = cumulative
		}
		drop := peak - cumulative
		if drop > dd {
			dd = drop
		}
		if peak > 0 {
			if pct := drop / peak * 100; pct > ddPct {
				ddPct = pct
			}
		}
	}
	return dd, ddPct
}

// sharpeRatio annualizes the mean over sample standard deviation of
// per-trade fractional returns (pnl per unit of entry notional).
// Defined as zero with fewer than two trades or zero dispersion.
func sharpeRatio(closed []ClosedTrade) float64 {
	if len(closed) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(closed))
	for _, c := range closed {
		if c.Quantity == 0 || c.OpenPrice == 0 {
			return 0
		}
		returns = append(returns, c.PnL/c.Quantity/c.OpenPrice)
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(252)
}
