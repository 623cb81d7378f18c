// Package indicators provides streaming rolling-window signals used by
// market-making strategies. Each type takes one sample per Update and
// evicts the oldest sample once the fixed capacity is reached.
package indicators

import "math"

// Window is a fixed-capacity rolling sample buffer.
type Window struct {
	cap  int
	vals []float64
}

func NewWindow(capacity int) *Window {
	return &Window{cap: capacity, vals: make([]float64, 0, capacity)}
}

// Push appends a sample, evicting the oldest when full.
func (w *Window) Push(v float64) {
	if len(w.vals) == w.cap {
		copy(w.vals, w.vals[1:])
		w.vals = w.vals[:len(w.vals)-1]
	}
	w.vals = append(w.vals, v)
}

func (w *Window) Len() int   { return len(w.vals) }
func (w *Window) Full() bool { return len(w.vals) == w.cap }

func (w *Window) First() float64 {
	if len(w.vals) == 0 {
		return 0
	}
	return w.vals[0]
}

func (w *Window) Last() float64 {
	if len(w.vals) == 0 {
		return 0
	}
	return w.vals[len(w.vals)-1]
}

func (w *Window) Sum() float64 {
	var s float64
	for _, v := range w.vals {
		s += v
	}
	return s
}

// Values returns the live backing slice, oldest first. Callers must
// not hold it across a Push.
func (w *Window) Values() []float64 { return w.vals }

func (w *Window) Reset() { w.vals = w.vals[:0] }

// VWAP is a rolling volume-weighted average price. It has no value
// until its window is full: a half-warm VWAP is a misleading signal,
// not a weaker one.
type VWAP struct {
	pv  *Window // price * volume
	vol *Window
}

func NewVWAP(window int) *VWAP {
	return &VWAP{pv: NewWindow(window), vol: NewWindow(window)}
}

func (v *VWAP) Update(price, volume float64) {
	v.pv.Push(price * volume)
	v.vol.Push(volume)
}

// Value returns the VWAP and whether it is defined. Undefined while
// the window is warming up or when the window's total volume is zero.
func (v *VWAP) Value() (float64, bool) {
	if !v.vol.Full() {
		return 0, false
	}
	volSum := v.vol.Sum()
	if volSum == 0 {
		return 0, false
	}
	return v.pv.Sum() / volSum, true
}

func (v *VWAP) Reset() {
	v.pv.Reset()
	v.vol.Reset()
}

// Volatility is the standard deviation of simple returns over a
// rolling price window.
type Volatility struct {
	prices *Window
}

func NewVolatility(window int) *Volatility {
	return &Volatility{prices: NewWindow(window)}
}

func (v *Volatility) Update(price float64) { v.prices.Push(price) }

func (v *Volatility) Value() float64 {
	prices := v.prices.Values()
	if len(prices) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
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
	variance /= float64(len(returns))

	return math.Sqrt(variance)
}

func (v *Volatility) Reset() { v.prices.Reset() }

// Momentum is the fractional price change across a rolling window:
// (last - first) / first.
type Momentum struct {
	prices *Window
}

func NewMomentum(window int) *Momentum {
	return &Momentum{prices: NewWindow(window)}
}

func (m *Momentum) Update(price float64) { m.prices.Push(price) }

func (m *Momentum) Value() float64 {
	if m.prices.Len() < 2 {
		return 0
	}
	first := m.prices.First()
	if first == 0 {
		return 0
	}
	return (m.prices.Last() - first) / first
}

func (m *Momentum) Reset() { m.prices.Reset() }
