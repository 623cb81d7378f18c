// Package exec simulates order execution under a stochastic fill model.
package exec

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/quantmill/bookback/market"
)

// Config controls the fill model. MarginRate is carried here because
// capital accounting derives margin from the same execution policy.
type Config struct {
	FillRate      float64 `json:"fill_rate" yaml:"fill_rate"`
	SlippageBps   float64 `json:"slippage_bps" yaml:"slippage_bps"`
	RejectionRate float64 `json:"rejection_rate" yaml:"rejection_rate"`
	MarginRate    float64 `json:"margin_rate" yaml:"margin_rate"`
	Seed          int64   `json:"seed" yaml:"seed"`
}

// DefaultConfig mirrors the production fill assumptions: nearly every
// order fills, a couple of bps of slippage, rare rejects.
func DefaultConfig() Config {
	return Config{
		FillRate:      0.98,
		SlippageBps:   2.0,
		RejectionRate: 0.01,
		MarginRate:    0.05,
		Seed:          1,
	}
}

// Validate fails fast on out-of-range rates.
func (c Config) Validate() error {
	if c.FillRate < 0 || c.FillRate > 1 {
		return fmt.Errorf("%w: fill_rate must be in [0,1], got %v", market.ErrInvalidTradeParameters, c.FillRate)
	}
	if c.RejectionRate < 0 || c.RejectionRate > 1 {
		return fmt.Errorf("%w: rejection_rate must be in [0,1], got %v", market.ErrInvalidTradeParameters, c.RejectionRate)
	}
	if c.MarginRate < 0 || c.MarginRate > 1 {
		return fmt.Errorf("%w: margin_rate must be in [0,1], got %v", market.ErrInvalidTradeParameters, c.MarginRate)
	}
	if c.SlippageBps < 0 {
		return fmt.Errorf("%w: slippage_bps must be non-negative, got %v", market.ErrInvalidTradeParameters, c.SlippageBps)
	}
	return nil
}

// Stats are running execution counters for a single simulator.
type Stats struct {
	TotalTrades    int
	FilledTrades   int
	RejectedTrades int
	TotalSlippage  float64
}

// FillRatio is filled over total, 0 when nothing was attempted.
func (s Stats) FillRatio() float64 {
	if s.TotalTrades == 0 {
		return 0
	}
	return float64(s.FilledTrades) / float64(s.TotalTrades)
}

// Simulator decides fill/reject/unfilled per proposal and applies
// slippage on fills. Randomness comes from the supplied source only,
// so a fixed seed reproduces a run exactly.
type Simulator struct {
	cfg   Config
	rng   *rand.Rand
	stats Stats
	log   *zap.Logger
}

// NewSimulator builds a simulator around an explicit random source.
// Passing a shared source across concurrent runs is a caller bug.
func NewSimulator(cfg Config, rng *rand.Rand, log *zap.Logger) *Simulator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{cfg: cfg, rng: rng, log: log}
}

// Execute mutates the proposal's status, and its price on a fill. Nil
// in, nil out.
//
// Rejection and fill are checked against the same uniform draw in
// sequence, so the effective fill probability is fillRate minus
// rejectionRate. That coupling is part of the model's contract; do
// not split it into independent draws without sign-off, it changes
// simulated fill ratios.
func (s *Simulator) Execute(t *market.Trade) *market.Trade {
	if t == nil {
		return nil
	}

	s.stats.TotalTrades++
	r := s.rng.Float64()

	if r < s.cfg.RejectionRate {
		t.Status = market.Rejected
		s.stats.RejectedTrades++
		return t
	}

	if r < s.cfg.FillRate {
		factor := 1 + s.cfg.SlippageBps/10000
		original := t.Price
		if t.Side == market.Buy {
			t.Price *= factor
		} else {
			t.Price /= factor
		}
		s.stats.TotalSlippage += abs(t.Price - original)

		t.Status = market.Filled
		s.stats.FilledTrades++
		s.log.Debug("trade filled",
			zap.String("side", string(t.Side)),
			zap.Float64("quantity", t.Quantity),
			zap.Float64("price", t.Price),
		)
		return t
	}

	t.Status = market.Unfilled
	return t
}

// Stats returns a copy of the running counters.
func (s *Simulator) Stats() Stats { return s.stats }

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
