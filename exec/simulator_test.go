package exec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantmill/bookback/market"
)

func newSim(cfg Config, seed int64) *Simulator {
	return NewSimulator(cfg, rand.New(rand.NewSource(seed)), nil)
}

func TestExecuteAlwaysFills(t *testing.T) {
	t.Parallel()

	cfg := Config{FillRate: 1.0, SlippageBps: 2.0, RejectionRate: 0}
	s := newSim(cfg, 1)

	buy := market.NewTrade(1_700_000_000_000, "ETHUSDT", market.Buy, 100.0, 0.005)
	got := s.Execute(buy)

	assert.Equal(t, market.Filled, got.Status)
	assert.InDelta(t, 100.0*1.0002, got.Price, 1e-9)

	sell := market.NewTrade(1_700_000_000_000, "ETHUSDT", market.Sell, 100.0, 0.005)
	s.Execute(sell)

	assert.Equal(t, market.Filled, sell.Status)
	assert.InDelta(t, 100.0/1.0002, sell.Price, 1e-9)

	stats := s.Stats()
	assert.Equal(t, 2, stats.TotalTrades)
	assert.Equal(t, 2, stats.FilledTrades)
	assert.Equal(t, 0, stats.RejectedTrades)
	assert.Greater(t, stats.TotalSlippage, 0.0)
	assert.InDelta(t, 1.0, stats.FillRatio(), 1e-9)
}

func TestExecuteAlwaysRejects(t *testing.T) {
	t.Parallel()

	cfg := Config{FillRate: 1.0, SlippageBps: 2.0, RejectionRate: 1.0}
	s := newSim(cfg, 1)

	tr := market.NewTrade(1_700_000_000_000, "ETHUSDT", market.Buy, 100.0, 0.005)
	s.Execute(tr)

	assert.Equal(t, market.Rejected, tr.Status)
	assert.InDelta(t, 100.0, tr.Price, 1e-9) // rejects never touch the price

	stats := s.Stats()
	assert.Equal(t, 1, stats.RejectedTrades)
	assert.Equal(t, 0, stats.FilledTrades)
}

func TestExecuteNeverFills(t *testing.T) {
	t.Parallel()

	cfg := Config{FillRate: 0, SlippageBps: 2.0, RejectionRate: 0}
	s := newSim(cfg, 1)

	tr := market.NewTrade(1_700_000_000_000, "ETHUSDT", market.Sell, 100.0, 0.005)
	s.Execute(tr)

	assert.Equal(t, market.Unfilled, tr.Status)
	assert.InDelta(t, 100.0, tr.Price, 1e-9)
	assert.Equal(t, 0.0, s.Stats().FillRatio())
}

func TestExecuteNil(t *testing.T) {
	t.Parallel()

	s := newSim(DefaultConfig(), 1)
	assert.Nil(t, s.Execute(nil))
	assert.Equal(t, 0, s.Stats().TotalTrades)
}

func TestExecuteDeterministicBySeed(t *testing.T) {
	t.Parallel()

	run := func(seed int64) []market.Status {
		s := newSim(DefaultConfig(), seed)
		out := make([]market.Status, 0, 200)
		for i := 0; i < 200; i++ {
			tr := market.NewTrade(1_700_000_000_000, "ETHUSDT", market.Buy, 100.0, 0.005)
			s.Execute(tr)
			out = append(out, tr.Status)
		}
		return out
	}

	assert.Equal(t, run(7), run(7))
	assert.NotEqual(t, run(7), run(8))
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"fill_rate_high", func(c *Config) { c.FillRate = 1.5 }},
		{"fill_rate_negative", func(c *Config) { c.FillRate = -0.1 }},
		{"rejection_rate_high", func(c *Config) { c.RejectionRate = 2 }},
		{"margin_rate_high", func(c *Config) { c.MarginRate = 1.1 }},
		{"negative_slippage", func(c *Config) { c.SlippageBps = -1 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mut(&cfg)
			assert.ErrorIs(t, cfg.Validate(), market.ErrInvalidTradeParameters)
		})
	}
}
