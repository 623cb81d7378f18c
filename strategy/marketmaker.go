package strategy

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/quantmill/bookback/indicators"
	"github.com/quantmill/bookback/market"
)

// MakerConfig tunes the market-making state machine. Thresholds in
// bps apply to position-weighted P&L relative to entry price.
type MakerConfig struct {
	FixOrderVolume      float64 `json:"fix_order_volume" yaml:"fix_order_volume"`
	VWAPWindow          int     `json:"vwap_window" yaml:"vwap_window"`
	OBIThreshold        float64 `json:"obi_threshold" yaml:"obi_threshold"`
	MaxInventory        float64 `json:"max_inventory" yaml:"max_inventory"`
	UseLimitOrders      bool    `json:"use_limit_orders" yaml:"use_limit_orders"`
	LimitOrderSpreadBps float64 `json:"limit_order_spread_bps" yaml:"limit_order_spread_bps"`

	// Exit ladder.
	TakeProfitBps               float64 `json:"take_profit_bps" yaml:"take_profit_bps"`
	StopLossBps                 float64 `json:"stop_loss_bps" yaml:"stop_loss_bps"`
	MaxPositionAgeMs            int64   `json:"max_position_age_ms" yaml:"max_position_age_ms"`
	InventoryReductionThreshold float64 `json:"inventory_reduction_threshold" yaml:"inventory_reduction_threshold"`
	AggressiveCloseThreshold    float64 `json:"aggressive_close_threshold" yaml:"aggressive_close_threshold"`
	MinProfitBps                float64 `json:"min_profit_bps" yaml:"min_profit_bps"`

	// Entry gates.
	VolatilityWindow       int     `json:"volatility_window" yaml:"volatility_window"`
	MaxVolatilityThreshold float64 `json:"max_volatility_threshold" yaml:"max_volatility_threshold"`
	VolatilityCooldownMs   int64   `json:"volatility_cooldown_ms" yaml:"volatility_cooldown_ms"`
	MomentumWindow         int     `json:"momentum_window" yaml:"momentum_window"`
	MomentumThreshold      float64 `json:"momentum_threshold" yaml:"momentum_threshold"`
	MomentumCooldownMs     int64   `json:"momentum_cooldown_ms" yaml:"momentum_cooldown_ms"`
}

// DefaultMakerConfig carries the tuned production defaults.
func DefaultMakerConfig() MakerConfig {
	return MakerConfig{
		FixOrderVolume:      0.005,
		VWAPWindow:          100,
		OBIThreshold:        0.1,
		MaxInventory:        10.0,
		UseLimitOrders:      true,
		LimitOrderSpreadBps: 5.0,

		TakeProfitBps:               20.0,
		StopLossBps:                 50.0,
		MaxPositionAgeMs:            300_000,
		InventoryReductionThreshold: 0.7,
		AggressiveCloseThreshold:    0.9,
		MinProfitBps:                5.0,

		VolatilityWindow:       30,
		MaxVolatilityThreshold: 0.000005,
		VolatilityCooldownMs:   5_000,
		MomentumWindow:         10,
		MomentumThreshold:      0.0015,
		MomentumCooldownMs:     3_000,
	}
}

// Validate fails fast before a run starts.
func (c MakerConfig) Validate() error {
	if c.FixOrderVolume <= 0 {
		return fmt.Errorf("%w: fix_order_volume must be positive", market.ErrInvalidTradeParameters)
	}
	if c.VWAPWindow < 2 || c.VolatilityWindow < 2 || c.MomentumWindow < 2 {
		return fmt.Errorf("%w: signal windows must hold at least 2 samples", market.ErrInvalidTradeParameters)
	}
	if c.MaxInventory <= 0 {
		return fmt.Errorf("%w: max_inventory must be positive", market.ErrInvalidTradeParameters)
	}
	if c.InventoryReductionThreshold <= 0 || c.InventoryReductionThreshold > 1 {
		return fmt.Errorf("%w: inventory_reduction_threshold must be in (0,1]", market.ErrInvalidTradeParameters)
	}
	if c.AggressiveCloseThreshold < c.InventoryReductionThreshold {
		return fmt.Errorf("%w: aggressive_close_threshold must be >= inventory_reduction_threshold", market.ErrInvalidTradeParameters)
	}
	return nil
}

// lot is one parcel of inventory acquired at a specific price and
// time. Lots shrink FIFO as opposing fills arrive; quantity is the
// only field ever mutated.
type lot struct {
	quantity float64
	price    float64
	time     int64
	side     market.Side
}

// pnlBps is the lot's P&L in basis points at the given mark.
func (l lot) pnlBps(mark float64) float64 {
	if l.side == market.Buy {
		return (mark - l.price) / l.price * 10000
	}
	return (l.price - mark) / l.price * 10000
}

func (l lot) ageMs(nowMs int64) int64 { return nowMs - l.time }

// MarketMaker quotes around VWAP on order book imbalance, pausing
// when volatility or momentum spikes, and unwinds inventory through a
// multi-condition exit ladder.
type MarketMaker struct {
	symbol string
	cfg    MakerConfig
	log    *zap.Logger

	vwap       *indicators.VWAP
	volatility *indicators.Volatility
	momentum   *indicators.Momentum

	lots         []lot
	netInventory float64
	avgEntry     float64

	lastHighVolatilityMs int64
	lastStrongMomentumMs int64
}

func NewMarketMaker(symbol string, cfg MakerConfig, log *zap.Logger) (*MarketMaker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MarketMaker{
		symbol:     symbol,
		cfg:        cfg,
		log:        log,
		vwap:       indicators.NewVWAP(cfg.VWAPWindow),
		volatility: indicators.NewVolatility(cfg.VolatilityWindow),
		momentum:   indicators.NewMomentum(cfg.MomentumWindow),
	}, nil
}

func (m *MarketMaker) Name() string { return "market-maker" }

func (m *MarketMaker) PositionOf(symbol string) float64 {
	if symbol != m.symbol {
		return 0
	}
	return m.netInventory
}

// Propose runs one step of the state machine. Order matters: signal
// windows update first, then the entry gate is evaluated (starting
// cooldowns on a breach), then the exit ladder (which fires even when
// the gate is closed), then entries.
func (m *MarketMaker) Propose(book market.OrderBook) *market.Trade {
	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		return nil
	}

	bestBid := book.Bids[0]
	bestAsk := book.Asks[0]
	mid := (bestBid.Price + bestAsk.Price) / 2
	now := book.Time

	m.volatility.Update(mid)
	m.momentum.Update(mid)
	m.vwap.Update(mid, bestBid.Quantity+bestAsk.Quantity)

	vwap, ok := m.vwap.Value()
	if !ok {
		return nil
	}

	canTrade, pauseReason := m.checkMarketConditions(now)

	if shouldClose, closeReason := m.shouldClosePosition(mid, now); shouldClose && m.netInventory != 0 {
		t := m.closingTrade(bestBid.Price, bestAsk.Price, now)
		m.log.Info("closing inventory",
			zap.String("side", string(t.Side)),
			zap.Float64("quantity", t.Quantity),
			zap.Float64("price", t.Price),
			zap.String("reason", closeReason),
			zap.Float64("inventory", m.netInventory),
		)
		return t
	}

	if !canTrade {
		m.log.Debug("entries paused", zap.String("reason", pauseReason))
		return nil
	}

	obi := book.Imbalance()
	inventoryRatio := math.Abs(m.netInventory) / m.cfg.MaxInventory
	threshold := m.cfg.OBIThreshold * (1 + inventoryRatio)

	switch {
	case obi > threshold && mid < vwap &&
		m.netInventory < m.cfg.MaxInventory*m.cfg.InventoryReductionThreshold:
		price := bestAsk.Price
		if m.cfg.UseLimitOrders {
			price = bestBid.Price * (1 - m.cfg.LimitOrderSpreadBps/10000)
		}
		t := market.NewTrade(now, m.symbol, market.Buy, price, m.cfg.FixOrderVolume)
		m.logEntry(t, obi, vwap)
		return t

	case obi < -threshold && mid > vwap &&
		m.netInventory > -m.cfg.MaxInventory*m.cfg.InventoryReductionThreshold:
		price := bestBid.Price
		if m.cfg.UseLimitOrders {
			price = bestAsk.Price * (1 + m.cfg.LimitOrderSpreadBps/10000)
		}
		t := market.NewTrade(now, m.symbol, market.Sell, price, m.cfg.FixOrderVolume)
		m.logEntry(t, obi, vwap)
		return t
	}

	return nil
}

func (m *MarketMaker) logEntry(t *market.Trade, obi, vwap float64) {
	m.log.Info("opening",
		zap.String("side", string(t.Side)),
		zap.Float64("quantity", t.Quantity),
		zap.Float64("price", t.Price),
		zap.Float64("obi", obi),
		zap.Float64("vwap", vwap),
		zap.Float64("inventory", m.netInventory),
	)
}

// checkMarketConditions is the entry gate: cooldowns first, then the
// live volatility and momentum measurements. A breach (re)starts the
// matching cooldown. First match wins.
func (m *MarketMaker) checkMarketConditions(nowMs int64) (bool, string) {
	if nowMs-m.lastHighVolatilityMs < m.cfg.VolatilityCooldownMs {
		remaining := float64(m.cfg.VolatilityCooldownMs-(nowMs-m.lastHighVolatilityMs)) / 1000
		return false, fmt.Sprintf("volatility cooldown: %.1fs remaining", remaining)
	}

	if nowMs-m.lastStrongMomentumMs < m.cfg.MomentumCooldownMs {
		remaining := float64(m.cfg.MomentumCooldownMs-(nowMs-m.lastStrongMomentumMs)) / 1000
		return false, fmt.Sprintf("momentum cooldown: %.1fs remaining", remaining)
	}

	if vol := m.volatility.Value(); vol > m.cfg.MaxVolatilityThreshold {
		m.lastHighVolatilityMs = nowMs
		return false, fmt.Sprintf("high volatility: %.6f > %.6f", vol, m.cfg.MaxVolatilityThreshold)
	}

	if mom := m.momentum.Value(); math.Abs(mom) > m.cfg.MomentumThreshold {
		m.lastStrongMomentumMs = nowMs
		return false, fmt.Sprintf("strong momentum: %.4f > %.4f", mom, m.cfg.MomentumThreshold)
	}

	return true, "ok"
}

// shouldClosePosition evaluates the exit ladder against the
// position-weighted P&L and the oldest lot's age. First match wins.
func (m *MarketMaker) shouldClosePosition(mid float64, nowMs int64) (bool, string) {
	if m.netInventory == 0 {
		return false, ""
	}

	var totalPnLBps float64
	var oldestAge int64
	absInv := math.Abs(m.netInventory)

	for _, l := range m.lots {
		totalPnLBps += l.pnlBps(mid) * (l.quantity / absInv)
		if age := l.ageMs(nowMs); age > oldestAge {
			oldestAge = age
		}
	}

	inventoryRatio := absInv / m.cfg.MaxInventory

	switch {
	case totalPnLBps >= m.cfg.TakeProfitBps:
		return true, fmt.Sprintf("take profit: %.1f bps", totalPnLBps)
	case totalPnLBps <= -m.cfg.StopLossBps:
		return true, fmt.Sprintf("stop loss: %.1f bps", totalPnLBps)
	case oldestAge > m.cfg.MaxPositionAgeMs:
		return true, fmt.Sprintf("position age: %.1fs", float64(oldestAge)/1000)
	case inventoryRatio >= m.cfg.InventoryReductionThreshold && totalPnLBps >= m.cfg.MinProfitBps:
		return true, fmt.Sprintf("inventory reduction: %.0f%% full, %.1f bps", inventoryRatio*100, totalPnLBps)
	case inventoryRatio >= m.cfg.AggressiveCloseThreshold && totalPnLBps >= -m.cfg.MinProfitBps:
		return true, fmt.Sprintf("aggressive close: %.0f%% full, %.1f bps", inventoryRatio*100, totalPnLBps)
	}

	return false, ""
}

// closingTrade builds the unwind order: sell at the bid when long,
// buy at the ask when short, optionally held back to a minimum-profit
// limit price.
func (m *MarketMaker) closingTrade(bestBid, bestAsk float64, nowMs int64) *market.Trade {
	var side market.Side
	var price float64

	if m.netInventory > 0 {
		side = market.Sell
		price = bestBid
		if m.cfg.UseLimitOrders {
			price = math.Max(bestBid, m.avgEntry*(1+m.cfg.MinProfitBps/10000))
		}
	} else {
		side = market.Buy
		price = bestAsk
		if m.cfg.UseLimitOrders {
			price = math.Min(bestAsk, m.avgEntry*(1-m.cfg.MinProfitBps/10000))
		}
	}

	quantity := math.Min(m.cfg.FixOrderVolume, math.Abs(m.netInventory))
	return market.NewTrade(nowMs, m.symbol, side, price, quantity)
}

// OnExecution folds an execution outcome into inventory. Only fills
// change state: a fill against the net direction consumes lots oldest
// first (splitting the front lot on partial consumption), a fill with
// the net direction opens a new lot.
func (m *MarketMaker) OnExecution(t *market.Trade, filled bool) {
	if !filled || t == nil {
		return
	}

	closing := (m.netInventory > 0 && t.Side == market.Sell) ||
		(m.netInventory < 0 && t.Side == market.Buy)

	if closing {
		remaining := t.Quantity
		kept := m.lots[:0]
		for _, l := range m.lots {
			if remaining <= 0 || l.side == t.Side {
				kept = append(kept, l)
				continue
			}
			if l.quantity <= remaining {
				remaining -= l.quantity
				continue
			}
			l.quantity -= remaining
			remaining = 0
			kept = append(kept, l)
		}
		m.lots = kept
	} else {
		m.lots = append(m.lots, lot{
			quantity: t.Quantity,
			price:    t.Price,
			time:     t.Time,
			side:     t.Side,
		})
	}

	if t.Side == market.Buy {
		m.netInventory += t.Quantity
	} else {
		m.netInventory -= t.Quantity
	}

	m.avgEntry = m.averageEntryPrice()
}

// averageEntryPrice is the quantity-weighted mean over open lots.
func (m *MarketMaker) averageEntryPrice() float64 {
	if len(m.lots) == 0 {
		return 0
	}
	var value, quantity float64
	for _, l := range m.lots {
		value += l.price * l.quantity
		quantity += l.quantity
	}
	if quantity <= 0 {
		return 0
	}
	return value / quantity
}

// Reset clears all windows, lots, inventory and cooldowns.
func (m *MarketMaker) Reset() {
	m.vwap.Reset()
	m.volatility.Reset()
	m.momentum.Reset()
	m.lots = nil
	m.netInventory = 0
	m.avgEntry = 0
	m.lastHighVolatilityMs = 0
	m.lastStrongMomentumMs = 0
}
