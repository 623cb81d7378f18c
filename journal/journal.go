// Package journal persists run results: executed trades and the
// per-fill capital series. Backends: CSV files and SQLite.
package journal

// TradeRecord is one executed proposal as the ledger recorded it.
type TradeRecord struct {
	TradeID  string
	Time     int64 // epoch ms
	Symbol   string
	Side     string
	Price    float64
	Quantity float64
	Status   string
}

// CapitalSnapshot is one point of the capital usage series.
type CapitalSnapshot struct {
	Time            int64 // epoch ms
	RequiredCapital float64
	Margin          float64
	Exposure        float64
	UnrealizedPnL   float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordCapital(CapitalSnapshot) error
	Close() error
}
