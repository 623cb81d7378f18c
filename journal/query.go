package journal

import (
	"database/sql"
	"fmt"
)

// GetTrade returns a single trade record by id.
func (j *SQLiteJournal) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT trade_id, time, symbol, side, price, quantity, status
		FROM trades
		WHERE trade_id = ?`, tradeID)

	var rec TradeRecord
	err := row.Scan(&rec.TradeID, &rec.Time, &rec.Symbol, &rec.Side, &rec.Price, &rec.Quantity, &rec.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTrades returns all trades for a symbol in time order. An empty
// symbol returns every trade.
func (j *SQLiteJournal) ListTrades(symbol string) ([]TradeRecord, error) {
	query := `
		SELECT trade_id, time, symbol, side, price, quantity, status
		FROM trades`
	args := []any{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY time ASC, trade_id ASC`

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(&rec.TradeID, &rec.Time, &rec.Symbol, &rec.Side, &rec.Price, &rec.Quantity, &rec.Status); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListCapital returns the capital series in time order.
func (j *SQLiteJournal) ListCapital() ([]CapitalSnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, required_capital, margin, exposure, unrealized_pnl
		FROM capital
		ORDER BY time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CapitalSnapshot
	for rows.Next() {
		var c CapitalSnapshot
		if err := rows.Scan(&c.Time, &c.RequiredCapital, &c.Margin, &c.Exposure, &c.UnrealizedPnL); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
