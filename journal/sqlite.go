package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades (trade_id, time, symbol, side, price, quantity, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Time, t.Symbol, t.Side, t.Price, t.Quantity, t.Status,
	)
	return err
}

func (j *SQLiteJournal) RecordCapital(c CapitalSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO capital (time, required_capital, margin, exposure, unrealized_pnl)
		VALUES (?, ?, ?, ?, ?)`,
		c.Time, c.RequiredCapital, c.Margin, c.Exposure, c.UnrealizedPnL,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
