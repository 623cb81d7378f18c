package journal

// Schema creates the journal tables. Trade ids are ULIDs, so the
// primary key index doubles as a time ordering.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id  TEXT PRIMARY KEY,
	time      INTEGER NOT NULL,
	symbol    TEXT NOT NULL,
	side      TEXT NOT NULL,
	price     REAL NOT NULL,
	quantity  REAL NOT NULL,
	status    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_symbol_time ON trades(symbol, time);

CREATE TABLE IF NOT EXISTS capital (
	time             INTEGER NOT NULL,
	required_capital REAL NOT NULL,
	margin           REAL NOT NULL,
	exposure         REAL NOT NULL,
	unrealized_pnl   REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_capital_time ON capital(time);
`
