package journal

import (
	"encoding/csv"
	"os"
	"strconv"
)

// CSVJournal writes trades and capital snapshots to two CSV files,
// flushing per record so a crashed run still leaves usable output.
type CSVJournal struct {
	trades  *csv.Writer
	capital *csv.Writer
	tf, cf  *os.File
}

func NewCSV(tradesPath, capitalPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	cf, err := os.Create(capitalPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	cw := csv.NewWriter(cf)

	fail := func(err error) (*CSVJournal, error) {
		tf.Close()
		cf.Close()
		return nil, err
	}

	if err := tw.Write([]string{"trade_id", "time", "symbol", "side", "price", "quantity", "status"}); err != nil {
		return fail(err)
	}
	if err := cw.Write([]string{"time", "required_capital", "margin", "exposure", "unrealized_pnl"}); err != nil {
		return fail(err)
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return fail(err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fail(err)
	}

	return &CSVJournal{trades: tw, capital: cw, tf: tf, cf: cf}, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	if err := j.trades.Write([]string{
		t.TradeID,
		strconv.FormatInt(t.Time, 10),
		t.Symbol,
		t.Side,
		f(t.Price),
		f(t.Quantity),
		t.Status,
	}); err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordCapital(c CapitalSnapshot) error {
	if err := j.capital.Write([]string{
		strconv.FormatInt(c.Time, 10),
		f(c.RequiredCapital),
		f(c.Margin),
		f(c.Exposure),
		f(c.UnrealizedPnL),
	}); err != nil {
		return err
	}
	j.capital.Flush()
	return j.capital.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.capital.Flush()
	if err := j.capital.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.cf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 8, 64)
}
