package cmd

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantmill/bookback/config"
	"github.com/quantmill/bookback/exec"
	"github.com/quantmill/bookback/feed"
	"github.com/quantmill/bookback/journal"
	"github.com/quantmill/bookback/ledger"
	"github.com/quantmill/bookback/market"
	"github.com/quantmill/bookback/pnl"
	"github.com/quantmill/bookback/replay"
	"github.com/quantmill/bookback/report"
	"github.com/quantmill/bookback/strategy"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a snapshot file through a strategy and report P&L",
	Long: `Run a full backtest: stream order book snapshots from a JSONL
capture, let the configured strategy propose trades, simulate their
execution and print the P&L, trade metrics and capital summary.

Example:
  bookback run --data ETHUSDT_3600_sec.jsonl --config backtest.yaml`,
	RunE: runBacktest,
}

var (
	runDataPath   string
	runConfigPath string
	runSymbol     string
	runSeed       int64
	runVerbose    bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runDataPath, "data", "d", "", "path to JSONL order book snapshots (required)")
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to config file (defaults used when omitted)")
	runCmd.Flags().StringVarP(&runSymbol, "symbol", "s", "", "symbol override (default: inferred from filename)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "execution RNG seed override (0 = use config)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "enable debug logging")

	runCmd.MarkFlagRequired("data")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if runConfigPath != "" {
		loaded, err := config.LoadFromFile(runConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if runSeed != 0 {
		cfg.Execution.Seed = runSeed
	}

	log, err := buildLogger(runVerbose)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	source, err := feed.NewFileSource(runDataPath)
	if err != nil {
		return err
	}
	defer source.Close()

	symbol := runSymbol
	if symbol == "" {
		symbol = source.Symbol()
	}

	strat, err := strategy.ByName(cfg.Strategy.Name, symbol, cfg.Strategy.Maker, log)
	if err != nil {
		return err
	}

	sim := exec.NewSimulator(cfg.Execution, rand.New(rand.NewSource(cfg.Execution.Seed)), log)

	runner := &replay.Runner{
		Source:    source,
		Strategy:  strat,
		Simulator: sim,
		Log:       log,
	}
	if !cfg.Data.ShowProgress {
		runner.Log = zap.NewNop()
	}

	led, err := runner.Run()
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	trades := led.AllTrades()
	fills := led.FilledTrades()
	books := led.Books()

	fifo := pnl.Calculate(trades, pnl.FIFO)
	position := pnl.Calculate(trades, pnl.Position)
	metrics := pnl.Metrics(fifo.ClosedTrades)
	capital := pnl.CapitalUsage(fills, books, cfg.Execution.MarginRate)

	if err := writeJournal(cfg.Journal, led, fills, books, cfg.Execution.MarginRate); err != nil {
		return fmt.Errorf("journal: %w", err)
	}

	return report.WriteSummary(os.Stdout, report.Summary{
		Symbol:      symbol,
		Books:       len(books),
		Proposals:   led.Len(),
		FIFO:        fifo,
		Position:    position,
		FIFOMetrics: metrics,
		Execution:   sim.Stats(),
		Capital:     capital,
	})
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// writeJournal persists the run to the configured backend. "none"
// skips persistence entirely.
func writeJournal(cfg config.JournalConfig, led *ledger.Ledger, fills []market.Trade, books []market.OrderBook, marginRate float64) error {
	var j journal.Journal
	var err error

	switch cfg.Type {
	case "", "none":
		return nil
	case "csv":
		j, err = journal.NewCSV(cfg.TradesFile, cfg.CapitalFile)
	case "sqlite":
		j, err = journal.NewSQLite(cfg.DBPath)
	default:
		return fmt.Errorf("unknown journal type %q", cfg.Type)
	}
	if err != nil {
		return err
	}
	defer j.Close()

	for _, t := range led.AllTrades() {
		rec := journal.TradeRecord{
			TradeID:  t.ID,
			Time:     t.Time,
			Symbol:   t.Symbol,
			Side:     string(t.Side),
			Price:    t.Price,
			Quantity: t.Quantity,
			Status:   string(t.Status),
		}
		if err := j.RecordTrade(rec); err != nil {
			return err
		}
	}

	for _, p := range pnl.CapitalTimeline(fills, books, marginRate) {
		snap := journal.CapitalSnapshot{
			Time:            p.Time,
			RequiredCapital: p.Required,
			Margin:          p.Margin,
			Exposure:        p.Exposure,
			UnrealizedPnL:   p.Unrealized,
		}
		if err := j.RecordCapital(snap); err != nil {
			return err
		}
	}

	return nil
}
