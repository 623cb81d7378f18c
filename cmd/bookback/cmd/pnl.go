package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quantmill/bookback/journal"
	"github.com/quantmill/bookback/market"
	"github.com/quantmill/bookback/pnl"
)

var pnlCmd = &cobra.Command{
	Use:   "pnl",
	Short: "Recompute P&L from a journaled run",
	Long: `Read the trades recorded by a previous run from a SQLite journal
and recompute realized and unrealized P&L with the selected method.

Example:
  bookback pnl --db backtest.sqlite --method fifo`,
	RunE: runPnl,
}

var (
	pnlDBPath string
	pnlSymbol string
	pnlMethod string
)

func init() {
	rootCmd.AddCommand(pnlCmd)

	pnlCmd.Flags().StringVarP(&pnlDBPath, "db", "d", "", "path to SQLite journal DB (required)")
	pnlCmd.Flags().StringVarP(&pnlSymbol, "symbol", "s", "", "restrict to one symbol (default: all)")
	pnlCmd.Flags().StringVarP(&pnlMethod, "method", "m", "fifo", "accounting method (fifo, position)")

	pnlCmd.MarkFlagRequired("db")
}

func runPnl(cmd *cobra.Command, args []string) error {
	method, err := pnl.ParseMethod(pnlMethod)
	if err != nil {
		return err
	}

	j, err := journal.NewSQLite(pnlDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	records, err := j.ListTrades(pnlSymbol)
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("no trades recorded")
		return nil
	}

	trades := make([]market.Trade, 0, len(records))
	for _, r := range records {
		trades = append(trades, market.Trade{
			ID:       r.TradeID,
			Time:     r.Time,
			Symbol:   r.Symbol,
			Side:     market.Side(r.Side),
			Price:    r.Price,
			Quantity: r.Quantity,
			Status:   market.Status(r.Status),
		})
	}

	result := pnl.Calculate(trades, method)
	metrics := pnl.Metrics(result.ClosedTrades)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "P&L (%s)\t\n", method)
	fmt.Fprintf(tw, "  trades journaled\t%d\n", len(trades))
	fmt.Fprintf(tw, "  realized\t%.8f\n", result.RealizedPnL)
	fmt.Fprintf(tw, "  unrealized\t%.8f\n", result.UnrealizedPnL)
	fmt.Fprintf(tw, "  total\t%.8f\n", result.RealizedPnL+result.UnrealizedPnL)
	fmt.Fprintf(tw, "  closed trades\t%d\n", len(result.ClosedTrades))
	fmt.Fprintf(tw, "  open quantity\t%.8f\n", result.RemainingQty)
	fmt.Fprintf(tw, "  win rate\t%.2f%%\n", metrics.WinRate*100)
	fmt.Fprintf(tw, "  max drawdown\t%.8f\n", metrics.MaxDrawdown)
	fmt.Fprintf(tw, "  sharpe (annualized)\t%.4f\n", metrics.SharpeRatio)
	return tw.Flush()
}
