// Package report renders run results for human consumption.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/quantmill/bookback/exec"
	"github.com/quantmill/bookback/pnl"
)

// Summary collects everything a finished run produces.
type Summary struct {
	Symbol    string
	Books     int
	Proposals int

	FIFO        pnl.Result
	Position    pnl.Result
	FIFOMetrics pnl.TradeMetrics

	Execution exec.Stats
	Capital   pnl.CapitalMetrics
}

// WriteSummary prints the run summary as aligned sections.
func WriteSummary(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Backtest summary\t%s\n", s.Symbol)
	fmt.Fprintf(tw, "  order books replayed\t%d\n", s.Books)
	fmt.Fprintf(tw, "  trade proposals\t%d\n", s.Proposals)
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Execution\t\n")
	fmt.Fprintf(tw, "  filled\t%d\n", s.Execution.FilledTrades)
	fmt.Fprintf(tw, "  rejected\t%d\n", s.Execution.RejectedTrades)
	fmt.Fprintf(tw, "  unfilled\t%d\n", s.Execution.TotalTrades-s.Execution.FilledTrades-s.Execution.RejectedTrades)
	fmt.Fprintf(tw, "  fill ratio\t%.2f%%\n", s.Execution.FillRatio()*100)
	fmt.Fprintf(tw, "  slippage paid\t%.8f\n", s.Execution.TotalSlippage)
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "P&L (FIFO)\t\n")
	writeResult(tw, s.FIFO)
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "P&L (Position)\t\n")
	writeResult(tw, s.Position)
	fmt.Fprintln(tw)

	m := s.FIFOMetrics
	fmt.Fprintf(tw, "Trade metrics (FIFO)\t\n")
	fmt.Fprintf(tw, "  round trips\t%d\n", m.TotalTrades)
	fmt.Fprintf(tw, "  win rate\t%.2f%%\n", m.WinRate*100)
	fmt.Fprintf(tw, "  avg win / avg loss\t%.8f / %.8f\n", m.AvgWin, m.AvgLoss)
	fmt.Fprintf(tw, "  profit factor\t%.4f\n", m.ProfitFactor)
	// MaxDrawdownPct is already in percent, unlike the WinRate fraction.
	fmt.Fprintf(tw, "  max drawdown\t%.8f (%.2f%%)\n", m.MaxDrawdown, m.MaxDrawdownPct)
	fmt.Fprintf(tw, "  sharpe (annualized)\t%.4f\n", m.SharpeRatio)
	fmt.Fprintln(tw)

	c := s.Capital
	fmt.Fprintf(tw, "Capital\t\n")
	fmt.Fprintf(tw, "  max required\t%.8f\n", c.MaxRequiredCapital)
	fmt.Fprintf(tw, "  peak margin\t%.8f\n", c.PeakMargin)
	fmt.Fprintf(tw, "  max exposure\t%.8f\n", c.MaxExposure)
	fmt.Fprintf(tw, "  max unrealized loss\t%.8f\n", c.MaxUnrealizedLoss)
	fmt.Fprintf(tw, "  avg required\t%.8f\n", c.AverageUtilization)

	return tw.Flush()
}

func writeResult(w io.Writer, r pnl.Result) {
	fmt.Fprintf(w, "  realized\t%.8f\n", r.RealizedPnL)
	fmt.Fprintf(w, "  unrealized\t%.8f\n", r.UnrealizedPnL)
	fmt.Fprintf(w, "  total\t%.8f\n", r.RealizedPnL+r.UnrealizedPnL)
	fmt.Fprintf(w, "  closed trades\t%d\n", len(r.ClosedTrades))
	fmt.Fprintf(w, "  open quantity\t%.8f\n", r.RemainingQty)
}
