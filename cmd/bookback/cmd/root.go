package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bookback",
	Short: "Order book replay backtesting for market-making strategies",
	Long: `Bookback replays recorded order book snapshots through a trading
strategy, simulates execution with configurable fill, slippage and
rejection rates, and reports P&L under both FIFO and position-average
accounting.

It provides tools for:
  - Replaying JSONL order book captures through a market-maker strategy
  - Stochastic execution simulation with deterministic seeds
  - Dual-method P&L accounting (FIFO and position average)
  - Capital requirement and drawdown analysis
  - Journaling trades and capital usage to CSV or SQLite`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
