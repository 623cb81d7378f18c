// Package replay drives a strategy over a recorded snapshot stream,
// routing proposals through the execution simulator and into the
// ledger.
package replay

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/quantmill/bookback/exec"
	"github.com/quantmill/bookback/feed"
	"github.com/quantmill/bookback/ledger"
	"github.com/quantmill/bookback/market"
	"github.com/quantmill/bookback/strategy"
)

// Runner owns one backtest run. Source, Strategy and Simulator are
// required; Log defaults to a nop logger. A Runner and its ledger
// must not be shared across concurrent runs.
type Runner struct {
	Source    feed.Source
	Strategy  strategy.Strategy
	Simulator *exec.Simulator
	Log       *zap.Logger
}

// Run executes the replay loop to source exhaustion:
//
//  1. propose; nothing proposed means move on
//  2. record the proposal and the snapshot it came from
//  3. execute, then apply the status transition to the ledger
//  4. feed the outcome back to the strategy, filled or not
//
// Any source error is fatal and returned unchanged; partial results
// are not surfaced. An empty source yields an empty ledger.
func (r *Runner) Run() (*ledger.Ledger, error) {
	if r.Source == nil {
		return nil, fmt.Errorf("replay: source is required")
	}
	if r.Strategy == nil {
		return nil, fmt.Errorf("replay: strategy is required")
	}
	if r.Simulator == nil {
		return nil, fmt.Errorf("replay: simulator is required")
	}

	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	led := ledger.New(log)

	total, hasTotal := r.Source.TotalCount()
	processed := 0
	lastProgress := 0

	for {
		book, ok, err := r.Source.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		if proposal := r.Strategy.Propose(book); proposal != nil {
			led.AddTrade(*proposal)
			led.AddBook(book)

			if outcome := r.Simulator.Execute(proposal); outcome != nil {
				led.ChangeStatus(outcome.ID, outcome.Status)
				r.Strategy.OnExecution(outcome, outcome.Status == market.Filled)
			}
		}

		processed++
		if hasTotal && total > 0 {
			progress := processed * 100 / total
			if progress >= lastProgress+10 {
				log.Info("replay progress",
					zap.Int("percent", progress),
					zap.Int("processed", processed),
					zap.Int("total", total),
				)
				lastProgress = progress
			}
		}
	}

	log.Info("replay complete",
		zap.Int("snapshots", processed),
		zap.Int("proposals", led.Len()),
	)
	return led, nil
}
