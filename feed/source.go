// Package feed supplies order book snapshots to the replay loop.
package feed

import "github.com/quantmill/bookback/market"

// Source yields order book snapshots one at a time. Implementations
// should be deterministic and return (ok=false, err=nil) at EOF.
type Source interface {
	// Next returns the next snapshot. A parse failure is fatal for the
	// run and is reported as an error wrapping market.ErrDataLoading or
	// market.ErrInvalidOrderBook.
	Next() (book market.OrderBook, ok bool, err error)

	// Reset rewinds the source to the beginning, if supported.
	Reset() error

	// TotalCount reports how many snapshots the source holds, when it
	// can know cheaply. Best effort, for progress reporting only.
	TotalCount() (int, bool)

	Close() error
}

// SliceSource replays an in-memory slice of snapshots. Used by tests
// and for synthetic runs.
type SliceSource struct {
	books []market.OrderBook
	idx   int
}

func NewSliceSource(books []market.OrderBook) *SliceSource {
	return &SliceSource{books: books}
}

func (s *SliceSource) Next() (market.OrderBook, bool, error) {
	if s.idx >= len(s.books) {
		return market.OrderBook{}, false, nil
	}
	b := s.books[s.idx]
	s.idx++
	return b, true, nil
}

func (s *SliceSource) Reset() error {
	s.idx = 0
	return nil
}

func (s *SliceSource) TotalCount() (int, bool) { return len(s.books), true }

func (s *SliceSource) Close() error { return nil }
