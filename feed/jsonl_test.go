package feed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantmill/bookback/market"
)

func writeSnapshots(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileSourceNestedFormat(t *testing.T) {
	t.Parallel()

	content := `{"ts": 1700000000000, "data": {"b": [["99.5","2"],["99.0","3"]], "a": [["100.5","1"]]}}

{"timestamp": 1700000001000, "data": {"b": [["99.6","1"]], "a": [["100.4","1"]]}}
`
	path := writeSnapshots(t, "ETHUSDT_3600_sec.jsonl", content)

	s, err := NewFileSource(path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.Equal(t, "ETHUSDT", s.Symbol())

	book, ok, err := s.Next()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ETHUSDT", book.Symbol)
	assert.Equal(t, int64(1700000000000), book.Time)
	assert.Equal(t, []market.Level{{Price: 99.5, Quantity: 2}, {Price: 99.0, Quantity: 3}}, book.Bids)
	assert.Equal(t, []market.Level{{Price: 100.5, Quantity: 1}}, book.Asks)

	// Blank line is skipped; "timestamp" works as an alias for "ts".
	book, ok, err = s.Next()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1700000001000), book.Time)

	_, ok, err = s.Next()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestFileSourceFlatFormat(t *testing.T) {
	t.Parallel()

	content := `{"symbol":"BTCUSDT","bids":[["50000","0.5"]],"asks":[["50010","0.4"]],"timestamp":1700000000000,"update_id":42}
`
	path := writeSnapshots(t, "capture.jsonl", content)

	s, err := NewFileSource(path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	book, ok, err := s.Next()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "BTCUSDT", book.Symbol)
	assert.Equal(t, []market.Level{{Price: 50000, Quantity: 0.5}}, book.Bids)
	assert.Equal(t, []market.Level{{Price: 50010, Quantity: 0.4}}, book.Asks)
}

func TestFileSourceBadRecords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		wantErr error
	}{
		{"not_json", "not json at all", market.ErrDataLoading},
		{"unrecognized_object", `{"foo": 1}`, market.ErrDataLoading},
		{"bad_price", `{"ts": 1700000000000, "data": {"b": [["abc","1"]], "a": []}}`, market.ErrInvalidOrderBook},
		{"bad_quantity", `{"ts": 1700000000000, "data": {"b": [["99.5","xyz"]], "a": []}}`, market.ErrInvalidOrderBook},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeSnapshots(t, "bad.jsonl", tt.line+"\n")
			s, err := NewFileSource(path)
			assert.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })

			_, _, err = s.Next()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFileSourceResetAndTotalCount(t *testing.T) {
	t.Parallel()

	content := `{"ts": 1, "data": {"b": [["99","1"]], "a": [["101","1"]]}}
{"ts": 2, "data": {"b": [["99","1"]], "a": [["101","1"]]}}
`
	path := writeSnapshots(t, "two.jsonl", content)

	s, err := NewFileSource(path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	total, ok := s.TotalCount()
	assert.True(t, ok)
	assert.Equal(t, 2, total)

	first, ok, err := s.Next()
	assert.NoError(t, err)
	assert.True(t, ok)

	_, _, err = s.Next()
	assert.NoError(t, err)

	assert.NoError(t, s.Reset())
	again, ok, err := s.Next()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, first, again)
}

func TestFileSourceMissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.ErrorIs(t, err, market.ErrDataLoading)
}

func TestSymbolFromFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, out string
	}{
		{"ETHUSDT_3600_sec.jsonl", "ETHUSDT"},
		{"BTCUSDT.jsonl", "BTCUSDT"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, SymbolFromFilename(tt.in))
	}
}

func TestSliceSource(t *testing.T) {
	t.Parallel()

	books := []market.OrderBook{{Time: 1}, {Time: 2}}
	s := NewSliceSource(books)

	total, ok := s.TotalCount()
	assert.True(t, ok)
	assert.Equal(t, 2, total)

	b, ok, err := s.Next()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), b.Time)

	_, _, _ = s.Next()
	_, ok, err = s.Next()
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.Reset())
	b, ok, _ = s.Next()
	assert.True(t, ok)
	assert.Equal(t, int64(1), b.Time)
}
