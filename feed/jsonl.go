package feed

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/quantmill/bookback/market"
)

// bookMessage is the capture-tool wire format:
//
//	{"ts": 1699999999000, "data": {"b": [["price","qty"],...], "a": [...]}}
//
// "timestamp" is accepted as an alias for "ts".
type bookMessage struct {
	TS        int64    `json:"ts"`
	Timestamp int64    `json:"timestamp"`
	Data      bookData `json:"data"`
}

type bookData struct {
	B [][]string `json:"b"`
	A [][]string `json:"a"`
}

// bookMessageV2 is the flat format written by newer capture runs.
type bookMessageV2 struct {
	Symbol    string     `json:"symbol"`
	Bids      [][]string `json:"bids"`
	Asks      [][]string `json:"asks"`
	Timestamp int64      `json:"timestamp"`
	UpdateID  int64      `json:"update_id"`
}

// FileSource reads JSONL order book snapshots, one JSON object per
// line. Both wire formats are accepted; blank lines are skipped.
// The symbol falls back to the filename prefix before the first '_'
// when a record does not carry one.
type FileSource struct {
	path   string
	symbol string

	f       *os.File
	scanner *bufio.Scanner

	total    int
	hasTotal bool
}

// NewFileSource opens a JSONL snapshot file.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", market.ErrDataLoading, path, err)
	}

	s := &FileSource{
		path:   path,
		symbol: SymbolFromFilename(filepath.Base(path)),
		f:      f,
	}
	s.scanner = newScanner(f)
	return s, nil
}

// SymbolFromFilename extracts the symbol from a capture filename,
// e.g. "ETHUSDT_3600_sec.jsonl" -> "ETHUSDT".
func SymbolFromFilename(name string) string {
	if i := strings.IndexByte(name, '_'); i > 0 {
		return name[:i]
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

// Symbol is the symbol inferred from the filename.
func (s *FileSource) Symbol() string { return s.symbol }

func (s *FileSource) Next() (market.OrderBook, bool, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		book, err := s.parseLine(line)
		if err != nil {
			return market.OrderBook{}, false, err
		}
		return book, true, nil
	}
	if err := s.scanner.Err(); err != nil {
		return market.OrderBook{}, false, fmt.Errorf("%w: read %s: %v", market.ErrDataLoading, s.path, err)
	}
	return market.OrderBook{}, false, nil
}

func (s *FileSource) parseLine(line string) (market.OrderBook, error) {
	// Try the flat V2 format first, fall back to the nested one.
	var v2 bookMessageV2
	if err := json.Unmarshal([]byte(line), &v2); err == nil && (len(v2.Bids) > 0 || len(v2.Asks) > 0) {
		symbol := v2.Symbol
		if symbol == "" {
			symbol = s.symbol
		}
		return buildBook(symbol, v2.Bids, v2.Asks, v2.Timestamp)
	}

	var v1 bookMessage
	if err := json.Unmarshal([]byte(line), &v1); err != nil {
		return market.OrderBook{}, fmt.Errorf("%w: bad record in %s: %v", market.ErrDataLoading, s.path, err)
	}
	ts := v1.TS
	if ts == 0 {
		ts = v1.Timestamp
	}
	if ts == 0 && len(v1.Data.B) == 0 && len(v1.Data.A) == 0 {
		return market.OrderBook{}, fmt.Errorf("%w: unrecognized record in %s", market.ErrDataLoading, s.path)
	}
	return buildBook(s.symbol, v1.Data.B, v1.Data.A, ts)
}

func buildBook(symbol string, rawBids, rawAsks [][]string, ts int64) (market.OrderBook, error) {
	bids, err := parseLevels(rawBids, "bid")
	if err != nil {
		return market.OrderBook{}, err
	}
	asks, err := parseLevels(rawAsks, "ask")
	if err != nil {
		return market.OrderBook{}, err
	}
	return market.OrderBook{Symbol: symbol, Bids: bids, Asks: asks, Time: ts}, nil
}

func parseLevels(raw [][]string, side string) ([]market.Level, error) {
	levels := make([]market.Level, 0, len(raw))
	for _, pair := range raw {
		if len(pair) < 2 {
			continue
		}
		price, err := strconv.ParseFloat(pair[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad %s price %q", market.ErrInvalidOrderBook, side, pair[0])
		}
		qty, err := strconv.ParseFloat(pair[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad %s quantity %q", market.ErrInvalidOrderBook, side, pair[1])
		}
		levels = append(levels, market.Level{Price: price, Quantity: qty})
	}
	return levels, nil
}

// Reset rewinds to the start of the file.
func (s *FileSource) Reset() error {
	if _, err := s.f.Seek(0, 0); err != nil {
		return fmt.Errorf("%w: reset %s: %v", market.ErrDataLoading, s.path, err)
	}
	s.scanner = newScanner(s.f)
	return nil
}

// TotalCount counts non-empty lines on first call. Used for progress
// reporting only.
func (s *FileSource) TotalCount() (int, bool) {
	if s.hasTotal {
		return s.total, true
	}

	f, err := os.Open(s.path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	count := 0
	sc := newScanner(f)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			count++
		}
	}
	if sc.Err() != nil {
		return 0, false
	}

	s.total = count
	s.hasTotal = true
	return count, true
}

func (s *FileSource) Close() error {
	if s.f != nil {
		return s.f.Close()
	}
	return nil
}

func newScanner(f *os.File) *bufio.Scanner {
	sc := bufio.NewScanner(f)
	// Depth-50 snapshots run well past the default 64K line limit.
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	return sc
}
