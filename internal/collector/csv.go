package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"CamarillaBacktester/internal/model"
)

// ErrInvalidSymbol is returned for symbols that cannot name a data file.
var ErrInvalidSymbol = errors.New("invalid symbol")

var csvHeader = []string{"datetime", "open", "high", "low", "close", "volume"}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CSVSource reads daily bars from <Dir>/<SYMBOL>.csv files.
type CSVSource struct {
	Dir      string
	Location *time.Location
}

// NewCSVSource creates a source rooted at dir. Bar times are converted to loc.
func NewCSVSource(dir string, loc *time.Location) *CSVSource {
	if loc == nil {
		loc = time.UTC
	}
	return &CSVSource{Dir: dir, Location: loc}
}

func (s *CSVSource) path(symbol string) (string, error) {
	if symbol == "" || symbol != filepath.Base(symbol) || strings.HasPrefix(symbol, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return filepath.Join(s.Dir, symbol+".csv"), nil
}

// Symbols lists every symbol with a data file, sorted. A missing directory
// yields no symbols.
func (s *CSVSource) Symbols() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	var symbols []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		symbols = append(symbols, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(symbols)
	return symbols, nil
}

// LoadBars reads the history of symbol. A missing file returns model.ErrNoData.
func (s *CSVSource) LoadBars(symbol string) ([]model.OHLCV, error) {
	p, err := s.path(symbol)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", symbol, model.ErrNoData)
		}
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()

	bars, skipped, err := ReadBars(f, s.Location)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	if skipped > 0 {
		log.Debug().Str("symbol", symbol).Int("skipped", skipped).Msg("malformed rows skipped")
	}
	return bars, nil
}

// Save writes bars to the symbol's data file, replacing any previous content.
func (s *CSVSource) Save(symbol string, bars []model.OHLCV) error {
	p, err := s.path(symbol)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp := p + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if err := WriteCSV(f, bars); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, p)
}

// ReadBars parses CSV rows with a datetime,open,high,low,close header (any
// case, extra columns ignored, volume optional). Malformed rows are skipped
// and counted. The result is sorted by time.
func ReadBars(r io.Reader, loc *time.Location) ([]model.OHLCV, int, error) {
	if loc == nil {
		loc = time.UTC
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, 0, err
	}

	var bars []model.OHLCV
	skipped := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				skipped++
				continue
			}
			return nil, 0, err
		}
		bar, ok := parseRow(rec, cols, loc)
		if !ok {
			skipped++
			continue
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, skipped, nil
}

type columns struct {
	datetime, open, high, low, close, volume int
}

func columnIndex(header []string) (columns, error) {
	c := columns{datetime: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "datetime", "date", "timestamp":
			if c.datetime < 0 {
				c.datetime = i
			}
		case "open":
			c.open = i
		case "high":
			c.high = i
		case "low":
			c.low = i
		case "close":
			c.close = i
		case "volume":
			c.volume = i
		}
	}
	if c.datetime < 0 || c.open < 0 || c.high < 0 || c.low < 0 || c.close < 0 {
		return c, fmt.Errorf("missing required column in header %v", header)
	}
	return c, nil
}

func parseRow(rec []string, c columns, loc *time.Location) (model.OHLCV, bool) {
	field := func(i int) (string, bool) {
		if i < 0 || i >= len(rec) {
			return "", false
		}
		return strings.TrimSpace(rec[i]), true
	}
	number := func(i int) (float64, bool) {
		s, ok := field(i)
		if !ok || s == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}

	ts, ok := field(c.datetime)
	if !ok {
		return model.OHLCV{}, false
	}
	t, err := ParseTime(ts)
	if err != nil {
		return model.OHLCV{}, false
	}
	bar := model.OHLCV{Time: t.In(loc)}
	if bar.Open, ok = number(c.open); !ok {
		return model.OHLCV{}, false
	}
	if bar.High, ok = number(c.high); !ok {
		return model.OHLCV{}, false
	}
	if bar.Low, ok = number(c.low); !ok {
		return model.OHLCV{}, false
	}
	if bar.Close, ok = number(c.close); !ok {
		return model.OHLCV{}, false
	}
	if v, ok := number(c.volume); ok {
		bar.Volume = v
	}
	return bar, true
}

// ParseTime accepts RFC3339 and "YYYY-MM-DD[ HH:MM:SS]" timestamps. Values
// without a zone are read as UTC.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// WriteCSV writes bars with a datetime,open,high,low,close,volume header.
// Times are written in RFC3339 UTC.
func WriteCSV(w io.Writer, bars []model.OHLCV) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range bars {
		rec := []string{
			b.Time.UTC().Format(time.RFC3339),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
