package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// AllTickers is the universe that expands to every symbol with stored data.
const AllTickers = "All Tickers"

// LoadUniverses reads a Symbol,Type stock list and groups symbols by type.
// The result always contains an empty AllTickers entry. A missing file yields
// only that entry.
func LoadUniverses(path string) (map[string][]string, error) {
	universes := map[string][]string{AllTickers: {}}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return universes, nil
		}
		return nil, fmt.Errorf("open stock list: %w", err)
	}
	defer f.Close()

	if err := readUniverses(f, universes); err != nil {
		return nil, fmt.Errorf("read stock list %s: %w", path, err)
	}
	return universes, nil
}

func readUniverses(r io.Reader, universes map[string][]string) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	symCol, typeCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "symbol":
			symCol = i
		case "type":
			typeCol = i
		}
	}
	if symCol < 0 || typeCol < 0 {
		return fmt.Errorf("stock list needs Symbol and Type columns, got %v", header)
	}

	seen := make(map[string]map[string]bool)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				continue
			}
			return err
		}
		if symCol >= len(rec) || typeCol >= len(rec) {
			continue
		}
		sym := strings.TrimSpace(rec[symCol])
		typ := strings.TrimSpace(rec[typeCol])
		if sym == "" || typ == "" || typ == AllTickers {
			continue
		}
		if seen[typ] == nil {
			seen[typ] = make(map[string]bool)
		}
		if seen[typ][sym] {
			continue
		}
		seen[typ][sym] = true
		universes[typ] = append(universes[typ], sym)
	}
	return nil
}

// UniverseNames returns the universe names sorted, AllTickers first.
func UniverseNames(universes map[string][]string) []string {
	names := make([]string, 0, len(universes))
	for name := range universes {
		if name != AllTickers {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := universes[AllTickers]; ok {
		names = append([]string{AllTickers}, names...)
	}
	return names
}
