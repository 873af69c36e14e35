// Package csvfile persists monthly crime files, the combined weather file and
// the cleaned crime table as comma-separated text with a header row.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/bristol-crime-etl/internal/domain"
)

// Store owns the file naming convention inside a single data directory.
//
//	<area>_crime_<YYYY-MM>.csv          one file per month
//	<area>_weather_<YYYY>_<YYYY>.csv    combined weather file
//	<area>_crime_ml_ready.csv           cleaned crime table
type Store struct {
	dir  string
	area string
}

// NewStore creates a Store rooted at dir. area prefixes every file name.
func NewStore(dir, area string) *Store {
	return &Store{dir: dir, area: area}
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// EnsureDir creates the data directory if it does not exist.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return nil
}

func (s *Store) crimePrefix() string {
	return s.area + "_crime_"
}

// CrimeMonthPath returns the path of the monthly crime file for m.
func (s *Store) CrimeMonthPath(m domain.Month) string {
	return filepath.Join(s.dir, s.crimePrefix()+m.String()+".csv")
}

// WeatherPath returns the path of the combined weather file for the window.
func (s *Store) WeatherPath(start, end domain.Month) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_weather_%04d_%04d.csv", s.area, start.Year, end.Year))
}

// CleanedPath returns the path of the cleaned crime table.
func (s *Store) CleanedPath() string {
	return filepath.Join(s.dir, s.crimePrefix()+"ml_ready.csv")
}

// WriteCrimeMonth writes records to the monthly file for m, replacing any
// existing file. The header is the union of record keys in first-seen order.
func (s *Store) WriteCrimeMonth(m domain.Month, records []domain.CrimeRecord) (string, error) {
	columns := domain.CrimeColumns(records)
	rows := make([][]string, len(records))
	for i := range records {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = records[i].Cell(c)
		}
		rows[i] = row
	}

	path := s.CrimeMonthPath(m)
	if err := writeFile(path, columns, rows); err != nil {
		return "", err
	}
	return path, nil
}

// WriteWeather writes the combined weather file, replacing any existing file.
func (s *Store) WriteWeather(path string, records []domain.WeatherRecord) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = r.Cells()
	}
	return writeFile(path, domain.WeatherColumns, rows)
}

// WriteTable writes t to path, replacing any existing file.
func (s *Store) WriteTable(path string, t domain.Table) error {
	rows := make([][]string, len(t.Rows))
	for i := range t.Rows {
		rows[i] = t.Cells(i)
	}
	return writeFile(path, t.Columns, rows)
}

// CrimeMonthFiles lists monthly crime files in the data directory in
// chronological order. Only names carrying a valid month token match, so the
// cleaned table is never picked up as input.
func (s *Store) CrimeMonthFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list data directory: %w", err)
	}

	prefix := s.crimePrefix()
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".csv") {
			continue
		}
		token := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".csv")
		if _, err := domain.ParseMonth(token); err != nil {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, name))
	}
	return paths, nil
}

// ReadTable reads a CSV file with a header row. Empty cells are missing. A
// file with no header, or with rows whose width differs from the header, is
// rejected with a *domain.ParseError.
func ReadTable(path string) (domain.Table, error) {
	t, err := readTable(path)
	if err != nil {
		return domain.Table{}, &domain.ParseError{Path: path, Err: err}
	}
	return t, nil
}

// ReadTable reads one of the store's files.
func (s *Store) ReadTable(path string) (domain.Table, error) {
	return ReadTable(path)
}

func readTable(path string) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Table{}, errors.New("no columns to parse")
		}
		return domain.Table{}, fmt.Errorf("read header: %w", err)
	}

	t := domain.Table{Columns: uniqueColumns(header)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, fmt.Errorf("read csv: %w", err)
		}
		row := make(domain.Row, len(record))
		for i, v := range record {
			if v == "" {
				continue
			}
			row[t.Columns[i]] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// uniqueColumns suffixes repeated header names with ".1", ".2", ..., skipping
// any suffixed name already used or present elsewhere in the header.
func uniqueColumns(header []string) []string {
	reserved := make(map[string]bool, len(header))
	for _, h := range header {
		reserved[h] = true
	}

	used := make(map[string]bool, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		name := h
		for n := 1; used[name]; n++ {
			candidate := fmt.Sprintf("%s.%d", h, n)
			if !used[candidate] && !reserved[candidate] {
				name = candidate
			}
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// writeFile writes the table to a temporary file in the target directory and
// renames it over path, so readers never observe a partial file.
func writeFile(path string, header []string, rows [][]string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
