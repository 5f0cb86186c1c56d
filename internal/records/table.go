package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"landmark-picker/internal/models"
)

// Row is a single table row keyed by column name
type Row map[string]string

// Table is an in-memory CSV table with an ordered header
type Table struct {
	Columns []string
	Rows    []Row
}

// ReadTable loads a CSV table. A missing file yields (nil, nil).
// A ragged or headerless file is reported as ErrMalformedPersistedState.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer f.Close()

	return decodeTable(f, path)
}

func decodeTable(r io.Reader, name string) (*Table, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("table %s: %v: %w", name, err, models.ErrMalformedPersistedState)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("table %s: missing header: %w", name, models.ErrMalformedPersistedState)
	}

	header := records[0]
	seen := make(map[string]bool, len(header))
	for _, col := range header {
		if col == "" || seen[col] {
			return nil, fmt.Errorf("table %s: bad column %q: %w", name, col, models.ErrMalformedPersistedState)
		}
		seen[col] = true
	}

	t := &Table{Columns: header, Rows: make([]Row, 0, len(records)-1)}
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			row[col] = rec[i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Append adds rows, growing the header to the ordered union of both column sets
func (t *Table) Append(columns []string, rows ...Row) {
	have := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		have[c] = true
	}
	for _, c := range columns {
		if !have[c] {
			t.Columns = append(t.Columns, c)
			have[c] = true
		}
	}
	t.Rows = append(t.Rows, rows...)
}

// WriteFile replaces path with the full table
func (t *Table) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create table directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	if err := t.encode(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close table: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace table: %w", err)
	}
	return nil
}

func (t *Table) encode(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	line := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			line[i] = row[col]
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
