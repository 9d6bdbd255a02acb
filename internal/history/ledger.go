// Package history maintains the cumulative CSV ledger of every task
// ever saved, one (date, task, status) row per task per save.
package history

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kalambet/dayorg/internal/record"
)

// Status is the recorded outcome of a task on a given day.
type Status string

const (
	StatusCompleted  Status = "completed"
	StatusIncomplete Status = "incomplete"
)

var header = []string{"date", "task", "status"}

// Entry is one typed ledger row.
type Entry struct {
	Date   time.Time `json:"date"`
	Task   string    `json:"task"`
	Status Status    `json:"status"`
}

// Ledger is an append-only CSV file. Saving the same day twice appends
// duplicate rows; the ledger never dedups or replaces prior entries.
type Ledger struct {
	path string
}

func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// ensure creates the ledger with its header row if it does not exist.
func (l *Ledger) ensure() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking ledger: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(header)
	w.Flush()
	if err := os.WriteFile(l.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}
	return nil
}

// Append adds one row per task to the end of the ledger, completed
// tasks first. Prior rows are retained untouched. With both lists
// empty the ledger file is still created but no rows are written.
//
// The whole file is read and rewritten; there is no streaming append
// contract, only the observable "old rows kept, new rows at the end".
func (l *Ledger) Append(day time.Time, completed, incomplete []string) error {
	if err := l.ensure(); err != nil {
		return err
	}
	if len(completed) == 0 && len(incomplete) == 0 {
		return nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}

	date := day.Format(record.DateLayout)
	var buf bytes.Buffer
	buf.Write(data)
	if n := len(data); n > 0 && data[n-1] != '\n' {
		buf.WriteByte('\n')
	}
	w := csv.NewWriter(&buf)
	for _, t := range completed {
		w.Write([]string{date, t, string(StatusCompleted)})
	}
	for _, t := range incomplete {
		w.Write([]string{date, t, string(StatusIncomplete)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encoding ledger rows: %w", err)
	}

	if err := os.WriteFile(l.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	return nil
}

// Load parses the full ledger into typed entries. A missing file is an
// empty ledger. Any parse failure degrades to an empty result instead
// of an error: callers treat a corrupt ledger and an empty one
// identically.
func (l *Ledger) Load() []Entry {
	f, err := os.Open(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("could not open ledger, treating as empty", "path", l.path, "error", err)
		}
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		slog.Warn("corrupt ledger, treating as empty", "path", l.path, "error", err)
		return nil
	}

	var entries []Entry
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) != 3 {
			slog.Warn("malformed ledger row, treating ledger as empty", "path", l.path, "row", i)
			return nil
		}
		d, err := time.Parse(record.DateLayout, row[0])
		if err != nil {
			slog.Warn("unparseable ledger date, treating ledger as empty", "path", l.path, "row", i, "error", err)
			return nil
		}
		entries = append(entries, Entry{Date: d, Task: row[1], Status: Status(row[2])})
	}
	return entries
}

// Raw returns the ledger file's bytes for export, creating the empty
// ledger first if needed.
func (l *Ledger) Raw() ([]byte, error) {
	if err := l.ensure(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	return data, nil
}
