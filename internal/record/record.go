// Package record persists one plain-text task record per calendar day.
//
// The writer always emits the full template; the parser is deliberately
// tolerant and recognizes only the section header prefixes and "- "
// bullet lines, ignoring everything else. Files written by earlier CLI
// versions of the format parse the same way.
package record

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DateLayout is the zero-padded ISO layout used for record file names
// and for every date exchanged over the API.
const DateLayout = "2006-01-02"

const (
	recordExt        = ".txt"
	completedHeader  = "✅ Completed Tasks"
	incompleteHeader = "❌ Incomplete Tasks"
)

// Store reads and writes per-day record files inside a single data
// directory. It holds no state between calls beyond the directory path;
// the date index used by LatestBefore is rebuilt on every lookup.
type Store struct {
	dataDir string
	exclude map[string]struct{} // base names that are not day records (report files)
}

// New creates the data directory if needed and returns a store over it.
// excludeNames lists file base names (e.g. "weekly_report.txt") that
// live in the same directory but are not day records.
func New(dataDir string, excludeNames ...string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	ex := make(map[string]struct{}, len(excludeNames))
	for _, n := range excludeNames {
		ex[n] = struct{}{}
	}
	return &Store{dataDir: dataDir, exclude: ex}, nil
}

// Path returns the record file path for a day.
func (s *Store) Path(day time.Time) string {
	return filepath.Join(s.dataDir, day.Format(DateLayout)+recordExt)
}

// Write serializes a day's record, overwriting any existing file for
// that date. Empty sections are written as a single "None" line.
func (s *Store) Write(day time.Time, completed, incomplete []string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "===== %s =====\n", day.Format(DateLayout))
	b.WriteString(completedHeader + ":\n")
	writeSection(&b, completed)
	b.WriteString(incompleteHeader + ":\n")
	writeSection(&b, incomplete)

	if err := os.WriteFile(s.Path(day), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing record for %s: %w", day.Format(DateLayout), err)
	}
	return nil
}

func writeSection(b *strings.Builder, tasks []string) {
	if len(tasks) == 0 {
		b.WriteString("None\n")
		return
	}
	for _, t := range tasks {
		fmt.Fprintf(b, "- %s\n", t)
	}
}

// Read parses a record file into its completed and incomplete task
// lists, preserving order. A missing file yields two empty lists and no
// error. Lines that are neither a recognized section header nor a
// bullet are ignored, so decorative banners and future additions do not
// break parsing.
func (s *Store) Read(path string) (completed, incomplete []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("opening record %s: %w", path, err)
	}
	defer f.Close()

	section := ""
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, completedHeader):
			section = "completed"
		case strings.HasPrefix(line, incompleteHeader):
			section = "incomplete"
		case strings.HasPrefix(line, "- "):
			task := strings.TrimSpace(line[2:])
			switch section {
			case "completed":
				completed = append(completed, task)
			case "incomplete":
				incomplete = append(incomplete, task)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading record %s: %w", path, err)
	}
	return completed, incomplete, nil
}

// ReadDay is Read for the record belonging to a specific date.
func (s *Store) ReadDay(day time.Time) (completed, incomplete []string, err error) {
	return s.Read(s.Path(day))
}

// LatestBefore returns the path of the most recent record strictly
// before cutoff, or ok=false when no earlier record exists. Candidates
// are selected by parsing the date out of each file name; names that do
// not parse as dates (and the excluded report files) are skipped, so
// ordering is by date value rather than by raw string comparison.
func (s *Store) LatestBefore(cutoff time.Time) (path string, ok bool, err error) {
	dates, err := s.knownDates()
	if err != nil {
		return "", false, err
	}
	// dates is sorted ascending; find the predecessor of cutoff.
	i := sort.Search(len(dates), func(i int) bool { return !dates[i].Before(cutoff) })
	if i == 0 {
		return "", false, nil
	}
	return s.Path(dates[i-1]), true, nil
}

// knownDates rebuilds the sorted index of record dates from the data
// directory contents.
func (s *Store) knownDates() ([]time.Time, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("listing data directory: %w", err)
	}
	var dates []time.Time
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		if _, excluded := s.exclude[name]; excluded {
			continue
		}
		d, err := time.Parse(DateLayout, strings.TrimSuffix(name, recordExt))
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// CarryOver returns the incomplete tasks of the most recent record
// strictly before day, in their original order. There is no stored
// carry-over state: the list is recomputed from the prior record every
// time a day is opened.
func (s *Store) CarryOver(day time.Time) ([]string, error) {
	path, ok, err := s.LatestBefore(day)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	_, incomplete, err := s.Read(path)
	if err != nil {
		return nil, err
	}
	return incomplete, nil
}

// CleanTasks trims each task name and drops entries that are empty
// after trimming. Order is preserved.
func CleanTasks(tasks []string) []string {
	var out []string
	for _, t := range tasks {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SplitTasks splits raw multi-line task input into clean task names,
// one per non-blank line.
func SplitTasks(raw string) []string {
	return CleanTasks(strings.Split(raw, "\n"))
}
