package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/dayorg/internal/record"
	"github.com/kalambet/dayorg/internal/stats"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(record.DateLayout, s)
	if err != nil {
		t.Fatalf("parsing test date %q: %v", s, err)
	}
	return d
}

// TestAppendBlock writes one report block and checks its contents.
func TestAppendBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weekly_report.txt")
	st := stats.Stats{DaysTracked: 2, Completed: 2, Incomplete: 1, Total: 3, CompletionRate: 66.666667}

	if err := Append(path, "Weekly Report", st, date(t, "2024-01-01"), date(t, "2024-01-07")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"📊 Weekly Report (2024-01-01 → 2024-01-07) 📊",
		"Days tracked: 2",
		"✅ Total Completed: 2",
		"❌ Total Incomplete: 1",
		"📈 Completion Rate: 66.67%",
		strings.Repeat("=", 40),
	} {
		if !strings.Contains(content, want) {
			t.Errorf("report missing %q in:\n%s", want, content)
		}
	}
}

// TestAppendEmptyStats writes the "no tasks" variant instead of zeros.
func TestAppendEmptyStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monthly_report.txt")

	if err := Append(path, "Monthly Report", stats.Stats{}, date(t, "2024-02-01"), date(t, "2024-02-15")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(data), "No tasks recorded in this period.") {
		t.Errorf("report missing no-tasks line:\n%s", data)
	}
	if strings.Contains(string(data), "Days tracked") {
		t.Errorf("empty report should not contain stat lines:\n%s", data)
	}
}

// TestAppendNeverTruncates appends twice and expects both blocks in
// order.
func TestAppendNeverTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weekly_report.txt")

	if err := Append(path, "First", stats.Stats{}, date(t, "2024-01-01"), date(t, "2024-01-07")); err != nil {
		t.Fatalf("first Append: %v", err)
	}
	if err := Append(path, "Second", stats.Stats{}, date(t, "2024-01-08"), date(t, "2024-01-14")); err != nil {
		t.Fatalf("second Append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	content := string(data)

	first := strings.Index(content, "First")
	second := strings.Index(content, "Second")
	if first < 0 || second < 0 {
		t.Fatalf("missing blocks in report:\n%s", content)
	}
	if first > second {
		t.Errorf("blocks out of order in report:\n%s", content)
	}
}
