package stats

import (
	"math"
	"testing"
	"time"

	"github.com/kalambet/dayorg/internal/history"
	"github.com/kalambet/dayorg/internal/record"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(record.DateLayout, s)
	if err != nil {
		t.Fatalf("parsing test date %q: %v", s, err)
	}
	return d
}

// TestSummarizeEmpty returns all zeros (including the rate) when no
// entries fall in the range.
func TestSummarizeEmpty(t *testing.T) {
	st := Summarize(nil, date(t, "2024-01-01"), date(t, "2024-01-07"))
	if st != (Stats{}) {
		t.Errorf("Summarize(nil) = %+v, want all zeros", st)
	}

	entries := []history.Entry{
		{Date: date(t, "2023-12-31"), Task: "A", Status: history.StatusCompleted},
	}
	st = Summarize(entries, date(t, "2024-01-01"), date(t, "2024-01-07"))
	if st != (Stats{}) {
		t.Errorf("Summarize with out-of-range entries = %+v, want all zeros", st)
	}
}

// TestSummarizeCounts checks counts, distinct-day tracking, and the
// completion rate over a mixed range.
func TestSummarizeCounts(t *testing.T) {
	d1, d2 := date(t, "2024-01-01"), date(t, "2024-01-03")
	entries := []history.Entry{
		{Date: d1, Task: "A", Status: history.StatusCompleted},
		{Date: d1, Task: "B", Status: history.StatusIncomplete},
		{Date: d2, Task: "C", Status: history.StatusCompleted},
	}

	st := Summarize(entries, d1, d2)
	if st.Completed != 2 || st.Incomplete != 1 || st.Total != 3 {
		t.Errorf("counts = %d/%d/%d, want 2/1/3", st.Completed, st.Incomplete, st.Total)
	}
	if st.DaysTracked != 2 {
		t.Errorf("DaysTracked = %d, want 2", st.DaysTracked)
	}
	if math.Abs(st.CompletionRate-66.67) > 0.01 {
		t.Errorf("CompletionRate = %f, want 66.67±0.01", st.CompletionRate)
	}
}

// TestSummarizeInclusiveBounds verifies both range ends are included.
func TestSummarizeInclusiveBounds(t *testing.T) {
	start, end := date(t, "2024-01-02"), date(t, "2024-01-04")
	entries := []history.Entry{
		{Date: date(t, "2024-01-01"), Task: "before", Status: history.StatusCompleted},
		{Date: start, Task: "first", Status: history.StatusCompleted},
		{Date: end, Task: "last", Status: history.StatusCompleted},
		{Date: date(t, "2024-01-05"), Task: "after", Status: history.StatusCompleted},
	}

	st := Summarize(entries, start, end)
	if st.Completed != 2 || st.DaysTracked != 2 {
		t.Errorf("got completed=%d days=%d, want 2 and 2", st.Completed, st.DaysTracked)
	}
}

// TestSummarizeIgnoresUnknownStatus drops rows with a status that is
// neither completed nor incomplete.
func TestSummarizeIgnoresUnknownStatus(t *testing.T) {
	d := date(t, "2024-01-01")
	entries := []history.Entry{
		{Date: d, Task: "A", Status: history.Status("skipped")},
		{Date: d, Task: "B", Status: history.StatusCompleted},
	}

	st := Summarize(entries, d, d)
	if st.Total != 1 || st.Completed != 1 {
		t.Errorf("got total=%d completed=%d, want 1 and 1", st.Total, st.Completed)
	}
}

func TestWeekRange(t *testing.T) {
	start, end := WeekRange(date(t, "2024-03-15"))
	if !start.Equal(date(t, "2024-03-09")) || !end.Equal(date(t, "2024-03-15")) {
		t.Errorf("WeekRange = %s..%s, want 2024-03-09..2024-03-15",
			start.Format(record.DateLayout), end.Format(record.DateLayout))
	}
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(date(t, "2024-03-15"))
	if !start.Equal(date(t, "2024-03-01")) || !end.Equal(date(t, "2024-03-15")) {
		t.Errorf("MonthRange = %s..%s, want 2024-03-01..2024-03-15",
			start.Format(record.DateLayout), end.Format(record.DateLayout))
	}
}
