// Package stats computes completion statistics over date ranges of the
// task history.
package stats

import (
	"time"

	"github.com/kalambet/dayorg/internal/history"
	"github.com/kalambet/dayorg/internal/record"
)

// Stats aggregates a closed date range of ledger entries. It is derived
// on demand and never persisted.
type Stats struct {
	DaysTracked    int     `json:"days_tracked"`
	Completed      int     `json:"completed"`
	Incomplete     int     `json:"incomplete"`
	Total          int     `json:"total"`
	CompletionRate float64 `json:"completion_rate"`
}

// Summarize filters entries to start <= date <= end (inclusive on both
// ends) and counts outcomes. DaysTracked counts distinct dates actually
// present in the range, not calendar days. The completion rate is a
// percentage, defined as 0 when no tasks fall in the range.
func Summarize(entries []history.Entry, start, end time.Time) Stats {
	var st Stats
	days := make(map[string]struct{})
	for _, e := range entries {
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		switch e.Status {
		case history.StatusCompleted:
			st.Completed++
		case history.StatusIncomplete:
			st.Incomplete++
		default:
			continue
		}
		days[e.Date.Format(record.DateLayout)] = struct{}{}
	}
	st.DaysTracked = len(days)
	st.Total = st.Completed + st.Incomplete
	if st.Total > 0 {
		st.CompletionRate = float64(st.Completed) / float64(st.Total) * 100
	}
	return st
}

// WeekRange returns the trailing seven-day window ending on day: the
// day itself and the six days before it.
func WeekRange(day time.Time) (start, end time.Time) {
	return day.AddDate(0, 0, -6), day
}

// MonthRange returns the month-to-date window: the first of day's month
// through day.
func MonthRange(day time.Time) (start, end time.Time) {
	return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location()), day
}
