package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/dayorg/internal/history"
	"github.com/kalambet/dayorg/internal/record"
	"github.com/kalambet/dayorg/internal/report"
	"github.com/kalambet/dayorg/internal/stats"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Deps holds everything the HTTP handlers need.
type Deps struct {
	Records           *record.Store
	Ledger            *history.Ledger
	WeeklyReportPath  string
	MonthlyReportPath string
	CarryOverEnabled  bool
	WebUI             http.Handler // optional; mounted at / when set
}

// SaveDayRequest is the body of POST /days.
type SaveDayRequest struct {
	Date       string   `json:"date"`
	Completed  []string `json:"completed"`
	Incomplete []string `json:"incomplete"`
}

// DayResponse is a saved or loaded day's record.
type DayResponse struct {
	Date       string   `json:"date"`
	Completed  []string `json:"completed"`
	Incomplete []string `json:"incomplete"`
}

// NewHandler builds the JSON API router.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)

	r.Get("/health", handleHealth)
	r.Post("/days", handleSaveDay(deps))
	r.Get("/days/{date}", handleGetDay(deps))
	r.Get("/carryover", handleCarryOver(deps))
	r.Get("/stats", handleStatsRange(deps))
	r.Get("/stats/{period}", handleStatsPeriod(deps))
	r.Post("/reports/{period}", handleAppendReport(deps))
	r.Get("/history.csv", handleHistoryExport(deps))

	if deps.WebUI != nil {
		r.Get("/", deps.WebUI.ServeHTTP)
	}

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func handleSaveDay(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req SaveDayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		day, err := time.Parse(record.DateLayout, req.Date)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid date %q: expected YYYY-MM-DD", req.Date)
			return
		}

		completed := record.CleanTasks(req.Completed)
		incomplete := record.CleanTasks(req.Incomplete)

		if err := deps.Records.Write(day, completed, incomplete); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save day: %v", err)
			return
		}
		if err := deps.Ledger.Append(day, completed, incomplete); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "day saved but failed to update history: %v", err)
			return
		}

		writeJSON(w, map[string]any{
			"date":       day.Format(record.DateLayout),
			"completed":  len(completed),
			"incomplete": len(incomplete),
			"status":     "saved",
		})
	}
}

func handleGetDay(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, ok := parseDate(w, chi.URLParam(r, "date"))
		if !ok {
			return
		}

		completed, incomplete, err := deps.Records.ReadDay(day)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to read day: %v", err)
			return
		}

		writeJSON(w, DayResponse{
			Date:       day.Format(record.DateLayout),
			Completed:  emptyIfNil(completed),
			Incomplete: emptyIfNil(incomplete),
		})
	}
}

func handleCarryOver(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, ok := parseDate(w, r.URL.Query().Get("date"))
		if !ok {
			return
		}

		var tasks []string
		if deps.CarryOverEnabled {
			var err error
			tasks, err = deps.Records.CarryOver(day)
			if err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to resolve carry-over: %v", err)
				return
			}
		}

		writeJSON(w, map[string]any{
			"date":  day.Format(record.DateLayout),
			"tasks": emptyIfNil(tasks),
		})
	}
}

func handleStatsRange(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, ok := parseDate(w, r.URL.Query().Get("start"))
		if !ok {
			return
		}
		end, ok := parseDate(w, r.URL.Query().Get("end"))
		if !ok {
			return
		}

		st := stats.Summarize(deps.Ledger.Load(), start, end)
		writeStats(w, st, start, end)
	}
}

func handleStatsPeriod(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, ok := parseDate(w, dateOrToday(r.URL.Query().Get("date")))
		if !ok {
			return
		}

		start, end, ok := periodRange(w, chi.URLParam(r, "period"), day)
		if !ok {
			return
		}

		st := stats.Summarize(deps.Ledger.Load(), start, end)
		writeStats(w, st, start, end)
	}
}

func handleAppendReport(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req struct {
			Date string `json:"date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		day, ok := parseDate(w, dateOrToday(req.Date))
		if !ok {
			return
		}

		period := chi.URLParam(r, "period")
		start, end, ok := periodRange(w, period, day)
		if !ok {
			return
		}

		var title, path string
		switch period {
		case "week":
			title, path = "Weekly Report", deps.WeeklyReportPath
		case "month":
			title, path = "Monthly Report", deps.MonthlyReportPath
		}

		st := stats.Summarize(deps.Ledger.Load(), start, end)
		if err := report.Append(path, title, st, start, end); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to write report: %v", err)
			return
		}

		writeJSON(w, map[string]any{
			"path":  path,
			"start": start.Format(record.DateLayout),
			"end":   end.Format(record.DateLayout),
			"stats": st,
		})
	}
}

func handleHistoryExport(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := deps.Ledger.Raw()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to read history: %v", err)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="task_history.csv"`)
		w.Write(data)
	}
}

// --- helpers ---

func periodRange(w http.ResponseWriter, period string, day time.Time) (start, end time.Time, ok bool) {
	switch period {
	case "week":
		start, end = stats.WeekRange(day)
	case "month":
		start, end = stats.MonthRange(day)
	default:
		httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown period %q: expected week or month", period)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseDate(w http.ResponseWriter, s string) (time.Time, bool) {
	d, err := time.Parse(record.DateLayout, s)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid date %q: expected YYYY-MM-DD", s)
		return time.Time{}, false
	}
	return d, true
}

func dateOrToday(s string) string {
	if s == "" {
		return time.Now().Format(record.DateLayout)
	}
	return s
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeStats(w http.ResponseWriter, st stats.Stats, start, end time.Time) {
	writeJSON(w, map[string]any{
		"start": start.Format(record.DateLayout),
		"end":   end.Format(record.DateLayout),
		"stats": st,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
