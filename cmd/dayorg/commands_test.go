package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

// useTestServer points newAPIClient at the fake server for the duration
// of a test.
func useTestServer(t *testing.T, ts *testServer) {
	t.Helper()
	old := newAPIClient
	newAPIClient = func() (*apiClient, error) {
		return &apiClient{
			baseURL:    ts.server.URL,
			httpClient: ts.server.Client(),
		}, nil
	}
	t.Cleanup(func() { newAPIClient = old })
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	defer rootCmd.SetArgs(nil)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// TestDaySaveCommand posts the parsed task lists to /days.
func TestDaySaveCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /days": `{"date":"2024-01-01","completed":2,"incomplete":1,"status":"saved"}`,
	})
	useTestServer(t, ts)

	err := runCommand(t, "day", "save", "--date", "2024-01-01", "--done", "A, B", "--todo", "C")
	if err != nil {
		t.Fatalf("day save failed: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(ts.requests))
	}
	req := ts.requests[0]
	if req.Method != "POST" || req.Path != "/days" {
		t.Errorf("request = %s %s, want POST /days", req.Method, req.Path)
	}

	var body struct {
		Date       string   `json:"date"`
		Completed  []string `json:"completed"`
		Incomplete []string `json:"incomplete"`
	}
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		t.Fatalf("decoding request body: %v", err)
	}
	if body.Date != "2024-01-01" {
		t.Errorf("date = %q, want 2024-01-01", body.Date)
	}
	if len(body.Completed) != 2 || body.Completed[1] != "B" {
		t.Errorf("completed = %v, want [A B]", body.Completed)
	}
	if len(body.Incomplete) != 1 || body.Incomplete[0] != "C" {
		t.Errorf("incomplete = %v, want [C]", body.Incomplete)
	}
}

// TestDaySaveRequiresTasks fails fast without contacting the server.
func TestDaySaveRequiresTasks(t *testing.T) {
	ts := newTestServer(t, nil)
	useTestServer(t, ts)

	// Flag values persist across Execute calls on the shared command
	// tree, so clear the list flags explicitly.
	err := runCommand(t, "day", "save", "--date", "2024-01-01", "--done", "", "--todo", "")
	if err == nil {
		t.Fatal("expected error for save with no tasks")
	}
	if len(ts.requests) != 0 {
		t.Errorf("server was contacted %d times, want 0", len(ts.requests))
	}
}

// TestCarryCommand hits /carryover with the date flag.
func TestCarryCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /carryover": `{"date":"2024-01-03","tasks":["X"]}`,
	})
	useTestServer(t, ts)

	if err := runCommand(t, "carry", "--date", "2024-01-03"); err != nil {
		t.Fatalf("carry failed: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(ts.requests))
	}
	if got := ts.requests[0].Path; got != "/carryover?date=2024-01-03" {
		t.Errorf("path = %q, want /carryover?date=2024-01-03", got)
	}
}

// TestStatsWeekCommand hits the week period endpoint.
func TestStatsWeekCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /stats/week": `{"start":"2023-12-28","end":"2024-01-03","stats":{"days_tracked":2,"completed":2,"incomplete":1,"total":3,"completion_rate":66.67}}`,
	})
	useTestServer(t, ts)

	if err := runCommand(t, "stats", "week", "--date", "2024-01-03"); err != nil {
		t.Fatalf("stats week failed: %v", err)
	}

	if got := ts.requests[0].Path; got != "/stats/week?date=2024-01-03" {
		t.Errorf("path = %q, want /stats/week?date=2024-01-03", got)
	}
}

// TestStatsRangeRequiresBounds rejects a missing --end.
func TestStatsRangeRequiresBounds(t *testing.T) {
	ts := newTestServer(t, nil)
	useTestServer(t, ts)

	if err := runCommand(t, "stats", "range", "--start", "2024-01-01"); err == nil {
		t.Fatal("expected error for missing --end")
	}
}

// TestReportCommand posts to the period report endpoint.
func TestReportCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /reports/month": `{"path":"/data/monthly_report.txt","start":"2024-01-01","end":"2024-01-15","stats":{}}`,
	})
	useTestServer(t, ts)

	if err := runCommand(t, "report", "month", "--date", "2024-01-15"); err != nil {
		t.Fatalf("report month failed: %v", err)
	}

	req := ts.requests[0]
	if req.Method != "POST" || req.Path != "/reports/month" {
		t.Errorf("request = %s %s, want POST /reports/month", req.Method, req.Path)
	}
	if !strings.Contains(req.Body, "2024-01-15") {
		t.Errorf("body = %q, want the date included", req.Body)
	}
}

// TestHistoryExportCommand streams the CSV from the server.
func TestHistoryExportCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /history.csv": "date,task,status\n2024-01-01,A,completed\n",
	})
	useTestServer(t, ts)

	if err := runCommand(t, "history", "export"); err != nil {
		t.Fatalf("history export failed: %v", err)
	}

	if got := ts.requests[0].Path; got != "/history.csv" {
		t.Errorf("path = %q, want /history.csv", got)
	}
}

func TestColorizeNoColor(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "hello")
	if strings.Contains(result, "\033") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}

	noColor = false
	result = colorize(colorGreen, "hello")
	if !strings.Contains(result, "\033") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}
