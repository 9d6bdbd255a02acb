package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/dayorg/internal/record"
	"github.com/kalambet/dayorg/internal/stats"
)

// MCPDeps holds dependencies for the MCP server. It reuses the HTTP
// handler deps since the tools mirror the API surface.
type MCPDeps struct {
	Deps
}

// NewMCPServer creates an MCP server exposing the day tracker to agent
// clients over stdio.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"dayorg",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("dayorg — single-user daily task tracker: save a day's checklist, carry unfinished tasks forward, and read completion stats."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("save_day",
			mcp.WithDescription("Persist the completed and incomplete task lists for one calendar day and append them to the history ledger."),
			mcp.WithString("date", mcp.Description("Day to save, YYYY-MM-DD"), mcp.Required()),
			mcp.WithArray("completed", mcp.Description("Task names finished that day")),
			mcp.WithArray("incomplete", mcp.Description("Task names left unfinished that day")),
		),
		mcpSaveDay(deps),
	)

	s.AddTool(
		mcp.NewTool("get_day",
			mcp.WithDescription("Read the saved record for one calendar day."),
			mcp.WithString("date", mcp.Description("Day to read, YYYY-MM-DD"), mcp.Required()),
		),
		mcpGetDay(deps),
	)

	s.AddTool(
		mcp.NewTool("carry_over",
			mcp.WithDescription("List the unfinished tasks from the most recent day saved before the given date."),
			mcp.WithString("date", mcp.Description("Day being opened, YYYY-MM-DD"), mcp.Required()),
		),
		mcpCarryOver(deps),
	)

	s.AddTool(
		mcp.NewTool("range_stats",
			mcp.WithDescription("Compute completion statistics over an inclusive date range of the history ledger."),
			mcp.WithString("start", mcp.Description("Range start, YYYY-MM-DD"), mcp.Required()),
			mcp.WithString("end", mcp.Description("Range end, YYYY-MM-DD"), mcp.Required()),
		),
		mcpRangeStats(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"dayorg://history",
			"Task History",
			mcp.WithResourceDescription("Full task history ledger as CSV (date, task, status)"),
			mcp.WithMIMEType("text/csv"),
		),
		mcpResourceHistory(deps),
	)

	return s
}

func mcpSaveDay(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dateStr, err := req.RequireString("date")
		if err != nil {
			return mcpError("date is required"), nil
		}
		day, err := time.Parse(record.DateLayout, dateStr)
		if err != nil {
			return mcpError(fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", dateStr)), nil
		}

		completed := record.CleanTasks(req.GetStringSlice("completed", nil))
		incomplete := record.CleanTasks(req.GetStringSlice("incomplete", nil))

		if err := deps.Records.Write(day, completed, incomplete); err != nil {
			return mcpError(fmt.Sprintf("failed to save day: %v", err)), nil
		}
		if err := deps.Ledger.Append(day, completed, incomplete); err != nil {
			return mcpError(fmt.Sprintf("day saved but failed to update history: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Saved %d completed and %d incomplete tasks for %s",
			len(completed), len(incomplete), day.Format(record.DateLayout))), nil
	}
}

func mcpGetDay(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dateStr, err := req.RequireString("date")
		if err != nil {
			return mcpError("date is required"), nil
		}
		day, err := time.Parse(record.DateLayout, dateStr)
		if err != nil {
			return mcpError(fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", dateStr)), nil
		}

		completed, incomplete, err := deps.Records.ReadDay(day)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to read day: %v", err)), nil
		}

		b, err := json.Marshal(DayResponse{
			Date:       day.Format(record.DateLayout),
			Completed:  emptyIfNil(completed),
			Incomplete: emptyIfNil(incomplete),
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal day: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpCarryOver(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dateStr, err := req.RequireString("date")
		if err != nil {
			return mcpError("date is required"), nil
		}
		day, err := time.Parse(record.DateLayout, dateStr)
		if err != nil {
			return mcpError(fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", dateStr)), nil
		}

		var tasks []string
		if deps.CarryOverEnabled {
			tasks, err = deps.Records.CarryOver(day)
			if err != nil {
				return mcpError(fmt.Sprintf("failed to resolve carry-over: %v", err)), nil
			}
		}

		b, err := json.Marshal(emptyIfNil(tasks))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal tasks: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpRangeStats(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startStr, err := req.RequireString("start")
		if err != nil {
			return mcpError("start is required"), nil
		}
		endStr, err := req.RequireString("end")
		if err != nil {
			return mcpError("end is required"), nil
		}
		start, err := time.Parse(record.DateLayout, startStr)
		if err != nil {
			return mcpError(fmt.Sprintf("invalid start date %q: expected YYYY-MM-DD", startStr)), nil
		}
		end, err := time.Parse(record.DateLayout, endStr)
		if err != nil {
			return mcpError(fmt.Sprintf("invalid end date %q: expected YYYY-MM-DD", endStr)), nil
		}

		st := stats.Summarize(deps.Ledger.Load(), start, end)
		b, err := json.Marshal(st)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal stats: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceHistory(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := deps.Ledger.Raw()
		if err != nil {
			return nil, fmt.Errorf("failed to read history: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "text/csv",
				Text:     string(data),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
