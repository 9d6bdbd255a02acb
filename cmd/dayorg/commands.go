package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/dayorg/internal/config"
	"github.com/kalambet/dayorg/internal/record"
)

func splitFlagTasks(s string) []string {
	if s == "" {
		return nil
	}
	return record.CleanTasks(strings.Split(s, ","))
}

func dateFlag(cmd *cobra.Command) string {
	d, _ := cmd.Flags().GetString("date")
	if d == "" {
		return time.Now().Format(record.DateLayout)
	}
	return d
}

// --- day ---

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Save or show a day's checklist",
}

var daySaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a day's completed and incomplete tasks",
	Long: `Save a day's completed and incomplete tasks.

Examples:
  dayorg day save --done "Finish assignment,Workout" --todo "Read a book"
  dayorg day save --date 2026-08-27 --todo "Pack for trip"
  cat tasks.txt | dayorg day save --stdin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		done, _ := cmd.Flags().GetString("done")
		todo, _ := cmd.Flags().GetString("todo")
		useStdin, _ := cmd.Flags().GetBool("stdin")

		completed := splitFlagTasks(done)
		incomplete := splitFlagTasks(todo)

		if useStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			incomplete = append(incomplete, record.SplitTasks(string(data))...)
		}

		if len(completed) == 0 && len(incomplete) == 0 {
			return fmt.Errorf("no tasks given: use --done, --todo, or --stdin")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		body := map[string]any{
			"date":       dateFlag(cmd),
			"completed":  completed,
			"incomplete": incomplete,
		}
		resp, err := client.post(cmd.Context(), "/days", body)
		if err != nil {
			return err
		}

		var result struct {
			Date       string `json:"date"`
			Completed  int    `json:"completed"`
			Incomplete int    `json:"incomplete"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Saved %d completed and %d incomplete tasks for %s", result.Completed, result.Incomplete, result.Date)
		return nil
	},
}

var dayShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved record for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		date := dateFlag(cmd)
		resp, err := client.get(cmd.Context(), "/days/"+date)
		if err != nil {
			return err
		}

		var day struct {
			Date       string   `json:"date"`
			Completed  []string `json:"completed"`
			Incomplete []string `json:"incomplete"`
		}
		if err := decodeJSON(resp, &day); err != nil {
			return err
		}

		fmt.Printf("%s\n", colorize(colorBold, day.Date))
		printTaskList("✅ Completed", day.Completed)
		printTaskList("❌ Incomplete", day.Incomplete)
		return nil
	},
}

func printTaskList(header string, tasks []string) {
	fmt.Printf("%s:\n", header)
	if len(tasks) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, t := range tasks {
		fmt.Printf("  - %s\n", t)
	}
}

func init() {
	daySaveCmd.Flags().String("date", "", "day to save, YYYY-MM-DD (default: today)")
	daySaveCmd.Flags().String("done", "", "comma-separated completed tasks")
	daySaveCmd.Flags().String("todo", "", "comma-separated incomplete tasks")
	daySaveCmd.Flags().Bool("stdin", false, "read incomplete tasks from stdin, one per line")
	dayShowCmd.Flags().String("date", "", "day to show, YYYY-MM-DD (default: today)")
	dayCmd.AddCommand(daySaveCmd)
	dayCmd.AddCommand(dayShowCmd)
}

// --- carry ---

var carryCmd = &cobra.Command{
	Use:   "carry",
	Short: "Show tasks carried over from the previous day",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/carryover?date="+dateFlag(cmd))
		if err != nil {
			return err
		}

		var result struct {
			Date  string   `json:"date"`
			Tasks []string `json:"tasks"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Tasks) == 0 {
			fmt.Println("Nothing to carry over.")
			return nil
		}
		for _, t := range result.Tasks {
			fmt.Printf("- %s\n", t)
		}
		return nil
	},
}

func init() {
	carryCmd.Flags().String("date", "", "day being opened, YYYY-MM-DD (default: today)")
}

// --- stats ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completion statistics",
}

func newPeriodStatsCmd(period string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   period,
		Short: fmt.Sprintf("Show %sly completion statistics", period),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			resp, err := client.get(cmd.Context(), fmt.Sprintf("/stats/%s?date=%s", period, dateFlag(cmd)))
			if err != nil {
				return err
			}
			return printStatsResponse(resp)
		},
	}
	cmd.Flags().String("date", "", "end of the period, YYYY-MM-DD (default: today)")
	return cmd
}

var statsRangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Show completion statistics for an arbitrary date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		if start == "" || end == "" {
			return fmt.Errorf("both --start and --end are required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/stats?start=%s&end=%s", start, end))
		if err != nil {
			return err
		}
		return printStatsResponse(resp)
	},
}

func printStatsResponse(resp *http.Response) error {
	var result struct {
		Start string `json:"start"`
		End   string `json:"end"`
		Stats struct {
			DaysTracked    int     `json:"days_tracked"`
			Completed      int     `json:"completed"`
			Incomplete     int     `json:"incomplete"`
			Total          int     `json:"total"`
			CompletionRate float64 `json:"completion_rate"`
		} `json:"stats"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		return err
	}

	fmt.Printf("%s\n", colorize(colorBold, fmt.Sprintf("%s → %s", result.Start, result.End)))
	printStatus("Days tracked", "%d", result.Stats.DaysTracked)
	printStatus("Completed", "%d", result.Stats.Completed)
	printStatus("Incomplete", "%d", result.Stats.Incomplete)
	printStatus("Total", "%d", result.Stats.Total)
	printStatus("Completion rate", "%.2f%%", result.Stats.CompletionRate)
	return nil
}

func init() {
	statsRangeCmd.Flags().String("start", "", "range start, YYYY-MM-DD")
	statsRangeCmd.Flags().String("end", "", "range end, YYYY-MM-DD")
	statsCmd.AddCommand(newPeriodStatsCmd("week"))
	statsCmd.AddCommand(newPeriodStatsCmd("month"))
	statsCmd.AddCommand(statsRangeCmd)
}

// --- report ---

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Append a text report to the weekly or monthly report file",
}

func newReportCmd(period string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   period,
		Short: fmt.Sprintf("Append the %sly report block", period),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			resp, err := client.post(cmd.Context(), "/reports/"+period, map[string]any{
				"date": dateFlag(cmd),
			})
			if err != nil {
				return err
			}

			var result struct {
				Path string `json:"path"`
			}
			if err := decodeJSON(resp, &result); err != nil {
				return err
			}

			printSuccess("Saved report to %s", result.Path)
			return nil
		},
	}
	cmd.Flags().String("date", "", "end of the period, YYYY-MM-DD (default: today)")
	return cmd
}

func init() {
	reportCmd.AddCommand(newReportCmd("week"))
	reportCmd.AddCommand(newReportCmd("month"))
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Work with the task history ledger",
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full history CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/history.csv")
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
		}

		var writer io.Writer = os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			writer = f
		}

		if _, err := io.Copy(writer, resp.Body); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}

		if output != "" {
			printSuccess("History exported to %s", output)
		}
		return nil
	},
}

func init() {
	historyExportCmd.Flags().String("output", "", "output file path (default: stdout)")
	historyCmd.AddCommand(historyExportCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
