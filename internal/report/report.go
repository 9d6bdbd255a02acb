// Package report appends human-readable summary blocks to plain-text
// report files. Reports are write-only artifacts: nothing in the
// program ever parses them back.
package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kalambet/dayorg/internal/record"
	"github.com/kalambet/dayorg/internal/stats"
)

// Append writes one formatted report block followed by a separator line
// to the end of the file at path, creating it if needed. Existing
// content is never truncated.
func Append(path, title string, st stats.Stats, start, end time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n📊 %s (%s → %s) 📊\n", title, start.Format(record.DateLayout), end.Format(record.DateLayout))
	if st.Total == 0 {
		b.WriteString("No tasks recorded in this period.\n")
	} else {
		fmt.Fprintf(&b, "Days tracked: %d\n", st.DaysTracked)
		fmt.Fprintf(&b, "✅ Total Completed: %d\n", st.Completed)
		fmt.Fprintf(&b, "❌ Total Incomplete: %d\n", st.Incomplete)
		fmt.Fprintf(&b, "📈 Completion Rate: %.2f%%\n", st.CompletionRate)
	}
	b.WriteString("\n" + strings.Repeat("=", 40) + "\n")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening report %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("appending report block: %w", err)
	}
	return nil
}
