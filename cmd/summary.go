// ABOUTME: Summary command for the inventory-admin CLI
// ABOUTME: Shows device counts per status and per brand with text bars

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ptisa/inventory-admin/internal/summary"
	"github.com/spf13/cobra"
)

const barWidth = 20

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show inventory composition",
	Long: `Show how many devices are in each status and of each brand.

Exit codes:
  0 - Shown
  1 - Not signed in or session rejected
  2 - Error (connectivity)`,
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, logStderr, runSummary)
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

// runSummary fetches devices, aggregates them, and returns exit code
func runSummary(ctx context.Context, w io.Writer, rt *runtime) int {
	if !requireSession(w, rt) {
		return exitAuth
	}

	list, err := rt.client.Devices(ctx)
	if err != nil {
		return reportAPIError(w, rt, err)
	}

	s := summary.Build(list)
	if IsJSONOutput() {
		fmt.Fprintln(w, formatSummaryJSON(s))
	} else {
		fmt.Fprintln(w, formatSummaryHuman(s))
	}
	return exitOK
}

// formatSummaryHuman formats the summary for human readability
func formatSummaryHuman(s summary.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Devices: %d\n", s.Total)
	writeBuckets(&sb, "By status", s, s.ByStatus)
	writeBuckets(&sb, "By brand", s, s.ByBrand)
	return strings.TrimRight(sb.String(), "\n")
}

func writeBuckets(sb *strings.Builder, title string, s summary.Summary, buckets []summary.Bucket) {
	fmt.Fprintf(sb, "\n%s\n", title)
	if len(buckets) == 0 {
		sb.WriteString("  (none)\n")
		return
	}

	nameWidth := 0
	for _, b := range buckets {
		nameWidth = max(nameWidth, len([]rune(b.Name)))
	}
	for _, b := range buckets {
		pct := s.Percent(b)
		pad := strings.Repeat(" ", nameWidth-len([]rune(b.Name)))
		fmt.Fprintf(sb, "  %s%s  %4d  %5.1f%%  %s\n", b.Name, pad, b.Count, pct, textBar(pct, barWidth))
	}
}

// textBar draws percent as a fixed-width bar
func textBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// formatSummaryJSON formats the summary as JSON
func formatSummaryJSON(s summary.Summary) string {
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
