package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PolarWolf314/gitseal/internal/audit"
	kerrors "github.com/PolarWolf314/gitseal/internal/errors"
	"github.com/PolarWolf314/gitseal/internal/ui"
	"github.com/PolarWolf314/gitseal/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logUser      string
	logOperation string
	logSince     string
	logUntil     string
	logOneline   bool
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logUser, "user", "", "filter by user name")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation (encrypt, decrypt; comma-separated)")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries on or after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries on or before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logUser = ""
	logOperation = ""
	logSince = ""
	logUntil = ""
	logOneline = false
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the encrypt and decrypt history of this clone",
	Long: `Displays the audit log kept in .git/gitseal/audit.jsonl.

Every encrypt and decrypt run records who ran it, when, and which files
succeeded or failed. The log is local to the clone and never committed.

Examples:
  gitseal log                       # View full log
  gitseal log -n 10                 # Last 10 entries
  gitseal log --reverse             # Most recent first
  gitseal log --operation decrypt   # Filter by operation
  gitseal log --since 2024-01-01    # Filter by date
  gitseal log --json                # JSON output`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")
	out := cmd.OutOrStdout()

	root, err := repoRoot()
	if err != nil {
		return printAndReport(out, err)
	}

	result, err := workflows.Log(context.Background(), workflows.LogOptions{
		Root:       root,
		Limit:      logLimit,
		Reverse:    logReverse,
		User:       logUser,
		Operations: logOperation,
		Since:      logSince,
		Until:      logUntil,
	})
	if errors.Is(err, kerrors.ErrNoFilesFound) {
		fmt.Fprintln(out, ui.Info.Sprint(ui.MarkArrow)+" No audit log yet. Runs are recorded after the first encrypt or decrypt.")
		return nil
	}
	if err != nil {
		return printAndReport(out, err)
	}

	Logger.Debugf("Parsed %d entries from audit log", result.TotalEntriesBeforeFilter)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	if len(result.Entries) == 0 {
		fmt.Fprintln(out, "No audit log entries found matching the filters.")
		return nil
	}

	switch {
	case logJSON:
		return outputLogJSON(out, result.Entries)
	case logOneline:
		outputLogOneline(out, result.Entries)
	default:
		outputLogDefault(out, result.Entries)
	}
	return nil
}

func outputLogJSON(out io.Writer, entries []audit.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries to JSON: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func outputLogOneline(out io.Writer, entries []audit.Entry) {
	for _, e := range entries {
		fmt.Fprintf(out, "%s %s %s %s\n", formatTimestamp(e.Timestamp, "2006-01-02"), e.User, e.Operation, formatDetails(e))
	}
}

func outputLogDefault(out io.Writer, entries []audit.Entry) {
	for _, e := range entries {
		fmt.Fprintf(out, "%-19s  %-16s  %-8s  %s\n",
			formatTimestamp(e.Timestamp, "2006-01-02 15:04:05"), e.User, e.Operation, formatDetails(e))
	}
}

func formatTimestamp(ts, layout string) string {
	t, err := time.Parse(audit.TimeLayout, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format(layout)
}

// formatDetails summarizes an entry, e.g. "3 files, 1 failed (pattern 'src/*')".
func formatDetails(e audit.Entry) string {
	parts := []string{ui.Plural(len(e.Files), "file")}
	if len(e.Failed) > 0 {
		parts[0] += fmt.Sprintf(", %d failed", len(e.Failed))
	}
	if e.Pattern != "" {
		parts = append(parts, "pattern "+ui.Highlight.Sprint(e.Pattern))
	}
	return strings.Join(parts, " ")
}
