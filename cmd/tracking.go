package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/gitseal/internal/ui"
	"github.com/PolarWolf314/gitseal/internal/utils"
	"github.com/PolarWolf314/gitseal/internal/workflows"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add PATH...",
	Short: "Track files or directories for encryption",
	Long: `Adds paths, relative to the repository root, to the crypt list in
gitseal.toml. A directory covers every file beneath it, including files
created later.

Paths ending in .enc or .zst cannot be tracked.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting add command for %d paths", len(args))
		out := cmd.OutOrStdout()
		root, err := repoRoot()
		if err != nil {
			return printAndReport(out, err)
		}

		report, err := workflows.Add(context.Background(), workflows.AddOptions{Root: root, Paths: args})
		if err != nil {
			return printAndReport(out, err)
		}

		var b strings.Builder
		for _, w := range report.Warnings {
			b.WriteString(ui.WarningLine(w) + "\n")
		}
		if len(report.Skipped) > 0 {
			b.WriteString(ui.Info.Sprint(ui.MarkArrow) + " Already tracked:" + utils.FormatPaths(report.Skipped))
		}
		if len(report.Added) > 0 {
			b.WriteString(ui.Success.Sprint(ui.MarkOK) + " Now tracking:" + utils.FormatPaths(report.Added))
			b.WriteString(ui.Info.Sprint(ui.MarkArrow) + " Run " + ui.Code.Sprint("gitseal encrypt") + " to encrypt them")
		}
		fmt.Fprint(out, ui.EnsureNewline(b.String()))
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove PATH...",
	Short: "Stop tracking files or directories",
	Long: `Removes entries from the crypt list. Files on disk are not touched: an
encrypted file stays encrypted until it is decrypted before removal.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting remove command for %d paths", len(args))
		out := cmd.OutOrStdout()
		root, err := repoRoot()
		if err != nil {
			return printAndReport(out, err)
		}

		removed, err := workflows.Remove(context.Background(), workflows.RemoveOptions{Root: root, Paths: args})
		if err != nil {
			return printAndReport(out, err)
		}

		fmt.Fprint(out, ui.Success.Sprint(ui.MarkOK)+" No longer tracking:"+utils.FormatPaths(removed))
		return nil
	},
}
