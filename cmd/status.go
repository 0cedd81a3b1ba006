package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/PolarWolf314/gitseal/internal/secrets"
	"github.com/PolarWolf314/gitseal/internal/ui"
	"github.com/PolarWolf314/gitseal/internal/workflows"
	"github.com/spf13/cobra"
)

var statusJSONOutput bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSONOutput, "json", false, "output in JSON format")
}

type statusFileJSON struct {
	Path   string `json:"path"`
	OnDisk string `json:"on_disk"`
	State  string `json:"state"`
}

type statusJSON struct {
	Entries  []string         `json:"entries"`
	Files    []statusFileJSON `json:"files"`
	Warnings []string         `json:"warnings,omitempty"`
	Summary  struct {
		Plain     int `json:"plain"`
		Encrypted int `json:"encrypted"`
	} `json:"summary"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List tracked files and whether they are encrypted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting status command")
		out := cmd.OutOrStdout()
		root, err := repoRoot()
		if err != nil {
			return printAndReport(out, err)
		}

		result, err := workflows.Status(context.Background(), workflows.StatusOptions{Root: root})
		if err != nil {
			return printAndReport(out, err)
		}
		Logger.Debugf("Found %d tracked files", len(result.Files))

		if statusJSONOutput {
			return outputStatusJSON(out, result)
		}
		outputStatusText(out, result)
		return nil
	},
}

func outputStatusJSON(out io.Writer, result *workflows.StatusResult) error {
	doc := statusJSON{Entries: result.Entries, Files: []statusFileJSON{}}
	for _, f := range result.Files {
		doc.Files = append(doc.Files, statusFileJSON{Path: f.Path, OnDisk: f.OnDisk, State: f.State.String()})
	}
	for _, w := range result.Warnings {
		doc.Warnings = append(doc.Warnings, w.String())
	}
	doc.Summary.Plain = result.Summary.Plain
	doc.Summary.Encrypted = result.Summary.Encrypted

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status to JSON: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func outputStatusText(out io.Writer, result *workflows.StatusResult) {
	if len(result.Entries) == 0 {
		fmt.Fprintln(out, ui.Info.Sprint(ui.MarkArrow)+" Nothing is tracked yet. Run "+ui.Code.Sprint("gitseal add PATH")+" to start")
		return
	}

	for _, f := range result.Files {
		mark := ui.Warning.Sprint("plain    ")
		if f.State.IsEncrypted() {
			mark = ui.Success.Sprint("encrypted")
		}
		line := fmt.Sprintf("  %s  %s", mark, ui.Path.Sprint(f.Path))
		if f.State == secrets.CompressedEncrypted {
			line += " " + ui.Muted.Sprint("compressed")
		}
		fmt.Fprintln(out, line)
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(out, ui.WarningLine(w.String()))
	}

	fmt.Fprintf(out, "\n%s encrypted, %s plain\n",
		ui.Plural(result.Summary.Encrypted, "file"), ui.Plural(result.Summary.Plain, "file"))
	if result.Summary.Plain > 0 {
		fmt.Fprintln(out, ui.Info.Sprint(ui.MarkArrow)+" Run "+ui.Code.Sprint("gitseal encrypt")+" before committing")
	}
}
