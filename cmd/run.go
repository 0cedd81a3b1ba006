package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/PolarWolf314/gitseal/internal/secrets"
	"github.com/PolarWolf314/gitseal/internal/ui"
	"github.com/PolarWolf314/gitseal/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	runWorkers int
	runDryRun  bool
	runNoStage bool
)

func init() {
	for _, c := range []*cobra.Command{encryptCmd, decryptCmd} {
		c.Flags().StringVarP(&passwordFlag, "password", "p", "", "repository password (default: $GITSEAL_PASSWORD or prompt)")
		c.Flags().IntVarP(&runWorkers, "workers", "j", 0, "number of files processed in parallel (default: number of CPUs)")
		c.Flags().BoolVar(&runDryRun, "dry-run", false, "list the files that would be processed without changing anything")
	}
	encryptCmd.Flags().BoolVar(&runNoStage, "no-stage", false, "do not run git add -A before and after encrypting")
}

func resetRunCommandState() {
	runWorkers = 0
	runDryRun = false
	runNoStage = false
}

var encryptCmd = &cobra.Command{
	Use:     "encrypt",
	Aliases: []string{"e"},
	Short:   "Encrypt every tracked file that is still plaintext",
	Long: `Encrypts every file covered by the crypt list in place.

Each file is compressed with zstd when that makes it smaller, then sealed
with AES-GCM-SIV. The result replaces the file as NAME.enc or NAME.zst.enc.
The working tree is staged with git add -A before and after the run.

Examples:
  gitseal encrypt
  gitseal encrypt --dry-run
  GITSEAL_PASSWORD=... gitseal encrypt --no-stage`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting encrypt command")
		return runTransform(cmd, secrets.Encrypt, "")
	},
}

var decryptCmd = &cobra.Command{
	Use:     "decrypt [PATTERN]",
	Aliases: []string{"d"},
	Short:   "Decrypt tracked files, optionally only those matching PATTERN",
	Long: `Decrypts tracked artifacts back to plaintext in place.

PATTERN is a glob matched against the plaintext path relative to the
repository root. '*' and '?' stay within one directory, '**' crosses
directories.

Examples:
  gitseal decrypt
  gitseal decrypt 'config/*.env'
  gitseal decrypt 'secrets/**'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting decrypt command")
		pattern := ""
		if len(args) == 1 {
			pattern = args[0]
		}
		return runTransform(cmd, secrets.Decrypt, pattern)
	},
}

func runTransform(cmd *cobra.Command, op secrets.Operation, pattern string) error {
	out := cmd.OutOrStdout()

	root, err := repoRoot()
	if err != nil {
		return printAndReport(out, err)
	}

	password, err := readPassword(false)
	if err != nil {
		return printAndReport(out, err)
	}

	verb := "Encrypting"
	if op == secrets.Decrypt {
		verb = "Decrypting"
	}
	spinner, cleanup := startSpinner(verb+" tracked files...", out)
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runOpts := workflows.RunOptions{
		Root:     root,
		Password: password,
		Workers:  runWorkers,
		DryRun:   runDryRun,
		OnFile: func(o secrets.Outcome) {
			if o.OK() {
				Logger.Debugf("%s %s -> %s", op, o.Source, o.Target)
			} else {
				Logger.Debugf("%s %s failed: %v", op, o.Source, o.Err)
			}
		},
	}

	var result *workflows.RunResult
	if op == secrets.Encrypt {
		result, err = workflows.Encrypt(ctx, workflows.EncryptOptions{RunOptions: runOpts, NoStage: runNoStage})
	} else {
		result, err = workflows.Decrypt(ctx, workflows.DecryptOptions{RunOptions: runOpts, Pattern: pattern})
	}

	if result == nil {
		Logger.Errorf("%s failed: %v", op, err)
		spinner.FinalMSG = formatError(err)
		return reported(err)
	}

	spinner.FinalMSG = formatRunResult(result, err)
	if err != nil {
		return reported(err)
	}
	return nil
}

// formatRunResult renders warnings, one line per file and a summary.
func formatRunResult(result *workflows.RunResult, err error) string {
	var b strings.Builder

	for _, w := range result.Warnings {
		b.WriteString(ui.WarningLine(w.String()))
		b.WriteString("\n")
	}

	if result.DryRun {
		if len(result.Candidates) == 0 {
			b.WriteString(ui.Info.Sprint(ui.MarkArrow) + " Nothing to " + result.Op.String() + " " + ui.Muted.Sprint("dry run"))
			return b.String()
		}
		b.WriteString("Would " + result.Op.String() + ":")
		for _, c := range result.Candidates {
			b.WriteString("\n  " + ui.Path.Sprint(c))
		}
		b.WriteString("\n" + ui.Muted.Sprint("dry run, no files were changed"))
		return b.String()
	}

	for _, o := range result.Outcomes.Outcomes() {
		b.WriteString(ui.FileLine(result.Rel(o.Source), result.Rel(o.Target), o.Err))
		b.WriteString("\n")
	}

	verb := "Encrypted"
	if result.Op == secrets.Decrypt {
		verb = "Decrypted"
	}
	b.WriteString(ui.Summary(verb, result.Succeeded(), result.Failed()))

	if err != nil && result.Failed() == 0 {
		// Staging failed after an otherwise clean run.
		b.WriteString("\n" + formatError(err))
	}
	b.WriteString(authenticationHint(err))

	if result.Op == secrets.Encrypt && result.Succeeded() > 0 && err == nil {
		b.WriteString("\n" + ui.Info.Sprint(ui.MarkArrow) + " You can now safely commit the encrypted files")
	}
	return b.String()
}

// printAndReport prints err for commands that fail before their spinner starts.
func printAndReport(out io.Writer, err error) error {
	Logger.Errorf("%v", err)
	fmt.Fprint(out, ui.EnsureNewline(formatError(err)))
	return reported(err)
}
