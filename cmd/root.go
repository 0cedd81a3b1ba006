package cmd

import (
	"errors"
	"fmt"
	"os"

	logger "github.com/PolarWolf314/gitseal/internal/logging"
	"github.com/PolarWolf314/gitseal/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool
	debug   bool
	repoDir string
	Logger  logger.Logger

	RootCmd = &cobra.Command{
		Use:   "gitseal",
		Short: "gitseal - transparent encryption of tracked files in a git repository",
		Long: `gitseal encrypts selected files of a git repository in place with a
shared password, so they can be committed and pushed without exposing
their contents.

Tracked files are listed in gitseal.toml. Encrypted files carry a .enc
suffix, or .zst.enc when they were compressed first.

Typical workflow:
  gitseal set-password
  gitseal add secrets/ config/prod.env
  gitseal encrypt
  git commit -m "update secrets"
  gitseal decrypt`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	RootCmd.PersistentFlags().StringVar(&repoDir, "repo", "", "repository to operate on (default: the one containing the working directory)")

	RootCmd.AddCommand(setPasswordCmd)
	RootCmd.AddCommand(setCmd)
	RootCmd.AddCommand(addCmd)
	RootCmd.AddCommand(removeCmd)
	RootCmd.AddCommand(encryptCmd)
	RootCmd.AddCommand(decryptCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(logCmd)
}

// reportedError marks an error whose message was already printed, so
// Execute only has to set the exit code.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := RootCmd.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

// repoRoot resolves the repository the command acts on.
func repoRoot() (string, error) {
	root, err := utils.ResolveRepoRoot(repoDir)
	if err != nil {
		return "", err
	}
	Logger.Debugf("Repository root: %s", root)
	return root, nil
}

// Helper functions for testing

// GetRootCmd returns the RootCmd for testing.
func GetRootCmd() *cobra.Command {
	return RootCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	repoDir = ""
	passwordFlag = ""
	statusJSONOutput = false
	resetRunCommandState()
	resetLogCommandState()
	resetCobraFlagState(RootCmd)
}

// resetCobraFlagState clears the Changed mark on every flag of cmd and its
// subcommands to prevent test pollution.
func resetCobraFlagState(cmd *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		flag.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetCobraFlagState(sub)
	}
}
