package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/PolarWolf314/gitseal/internal/configs"
	"github.com/PolarWolf314/gitseal/internal/ui"
	"github.com/PolarWolf314/gitseal/internal/utils"
	"github.com/PolarWolf314/gitseal/internal/workflows"
	"github.com/spf13/cobra"
)

func init() {
	setPasswordCmd.Flags().StringVarP(&passwordFlag, "password", "p", "", "new password (default: $GITSEAL_PASSWORD or prompt)")
	setCmd.Flags().StringVarP(&passwordFlag, "password", "p", "", "new password for 'set key'")
}

var setPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Set the repository password",
	Long: `Stores a verifier for the repository password in gitseal.toml.

The password itself is never written to disk. Files already encrypted
under a previous password must be decrypted with that password before
changing it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting set-password command")
		return runSetPassword(cmd)
	},
}

var setCmd = &cobra.Command{
	Use:   "set <zstd-level|use-zstd|key> [VALUE]",
	Short: "Change a repository setting",
	Long: `Changes a setting in gitseal.toml.

  zstd-level N     compression level, 1 (fastest) to 22 (smallest)
  use-zstd BOOL    compress files before encrypting them
  key              same as set-password`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) >= 1 && args[0] == "key" {
			return cobra.ExactArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "key" {
			return runSetPassword(cmd)
		}

		Logger.Infof("Setting %s to %s", args[0], args[1])
		out := cmd.OutOrStdout()
		root, err := repoRoot()
		if err != nil {
			return printAndReport(out, err)
		}

		config, err := workflows.Set(context.Background(), workflows.SetOptions{
			Root:  root,
			Field: args[0],
			Value: args[1],
		})
		if err != nil {
			return printAndReport(out, err)
		}

		value := strconv.Itoa(config.ZstdLevel)
		if args[0] == configs.FieldUseZstd {
			value = strconv.FormatBool(config.UseZstd)
		}
		fmt.Fprintln(out, ui.Success.Sprint(ui.MarkOK)+" "+args[0]+" set to "+ui.Highlight.Sprint(value))
		return nil
	},
}

func runSetPassword(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	root, err := repoRoot()
	if err != nil {
		return printAndReport(out, err)
	}

	password, err := readPassword(true)
	if err != nil {
		return printAndReport(out, err)
	}

	spinner, cleanup := startSpinner("Storing password verifier...", out)
	defer cleanup()

	result, err := workflows.SetPassword(context.Background(), workflows.SetPasswordOptions{
		Root:     root,
		Password: password,
	})
	if err != nil {
		spinner.FinalMSG = formatError(err)
		return reported(err)
	}

	msg := ui.Success.Sprint(ui.MarkOK) + " Password set"
	if result.Replaced {
		msg = ui.Success.Sprint(ui.MarkOK) + " Password changed"
	}
	if len(result.Encrypted) > 0 {
		msg += "\n" + ui.Warning.Sprint(ui.MarkWarning) + " These files were encrypted with the previous password:" +
			utils.FormatPaths(result.Encrypted) +
			ui.Info.Sprint(ui.MarkArrow) + " Decrypt them with the old password, then encrypt again"
	}
	spinner.FinalMSG = msg
	return nil
}
