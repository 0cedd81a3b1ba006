package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/gitseal/internal/errors"
	"github.com/PolarWolf314/gitseal/internal/ui"
	"github.com/PolarWolf314/gitseal/internal/utils"
	"github.com/briandowns/spinner"
)

// passwordFlag backs --password on every command that needs one.
var passwordFlag string

// startSpinner creates and starts a spinner with the given message when not
// in verbose or debug mode. The returned cleanup stops it and prints
// FinalMSG to out.
//
// spinner.FinalMSG values do NOT need trailing newlines; cleanup adds one.
func startSpinner(message string, out io.Writer) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("%s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stderr)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Cleared so s.Stop() doesn't print it to the spinner's writer.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}
		if finalMsg != "" {
			fmt.Fprint(out, finalMsg)
		}
	}

	return s, cleanup
}

// readPassword resolves the password from --password, GITSEAL_PASSWORD or a
// prompt. Call it before starting the spinner.
func readPassword(confirm bool) (string, error) {
	if passwordFlag != "" {
		Logger.Debugf("Using password from --password")
	} else if _, ok := os.LookupEnv(utils.PasswordEnv); ok {
		Logger.Debugf("Using password from %s", utils.PasswordEnv)
	}
	return utils.ResolvePassword(passwordFlag, confirm)
}

// reported wraps an error whose message the command already printed.
func reported(err error) error {
	return &reportedError{err: err}
}

// formatError turns a workflow error into the message shown to the user,
// with a hint for the failures users can fix themselves.
func formatError(err error) string {
	cross := ui.Error.Sprint(ui.MarkFailed) + " "
	hint := "\n" + ui.Info.Sprint(ui.MarkArrow) + " "

	switch {
	case errors.Is(err, kerrors.ErrNotARepository):
		return cross + "Not inside a git repository" +
			hint + "Run gitseal inside a working tree or pass " + ui.Flag.Sprint("--repo")

	case errors.Is(err, kerrors.ErrPasswordNotSet):
		return cross + "No password has been set for this repository" +
			hint + "Run " + ui.Code.Sprint("gitseal set-password") + " first"

	case errors.Is(err, kerrors.ErrWrongPassword):
		return cross + "Wrong password" +
			hint + "It does not match the one stored by " + ui.Code.Sprint("gitseal set-password")

	case errors.Is(err, kerrors.ErrEmptyPassword):
		return cross + "Password must not be empty"

	case errors.Is(err, kerrors.ErrInvalidConfig):
		return cross + err.Error() +
			hint + "Fix " + ui.Path.Sprint("gitseal.toml") + " by hand; no files were changed"

	case errors.Is(err, kerrors.ErrInvalidPattern):
		return cross + err.Error() +
			hint + "Patterns are globs on the plaintext path, e.g. " + ui.Highlight.Sprint("src/**/*.env")

	case errors.Is(err, kerrors.ErrReservedSuffix):
		return cross + err.Error() +
			hint + "Track the plaintext name instead of the " + ui.Path.Sprint(".enc") + " or " + ui.Path.Sprint(".zst") + " file"

	default:
		return cross + err.Error()
	}
}

// authenticationHint explains ErrAuthentication in a run report. The
// verifier rejects wrong passwords up front, so a tag mismatch usually means
// a file sealed under an earlier password, or a modified file.
func authenticationHint(err error) string {
	if !errors.Is(err, kerrors.ErrAuthentication) {
		return ""
	}
	return "\n" + ui.Info.Sprint(ui.MarkArrow) + " Authentication failed: password mismatch? " +
		"Files encrypted before the last " + ui.Code.Sprint("gitseal set-password") + " need the old password"
}
