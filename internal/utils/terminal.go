package utils

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	kerrors "github.com/PolarWolf314/gitseal/internal/errors"
)

// PasswordEnv is consulted when no --password flag is given.
const PasswordEnv = "GITSEAL_PASSWORD"

// ReadPassphrase prompts the user for a passphrase without echoing input.
// Returns an error if stdin is not a terminal.
func ReadPassphrase(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot read password: stdin is not a terminal (hint: set %s)", PasswordEnv)
	}

	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return passphrase, nil
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ResolvePassword picks the password from, in order, the flag value, the
// GITSEAL_PASSWORD environment variable, or an interactive prompt.
// With confirm set the prompt asks twice and the entries must match.
func ResolvePassword(flagValue string, confirm bool) (string, error) {
	return resolvePassword(flagValue, confirm, os.LookupEnv, ReadPassphrase)
}

func resolvePassword(
	flagValue string,
	confirm bool,
	lookupEnv func(string) (string, bool),
	prompt func(string) ([]byte, error),
) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v, ok := lookupEnv(PasswordEnv); ok && v != "" {
		return v, nil
	}

	first, err := prompt("Password: ")
	if err != nil {
		return "", err
	}
	password := strings.TrimRight(string(first), "\r\n")
	if password == "" {
		return "", kerrors.ErrEmptyPassword
	}
	if !confirm {
		return password, nil
	}

	second, err := prompt("Confirm password: ")
	if err != nil {
		return "", err
	}
	if strings.TrimRight(string(second), "\r\n") != password {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}
