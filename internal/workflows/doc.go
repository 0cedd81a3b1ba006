// Package workflows provides the use cases behind each gitseal command.
//
// Workflows coordinate configs, secrets, git and audit. The cmd package
// stays a thin layer that parses flags, calls one workflow and prints the
// result.
//
// # Available Workflows
//
//   - Encrypt: seals every tracked plaintext file, staging around the run
//   - Decrypt: restores tracked artifacts, optionally scoped by a pattern
//   - Add, Remove: edit the crypt list
//   - SetPassword, Set: edit the password verifier and compression settings
//   - Status: lists tracked files and their state
//   - Log: reads the audit history
//
// # Error Handling
//
// Configuration and password problems are returned before any file is
// touched. Per-file failures never stop a run: Encrypt and Decrypt return
// their RunResult together with an error wrapping ErrPartialFailure.
//
//	result, err := workflows.Decrypt(ctx, opts)
//	if errors.Is(err, kerrors.ErrPartialFailure) {
//	    // result.Outcomes.Failed() says which files and why
//	}
package workflows
