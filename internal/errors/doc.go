// Package errors provides typed error values for gitseal.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - Configuration errors: fatal, nothing on disk is touched (ErrInvalidConfig, ErrInvalidPattern)
//   - Password errors: checked before deriving the key (ErrWrongPassword, ErrPasswordNotSet)
//   - Per-file errors: recorded against a single file (ErrIO, ErrCompression, ErrAuthentication)
//   - Tracked-path errors: add/remove validation (ErrReservedSuffix, ErrAlreadyTracked)
//
// # Usage
//
// Handle errors in the CLI layer:
//
//	result, err := workflows.Decrypt(ctx, opts)
//	if errors.Is(err, kerrors.ErrAuthentication) {
//	    // Suggest that the password may be wrong
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("reading %s: %w: %v", path, errors.ErrIO, err)
package errors
