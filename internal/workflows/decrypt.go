package workflows

import (
	"context"

	"github.com/PolarWolf314/gitseal/internal/secrets"
)

// DecryptOptions configures the decrypt workflow.
type DecryptOptions struct {
	RunOptions

	// Pattern restricts the run to files whose plaintext path matches.
	// Empty selects every tracked artifact.
	Pattern string
}

// Decrypt restores tracked artifacts to plaintext.
//
// Returns ErrInvalidPattern if the pattern is malformed, and the same fatal
// errors as Encrypt otherwise. A wrong password that slips past the
// verifier surfaces per file as ErrAuthentication.
func Decrypt(ctx context.Context, opts DecryptOptions) (*RunResult, error) {
	req := secrets.Request{Op: secrets.Decrypt, Pattern: opts.Pattern}
	return execute(ctx, opts.RunOptions, req, runHooks{})
}
