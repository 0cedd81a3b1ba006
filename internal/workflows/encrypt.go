package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/gitseal/internal/git"
	"github.com/PolarWolf314/gitseal/internal/secrets"
)

// EncryptOptions configures the encrypt workflow.
type EncryptOptions struct {
	RunOptions

	// NoStage skips `git add -A` before and after the run.
	NoStage bool
}

// Encrypt seals every tracked file that is still plaintext.
//
// The working tree is staged first so the plaintext is never lost to a
// failed run, then staged again so the index holds the artifacts instead.
//
// Returns ErrInvalidConfig, ErrPasswordNotSet or ErrWrongPassword before any
// file is touched. Returns ErrPartialFailure, joined with each file's error,
// when some files could not be encrypted; the RunResult is still returned.
func Encrypt(ctx context.Context, opts EncryptOptions) (*RunResult, error) {
	var hooks runHooks
	if !opts.NoStage {
		stage := func(when string) func(context.Context) error {
			return func(ctx context.Context) error {
				if err := git.Stage(ctx, opts.Root); err != nil {
					return fmt.Errorf("staging %s encrypt: %w", when, err)
				}
				return nil
			}
		}
		hooks.before, hooks.after = stage("before"), stage("after")
	}

	return execute(ctx, opts.RunOptions, secrets.Request{Op: secrets.Encrypt}, hooks)
}
