package workflows

import (
	"context"

	"github.com/PolarWolf314/gitseal/internal/configs"
	"github.com/PolarWolf314/gitseal/internal/secrets"
)

// SetPasswordOptions configures the set-password workflow.
type SetPasswordOptions struct {
	Root     string
	Password string
}

// SetPasswordResult reports what the new password affects.
type SetPasswordResult struct {
	// Replaced is true if a previous verifier was overwritten.
	Replaced bool

	// Encrypted lists artifacts sealed under the previous password. They
	// can no longer be decrypted with the new one.
	Encrypted []string
}

// SetPassword stores a verifier for a new repository password.
func SetPassword(ctx context.Context, opts SetPasswordOptions) (*SetPasswordResult, error) {
	config, err := configs.Load(opts.Root)
	if err != nil {
		return nil, err
	}

	result := &SetPasswordResult{Replaced: config.Verifier != ""}
	if result.Replaced {
		resolver := secrets.Resolver{Root: opts.Root, Exclude: []string{configs.Path(opts.Root)}}
		resolution, err := resolver.Resolve(config.CryptList, secrets.Request{Op: secrets.Decrypt})
		if err != nil {
			return nil, err
		}
		for _, c := range resolution.Candidates {
			result.Encrypted = append(result.Encrypted, relTo(opts.Root, c))
		}
	}

	if err := config.SetPassword(opts.Password); err != nil {
		return nil, err
	}
	if err := configs.Save(opts.Root, config); err != nil {
		return nil, err
	}
	return result, nil
}

// SetOptions configures the set workflow.
type SetOptions struct {
	Root  string
	Field string
	Value string
}

// Set changes one compression setting.
func Set(ctx context.Context, opts SetOptions) (*configs.Config, error) {
	config, err := configs.Load(opts.Root)
	if err != nil {
		return nil, err
	}
	if err := config.Set(opts.Field, opts.Value); err != nil {
		return nil, err
	}
	if err := configs.Save(opts.Root, config); err != nil {
		return nil, err
	}
	return config, nil
}
