package workflows

import (
	"context"

	"github.com/PolarWolf314/gitseal/internal/configs"
)

// AddOptions configures the add workflow.
type AddOptions struct {
	Root string

	// Paths are relative to Root. Files and directories are both accepted.
	Paths []string
}

// Add records paths in the crypt list. Nothing is written unless every
// path is valid.
func Add(ctx context.Context, opts AddOptions) (*configs.AddReport, error) {
	config, err := configs.Load(opts.Root)
	if err != nil {
		return nil, err
	}

	report, err := config.AddPaths(opts.Root, opts.Paths)
	if err != nil {
		return nil, err
	}
	if len(report.Added) == 0 {
		return report, nil
	}

	if err := configs.Save(opts.Root, config); err != nil {
		return nil, err
	}
	return report, nil
}

// RemoveOptions configures the remove workflow.
type RemoveOptions struct {
	Root  string
	Paths []string
}

// Remove drops paths from the crypt list. Files on disk are left alone, so
// an artifact stays encrypted until it is decrypted by hand or re-added.
func Remove(ctx context.Context, opts RemoveOptions) ([]string, error) {
	config, err := configs.Load(opts.Root)
	if err != nil {
		return nil, err
	}

	removed, err := config.RemovePaths(opts.Paths)
	if err != nil {
		return nil, err
	}

	if err := configs.Save(opts.Root, config); err != nil {
		return nil, err
	}
	return removed, nil
}
