package utils

import (
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/gitseal/internal/errors"
)

// FindRepoRoot walks up from start to the nearest directory containing
// .git. A .git file counts too, so worktrees and submodules resolve.
// Returns ErrNotARepository when the filesystem root is reached.
func FindRepoRoot(start string) (string, error) {
	currentDir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	for {
		_, err := os.Stat(filepath.Join(currentDir, ".git"))
		if err == nil {
			return currentDir, nil
		}
		if !os.IsNotExist(err) {
			// Permission problems and the like are not "not found".
			return "", fmt.Errorf("error checking for .git at %s: %w", currentDir, err)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", fmt.Errorf("%w: %s", kerrors.ErrNotARepository, start)
		}
		currentDir = parentDir
	}
}

// ResolveRepoRoot returns the repository root for an explicit --repo value,
// or the one containing the working directory when dir is empty.
func ResolveRepoRoot(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	return FindRepoRoot(dir)
}
