package workflows

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/PolarWolf314/gitseal/internal/configs"
	"github.com/PolarWolf314/gitseal/internal/secrets"
)

// FileStatusInfo holds the state of one tracked file.
type FileStatusInfo struct {
	// Path is the plaintext path, relative to the root.
	Path string

	// OnDisk is the name actually present, which carries the state suffix.
	OnDisk string

	State secrets.FileState
}

// StatusSummary holds counts of files by state.
type StatusSummary struct {
	Plain     int
	Encrypted int
}

// StatusOptions configures the status workflow.
type StatusOptions struct {
	Root string
}

// StatusResult contains the outcome of a status operation.
type StatusResult struct {
	// Entries is the crypt list as stored.
	Entries []string

	// Files contains every file the tracked entries currently cover.
	Files []FileStatusInfo

	// Warnings are resolver notes: missing entries and conflicting files.
	Warnings []secrets.ResolutionWarning

	Summary StatusSummary
}

// Status lists each tracked file with its current state. It needs no
// password.
func Status(ctx context.Context, opts StatusOptions) (*StatusResult, error) {
	config, err := configs.Load(opts.Root)
	if err != nil {
		return nil, err
	}

	resolver := secrets.Resolver{Root: opts.Root, Exclude: []string{configs.Path(opts.Root)}}
	result := &StatusResult{Entries: config.CryptList}
	seenWarning := make(map[string]bool)

	// Encrypt candidates are the plaintext files and decrypt candidates the
	// artifacts, so the two passes together cover every tracked file.
	for _, op := range []secrets.Operation{secrets.Encrypt, secrets.Decrypt} {
		resolution, err := resolver.Resolve(config.CryptList, secrets.Request{Op: op})
		if err != nil {
			return nil, err
		}
		for _, c := range resolution.Candidates {
			state := secrets.Classify(c)
			result.Files = append(result.Files, FileStatusInfo{
				Path:   relTo(opts.Root, secrets.DecryptedPath(c)),
				OnDisk: relTo(opts.Root, c),
				State:  state,
			})
			if state.IsEncrypted() {
				result.Summary.Encrypted++
			} else {
				result.Summary.Plain++
			}
		}
		for _, w := range resolution.Warnings {
			if !seenWarning[w.String()] {
				seenWarning[w.String()] = true
				result.Warnings = append(result.Warnings, w)
			}
		}
	}

	sort.Slice(result.Files, func(i, j int) bool {
		if result.Files[i].Path != result.Files[j].Path {
			return result.Files[i].Path < result.Files[j].Path
		}
		return result.Files[i].OnDisk < result.Files[j].OnDisk
	})
	return result, nil
}

func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
