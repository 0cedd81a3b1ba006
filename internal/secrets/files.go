package secrets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/gitseal/internal/errors"
	"github.com/bmatcuk/doublestar/v4"
)

// Resolution is the output of the resolver: absolute candidate paths, sorted,
// plus everything that was left out and why.
type Resolution struct {
	Candidates []string
	Warnings   []ResolutionWarning
}

// Resolver expands tracked entries into concrete files below Root.
type Resolver struct {
	// Root is the repository root. Tracked entries and patterns are relative to it.
	Root string

	// Exclude lists absolute paths that are never candidates (the config file).
	Exclude []string
}

type candidate struct {
	path    string
	modTime time.Time
}

// Resolve turns the tracked entries into the set of files req applies to.
//
// Files already in a terminal state for req.Op are dropped. The pattern is a
// doublestar glob matched against the slash-separated path of the plaintext
// file relative to Root, so "src/*" selects both src/a.txt.enc and
// src/b.txt.zst.enc. "*" stops at "/", "**" crosses it.
//
// Missing entries produce warnings. Only an invalid pattern is an error.
func (r Resolver) Resolve(entries []string, req Request) (*Resolution, error) {
	pattern := normalizePattern(req.Pattern)
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", kerrors.ErrInvalidPattern, req.Pattern)
	}

	excluded := make(map[string]bool, len(r.Exclude))
	for _, p := range r.Exclude {
		excluded[filepath.Clean(p)] = true
	}

	res := &Resolution{}
	byLogical := make(map[string]candidate) // Deduplicate.

	consider := func(path string, info fs.FileInfo) {
		if excluded[path] {
			return
		}
		state := Classify(path)
		if req.Op.Terminal(state) {
			return
		}
		if req.Op == Encrypt && strings.HasSuffix(path, CompressedSuffix) {
			res.Warnings = append(res.Warnings, ResolutionWarning{
				Entry:  r.rel(path),
				Reason: "skipped: files ending in " + CompressedSuffix + " cannot be encrypted unambiguously",
			})
			return
		}

		logical := DecryptedPath(path)
		if pattern != "" {
			ok, err := doublestar.Match(pattern, r.rel(logical))
			if err != nil || !ok {
				return
			}
		}

		next := candidate{path: path, modTime: info.ModTime()}
		prev, seen := byLogical[logical]
		switch {
		case !seen:
			byLogical[logical] = next
		case prev.path == path:
			// Reached through two tracked entries.
		default:
			keep, drop := prev, next
			if next.modTime.After(prev.modTime) {
				keep, drop = next, prev
			}
			byLogical[logical] = keep
			res.Warnings = append(res.Warnings, ResolutionWarning{
				Entry:  r.rel(drop.path),
				Reason: "skipped: newer artifact " + r.rel(keep.path) + " exists for the same file",
			})
		}
	}

	for _, entry := range entries {
		abs := filepath.Join(r.Root, filepath.FromSlash(entry))

		info, err := os.Lstat(abs)
		if err == nil && info.IsDir() {
			r.walk(abs, entry, consider, res)
			continue
		}

		found := false
		for _, p := range append([]string{abs}, ArtifactPaths(abs)...) {
			info, err := os.Lstat(p)
			if err != nil {
				continue
			}
			found = true
			if !info.Mode().IsRegular() {
				res.Warnings = append(res.Warnings, ResolutionWarning{Entry: entry, Reason: "not a regular file"})
				continue
			}
			consider(p, info)
		}
		if !found {
			res.Warnings = append(res.Warnings, ResolutionWarning{Entry: entry, Reason: "no longer exists"})
		}
	}

	for logical, c := range byLogical {
		if r.counterpartNewer(logical, c, req.Op, res) {
			continue
		}
		res.Candidates = append(res.Candidates, c.path)
	}
	sort.Strings(res.Candidates)

	return res, nil
}

// counterpartNewer reports whether the other form of c's file (the plaintext
// on decrypt, an artifact on encrypt) is newer than c, in which case c is
// skipped. An older counterpart is replaced by the run and gets a warning.
func (r Resolver) counterpartNewer(logical string, c candidate, op Operation, res *Resolution) bool {
	others := ArtifactPaths(logical)
	if op == Decrypt {
		others = []string{logical}
	}

	for _, other := range others {
		info, err := os.Lstat(other)
		if err != nil {
			continue
		}
		if info.ModTime().After(c.modTime) {
			res.Warnings = append(res.Warnings, ResolutionWarning{
				Entry:  r.rel(c.path),
				Reason: "skipped: " + r.rel(other) + " is newer",
			})
			return true
		}
		res.Warnings = append(res.Warnings, ResolutionWarning{
			Entry:  r.rel(c.path),
			Reason: "replaces older " + r.rel(other),
		})
	}
	return false
}

func (r Resolver) walk(dir, entry string, consider func(string, fs.FileInfo), res *Resolution) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			res.Warnings = append(res.Warnings, ResolutionWarning{Entry: r.rel(path), Reason: err.Error()})
			if d != nil && d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip symlinks and irregular files.
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			res.Warnings = append(res.Warnings, ResolutionWarning{Entry: r.rel(path), Reason: err.Error()})
			return nil
		}
		consider(path, info)
		return nil
	})
	if err != nil {
		res.Warnings = append(res.Warnings, ResolutionWarning{Entry: entry, Reason: err.Error()})
	}
}

// rel returns path relative to Root with forward slashes.
func (r Resolver) rel(path string) string {
	rel, err := filepath.Rel(r.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func normalizePattern(p string) string {
	p = filepath.ToSlash(strings.TrimSpace(p))
	return strings.TrimPrefix(p, "./")
}
