package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	kerrors "github.com/PolarWolf314/gitseal/internal/errors"
	"github.com/PolarWolf314/gitseal/internal/secrets"
)

// FileName is the config file kept at the repository root.
const FileName = "gitseal.toml"

// Config is the persisted state of a repository: the tracked list, the
// compression settings and the password verifier.
type Config struct {
	UseZstd   bool     `toml:"use_zstd"`
	ZstdLevel int      `toml:"zstd_level"`
	CryptList []string `toml:"crypt_list"`
	Verifier  string   `toml:"verifier,omitempty"`
}

// Default returns the configuration used when gitseal.toml does not exist.
func Default() *Config {
	return &Config{
		UseZstd:   true,
		ZstdLevel: secrets.DefaultZstdLevel,
		CryptList: []string{},
	}
}

// Path returns the location of the config file for a repository root.
func Path(root string) string {
	return filepath.Join(root, FileName)
}

// Load reads the repository config. A missing file yields Default(); a file
// that cannot be parsed or fails validation returns ErrInvalidConfig.
func Load(root string) (*Config, error) {
	config := Default()

	configPath := Path(root)
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}

	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrInvalidConfig, FileName, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save writes config to the repository root, dropping duplicate entries.
func Save(root string, config *Config) error {
	config.CryptList = dedupe(config.CryptList)
	if err := SaveTOML(Path(root), config); err != nil {
		return fmt.Errorf("failed to save %s: %w", FileName, err)
	}
	return nil
}

// Validate checks the invariants the engine relies on.
func (c *Config) Validate() error {
	if c.ZstdLevel < 1 || c.ZstdLevel > 22 {
		return fmt.Errorf("%w: zstd_level must be between 1 and 22, got %d", kerrors.ErrInvalidConfig, c.ZstdLevel)
	}
	for _, entry := range c.CryptList {
		if _, err := NormalizeEntry(entry); err != nil {
			return fmt.Errorf("%w: crypt_list entry %q: %v", kerrors.ErrInvalidConfig, entry, err)
		}
	}
	return nil
}

// NormalizeEntry cleans a tracked path into the slash-separated form stored
// in crypt_list and rejects paths that cannot be tracked.
func NormalizeEntry(entry string) (string, error) {
	if strings.TrimSpace(entry) == "" {
		return "", kerrors.ErrInvalidPath
	}
	if filepath.IsAbs(entry) || strings.HasPrefix(entry, "/") {
		return "", kerrors.ErrInvalidPath
	}

	p := path.Clean(filepath.ToSlash(entry))
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", kerrors.ErrInvalidPath
	}
	if secrets.ReservedSuffix(p) {
		return "", fmt.Errorf("%w: %s", kerrors.ErrReservedSuffix, p)
	}
	if p == FileName {
		return "", fmt.Errorf("%w: cannot track %s itself", kerrors.ErrInvalidPath, FileName)
	}
	return p, nil
}

// IsTracked reports whether entry is already in the list.
func (c *Config) IsTracked(entry string) bool {
	for _, e := range c.CryptList {
		if e == entry {
			return true
		}
	}
	return false
}

// AddReport describes the effect of AddPaths.
type AddReport struct {
	Added    []string
	Skipped  []string
	Warnings []string
}

// AddPaths appends repository-relative paths to the tracked list. Every path
// must exist, as itself or as an encrypted artifact. Paths already tracked
// are reported in Skipped. Nothing is added if any path is invalid.
func (c *Config) AddPaths(root string, paths []string) (*AddReport, error) {
	report := &AddReport{}
	var pending []string

	for _, raw := range paths {
		entry, err := NormalizeEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("cannot add %q: %w", raw, err)
		}

		abs := filepath.Join(root, filepath.FromSlash(entry))
		info, err := os.Stat(abs)
		if err != nil {
			if !artifactExists(abs) {
				return nil, fmt.Errorf("cannot add %q: %w", raw, kerrors.ErrFileNotFound)
			}
		} else if info.IsDir() {
			report.Warnings = append(report.Warnings, reservedFilesUnder(root, abs)...)
		}

		if c.IsTracked(entry) || contains(pending, entry) {
			report.Skipped = append(report.Skipped, entry)
			continue
		}
		pending = append(pending, entry)
	}

	c.CryptList = append(c.CryptList, pending...)
	report.Added = pending
	return report, nil
}

// RemovePaths drops entries from the tracked list. An entry that is not
// tracked returns ErrNotTracked and leaves the list unchanged.
func (c *Config) RemovePaths(paths []string) ([]string, error) {
	drop := make(map[string]bool, len(paths))
	for _, raw := range paths {
		entry := path.Clean(filepath.ToSlash(raw))
		if !c.IsTracked(entry) {
			return nil, fmt.Errorf("cannot remove %q: %w", raw, kerrors.ErrNotTracked)
		}
		drop[entry] = true
	}

	kept := make([]string, 0, len(c.CryptList))
	var removed []string
	for _, e := range c.CryptList {
		if drop[e] {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	c.CryptList = kept
	return removed, nil
}

// Settable fields for Set.
const (
	FieldZstdLevel = "zstd-level"
	FieldUseZstd   = "use-zstd"
)

// Set updates one of the scalar settings from its string form.
func (c *Config) Set(field, value string) error {
	switch field {
	case FieldZstdLevel:
		level, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", field, err)
		}
		if level < 1 || level > 22 {
			return fmt.Errorf("%s must be between 1 and 22, got %d", field, level)
		}
		c.ZstdLevel = level
	case FieldUseZstd:
		use, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false: %w", field, err)
		}
		c.UseZstd = use
	default:
		return fmt.Errorf("unknown field %q (expected %s or %s)", field, FieldZstdLevel, FieldUseZstd)
	}
	return nil
}

func artifactExists(abs string) bool {
	for _, p := range secrets.ArtifactPaths(abs) {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// reservedFilesUnder lists files under dir whose names already look like
// artifacts. They will be treated as encrypted and decrypted on the next run.
func reservedFilesUnder(root, dir string) []string {
	var warnings []string
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if secrets.ReservedSuffix(p) {
			rel, _ := filepath.Rel(root, p)
			warnings = append(warnings, fmt.Sprintf("%s already has a reserved suffix", filepath.ToSlash(rel)))
		}
		return nil
	})
	return warnings
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, e := range list {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}
