package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	kerrors "github.com/PolarWolf314/gitseal/internal/errors"
)

// writeTestFile is a helper to write test files with 0644 permissions.
// #nosec G306 -- Test files are temporary and don't contain sensitive data.
func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil { // #nosec G306
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatalf("Failed to relativise %s: %v", p, err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestResolve_FilesAndDirectories(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "secrets", "key.txt"), "k")
	writeTestFile(t, filepath.Join(root, "config", "prod", "db.env"), "d")
	writeTestFile(t, filepath.Join(root, "config", "prod", "nested", "api.env"), "a")
	writeTestFile(t, filepath.Join(root, "untracked.txt"), "u")

	r := Resolver{Root: root}
	res, err := r.Resolve([]string{"secrets/key.txt", "config/prod"}, Request{Op: Encrypt})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []string{"config/prod/db.env", "config/prod/nested/api.env", "secrets/key.txt"}
	if got := relAll(t, root, res.Candidates); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got: %v", want, got)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Expected no warnings, got: %v", res.Warnings)
	}
}

func TestResolve_SkipsTerminalStates(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "dir", "plain.txt"), "p")
	writeTestFile(t, filepath.Join(root, "dir", "done.txt.enc"), "e")
	writeTestFile(t, filepath.Join(root, "dir", "packed.txt.zst.enc"), "z")

	r := Resolver{Root: root}

	enc, err := r.Resolve([]string{"dir"}, Request{Op: Encrypt})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got := relAll(t, root, enc.Candidates); !reflect.DeepEqual(got, []string{"dir/plain.txt"}) {
		t.Errorf("Encrypt candidates: got %v", got)
	}

	dec, err := r.Resolve([]string{"dir"}, Request{Op: Decrypt})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	want := []string{"dir/done.txt.enc", "dir/packed.txt.zst.enc"}
	if got := relAll(t, root, dec.Candidates); !reflect.DeepEqual(got, want) {
		t.Errorf("Decrypt candidates: expected %v, got %v", want, got)
	}
}

func TestResolve_FileEntryFindsArtifact(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "secrets", "key.txt.enc"), "e")

	r := Resolver{Root: root}
	res, err := r.Resolve([]string{"secrets/key.txt"}, Request{Op: Decrypt})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got := relAll(t, root, res.Candidates); !reflect.DeepEqual(got, []string{"secrets/key.txt.enc"}) {
		t.Errorf("Expected artifact candidate, got: %v", got)
	}
}

func TestResolve_PatternMatchesLogicalPath(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "src", "a.txt.enc"), "a")
	writeTestFile(t, filepath.Join(root, "src", "b.txt.zst.enc"), "b")
	writeTestFile(t, filepath.Join(root, "src", "deep", "d.txt.enc"), "d")
	writeTestFile(t, filepath.Join(root, "lib", "c.txt.enc"), "c")

	r := Resolver{Root: root}
	entries := []string{"src/a.txt", "src/b.txt", "src/deep", "lib/c.txt"}

	res, err := r.Resolve(entries, Request{Op: Decrypt, Pattern: "src/*"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	want := []string{"src/a.txt.enc", "src/b.txt.zst.enc"}
	if got := relAll(t, root, res.Candidates); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got: %v", want, got)
	}

	res, err = r.Resolve(entries, Request{Op: Decrypt, Pattern: "./src/**"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(res.Candidates) != 3 {
		t.Errorf("Expected ** to cross directories, got: %v", relAll(t, root, res.Candidates))
	}
}

func TestResolve_InvalidPattern(t *testing.T) {
	r := Resolver{Root: t.TempDir()}
	_, err := r.Resolve(nil, Request{Op: Decrypt, Pattern: "src/[a"})
	if !errors.Is(err, kerrors.ErrInvalidPattern) {
		t.Errorf("Expected ErrInvalidPattern, got: %v", err)
	}
}

func TestResolve_MissingEntryIsWarning(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "present.txt"), "p")

	r := Resolver{Root: root}
	res, err := r.Resolve([]string{"gone.txt", "present.txt"}, Request{Op: Encrypt})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(res.Candidates) != 1 {
		t.Errorf("Expected 1 candidate, got: %v", res.Candidates)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Entry != "gone.txt" {
		t.Errorf("Expected one warning for gone.txt, got: %v", res.Warnings)
	}
}

func TestResolve_Deduplicates(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "dir", "a.txt"), "a")

	r := Resolver{Root: root}
	res, err := r.Resolve([]string{"dir", "dir/a.txt", "./dir"}, Request{Op: Encrypt})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(res.Candidates) != 1 {
		t.Errorf("Expected 1 candidate, got: %v", res.Candidates)
	}
}

func TestResolve_ConflictingArtifactsKeepNewest(t *testing.T) {
	root := t.TempDir()
	older := filepath.Join(root, "a.txt.enc")
	newer := filepath.Join(root, "a.txt.zst.enc")
	writeTestFile(t, older, "old")
	writeTestFile(t, newer, "new")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatalf("Failed to set mtime: %v", err)
	}

	r := Resolver{Root: root}
	res, err := r.Resolve([]string{"a.txt"}, Request{Op: Decrypt})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !reflect.DeepEqual(res.Candidates, []string{newer}) {
		t.Errorf("Expected only %s, got: %v", newer, res.Candidates)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("Expected a conflict warning, got: %v", res.Warnings)
	}
}

func TestResolve_SkipsGitDirAndExcluded(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, ".git", "config"), "g")
	writeTestFile(t, filepath.Join(root, "gitseal.toml"), "c")
	writeTestFile(t, filepath.Join(root, "a.txt"), "a")

	r := Resolver{Root: root, Exclude: []string{filepath.Join(root, "gitseal.toml")}}
	res, err := r.Resolve([]string{"."}, Request{Op: Encrypt})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got := relAll(t, root, res.Candidates); !reflect.DeepEqual(got, []string{"a.txt"}) {
		t.Errorf("Expected only a.txt, got: %v", got)
	}
}

func TestResolve_SkipsZstFilesOnEncrypt(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "dir", "archive.zst"), "z")

	r := Resolver{Root: root}
	res, err := r.Resolve([]string{"dir"}, Request{Op: Encrypt})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(res.Candidates) != 0 {
		t.Errorf("Expected no candidates, got: %v", res.Candidates)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("Expected one warning, got: %v", res.Warnings)
	}
}

func TestResolve_NewerPlaintextBlocksDecrypt(t *testing.T) {
	root := t.TempDir()
	artifact := filepath.Join(root, "key.txt.enc")
	plaintext := filepath.Join(root, "key.txt")
	writeTestFile(t, artifact, "sealed")
	writeTestFile(t, plaintext, "NEW EDITS")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(artifact, past, past); err != nil {
		t.Fatalf("Failed to set mtime: %v", err)
	}

	r := Resolver{Root: root}
	res, err := r.Resolve([]string{"key.txt"}, Request{Op: Decrypt})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(res.Candidates) != 0 {
		t.Errorf("Expected the artifact to be skipped, got: %v", res.Candidates)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Entry != "key.txt.enc" {
		t.Errorf("Expected one warning for key.txt.enc, got: %v", res.Warnings)
	}
}

func TestResolve_OlderPlaintextIsReplacedWithWarning(t *testing.T) {
	root := t.TempDir()
	artifact := filepath.Join(root, "key.txt.enc")
	plaintext := filepath.Join(root, "key.txt")
	writeTestFile(t, artifact, "sealed")
	writeTestFile(t, plaintext, "stale")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(plaintext, past, past); err != nil {
		t.Fatalf("Failed to set mtime: %v", err)
	}

	r := Resolver{Root: root}
	res, err := r.Resolve([]string{"key.txt"}, Request{Op: Decrypt})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !reflect.DeepEqual(res.Candidates, []string{artifact}) {
		t.Errorf("Expected %s, got: %v", artifact, res.Candidates)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("Expected an overwrite warning, got: %v", res.Warnings)
	}
}

func TestResolve_NewerArtifactBlocksEncrypt(t *testing.T) {
	root := t.TempDir()
	plaintext := filepath.Join(root, "key.txt")
	writeTestFile(t, plaintext, "old")
	writeTestFile(t, filepath.Join(root, "key.txt.zst.enc"), "sealed")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(plaintext, past, past); err != nil {
		t.Fatalf("Failed to set mtime: %v", err)
	}

	r := Resolver{Root: root}
	res, err := r.Resolve([]string{"key.txt"}, Request{Op: Encrypt})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(res.Candidates) != 0 {
		t.Errorf("Expected the plaintext to be skipped, got: %v", res.Candidates)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Entry != "key.txt" {
		t.Errorf("Expected one warning for key.txt, got: %v", res.Warnings)
	}
}
