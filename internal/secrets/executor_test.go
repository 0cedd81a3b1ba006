package secrets

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	kerrors "github.com/PolarWolf314/gitseal/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, password string) *Engine {
	t.Helper()
	comp, err := NewCompressor(DefaultZstdLevel)
	require.NoError(t, err)
	t.Cleanup(comp.Close)

	e, err := NewEngine(DeriveKey(password), comp)
	require.NoError(t, err)
	return e
}

func TestEngine_IncompressibleFileScenario(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "secrets", "key.txt")
	writeTestFile(t, path, "top-secret-value")

	e := newTestEngine(t, "hunter2")

	o := e.EncryptFile(path)
	require.NoError(t, o.Err)
	assert.Equal(t, path+".enc", o.Target)
	assert.NoFileExists(t, path)
	assert.FileExists(t, path+".enc")

	o = e.DecryptFile(path + ".enc")
	require.NoError(t, o.Err)
	assert.Equal(t, path, o.Target)
	assert.NoFileExists(t, path+".enc")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "top-secret-value", string(content))
}

func TestEngine_CompressibleFileScenario(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "notes.txt")
	data := strings.Repeat("a", 10000)
	writeTestFile(t, path, data)

	e := newTestEngine(t, "hunter2")

	o := e.EncryptFile(path)
	require.NoError(t, o.Err)
	assert.Equal(t, path+".zst.enc", o.Target)

	info, err := os.Stat(o.Target)
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(len(data)+e.cipher.Overhead()))

	o = e.DecryptFile(o.Target)
	require.NoError(t, o.Err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, string(content))
}

func TestEngine_CompressionGuard(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine(t, "hunter2")

	contents := []string{"", "x", "top-secret-value", strings.Repeat("ab", 500), "\x00\xff\x10\x7f random-ish \x01"}
	for i, c := range contents {
		path := filepath.Join(root, "f"+string(rune('a'+i)))
		writeTestFile(t, path, c)

		o := e.EncryptFile(path)
		require.NoError(t, o.Err)

		info, err := os.Stat(o.Target)
		require.NoError(t, err)
		assert.LessOrEqual(t, info.Size(), int64(len(c)+e.cipher.Overhead()), "content %q", c)
	}
}

func TestEngine_WithoutCompressor(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "notes.txt")
	writeTestFile(t, path, strings.Repeat("a", 10000))

	e, err := NewEngine(DeriveKey("hunter2"), nil)
	require.NoError(t, err)

	o := e.EncryptFile(path)
	require.NoError(t, o.Err)
	assert.Equal(t, path+".enc", o.Target)
}

func TestEngine_PreservesFileMode(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "run.sh")
	writeTestFile(t, path, "#!/bin/sh\necho hi\n")
	require.NoError(t, os.Chmod(path, 0750))

	e := newTestEngine(t, "hunter2")
	o := e.EncryptFile(path)
	require.NoError(t, o.Err)
	o = e.DecryptFile(o.Target)
	require.NoError(t, o.Err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0750), info.Mode().Perm())
}

func TestEngine_RemovesStaleSibling(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "notes.txt")
	writeTestFile(t, path, strings.Repeat("a", 10000))

	e := newTestEngine(t, "hunter2")
	o := e.EncryptFile(path)
	require.NoError(t, o.Err)
	require.NoError(t, e.DecryptFile(o.Target).Err)

	// The new content no longer compresses; the old .zst.enc must not survive.
	writeTestFile(t, path, "top-secret-value")
	writeTestFile(t, path+".zst.enc", "leftover")
	o = e.EncryptFile(path)
	require.NoError(t, o.Err)
	assert.Equal(t, path+".enc", o.Target)
	assert.NoFileExists(t, path+".zst.enc")
}

func TestEngine_WrongPasswordLeavesArtifact(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "key.txt")
	writeTestFile(t, path, "top-secret-value")

	o := newTestEngine(t, "p1").EncryptFile(path)
	require.NoError(t, o.Err)

	o = newTestEngine(t, "p2").DecryptFile(o.Target)
	require.Error(t, o.Err)
	assert.ErrorIs(t, o.Err, kerrors.ErrAuthentication)
	assert.FileExists(t, path+".enc")
	assert.NoFileExists(t, path)
}

func TestEngine_CorruptedCompressedArtifact(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "bogus.txt.zst.enc")
	e := newTestEngine(t, "hunter2")

	// Valid ciphertext around an invalid zstd frame.
	require.NoError(t, os.WriteFile(path, e.cipher.Seal([]byte("not a zstd frame")), 0600))

	o := e.DecryptFile(path)
	assert.ErrorIs(t, o.Err, kerrors.ErrCompression)
	assert.FileExists(t, path)
}

func TestEngine_RunRoundTripAndIdempotency(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"t1.txt":     "Hello, world!",
		"t2.txt":     strings.Repeat("6", 100),
		"dir/t4.txt": "dir test",
	}
	for name, content := range files {
		writeTestFile(t, filepath.Join(root, name), content)
	}
	writeTestFile(t, filepath.Join(root, "t3.txt"), "do not crypt")

	e := newTestEngine(t, "123")
	r := Resolver{Root: root}
	entries := []string{"t1.txt", "t2.txt", "dir"}

	var mu sync.Mutex
	seen := 0
	opts := RunOptions{Workers: 2, OnFile: func(Outcome) { mu.Lock(); seen++; mu.Unlock() }}

	for i := 0; i < 3; i++ {
		res, err := r.Resolve(entries, Request{Op: Encrypt})
		require.NoError(t, err)
		result := e.Run(context.Background(), res.Candidates, Encrypt, opts)
		require.NoError(t, result.Err())
		if i == 0 {
			assert.Equal(t, 3, result.Len())
		} else {
			assert.Equal(t, 0, result.Len(), "second encrypt must be a no-op")
		}
	}
	assert.Equal(t, 3, seen)

	assert.FileExists(t, filepath.Join(root, "t1.txt.enc"))
	assert.FileExists(t, filepath.Join(root, "t2.txt.zst.enc"))
	assert.FileExists(t, filepath.Join(root, "dir", "t4.txt.enc"))
	assert.FileExists(t, filepath.Join(root, "t3.txt"))

	for i := 0; i < 2; i++ {
		res, err := r.Resolve(entries, Request{Op: Decrypt})
		require.NoError(t, err)
		result := e.Run(context.Background(), res.Candidates, Decrypt, opts)
		require.NoError(t, result.Err())
	}

	for name, content := range files {
		got, err := os.ReadFile(filepath.Join(root, name))
		require.NoError(t, err)
		assert.Equal(t, content, string(got), name)
	}
}

func TestEngine_RunPatternScoping(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"src/a.txt", "src/b.txt", "lib/c.txt"} {
		writeTestFile(t, filepath.Join(root, name), "content of "+name)
	}
	entries := []string{"src/a.txt", "src/b.txt", "lib/c.txt"}
	e := newTestEngine(t, "hunter2")
	r := Resolver{Root: root}

	res, err := r.Resolve(entries, Request{Op: Encrypt})
	require.NoError(t, err)
	require.NoError(t, e.Run(context.Background(), res.Candidates, Encrypt, RunOptions{}).Err())

	res, err = r.Resolve(entries, Request{Op: Decrypt, Pattern: "src/*"})
	require.NoError(t, err)
	result := e.Run(context.Background(), res.Candidates, Decrypt, RunOptions{})
	require.NoError(t, result.Err())
	assert.Equal(t, 2, result.Len())

	assert.FileExists(t, filepath.Join(root, "src", "a.txt"))
	assert.FileExists(t, filepath.Join(root, "src", "b.txt"))
	assert.FileExists(t, filepath.Join(root, "lib", "c.txt.enc"))
	assert.NoFileExists(t, filepath.Join(root, "lib", "c.txt"))
}

func TestEngine_RunIsolatesFailures(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine(t, "hunter2")

	var candidates []string
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		path := filepath.Join(root, name)
		writeTestFile(t, path, "content of "+name)
		o := e.EncryptFile(path)
		require.NoError(t, o.Err)
		candidates = append(candidates, o.Target)
	}
	// Corrupt one artifact.
	require.NoError(t, os.WriteFile(candidates[1], []byte("garbage garbage garbage"), 0600))

	result := e.Run(context.Background(), candidates, Decrypt, RunOptions{})
	assert.False(t, result.OK())
	assert.Len(t, result.Succeeded(), 2)
	require.Len(t, result.Failed(), 1)

	failed := result.Failed()[0]
	assert.Equal(t, candidates[1], failed.Source)
	assert.ErrorIs(t, result.Err(), kerrors.ErrPartialFailure)
	assert.ErrorIs(t, result.Err(), kerrors.ErrAuthentication)

	assert.FileExists(t, filepath.Join(root, "a.txt"))
	assert.FileExists(t, filepath.Join(root, "c.txt"))
}

func TestEngine_RunUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	e := newTestEngine(t, "hunter2")

	var candidates []string
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		path := filepath.Join(root, name)
		writeTestFile(t, path, "content of "+name)
		candidates = append(candidates, path)
	}
	require.NoError(t, os.Chmod(candidates[0], 0000))
	t.Cleanup(func() { _ = os.Chmod(candidates[0], 0644) })

	result := e.Run(context.Background(), candidates, Encrypt, RunOptions{})
	require.Len(t, result.Failed(), 1)
	assert.ErrorIs(t, result.Failed()[0].Err, kerrors.ErrIO)
	assert.Len(t, result.Succeeded(), 2)
	assert.FileExists(t, candidates[0])
}

func TestEngine_RunCancelledContext(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	writeTestFile(t, path, "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newTestEngine(t, "hunter2").Run(ctx, []string{path}, Encrypt, RunOptions{})
	assert.False(t, result.OK())
	assert.ErrorIs(t, result.Err(), context.Canceled)
	assert.FileExists(t, path)
}
