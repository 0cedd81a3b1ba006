package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	kerrors "github.com/PolarWolf314/gitseal/internal/errors"
	"golang.org/x/sync/errgroup"
)

// Engine holds what every worker of a run shares: the cipher and, when
// compression is enabled, the compressor. Both are read-only during a run.
type Engine struct {
	cipher     *Cipher
	compressor *Compressor
}

// NewEngine builds an Engine for key. A nil compressor disables compression.
func NewEngine(key Key, compressor *Compressor) (*Engine, error) {
	c, err := NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &Engine{cipher: c, compressor: compressor}, nil
}

// RunOptions tunes the executor.
type RunOptions struct {
	// Workers bounds the number of files processed at once. 0 means runtime.NumCPU().
	Workers int

	// OnFile, if set, is called from the worker after each file completes.
	OnFile func(Outcome)
}

// Run applies op to every candidate on a bounded worker pool and returns the
// per-file outcomes. A failing file never stops the others. Cancelling ctx
// stops new files from starting; files already in flight are completed so
// nothing is left half written.
func (e *Engine) Run(ctx context.Context, candidates []string, op Operation, opts RunOptions) *Result {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	result := newResult(op)
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for _, path := range candidates {
		if ctx.Err() != nil {
			result.record(Outcome{Source: path, Err: &FileError{Path: path, Op: op, Err: ctx.Err()}})
			continue
		}
		path := path
		g.Go(func() error {
			var o Outcome
			if op == Encrypt {
				o = e.EncryptFile(path)
			} else {
				o = e.DecryptFile(path)
			}
			result.record(o)
			if opts.OnFile != nil {
				opts.OnFile(o)
			}
			return nil
		})
	}
	_ = g.Wait()

	return result
}

// EncryptFile compresses (when it helps) and seals path, writes the artifact
// next to it and removes the plaintext.
func (e *Engine) EncryptFile(path string) Outcome {
	fail := func(err error) Outcome {
		return Outcome{Source: path, Err: &FileError{Path: path, Op: Encrypt, Err: err}}
	}

	info, plaintext, err := readFile(path)
	if err != nil {
		return fail(err)
	}

	payload, compressed := plaintext, false
	if e.compressor != nil {
		// Compression must shrink the data to be worth recording in the name.
		if c := e.compressor.Compress(plaintext); len(c) < len(plaintext) {
			payload, compressed = c, true
		}
	}

	target := EncryptedPath(path, compressed)
	if err := writeFileAtomic(target, e.cipher.Seal(payload), info.Mode().Perm()); err != nil {
		return fail(err)
	}

	// The other artifact name may be left over from an earlier run whose
	// compression decision differed.
	stale := EncryptedPath(path, !compressed)
	if err := removeIfExists(stale); err != nil {
		return fail(err)
	}
	if err := removeIfExists(path); err != nil {
		return fail(err)
	}

	return Outcome{Source: path, Target: target}
}

// DecryptFile opens path, decompresses it when its suffix says so, writes the
// plaintext and removes the artifact.
func (e *Engine) DecryptFile(path string) Outcome {
	fail := func(err error) Outcome {
		return Outcome{Source: path, Err: &FileError{Path: path, Op: Decrypt, Err: err}}
	}

	state := Classify(path)
	if !state.IsEncrypted() {
		return fail(fmt.Errorf("%w: %s is not an encrypted artifact", kerrors.ErrIO, filepath.Base(path)))
	}

	info, ciphertext, err := readFile(path)
	if err != nil {
		return fail(err)
	}

	plaintext, err := e.cipher.Open(ciphertext)
	if err != nil {
		return fail(err)
	}
	if state == CompressedEncrypted {
		if e.compressor == nil {
			return fail(fmt.Errorf("%w: compressed artifact but no decompressor configured", kerrors.ErrCompression))
		}
		plaintext, err = e.compressor.Decompress(plaintext)
		if err != nil {
			return fail(err)
		}
	}

	target := DecryptedPath(path)
	if err := writeFileAtomic(target, plaintext, info.Mode().Perm()); err != nil {
		return fail(err)
	}
	if err := removeIfExists(path); err != nil {
		return fail(err)
	}

	return Outcome{Source: path, Target: target}
}

func readFile(path string) (fs.FileInfo, []byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	return info, data, nil
}

// writeFileAtomic writes data to a temporary file in the target's directory,
// syncs it and renames it into place, so target is either absent, the old
// content or the complete new content.
func writeFileAtomic(target string, data []byte, perm fs.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: writing %s: %v", kerrors.ErrIO, target, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: syncing %s: %v", kerrors.ErrIO, target, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", kerrors.ErrIO, target, err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	return nil
}
