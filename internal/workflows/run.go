package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/PolarWolf314/gitseal/internal/audit"
	"github.com/PolarWolf314/gitseal/internal/configs"
	"github.com/PolarWolf314/gitseal/internal/secrets"
)

// RunOptions holds what encrypt and decrypt have in common.
type RunOptions struct {
	// Root is the repository root.
	Root string

	// Password is the repository password. It is checked against the stored
	// verifier before any file is read.
	Password string

	// Workers bounds parallelism. 0 means one per CPU.
	Workers int

	// DryRun resolves candidates without transforming anything.
	DryRun bool

	// OnFile is called as each file completes, from the worker goroutine.
	OnFile func(secrets.Outcome)
}

// RunResult contains the outcome of an encrypt or decrypt run.
type RunResult struct {
	Op secrets.Operation

	// Root is the repository root every path below is relative to.
	Root string

	// Candidates are the files the run applied to, relative and slash separated.
	Candidates []string

	// Warnings are tracked entries or files that were left out.
	Warnings []secrets.ResolutionWarning

	// Outcomes is nil for a dry run.
	Outcomes *secrets.Result

	// RunID identifies the audit log entry for this run.
	RunID string

	DryRun bool
}

// Rel converts a path produced by the run to a repository relative one.
func (r *RunResult) Rel(path string) string {
	if path == "" {
		return ""
	}
	return relTo(r.Root, path)
}

// Succeeded and Failed count files, zero for a dry run.
func (r *RunResult) Succeeded() int {
	if r.Outcomes == nil {
		return 0
	}
	return len(r.Outcomes.Succeeded())
}

func (r *RunResult) Failed() int {
	if r.Outcomes == nil {
		return 0
	}
	return len(r.Outcomes.Failed())
}

// prepare loads and checks everything a run needs before a file is touched.
// Every error here is fatal for the run.
func prepare(root, password string, op secrets.Operation) (*configs.Config, *secrets.Engine, func(), error) {
	config, err := configs.Load(root)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := config.VerifyPassword(password); err != nil {
		return nil, nil, nil, err
	}

	// Decrypt always needs a decoder: artifacts written while compression
	// was enabled stay compressed after it is switched off.
	var compressor *secrets.Compressor
	if op == secrets.Decrypt || config.UseZstd {
		compressor, err = secrets.NewCompressor(config.ZstdLevel)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("creating compressor: %w", err)
		}
	}
	cleanup := func() {
		if compressor != nil {
			compressor.Close()
		}
	}

	engine, err := secrets.NewEngine(secrets.DeriveKey(password), compressor)
	if err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("creating cipher: %w", err)
	}
	return config, engine, cleanup, nil
}

// execute resolves the tracked entries for req and runs the engine over them.
// hooks.before and hooks.after run around the transformation, never for a
// dry run.
func execute(ctx context.Context, opts RunOptions, req secrets.Request, hooks runHooks) (*RunResult, error) {
	config, engine, cleanup, err := prepare(opts.Root, opts.Password, req.Op)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	resolver := secrets.Resolver{
		Root:    opts.Root,
		Exclude: []string{configs.Path(opts.Root)},
	}
	resolution, err := resolver.Resolve(config.CryptList, req)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		Op:       req.Op,
		Root:     opts.Root,
		Warnings: resolution.Warnings,
		DryRun:   opts.DryRun,
	}
	for _, c := range resolution.Candidates {
		result.Candidates = append(result.Candidates, result.Rel(c))
	}
	if opts.DryRun {
		return result, nil
	}

	if hooks.before != nil {
		if err := hooks.before(ctx); err != nil {
			return nil, err
		}
	}

	result.Outcomes = engine.Run(ctx, resolution.Candidates, req.Op, secrets.RunOptions{
		Workers: opts.Workers,
		OnFile:  opts.OnFile,
	})

	entry := audit.NewEntry(req.Op.String())
	entry.Pattern = req.Pattern
	for _, o := range result.Outcomes.Succeeded() {
		entry.Files = append(entry.Files, result.Rel(o.Source))
	}
	for _, o := range result.Outcomes.Failed() {
		entry.Failed = append(entry.Failed, result.Rel(o.Source))
	}
	audit.Log(opts.Root, entry)
	result.RunID = entry.RunID

	runErr := result.Outcomes.Err()
	if hooks.after != nil {
		// Files finished before a cancellation are already rewritten, so the
		// after hook still runs for them.
		if err := hooks.after(context.WithoutCancel(ctx)); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}
	return result, runErr
}

type runHooks struct {
	before func(context.Context) error
	after  func(context.Context) error
}
