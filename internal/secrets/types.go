package secrets

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	kerrors "github.com/PolarWolf314/gitseal/internal/errors"
)

// Operation is the direction of a run.
type Operation int

const (
	Encrypt Operation = iota
	Decrypt
)

func (o Operation) String() string {
	if o == Decrypt {
		return "decrypt"
	}
	return "encrypt"
}

// Terminal reports whether a file in state s is already done for o.
func (o Operation) Terminal(s FileState) bool {
	if o == Encrypt {
		return s.IsEncrypted()
	}
	return s == Plain
}

// Request selects the operation and, optionally, a glob restricting which
// tracked files take part. An empty Pattern means every tracked file.
type Request struct {
	Op      Operation
	Pattern string
}

// ResolutionWarning describes a tracked entry or file that was left out of a
// run. It never stops the run.
type ResolutionWarning struct {
	Entry  string
	Reason string
}

func (w ResolutionWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Entry, w.Reason)
}

// FileError is the failure of a single file's pipeline.
type FileError struct {
	Path string
	Op   Operation
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Outcome is what happened to one candidate. Target is empty on failure.
type Outcome struct {
	Source string
	Target string
	Err    error
}

// OK reports whether the file was transformed.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Result collects the outcomes of a run keyed by source path. Workers record
// into it concurrently; completion order is irrelevant.
type Result struct {
	Op Operation

	mu       sync.Mutex
	outcomes map[string]Outcome
}

func newResult(op Operation) *Result {
	return &Result{Op: op, outcomes: make(map[string]Outcome)}
}

func (r *Result) record(o Outcome) {
	r.mu.Lock()
	r.outcomes[o.Source] = o
	r.mu.Unlock()
}

// Outcome returns the outcome recorded for source.
func (r *Result) Outcome(source string) (Outcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.outcomes[source]
	return o, ok
}

// Outcomes returns every outcome sorted by source path.
func (r *Result) Outcomes() []Outcome {
	r.mu.Lock()
	out := make([]Outcome, 0, len(r.outcomes))
	for _, o := range r.outcomes {
		out = append(out, o)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// Succeeded returns the outcomes that transformed their file.
func (r *Result) Succeeded() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes() {
		if o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Failed returns the outcomes that did not.
func (r *Result) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes() {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Len is the number of recorded outcomes.
func (r *Result) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outcomes)
}

// OK reports whether every candidate succeeded.
func (r *Result) OK() bool {
	return len(r.Failed()) == 0
}

// Err returns nil when every file succeeded, otherwise ErrPartialFailure
// joined with each file's error.
func (r *Result) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failed)+1)
	errs = append(errs, kerrors.ErrPartialFailure)
	for _, o := range failed {
		errs = append(errs, o.Err)
	}
	return errors.Join(errs...)
}
