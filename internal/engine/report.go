package engine

import (
	"errors"
	"fmt"

	"github.com/dyluth/spoor/pkg/replay"
)

// ModuleFailure records one failed hook invocation. Failures never stop the run.
type ModuleFailure struct {
	Module string
	Hook   Hook
	Seq    int         // Event sequence number, -1 for start and end hooks
	Kind   replay.Kind // Event kind, empty for start and end hooks
	Err    error
}

func (f *ModuleFailure) Error() string {
	if f.Hook == HookEvent {
		return fmt.Sprintf("module %s failed on event %d (%s): %v", f.Module, f.Seq, f.Kind, f.Err)
	}
	return fmt.Sprintf("module %s failed in %s hook: %v", f.Module, f.Hook, f.Err)
}

func (f *ModuleFailure) Unwrap() error {
	return f.Err
}

// Report summarises one engine run.
type Report struct {
	ID       string           // Run identifier (UUID)
	Events   int              // Events dispatched
	Skipped  map[string]error // Modules detached by ErrMissingInput, by name
	Failures []*ModuleFailure
}

// Err joins all failures into one error, or returns nil for a clean run.
// Skipped modules are not failures.
func (r *Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// FailuresFor returns the failures recorded for one module.
func (r *Report) FailuresFor(module string) []*ModuleFailure {
	var out []*ModuleFailure
	for _, f := range r.Failures {
		if f.Module == module {
			out = append(out, f)
		}
	}
	return out
}
