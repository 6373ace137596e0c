// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package onboard

import "fmt"

// Status is the result class of one step.
type Status string

const (
	StatusChanged Status = "changed"
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome is what a step reports when it does not fail fatally.
type Outcome struct {
	Status Status
	Detail string
}

func changed(format string, args ...any) Outcome {
	return Outcome{Status: StatusChanged, Detail: fmt.Sprintf(format, args...)}
}

func ok(format string, args ...any) Outcome {
	return Outcome{Status: StatusOK, Detail: fmt.Sprintf(format, args...)}
}

func warning(format string, args ...any) Outcome {
	return Outcome{Status: StatusWarning, Detail: fmt.Sprintf(format, args...)}
}

func skipped(format string, args ...any) Outcome {
	return Outcome{Status: StatusSkipped, Detail: fmt.Sprintf(format, args...)}
}

// StepResult is one row of the run report.
type StepResult struct {
	Step   string
	Status Status
	Detail string
}

// Report summarises a run. It lives only in memory.
type Report struct {
	Results []StepResult
	// PushCommand is set when the push failed and must be retried by hand.
	PushCommand string
	Identity    string
	Branch      string
	Keys        KeyPaths
	Tools       []ToolPresence
}

func (r *Report) add(name string, out Outcome) {
	r.Results = append(r.Results, StepResult{Step: name, Status: out.Status, Detail: out.Detail})
}

// capture copies the state gathered so far into the report.
func (r *Report) capture(st *State) {
	if st.Identity.Username != "" {
		r.Identity = st.Identity.Username
		r.Branch = st.Identity.BranchName()
	}
	r.Keys = st.Keys
	r.Tools = st.Tools
}

// Result returns the row for step.
func (r *Report) Result(step string) (StepResult, bool) {
	for _, res := range r.Results {
		if res.Step == step {
			return res, true
		}
	}
	return StepResult{}, false
}

// Count returns how many steps ended with status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// FatalError ends a run. Hint tells the operator what to do before
// re-running.
type FatalError struct {
	Step string
	Err  error
	Hint string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

func fatal(err error, hint string) error {
	return &FatalError{Err: err, Hint: hint}
}
