// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil holds test doubles shared by the devboot packages.
package testutil

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/toeirei/devboot/internal/runner"
)

// Call records one FakeRunner.Run invocation.
type Call struct {
	Name string
	Args []string
	Opts runner.Options
}

// Line renders the call as "name arg arg ...".
func (c Call) Line() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Handler computes the result for a matched call.
type Handler func(c Call) (*runner.Result, error)

type route struct {
	prefix  string
	handler Handler
}

// FakeRunner is a scripted runner.Runner. Calls are matched against the
// registered prefixes of "name arg arg ..."; the most recently registered
// match wins. Unmatched calls succeed with empty output.
type FakeRunner struct {
	mu     sync.Mutex
	routes []route
	paths  map[string]string
	calls  []Call
}

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{paths: map[string]string{}}
}

// Tools marks names as resolvable by LookPath.
func (f *FakeRunner) Tools(names ...string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		f.paths[n] = `C:\fake\bin\` + n + ".exe"
	}
	return f
}

// RemoveTool makes name unresolvable again.
func (f *FakeRunner) RemoveTool(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.paths, name)
}

// On answers calls starting with prefix with a copy of res.
func (f *FakeRunner) On(prefix string, res runner.Result) *FakeRunner {
	return f.OnFunc(prefix, func(Call) (*runner.Result, error) {
		r := res
		return &r, nil
	})
}

// OnFunc answers calls starting with prefix with h.
func (f *FakeRunner) OnFunc(prefix string, h Handler) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, route{prefix: prefix, handler: h})
	return f
}

// LookPath implements runner.Runner.
func (f *FakeRunner) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.paths[name]; ok {
		return p, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// Run implements runner.Runner.
func (f *FakeRunner) Run(ctx context.Context, name string, args []string, opts ...runner.Option) (*runner.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := Call{Name: name, Args: append([]string(nil), args...), Opts: runner.Apply(opts...)}

	f.mu.Lock()
	f.calls = append(f.calls, c)
	var h Handler
	line := c.Line()
	for i := len(f.routes) - 1; i >= 0; i-- {
		if strings.HasPrefix(line, f.routes[i].prefix) {
			h = f.routes[i].handler
			break
		}
	}
	f.mu.Unlock()

	if h == nil {
		return &runner.Result{}, nil
	}
	return h(c)
}

// Calls returns a copy of every recorded call.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Count returns how many calls started with prefix.
func (f *FakeRunner) Count(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c.Line(), prefix) {
			n++
		}
	}
	return n
}

// Called reports whether any call started with prefix.
func (f *FakeRunner) Called(prefix string) bool { return f.Count(prefix) > 0 }

// Lines returns every recorded call rendered with Call.Line.
func (f *FakeRunner) Lines() []string {
	var out []string
	for _, c := range f.Calls() {
		out = append(out, c.Line())
	}
	return out
}

// Elevated is a privilege.Checker with a fixed answer.
type Elevated bool

// IsElevated implements privilege.Checker.
func (e Elevated) IsElevated() (bool, error) { return bool(e), nil }
