package collector

import (
	"context"
	"fmt"
	"strings"
)

// fakeRunner serves canned command output keyed by the full command line,
// so adapter tests never spawn real processes.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	missing map[string]bool
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
		missing: make(map[string]bool),
	}
}

func (f *fakeRunner) set(cmdline, out string) { f.outputs[cmdline] = out }

func (f *fakeRunner) setError(cmdline string, err error) { f.errs[cmdline] = err }

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if out, ok := f.outputs[key]; ok {
		return []byte(out), nil
	}
	return nil, fmt.Errorf("fake runner: no output for %q", key)
}

func (f *fakeRunner) LookPath(name string) bool { return !f.missing[name] }
