package testcase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"testing"
	"time"
)

// Result is the outcome of one process invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// JSON decodes stdout into v.
func (r *Result) JSON(v any) error {
	return json.Unmarshal([]byte(r.Stdout), v)
}

// Invocation runs a binary once with extra environment variables.
type Invocation struct {
	t      *testing.T
	binary string
	env    []string
	dir    string
}

// NewInvocation prepares binary for running. The test is skipped when the
// binary cannot be found.
func NewInvocation(t *testing.T, find func() (string, error)) *Invocation {
	t.Helper()

	binary, err := find()
	if err != nil {
		t.Skipf("skipping: %v", err)
	}

	return &Invocation{t: t, binary: binary, dir: t.TempDir()}
}

// WithEnv adds an environment variable to every run.
func (i *Invocation) WithEnv(key, value string) *Invocation {
	i.env = append(i.env, key+"="+value)
	return i
}

// Dir returns the working directory runs use.
func (i *Invocation) Dir() string {
	return i.dir
}

// Run executes the binary with args and waits for it to exit.
func (i *Invocation) Run(args ...string) *Result {
	i.t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, i.binary, args...)
	cmd.Dir = i.dir
	cmd.Env = append(os.Environ(), i.env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		i.t.Fatalf("failed to run %s: %v", i.binary, err)
	}

	if res.ExitCode != 0 {
		i.t.Logf("%s exited with %d\nstderr:\n%s", i.binary, res.ExitCode, res.Stderr)
	}

	return res
}
