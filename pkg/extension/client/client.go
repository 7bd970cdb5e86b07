package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/extkit/extkit/pkg/extension/protocol"
)

// Client invokes one extension binary. Every call spawns a fresh process.
type Client interface {
	// Describe runs the extension without arguments and returns its manifest.
	Describe(ctx context.Context) (*protocol.Manifest, error)
	// Execute runs the extension with req as its single argument and returns
	// the raw response document, nil when the command printed nothing.
	Execute(ctx context.Context, req *protocol.Request) (json.RawMessage, error)
	// List executes a filter or search command and decodes its list.
	List(ctx context.Context, req *protocol.Request) (*protocol.List, error)
	// Detail executes a detail command and decodes its detail.
	Detail(ctx context.Context, req *protocol.Request) (*protocol.Detail, error)
}

// ExitError is returned when the extension terminates with a non-zero status.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("extension exited with status %d", e.Code)
	}
	return fmt.Sprintf("extension exited with status %d: %s", e.Code, e.Stderr)
}

type client struct {
	opts Options
}

var _ Client = &client{}

type Options struct {
	BinaryPath string
	// Env replaces the process environment when non-nil.
	Env []string
	// Stderr receives the extension diagnostics as they are written.
	Stderr io.Writer
}

func New(opts Options) Client {
	return &client{opts: opts}
}

func (c *client) Describe(ctx context.Context) (*protocol.Manifest, error) {
	out, err := c.run(ctx)
	if err != nil {
		return nil, err
	}

	m, err := protocol.ParseManifest(out)
	if err != nil {
		return nil, fmt.Errorf("extension %s printed an invalid manifest: %w", c.opts.BinaryPath, err)
	}

	return m, nil
}

func (c *client) Execute(ctx context.Context, req *protocol.Request) (json.RawMessage, error) {
	arg, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	out, err := c.run(ctx, string(arg))
	if err != nil {
		return nil, err
	}

	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, nil
	}

	if !json.Valid(out) {
		return nil, fmt.Errorf("extension %s printed invalid JSON for command %q", c.opts.BinaryPath, req.Command)
	}

	return json.RawMessage(out), nil
}

func (c *client) List(ctx context.Context, req *protocol.Request) (*protocol.List, error) {
	list := &protocol.List{}
	if err := c.executeInto(ctx, req, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *client) Detail(ctx context.Context, req *protocol.Request) (*protocol.Detail, error) {
	detail := &protocol.Detail{}
	if err := c.executeInto(ctx, req, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

func (c *client) executeInto(ctx context.Context, req *protocol.Request, v any) error {
	raw, err := c.Execute(ctx, req)
	if err != nil {
		return err
	}

	if raw == nil {
		return fmt.Errorf("command %q printed no response", req.Command)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode response of command %q: %w", req.Command, err)
	}

	return nil
}

func (c *client) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.opts.BinaryPath, args...)
	cmd.Env = c.opts.Env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if c.opts.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, c.opts.Stderr)
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{
				Code:   exitErr.ExitCode(),
				Stderr: strings.TrimSpace(stderr.String()),
			}
		}
		return nil, fmt.Errorf("failed to run extension %s: %w", c.opts.BinaryPath, err)
	}

	return stdout.Bytes(), nil
}
