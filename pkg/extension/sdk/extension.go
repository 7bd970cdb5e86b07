package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/extkit/extkit/pkg/extension/fetch"
	"github.com/extkit/extkit/pkg/extension/payload"
	"github.com/extkit/extkit/pkg/extension/protocol"
)

// EnvDebug enables debug log entries when set to any non-empty value.
const EnvDebug = "EXTKIT_DEBUG"

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Extension is one manifest plus the handlers implementing its commands.
type Extension struct {
	mu       sync.RWMutex
	manifest protocol.Manifest
	handlers map[string]CommandHandler
	fetcher  fetch.Fetcher
	debug    bool
}

// ExtensionOption is a functional option for configuring an Extension.
type ExtensionOption func(*Extension)

// NewExtension creates a new Extension for the given manifest and options.
func NewExtension(m protocol.Manifest, opts ...ExtensionOption) *Extension {
	e := &Extension{
		manifest: m,
		handlers: make(map[string]CommandHandler),
		debug:    os.Getenv(EnvDebug) != "",
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fetcher == nil {
		e.fetcher = fetch.NewClient(fetch.Options{})
	}
	return e
}

// WithFetcher sets the collaborator used for the outbound read.
func WithFetcher(f fetch.Fetcher) ExtensionOption {
	return func(e *Extension) {
		e.fetcher = f
	}
}

// WithDebug forces debug logging on or off regardless of EXTKIT_DEBUG.
func WithDebug(debug bool) ExtensionOption {
	return func(e *Extension) {
		e.debug = debug
	}
}

// Manifest returns the manifest the extension was created with.
func (e *Extension) Manifest() protocol.Manifest {
	return e.manifest
}

// AddCommand registers the handler for a declared command.
func (e *Extension) AddCommand(name string, handler CommandHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.handlers[name] = handler
}

// Main runs the extension against the process arguments and exits.
func (e *Extension) Main() {
	os.Exit(e.Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes a single invocation and returns the process exit code.
//
// With no arguments the manifest is written to stdout. With one argument the
// argument is decoded as a request and dispatched to the command handler;
// the response, if any, is written to stdout only once the handler has
// succeeded. Diagnostics go to stderr.
func (e *Extension) Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	ctx = withLogger(ctx, newLogger(stderr, e.debug))

	codec, err := e.codec()
	if err != nil {
		_ = e.LogError(ctx, "invalid extension", map[string]any{"error": err.Error()})
		return ExitFailure
	}

	var out []byte
	switch len(args) {
	case 0:
		out, err = json.Marshal(codec.Manifest())
		if err != nil {
			_ = e.LogError(ctx, "failed to encode manifest", map[string]any{"error": err.Error()})
			return ExitFailure
		}
	case 1:
		out, err = e.execute(ctx, codec, args[0])
		if err != nil {
			_ = e.LogError(ctx, err.Error(), nil)
			return ExitFailure
		}
	default:
		_ = e.LogError(ctx, fmt.Sprintf("expected zero or one argument, got %d", len(args)), nil)
		_, _ = fmt.Fprintf(stderr, "usage: %s [request-json]\n", programName())
		return ExitUsage
	}

	if out == nil {
		return ExitOK
	}

	if _, err := stdout.Write(append(out, '\n')); err != nil {
		_ = e.LogError(ctx, "failed to write output", map[string]any{"error": err.Error()})
		return ExitFailure
	}

	return ExitOK
}

// codec derives the request shapes and checks that every handler belongs to
// a declared command.
func (e *Extension) codec() (*payload.Codec, error) {
	m := e.manifest
	codec, err := payload.NewCodec(&m)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	var errs []error
	for name := range e.handlers {
		if _, ok := codec.Shape(name); !ok {
			errs = append(errs, fmt.Errorf("handler registered for undeclared command %q", name))
		}
	}

	return codec, errors.Join(errs...)
}

func (e *Extension) execute(ctx context.Context, codec *payload.Codec, arg string) ([]byte, error) {
	req, err := codec.Decode([]byte(arg))
	if err != nil {
		return nil, err
	}

	shape, _ := codec.Shape(req.Command)
	cmd := shape.Command()

	e.mu.RLock()
	handler, ok := e.handlers[req.Command]
	e.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no handler registered for command %q", req.Command)
	}

	_ = e.LogDebug(ctx, "executing command", map[string]any{"command": req.Command, "cwd": req.Cwd})

	resp, err := handler(ctx, &CommandRequest{
		Request:     req,
		Declaration: cmd,
		Fetcher:     fetch.Once(e.fetcher),
	})
	if err != nil {
		return nil, fmt.Errorf("command %q failed: %w", req.Command, err)
	}

	if err := checkResponse(cmd.Mode, resp); err != nil {
		return nil, fmt.Errorf("command %q returned an invalid response: %w", req.Command, err)
	}

	if resp == nil {
		return nil, nil
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}

	return out, nil
}

// checkResponse matches the response kind to the command's render mode.
// tty and silent commands may return nothing.
func checkResponse(mode protocol.Mode, resp protocol.Response) error {
	switch mode {
	case protocol.ModeFilter, protocol.ModeSearch:
		if l, ok := resp.(*protocol.List); !ok || l == nil {
			return fmt.Errorf("%s commands must return a list, got %T", mode, resp)
		}
	case protocol.ModeDetail:
		if d, ok := resp.(*protocol.Detail); !ok || d == nil {
			return fmt.Errorf("%s commands must return a detail, got %T", mode, resp)
		}
	}
	return nil
}

func programName() string {
	if len(os.Args) == 0 {
		return "extension"
	}
	return os.Args[0]
}
