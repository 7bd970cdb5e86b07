package client

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"runtime"
	"slices"
	"sync"

	"github.com/extkit/extkit/pkg/extension"
	"github.com/extkit/extkit/pkg/extension/protocol"
	"github.com/extkit/extkit/pkg/extension/resolver"
	"golang.org/x/sync/errgroup"
)

type ExtensionManager interface {
	// Register adds an extension specification
	Register(alias string, spec *extension.ExtensionSpec) error
	// Get returns a client by alias, resolving its binary if needed
	Get(ctx context.Context, alias string) (Client, error)
	// Has returns whether an extension is registered
	Has(alias string) bool
	// Aliases returns the registered aliases, sorted
	Aliases() []string
	// DescribeAll fetches the manifest of every registered extension concurrently
	DescribeAll(ctx context.Context) (map[string]*protocol.Manifest, error)
	// Request builds a request for a registered extension, carrying the
	// preferences of its spec and the current working directory
	Request(alias, command string, params protocol.Values, query *string) (*protocol.Request, error)
}

type extensionManager struct {
	mu        sync.Mutex
	clients   map[string]Client
	specs     map[string]*extension.ExtensionSpec
	resolver  resolver.Resolver
	opts      ExtensionOptions
	newClient func(Options) Client
}

type ExtensionOptions struct {
	// Stderr receives the diagnostics of every spawned extension.
	Stderr io.Writer
	// Concurrency bounds DescribeAll; defaults to the number of CPUs.
	Concurrency int
}

func NewManager(res resolver.Resolver, opts ExtensionOptions) ExtensionManager {
	return &extensionManager{
		clients:   make(map[string]Client),
		specs:     make(map[string]*extension.ExtensionSpec),
		resolver:  res,
		opts:      opts,
		newClient: New,
	}
}

func (m *extensionManager) Register(alias string, spec *extension.ExtensionSpec) error {
	if spec == nil || spec.Package == "" {
		return fmt.Errorf("extension spec: package field is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.specs[alias]; exists {
		return fmt.Errorf("extension alias %q already registered", alias)
	}

	m.specs[alias] = spec
	return nil
}

func (m *extensionManager) Get(ctx context.Context, alias string) (Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.clients[alias]; ok {
		return c, nil
	}

	spec, ok := m.specs[alias]
	if !ok {
		return nil, fmt.Errorf("no extension registered for alias %q", alias)
	}

	binaryPath, err := m.resolver.Resolve(ctx, spec.Package)
	if err != nil {
		return nil, err
	}

	env := os.Environ()
	for k, v := range spec.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	c := m.newClient(Options{
		BinaryPath: binaryPath,
		Env:        env,
		Stderr:     m.opts.Stderr,
	})

	m.clients[alias] = c
	return c, nil
}

func (m *extensionManager) Has(alias string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.specs[alias]

	return ok
}

func (m *extensionManager) Aliases() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Sorted(maps.Keys(m.specs))
}

func (m *extensionManager) DescribeAll(ctx context.Context) (map[string]*protocol.Manifest, error) {
	aliases := m.Aliases()

	limit := m.opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	manifests := make(map[string]*protocol.Manifest, len(aliases))

	for _, alias := range aliases {
		g.Go(func() error {
			c, err := m.Get(ctx, alias)
			if err != nil {
				return fmt.Errorf("%s: %w", alias, err)
			}

			manifest, err := c.Describe(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", alias, err)
			}

			mu.Lock()
			manifests[alias] = manifest
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return manifests, nil
}

func (m *extensionManager) Request(alias, command string, params protocol.Values, query *string) (*protocol.Request, error) {
	m.mu.Lock()
	spec, ok := m.specs[alias]
	m.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no extension registered for alias %q", alias)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	prefs := make(protocol.Values, len(spec.Preferences))
	maps.Copy(prefs, spec.Preferences)

	if params == nil {
		params = protocol.Values{}
	}

	return &protocol.Request{
		Command:     command,
		Cwd:         cwd,
		Preferences: prefs,
		Params:      params,
		Query:       query,
	}, nil
}
