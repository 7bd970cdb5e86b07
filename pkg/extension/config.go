package extension

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"sigs.k8s.io/yaml"
)

// ExtensionSpec describes how to launch a registered extension.
type ExtensionSpec struct {
	// Package is a reference understood by the resolver, e.g. "./bin/devdocs"
	// or a bare executable name looked up in $PATH.
	Package string            `json:"package"`
	Env     map[string]string `json:"env,omitempty"`
	// Preferences are sent with every request to the extension.
	Preferences map[string]any `json:"preferences,omitempty"`
}

// Registry is the on-disk list of extensions, keyed by alias.
type Registry struct {
	Extensions map[string]*ExtensionSpec `json:"extensions"`
}

// Aliases returns the registered aliases, sorted.
func (r *Registry) Aliases() []string {
	aliases := make([]string, 0, len(r.Extensions))
	for alias := range r.Extensions {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// LoadRegistry reads a registry file. A missing file yields an empty registry.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Registry{Extensions: map[string]*ExtensionSpec{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read extension registry: %w", err)
	}

	reg, err := ParseRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse extension registry %s: %w", path, err)
	}

	return reg, nil
}

// ParseRegistry decodes a registry from YAML or JSON.
func ParseRegistry(data []byte) (*Registry, error) {
	reg := &Registry{}
	if err := yaml.UnmarshalStrict(data, reg); err != nil {
		return nil, err
	}

	if reg.Extensions == nil {
		reg.Extensions = map[string]*ExtensionSpec{}
	}

	var errs []error
	for _, alias := range reg.Aliases() {
		spec := reg.Extensions[alias]
		if spec == nil || spec.Package == "" {
			errs = append(errs, fmt.Errorf("extension %q: package field is required", alias))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return reg, nil
}

// BaseDir returns the directory relative package references are resolved
// against for a registry loaded from path.
func BaseDir(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Dir(path)
	}
	return filepath.Dir(abs)
}
