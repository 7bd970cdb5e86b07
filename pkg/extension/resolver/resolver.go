package resolver

import (
	"context"
)

const (
	PackageTypeFile    = "file"
	PackageTypePath    = "path"
	PackageTypeUnknown = "unknown"
)

type Resolver interface {
	// Resolve returns a binary path from a package reference
	Resolve(ctx context.Context, pkg string) (string, error)
}

// Source handles resolution for a specific scheme (e.g. local fs, $PATH)
type Source interface {
	// Scheme returns the scheme/prefix this source handles (e.g. "file", "path")
	Scheme() string

	// Resolve resolves a reference (without scheme prefix) to a binary path
	Resolve(ctx context.Context, ref string) (string, error)
}
