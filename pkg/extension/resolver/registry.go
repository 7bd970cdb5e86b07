package resolver

import (
	"context"
	"fmt"
	"strings"
)

// Options configures the resolver behavior
type Options struct {
	// BasePath is the directory to use when resolving relative file paths
	BasePath string
}

// GetResolver creates a resolver with the given options
func GetResolver(opts Options) Resolver {
	return &registry{
		sources: map[string]Source{
			PackageTypeFile: &FileSource{BasePath: opts.BasePath},
			PackageTypePath: &PathSource{},
		},
	}
}

type registry struct {
	sources map[string]Source
}

var _ Resolver = &registry{}

func (r *registry) Resolve(ctx context.Context, pkg string) (string, error) {
	scheme, ref := parseRef(pkg)

	source, ok := r.sources[scheme]
	if !ok {
		return "", fmt.Errorf("unknown scheme in package reference %q", pkg)
	}

	return source.Resolve(ctx, ref)
}

// parseRef splits a package reference into the scheme of the source that
// handles it and the reference that source receives.
//
//   - "file:///abs/ext", "/abs/ext", "./ext", "../ext", "~/ext" resolve on disk
//   - "path:ext" and bare names such as "devdocs" are looked up in $PATH
func parseRef(ref string) (scheme, path string) {
	// file:// prefix
	if path, ok := strings.CutPrefix(ref, "file://"); ok {
		return PackageTypeFile, path
	}

	if strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../") || strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "~/") {
		return PackageTypeFile, ref
	}

	if path, ok := strings.CutPrefix(ref, "path:"); ok {
		return PackageTypePath, path
	}

	if ref != "" && !strings.ContainsAny(ref, `/\:`) {
		return PackageTypePath, ref
	}

	return PackageTypeUnknown, ref
}
