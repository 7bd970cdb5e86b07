package resolver

import (
	"context"
	"fmt"
	"os/exec"
)

// PathSource resolves executable names through $PATH.
type PathSource struct{}

var _ Source = &PathSource{}

func (s *PathSource) Scheme() string {
	return PackageTypePath
}

func (s *PathSource) Resolve(ctx context.Context, ref string) (string, error) {
	path, err := exec.LookPath(ref)
	if err != nil {
		return "", fmt.Errorf("extension %q not found in PATH: %w", ref, err)
	}

	return checkExecutable(path)
}
