package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const isExecutableMask = 0111

// FileSource resolves references to executables on disk. Relative paths are
// joined to BasePath, or to the working directory when BasePath is empty.
type FileSource struct {
	BasePath string
}

var _ Source = &FileSource{}

func (s *FileSource) Scheme() string {
	return PackageTypeFile
}

func (s *FileSource) Resolve(ctx context.Context, ref string) (string, error) {
	path := ref
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand ~: %w", err)
		}

		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		base := s.BasePath
		if base == "" {
			wd, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("failed to get working directory: %w", err)
			}
			base = wd
		}

		path = filepath.Join(base, path)
	}

	path = filepath.Clean(path)

	return checkExecutable(path)
}

func checkExecutable(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("extension not found at %s: %w", path, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("extension path %s is a directory, expected executable", path)
	}

	if info.Mode()&isExecutableMask == 0 {
		return "", fmt.Errorf("extension at %s is not executable", path)
	}

	return path, nil
}
