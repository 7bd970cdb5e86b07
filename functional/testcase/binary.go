package testcase

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables for binary paths
const (
	EnvExtkitBinary  = "EXTKIT_BINARY"
	EnvDevdocsBinary = "EXTKIT_DEVDOCS_BINARY"
)

// GetExtkitBinary returns the path to the extkit binary.
// It first checks the EXTKIT_BINARY environment variable,
// then looks for the binary in common locations.
func GetExtkitBinary() (string, error) {
	return findBinary(EnvExtkitBinary, "extkit")
}

// GetDevdocsBinary returns the path to the devdocs extension binary.
func GetDevdocsBinary() (string, error) {
	return findBinary(EnvDevdocsBinary, "devdocs")
}

func findBinary(env, name string) (string, error) {
	if path := os.Getenv(env); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		return "", fmt.Errorf("%s set to %q but file not found", env, path)
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	candidates := []string{
		filepath.Join(wd, "..", "..", "bin", name), // from functional/testcase or functional/tests
		filepath.Join(wd, "..", "bin", name),       // from functional
		filepath.Join(wd, "bin", name),             // current dir
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%s binary not found; set %s environment variable", name, env)
}
