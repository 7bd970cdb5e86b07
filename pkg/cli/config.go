package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/extkit/extkit/pkg/extension"
	"github.com/extkit/extkit/pkg/extension/client"
	"github.com/extkit/extkit/pkg/extension/resolver"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. EXTKIT_REGISTRY.
	EnvPrefix = "EXTKIT"

	keyRegistry = "registry"
	keyTimeout  = "timeout"

	defaultTimeout = 30 * time.Second
)

// Settings are the CLI settings, read from the config file, the environment
// and flags, in increasing order of precedence.
type Settings struct {
	// Registry is the path of the extension registry file.
	Registry string
	// Timeout bounds every extension invocation.
	Timeout time.Duration
}

// ConfigDir returns the extkit config directory (~/.config/extkit).
func ConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".extkit")
	}
	return filepath.Join(dir, "extkit")
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", filepath.Join(ConfigDir(), "config.yaml"), "Path to the extkit config file")
	cmd.PersistentFlags().String(keyRegistry, filepath.Join(ConfigDir(), "extensions.yaml"), "Path to the extension registry")
	cmd.PersistentFlags().Duration(keyTimeout, defaultTimeout, "Timeout for each extension invocation")
}

// loadSettings resolves the settings for cmd.
func loadSettings(cmd *cobra.Command) (*Settings, error) {
	flags := cmd.Root().PersistentFlags()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault(keyRegistry, filepath.Join(ConfigDir(), "extensions.yaml"))
	v.SetDefault(keyTimeout, defaultTimeout)

	for _, key := range []string{keyRegistry, keyTimeout} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %q: %w", key, err)
		}
	}

	configFile, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}

	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	s := &Settings{
		Registry: v.GetString(keyRegistry),
		Timeout:  v.GetDuration(keyTimeout),
	}
	if s.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}

	return s, nil
}

// newManager loads the registry named by the settings and registers every
// extension in it. References that are not registered aliases are
// registered on the fly, so a path or executable name works too.
func newManager(cmd *cobra.Command, s *Settings, refs ...string) (client.ExtensionManager, error) {
	reg, err := extension.LoadRegistry(s.Registry)
	if err != nil {
		return nil, err
	}

	res := resolver.GetResolver(resolver.Options{BasePath: extension.BaseDir(s.Registry)})
	manager := client.NewManager(res, client.ExtensionOptions{Stderr: cmd.ErrOrStderr()})

	for _, alias := range reg.Aliases() {
		if err := manager.Register(alias, reg.Extensions[alias]); err != nil {
			return nil, err
		}
	}

	for _, ref := range refs {
		if manager.Has(ref) {
			continue
		}
		if err := manager.Register(ref, &extension.ExtensionSpec{Package: adHocPackage(ref)}); err != nil {
			return nil, err
		}
	}

	return manager, nil
}

// adHocPackage turns an unregistered reference into a package reference
// relative to the working directory rather than the registry.
func adHocPackage(ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	if _, err := os.Stat(ref); err == nil {
		if abs, err := filepath.Abs(ref); err == nil {
			return abs
		}
	}
	return ref
}
