package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/extkit/extkit/pkg/extension/payload"
	"github.com/extkit/extkit/pkg/extension/protocol"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewManifestCmd creates the manifest command group
func NewManifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect manifest files",
	}

	cmd.AddCommand(newManifestValidateCmd())
	cmd.AddCommand(newManifestSchemaCmd())

	return cmd
}

func newManifestValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <manifest-file>",
		Short: "Validate a manifest file (YAML or JSON)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			m, err := loadManifest(args[0])
			if err != nil {
				red := color.New(color.FgRed)
				red.Fprintf(out, "✗ %s is invalid\n", args[0])
				for _, e := range unwrapAll(err) {
					fmt.Fprintf(out, "  - %v\n", e)
				}
				return fmt.Errorf("manifest %s is invalid", args[0])
			}

			color.New(color.FgGreen).Fprintf(out, "✓ %s is valid\n", args[0])
			fmt.Fprintf(out, "  %s: %d command(s), %d preference(s)\n", m.Title, len(m.Commands), len(m.Preferences))
			return nil
		},
	}
}

func newManifestSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <manifest-file> <command>",
		Short: "Print the JSON Schema of the request a command receives",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest(args[0])
			if err != nil {
				return err
			}

			codec, err := payload.NewCodec(m)
			if err != nil {
				return err
			}

			shape, ok := codec.Shape(args[1])
			if !ok {
				return &protocol.UnknownCommandError{Command: args[1]}
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(shape.Schema())
		},
	}
}

func loadManifest(path string) (*protocol.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	return protocol.ParseManifest(data)
}

// unwrapAll flattens errors joined with errors.Join.
func unwrapAll(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}
