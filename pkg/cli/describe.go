package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/extkit/extkit/pkg/extension/protocol"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewDescribeCmd creates the describe command
func NewDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <extension>",
		Short: "Print the manifest of an extension",
		Long: `Run an extension without arguments and pretty-print its manifest.

The extension is either an alias from the registry, a path to an executable
or an executable name found in $PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			manager, err := newManager(cmd, settings, args[0])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), settings.Timeout)
			defer cancel()

			c, err := manager.Get(ctx, args[0])
			if err != nil {
				return err
			}

			m, err := c.Describe(ctx)
			if err != nil {
				return fmt.Errorf("failed to describe %s: %w", args[0], err)
			}

			printManifest(cmd.OutOrStdout(), m)
			return nil
		},
	}
}

func printManifest(w io.Writer, m *protocol.Manifest) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	faint := color.New(color.Faint)

	bold.Fprintln(w, m.Title)
	if m.Description != "" {
		fmt.Fprintf(w, "  %s\n", m.Description)
	}

	if len(m.Preferences) > 0 {
		fmt.Fprintln(w)
		bold.Fprintln(w, "Preferences:")
		for _, p := range m.Preferences {
			fmt.Fprintf(w, "  %s (%s)  %s\n", p.Name, p.Type, p.Title)
		}
	}

	fmt.Fprintln(w)
	bold.Fprintln(w, "Commands:")
	for _, c := range m.Commands {
		cyan.Fprintf(w, "  %s", c.Name)
		fmt.Fprintf(w, "  %s ", c.Title)
		faint.Fprintf(w, "[%s]", c.Mode)
		if c.Hidden {
			faint.Fprint(w, " hidden")
		}
		fmt.Fprintln(w)

		if c.Description != "" {
			fmt.Fprintf(w, "      %s\n", c.Description)
		}
		if len(c.Params) > 0 {
			params := make([]string, 0, len(c.Params))
			for _, p := range c.Params {
				params = append(params, fmt.Sprintf("%s:%s", p.Name, p.Type))
			}
			fmt.Fprintf(w, "      params: %s\n", strings.Join(params, ", "))
		}
	}
}
