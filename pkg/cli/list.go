package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Describe every registered extension",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			manager, err := newManager(cmd, settings)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			aliases := manager.Aliases()
			if len(aliases) == 0 {
				fmt.Fprintf(out, "No extensions registered in %s\n", settings.Registry)
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), settings.Timeout)
			defer cancel()

			manifests, err := manager.DescribeAll(ctx)
			if err != nil {
				return err
			}

			bold := color.New(color.Bold)
			faint := color.New(color.Faint)

			for _, alias := range aliases {
				m := manifests[alias]
				bold.Fprintf(out, "%s", alias)
				fmt.Fprintf(out, "  %s", m.Title)
				faint.Fprintf(out, "  (%d commands)\n", len(m.Commands))
				for _, c := range m.Commands {
					if c.Hidden {
						continue
					}
					fmt.Fprintf(out, "    %s  %s\n", c.Name, c.Title)
				}
			}

			return nil
		},
	}
}
