package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root extkit command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "extkit",
		Short: "Develop and exercise extkit extensions",
		Long: `extkit is a developer tool for extensions: short-lived processes that print a
manifest when run without arguments and answer a single JSON request otherwise.
It validates manifests, prints the request shape derived for each command and
invokes extensions the way a launcher would.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	addConfigFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(NewManifestCmd())
	rootCmd.AddCommand(NewDescribeCmd())
	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewListCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
