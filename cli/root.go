package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var inMemory bool

var rootCmd = &cobra.Command{
	Use:   "gadgethub",
	Short: "GadgetHub storefront API",
	Long: `GadgetHub serves the storefront REST API: catalog, cart, checkout,
accounts and the admin dashboard.

Run without a subcommand to start the server.`,
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&inMemory, "in-memory", false, "keep all data in process instead of MongoDB/Redis")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
