package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/openshelf/bookpipe/internal/pipecmd"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookpipe",
		Short: "Book catalog cleaning and enrichment pipeline",
		Long: `Bookpipe turns a noisy book catalog into a clean, deduplicated reference
table and fills its remaining gaps from the Open Library search API.

The pipeline normalizes free-text fields, resolves canonical spellings,
removes near-duplicate records, and enriches incomplete rows concurrently
with checkpointed progress.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(pipecmd.NewCleanCmd())
	cmd.AddCommand(pipecmd.NewEnrichCmd())
	cmd.AddCommand(pipecmd.NewApplyCmd())
	cmd.AddCommand(pipecmd.NewRunCmd())

	return cmd
}
