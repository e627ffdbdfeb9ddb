package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "tilekeeper",
		Short: "CLI tool for the tilekeeper scorekeeping API",
		Long: `tilekeeper keeps score for a word-tile board game played at a real table.

Create a game, seat the players, then record each play by proposing the word
and committing it. Letters followed by ? are blanks: CA?T is C, blank A, T.

Mutating commands need the table key printed by "game create"; it is saved
under the key directory and picked up automatically.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, "")
			client.verbose = cfg.Verbose
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: TILEKEEPER_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Key, "key", cfg.Key, "Table key, overrides the saved one (env: TILEKEEPER_KEY)")
	rootCmd.PersistentFlags().StringVar(&cfg.KeyDir, "key-dir", cfg.KeyDir, "Directory of saved table keys (env: TILEKEEPER_KEY_DIR)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newWordCmd())
	rootCmd.AddCommand(newLettersCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
