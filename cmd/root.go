package cmd

import (
	"os"

	"github.com/croki-app/croki/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "croki",
	Short: "Timed figure-drawing practice in the terminal",
	Long:  "Croki — terminal app for timed figure-drawing practice: build image decks, draw against the clock, and keep a record of every pose you sketch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("data", "", "Path to the data directory (overrides CROKI_DATA env var)")

	rootCmd.AddCommand(deckCmd)
	rootCmd.AddCommand(pairsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(alarmsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDataDir returns the data directory using --data flag (highest
// priority), then CROKI_DATA env var, then the default XDG path.
func resolveDataDir(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("data"); p != "" {
		return p, os.MkdirAll(p, 0o755)
	}
	return store.DataDir()
}
