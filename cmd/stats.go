package cmd

import (
	"fmt"
	"time"

	"github.com/croki-app/croki/internal/index"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show practice statistics",
	Long:  "Rebuilds the pair index from the pair files on disk and reports totals and recent activity.",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, logger, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		ix, err := index.Open(st.IndexPath())
		if err != nil {
			return fmt.Errorf("open pair index: %w", err)
		}
		defer ix.Close()

		ctx := cmd.Context()
		if _, err := index.Rebuild(ctx, ix, st, logger); err != nil {
			return fmt.Errorf("rebuild pair index: %w", err)
		}

		stats, err := ix.Stats(ctx)
		if err != nil {
			return err
		}
		if stats.TotalPairs == 0 {
			fmt.Println("No pairs yet. Start a practice session first.")
			return nil
		}

		hm := st.LoadHistory()
		fmt.Printf("Pairs drawn:    %d\n", stats.TotalPairs)
		fmt.Printf("Time drawing:   %s\n", (time.Duration(stats.TotalSeconds) * time.Second).String())
		fmt.Printf("Unique sources: %d\n", stats.Sources)
		fmt.Printf("Practice days:  %d\n", len(hm.Dates()))
		fmt.Printf("Today:          %d\n", hm.Count(time.Now()))

		recent, err := ix.Recent(ctx, 10)
		if err != nil {
			return err
		}
		if len(recent) > 0 {
			fmt.Println("\nRecent:")
			for _, e := range recent {
				line := fmt.Sprintf("  %s  %s  %ds", e.Timestamp.Local().Format("2006-01-02 15:04"), e.Source, e.DurationSeconds)
				if e.Memo != "" {
					line += "  — " + e.Memo
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}
