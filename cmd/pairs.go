package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/croki-app/croki/internal/imaging"
	"github.com/croki-app/croki/internal/store"
	"github.com/spf13/cobra"
)

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "Inspect saved practice pairs",
}

var pairsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved pairs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		names, err := st.ListPairs()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No pairs saved yet.")
			return nil
		}
		for _, name := range names {
			pair, err := st.LoadPair(name)
			if err != nil {
				fmt.Printf("%s  (unreadable: %v)\n", name, err)
				continue
			}
			line := fmt.Sprintf("%s  %s  %ds", name, pair.Source.Filename, pair.DurationSeconds)
			if pair.Memo != "" {
				line += "  — " + pair.Memo
			}
			fmt.Println(line)
		}
		return nil
	},
}

var pairsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one pair's metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		pair, err := st.LoadPair(pairName(args[0]))
		if err != nil {
			return err
		}
		fmt.Println("Drawn:    ", pair.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Println("Source:   ", pair.Source.Filename)
		fmt.Printf("Size:      %dx%d (%d bytes)\n", pair.Source.Width, pair.Source.Height, pair.Source.ByteSize)
		fmt.Printf("Duration:  %ds\n", pair.DurationSeconds)
		if pair.Memo != "" {
			fmt.Println("Memo:     ", pair.Memo)
		}
		return nil
	},
}

var pairsMemoCmd = &cobra.Command{
	Use:   "memo <name> <text>",
	Short: "Set a pair's memo",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		return st.UpdateMemo(pairName(args[0]), strings.Join(args[1:], " "))
	},
}

var pairsExtractCmd = &cobra.Command{
	Use:   "extract <name> [dir]",
	Short: "Write a pair's images out as viewable files",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		name := pairName(args[0])
		pair, err := st.LoadPair(name)
		if err != nil {
			return err
		}
		dir := "."
		if len(args) == 2 {
			dir = args[1]
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}

		base := strings.TrimSuffix(name, store.PairExt)
		ext := filepath.Ext(pair.Source.Filename)
		if ext == "" {
			ext = ".png"
		}
		origPath := filepath.Join(dir, base+"_original"+ext)
		if err := os.WriteFile(origPath, pair.OriginalBytes, 0o644); err != nil {
			return err
		}
		fmt.Println("Wrote", origPath)

		if len(pair.CapturedBytes) == 0 {
			return nil
		}
		img, err := imaging.Decode(pair.Source.Filename, pair.CapturedBytes)
		if err != nil {
			return fmt.Errorf("decode capture: %w", err)
		}
		png, err := imaging.EncodePNG(img)
		if err != nil {
			return err
		}
		capPath := filepath.Join(dir, base+"_drawing.png")
		if err := os.WriteFile(capPath, png, 0o644); err != nil {
			return err
		}
		fmt.Println("Wrote", capPath)
		return nil
	},
}

func init() {
	pairsCmd.AddCommand(pairsListCmd)
	pairsCmd.AddCommand(pairsShowCmd)
	pairsCmd.AddCommand(pairsMemoCmd)
	pairsCmd.AddCommand(pairsExtractCmd)
}

// pairName tolerates both bare names and names with the pair extension.
func pairName(arg string) string {
	return strings.TrimSuffix(arg, store.PairExt) + store.PairExt
}
