package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/croki-app/croki/internal/deck"
	"github.com/croki-app/croki/internal/imaging"
	"github.com/croki-app/croki/internal/store"
	"github.com/spf13/cobra"
)

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Manage practice decks",
}

var deckListCmd = &cobra.Command{
	Use:   "list",
	Short: "List decks in the deck directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		names, err := st.ListDecks()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No decks yet. Create one with: croki deck new <name> <images...>")
			return nil
		}
		current := st.LoadSettings().DeckPath
		for _, name := range names {
			marker := "  "
			if filepath.Join(st.DeckDir(), name) == current {
				marker = "* "
			}
			fmt.Println(marker + name)
		}
		return nil
	},
}

var deckShowCmd = &cobra.Command{
	Use:   "show <deck>",
	Short: "Show a deck's images and metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		d, err := st.LoadDeck(deckPath(st, args[0]))
		if err != nil {
			return err
		}
		fmt.Printf("%s — %d images\n", args[0], d.Len())
		for i, a := range d.Assets() {
			line := fmt.Sprintf("%3d. %-30s %dx%d  difficulty %d", i+1, a.Filename, a.Width, a.Height, a.Difficulty)
			if len(a.Tags) > 0 {
				line += "  [" + strings.Join(a.Tags, ", ") + "]"
			}
			fmt.Println(line)
		}
		return nil
	},
}

var deckAddDifficulty int

var deckNewCmd = &cobra.Command{
	Use:   "new <name> <images...>",
	Short: "Create a deck from image files",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		d := deck.New()
		if err := addImages(d, args[1:], deckAddDifficulty); err != nil {
			return err
		}
		path := deckPath(st, args[0])
		if err := st.SaveDeck(d, path); err != nil {
			return err
		}
		fmt.Printf("Created %s with %d images.\n", filepath.Base(d.Path()), d.Len())
		return nil
	},
}

var deckAddCmd = &cobra.Command{
	Use:   "add <deck> <images...>",
	Short: "Add image files to a deck",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeck(cmd, args[0], func(st *store.Store, d *deck.Deck) error {
			if err := addImages(d, args[1:], deckAddDifficulty); err != nil {
				return err
			}
			fmt.Printf("Deck now holds %d images.\n", d.Len())
			return nil
		})
	},
}

var deckRemoveCmd = &cobra.Command{
	Use:   "remove <deck> <filename>",
	Short: "Remove an image from a deck",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeck(cmd, args[0], func(st *store.Store, d *deck.Deck) error {
			return d.Remove(args[1])
		})
	},
}

var deckDifficultyCmd = &cobra.Command{
	Use:   "difficulty <deck> <filename> <1-5>",
	Short: "Set an image's difficulty",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("difficulty must be a number: %w", err)
		}
		return withDeck(cmd, args[0], func(st *store.Store, d *deck.Deck) error {
			return d.SetDifficulty(args[1], n)
		})
	},
}

var deckTagCmd = &cobra.Command{
	Use:   "tag <deck> <filename> <tag>",
	Short: "Tag an image",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeck(cmd, args[0], func(st *store.Store, d *deck.Deck) error {
			return d.Tag(args[1], args[2])
		})
	},
}

var deckUntagCmd = &cobra.Command{
	Use:   "untag <deck> <filename> <tag>",
	Short: "Remove a tag from an image",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeck(cmd, args[0], func(st *store.Store, d *deck.Deck) error {
			return d.Untag(args[1], args[2])
		})
	},
}

var deckUseCmd = &cobra.Command{
	Use:   "use <deck>",
	Short: "Make a deck the active practice deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		path := deckPath(st, args[0])
		if _, err := st.LoadDeck(path); err != nil {
			return err
		}
		settings := st.LoadSettings()
		settings.DeckPath = path
		if err := st.SaveSettings(settings); err != nil {
			return err
		}
		fmt.Println("Active deck:", path)
		return nil
	},
}

var deckExportCmd = &cobra.Command{
	Use:   "export <deck> [file]",
	Short: "Export a deck as portable JSON",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		d, err := st.LoadDeck(deckPath(st, args[0]))
		if err != nil {
			return err
		}
		data, err := d.Export()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			_, err = os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(args[1], data, 0o644)
	},
}

var deckImportCmd = &cobra.Command{
	Use:   "import <file> <name>",
	Short: "Import a deck from exported JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		d, err := deck.Import(data)
		if err != nil {
			return err
		}
		if err := st.SaveDeck(d, deckPath(st, args[1])); err != nil {
			return err
		}
		fmt.Printf("Imported %d images into %s.\n", d.Len(), filepath.Base(d.Path()))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{deckNewCmd, deckAddCmd} {
		c.Flags().IntVar(&deckAddDifficulty, "difficulty", deck.MinDifficulty, "Difficulty for the added images (1-5)")
	}

	deckCmd.AddCommand(deckListCmd)
	deckCmd.AddCommand(deckShowCmd)
	deckCmd.AddCommand(deckNewCmd)
	deckCmd.AddCommand(deckAddCmd)
	deckCmd.AddCommand(deckRemoveCmd)
	deckCmd.AddCommand(deckDifficultyCmd)
	deckCmd.AddCommand(deckTagCmd)
	deckCmd.AddCommand(deckUntagCmd)
	deckCmd.AddCommand(deckUseCmd)
	deckCmd.AddCommand(deckExportCmd)
	deckCmd.AddCommand(deckImportCmd)
}

// deckPath resolves a deck argument: explicit paths pass through, bare
// names land in the store's deck directory.
func deckPath(st *store.Store, arg string) string {
	if !strings.HasSuffix(arg, store.DeckExt) {
		arg += store.DeckExt
	}
	if strings.ContainsRune(arg, os.PathSeparator) {
		return arg
	}
	return filepath.Join(st.DeckDir(), arg)
}

// withDeck applies fn to the named deck through the store's
// shadow-saving mutation path.
func withDeck(cmd *cobra.Command, name string, fn func(*store.Store, *deck.Deck) error) error {
	st, _, closer, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	return st.MutateDeck(deckPath(st, name), func(d *deck.Deck) error {
		return fn(st, d)
	})
}

// addImages reads each file, validates it decodes, and appends it to
// the deck as an embedded asset with the given difficulty.
func addImages(d *deck.Deck, files []string, difficulty int) error {
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		w, h, err := imaging.Dimensions(data)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		asset := deck.ImageAsset{
			Filename:   filepath.Base(file),
			Width:      w,
			Height:     h,
			ByteSize:   int64(len(data)),
			Difficulty: difficulty,
			Source:     deck.Embedded(data),
		}
		if err := d.Add(asset); err != nil {
			return err
		}
	}
	return nil
}
