package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/croki-app/croki/internal/store"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change application settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		s := st.LoadSettings()
		fmt.Printf("countdown:  %d\n", s.CountdownSeconds)
		fmt.Printf("box-width:  %d\n", s.ImageBoxWidth)
		fmt.Printf("box-height: %d\n", s.ImageBoxHeight)
		fmt.Printf("grayscale:  %t\n", s.Grayscale)
		fmt.Printf("flip:       %t\n", s.FlipHorizontal)
		fmt.Printf("language:   %s\n", s.Language)
		fmt.Printf("theme:      %s\n", s.Theme)
		if s.DeckPath != "" {
			fmt.Printf("deck:       %s\n", s.DeckPath)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long:  "Changes one setting and saves it. Keys: countdown, box-width, box-height, grayscale, flip, language, theme.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		s := st.LoadSettings()
		if err := applySetting(&s, args[0], args[1]); err != nil {
			return err
		}
		s.Normalize()
		if err := st.SaveSettings(s); err != nil {
			return err
		}
		fmt.Printf("Set %s to %s.\n", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// applySetting writes one key onto s. Values are validated here; range
// clamping is left to Settings.Normalize.
func applySetting(s *store.Settings, key, value string) error {
	switch key {
	case "countdown":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("countdown must be a positive number of seconds, got %q", value)
		}
		s.CountdownSeconds = n
	case "box-width":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("box-width must be a positive number, got %q", value)
		}
		s.ImageBoxWidth = n
	case "box-height":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("box-height must be a positive number, got %q", value)
		}
		s.ImageBoxHeight = n
	case "grayscale":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("grayscale must be true or false, got %q", value)
		}
		s.Grayscale = b
	case "flip":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("flip must be true or false, got %q", value)
		}
		s.FlipHorizontal = b
	case "language":
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("language must not be empty")
		}
		s.Language = value
	case "theme":
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("theme must not be empty")
		}
		s.Theme = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
