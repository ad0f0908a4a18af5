package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tomaslau/focusonly/internal/model"
)

var (
	showKey    bool
	keyBaseURL string
	keyModel   string
)

// settingsCmd represents the settings command
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change your profile, skip list and API endpoint",
	Long: `Settings are stored alongside the verdict cache and shared with the
bridge. The API key falls back to FOCUSONLY_API_KEY, then OPENAI_API_KEY,
when none is stored.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newStores(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.settings.Get(cmd.Context())
		if err != nil {
			return err
		}
		if !showKey {
			s.APIConfig.APIKey = maskKey(s.APIConfig.APIKey)
		}
		return yaml.NewEncoder(os.Stdout).Encode(s)
	},
}

var settingsImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Merge settings from a YAML file",
	Long: `Import reads a YAML file in the format printed by 'settings show' and
applies every field it contains over the current settings. Lists replace
the stored lists.

Example file:
  profile:
    role: Solo Founder
    goals: [Find product-market fit]
    focus: [pricing]
  skip_domains: [slack.com, mail.google.com]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		a, err := newStores(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		var decodeErr error
		_, err = a.settings.Update(cmd.Context(), func(s *model.Settings) {
			decodeErr = yaml.Unmarshal(data, s)
		})
		if decodeErr != nil {
			return fmt.Errorf("parse %s: %w", args[0], decodeErr)
		}
		if err != nil {
			return err
		}
		fmt.Printf("✓ Imported settings from %s\n", args[0])
		return nil
	},
}

var settingsPresetCmd = &cobra.Command{
	Use:   "preset [id]",
	Short: "List profile presets, or apply one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			for _, p := range model.Presets() {
				fmt.Printf("  %-16s %s\n", p.ID, p.Name)
			}
			return nil
		}

		preset, ok := model.PresetByID(args[0])
		if !ok {
			return fmt.Errorf("unknown preset %q (run 'focusonly settings preset' to list them)", args[0])
		}

		a, err := newStores(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.settings.Update(cmd.Context(), func(s *model.Settings) {
			s.Profile = preset.Profile.Clone()
		}); err != nil {
			return err
		}
		fmt.Printf("✓ Profile set to %s\n", preset.Name)
		return nil
	},
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Store the API key (read from stdin when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := ""
		if len(args) == 1 {
			key = args[0]
		} else {
			fmt.Fprint(os.Stderr, "API key: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read key: %w", err)
			}
			key = line
		}
		key = strings.TrimSpace(key)

		a, err := newStores(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.settings.Update(cmd.Context(), func(s *model.Settings) {
			s.APIConfig.APIKey = key
			if keyBaseURL != "" {
				s.APIConfig.BaseURL = keyBaseURL
			}
			if keyModel != "" {
				s.APIConfig.Model = keyModel
			}
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Using %s at %s\n", s.APIConfig.Model, s.APIConfig.BaseURL)
		return nil
	},
}

func setEnabled(enabled bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newStores(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.settings.Update(cmd.Context(), func(s *model.Settings) { s.Enabled = enabled }); err != nil {
			return err
		}
		if enabled {
			fmt.Println("✓ Analysis enabled")
		} else {
			fmt.Println("✓ Analysis disabled")
		}
		return nil
	}
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:3] + strings.Repeat("*", len(key)-7) + key[len(key)-4:]
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsImportCmd, settingsPresetCmd, settingsSetKeyCmd)
	settingsCmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Turn analysis on",
		Args:  cobra.NoArgs,
		RunE:  setEnabled(true),
	})
	settingsCmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Turn analysis off",
		Args:  cobra.NoArgs,
		RunE:  setEnabled(false),
	})

	settingsShowCmd.Flags().BoolVar(&showKey, "show-key", false, "print the API key unmasked")
	settingsSetKeyCmd.Flags().StringVar(&keyBaseURL, "base-url", "", "OpenAI-compatible base URL, e.g. http://localhost:11434/v1")
	settingsSetKeyCmd.Flags().StringVar(&keyModel, "model", "", "model name")
}
