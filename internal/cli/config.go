package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tomaslau/focusonly/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage FocusOnly runtime configuration",
	Long: `Manage the runtime configuration: storage, timeouts, pacing, the bridge
address and logging. Profile and API settings live under 'focusonly settings'.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (FOCUSONLY_*)
3. Config file (~/.focusonly/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Display the configuration after applying defaults, the config file, env vars and flags.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Print(string(yamlData))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long:  `Create ~/.focusonly/config.yaml (or the --config path) holding every option at its default.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		configPath := cfgFile
		if configPath == "" {
			dir, err := configDir()
			if err != nil {
				return err
			}
			configPath = filepath.Join(dir, "config.yaml")
		}

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'focusonly config show' to view it, or delete it first to recreate", configPath)
		}
		if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}

		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("create config file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close config file: %w", closeErr)
			}
		}()

		if _, err := fmt.Fprint(f, configHeader); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(model.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("  Edit it with: $EDITOR %s\n", configPath)
		return nil
	},
}

const configHeader = `# FocusOnly configuration
#
# Priority (highest first): CLI flags, FOCUSONLY_* env vars, this file, defaults.
# Nested keys map to env vars with underscores, e.g. FOCUSONLY_LLM_TIMEOUT=20s.
#
# The API key is not configured here. Use 'focusonly settings set-key' or
# export FOCUSONLY_API_KEY.

`

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)
}
