package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tomaslau/focusonly/internal/model"
)

// Version is overridden at build time with -ldflags
var Version = "v0.1.0"

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "focusonly",
	Short: "FocusOnly - tells you whether a page is worth your time right now",
	Long: `FocusOnly classifies web pages against your current profile (role, goals,
things to avoid, current focus) and answers Read, Save or Leave with a 0-100
relevance score and short reasons.

Verdicts come from any OpenAI-compatible chat completions endpoint and are
cached per (URL, profile) for seven days.

Run "focusonly serve" to drive it from the browser extension, or
"focusonly check <url>" to classify a single page from the terminal.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("focusonly %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.focusonly/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// configDir is where the config file, database and .env live
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".focusonly"), nil
}

// initConfig reads in .env, the config file and ENV variables
func initConfig() {
	// .env in the working directory, then in the config directory
	loadDotEnv(".env")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		loadDotEnv(filepath.Join(dir, ".env"))

		// Search for config in home directory
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	setDefaults(model.DefaultConfig())

	// Read in environment variables that match FOCUSONLY_*, e.g. FOCUSONLY_LLM_TIMEOUT
	viper.SetEnvPrefix("FOCUSONLY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", path, err)
	}
}

// setDefaults registers every config key so env variables can override it
func setDefaults(cfg *model.Config) {
	viper.SetDefault("storage.backend", cfg.Storage.Backend)
	viper.SetDefault("storage.path", cfg.Storage.Path)
	viper.SetDefault("analysis.debounce", cfg.Analysis.Debounce)
	viper.SetDefault("llm.timeout", cfg.LLM.Timeout)
	viper.SetDefault("llm.max_attempts", cfg.LLM.MaxAttempts)
	viper.SetDefault("llm.requests_per_second", cfg.LLM.RequestsPerSecond)
	viper.SetDefault("llm.burst", cfg.LLM.Burst)
	viper.SetDefault("fetch.timeout", cfg.Fetch.Timeout)
	viper.SetDefault("fetch.user_agent", cfg.Fetch.UserAgent)
	viper.SetDefault("fetch.max_body_bytes", cfg.Fetch.MaxBodyBytes)
	viper.SetDefault("fetch.respect_robots", cfg.Fetch.RespectRobots)
	viper.SetDefault("fetch.http_proxy", cfg.Fetch.HTTPProxy)
	viper.SetDefault("fetch.https_proxy", cfg.Fetch.HTTPSProxy)
	viper.SetDefault("server.addr", cfg.Server.Addr)
	viper.SetDefault("server.allowed_origins", cfg.Server.AllowedOrigins)
	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("log.format", cfg.Log.Format)
}

// loadConfig returns the effective configuration: defaults, file, env, flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the process logger on stderr
func newLogger(cfg model.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.Format == "json" {
		log = zerolog.New(os.Stderr)
	} else {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return log.Level(level).With().Timestamp().Logger()
}
