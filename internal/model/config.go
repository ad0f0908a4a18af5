package model

import "time"

// Config is the process-level configuration loaded from file, env and flags.
// User settings (profile, key, skip list) live in the settings store instead.
type Config struct {
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StorageConfig selects the key-value backend
type StorageConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // sqlite, disk, memory
	Path    string `yaml:"path" mapstructure:"path"`       // DB file or directory
}

// AnalysisConfig tunes the tab orchestrator
type AnalysisConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// LLMConfig tunes the completion client
type LLMConfig struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxAttempts       int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 disables pacing
	Burst             int           `yaml:"burst" mapstructure:"burst"`

	// HostRates override the pace per endpoint host, e.g. a local model server
	HostRates []HostRate `yaml:"host_rates,omitempty" mapstructure:"host_rates"`
}

// HostRate paces one host[:port]. RequestsPerSecond 0 leaves it unpaced.
type HostRate struct {
	Host              string  `yaml:"host" mapstructure:"host"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst,omitempty" mapstructure:"burst"`
}

// FetchConfig controls the HTTP page extractor
type FetchConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// ServerConfig is the local bridge listener
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`

	// AllowedOrigins are browser origins (e.g. chrome-extension://<id>) allowed
	// to call the bridge; "*" allows any
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig controls zerolog output
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console, json
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    "", // Resolved to ~/.focusonly by the CLI
		},
		Analysis: AnalysisConfig{
			Debounce: DebounceDelay,
		},
		LLM: LLMConfig{
			Timeout:     APITimeout,
			MaxAttempts: MaxAttempts,
			Burst:       1,
		},
		Fetch: FetchConfig{
			Timeout:       20 * time.Second,
			UserAgent:     "focusonly/0.1 (+https://github.com/tomaslau/focusonly)",
			MaxBodyBytes:  4_000_000,
			RespectRobots: true,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7437",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
