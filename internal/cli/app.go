package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/tomaslau/focusonly/internal/cache"
	"github.com/tomaslau/focusonly/internal/extract"
	"github.com/tomaslau/focusonly/internal/llm"
	"github.com/tomaslau/focusonly/internal/model"
	"github.com/tomaslau/focusonly/internal/settings"
	"github.com/tomaslau/focusonly/internal/storage"
	"github.com/tomaslau/focusonly/internal/tabs"
	"github.com/tomaslau/focusonly/internal/util"
	"github.com/tomaslau/focusonly/internal/worker"
)

// app holds the wired components shared by the commands
type app struct {
	cfg      *model.Config
	log      zerolog.Logger
	kv       storage.Store
	settings *settings.Store
	stats    *settings.StatsStore
	cache    *cache.Store
	llm      *llm.Client
	tabs     *tabs.MemoryTabs
	orch     *tabs.Orchestrator
}

// newStores opens storage and the stores built on it, without the analysis stack
func newStores(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg.Log)

	path := cfg.Storage.Path
	if path == "" && cfg.Storage.Backend != "memory" {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
		path = storage.DefaultPath(cfg.Storage.Backend, dir)
	}
	if path != "" && cfg.Storage.Backend == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	kv, err := storage.Open(ctx, cfg.Storage.Backend, path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	log.Debug().Str("backend", cfg.Storage.Backend).Str("path", path).Msg("storage opened")

	return &app{
		cfg:      cfg,
		log:      log,
		kv:       kv,
		settings: settings.NewStore(kv),
		stats:    settings.NewStatsStore(kv),
		cache:    cache.NewStore(kv, cache.WithLogger(log)),
		llm:      newLLMClient(cfg, log),
	}, nil
}

// newApp wires the full analysis stack. publisher may be nil.
func newApp(ctx context.Context, publisher tabs.Publisher) (*app, error) {
	a, err := newStores(ctx)
	if err != nil {
		return nil, err
	}

	a.tabs = tabs.NewMemoryTabs()
	a.orch = tabs.New(tabs.Deps{
		Tabs:      a.tabs,
		Extractor: extract.NewHTTPExtractor(a.tabs, a.cfg.Fetch, a.log),
		Settings:  a.settings,
		Cache:     a.cache,
		LLM:       a.llm,
		Stats:     a.stats,
		Publisher: publisher,
	}, tabs.WithDebounce(a.cfg.Analysis.Debounce), tabs.WithLogger(a.log))
	return a, nil
}

func newLLMClient(cfg *model.Config, log zerolog.Logger) *llm.Client {
	// Per-attempt deadlines are enforced by the client itself
	httpClient := util.NewHTTPClient(0, cfg.Fetch.HTTPProxy, cfg.Fetch.HTTPSProxy, 0)

	opts := []llm.Option{
		llm.WithHTTPClient(httpClient),
		llm.WithTimeout(cfg.LLM.Timeout),
		llm.WithMaxAttempts(cfg.LLM.MaxAttempts),
		llm.WithLogger(log),
	}
	if limiter := newLLMLimiter(cfg.LLM); limiter != nil {
		opts = append(opts, llm.WithLimiter(limiter))
	}
	return llm.NewClient(opts...)
}

// newLLMLimiter returns nil when neither a default rate nor host overrides are set
func newLLMLimiter(cfg model.LLMConfig) *worker.Limiter {
	if cfg.RequestsPerSecond <= 0 && len(cfg.HostRates) == 0 {
		return nil
	}
	limiter := worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst)
	for _, hr := range cfg.HostRates {
		if hr.Host == "" {
			continue
		}
		limiter.SetHostRate(hr.Host, hr.RequestsPerSecond, hr.Burst)
	}
	return limiter
}

// session returns a triager that runs URLs through the orchestrator
func (a *app) session() *tabs.Session {
	return tabs.NewSession(a.tabs, a.orch)
}

// requireKey fails early when no API key is stored or in the environment
func (a *app) requireKey(ctx context.Context) error {
	s, err := a.settings.Get(ctx)
	if err != nil {
		return err
	}
	if s.APIConfig.APIKey == "" {
		return fmt.Errorf("%w: run 'focusonly settings set-key' or export FOCUSONLY_API_KEY", tabs.ErrNoAPIKey)
	}
	return nil
}

func (a *app) Close() error {
	if a.orch != nil {
		a.orch.Close()
	}
	return a.kv.Close()
}
