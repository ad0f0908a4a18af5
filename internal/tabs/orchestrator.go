package tabs

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomaslau/focusonly/internal/llm"
	"github.com/tomaslau/focusonly/internal/model"
)

// Deps are the Orchestrator's collaborators. Stats and Publisher may be nil.
type Deps struct {
	Tabs      Tabs
	Extractor Extractor
	Settings  SettingsStore
	Cache     VerdictCache
	LLM       Evaluator
	Stats     StatsRecorder
	Publisher Publisher
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithDebounce sets the quiet period before an event triggers analysis
func WithDebounce(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// Orchestrator decides when each tab is analyzed and tracks its status
type Orchestrator struct {
	deps     Deps
	reg      *registry
	debounce time.Duration
	log      zerolog.Logger

	root   context.Context
	cancel context.CancelFunc
}

// New creates an Orchestrator. Call Close to stop pending work.
func New(deps Deps, opts ...Option) *Orchestrator {
	root, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		deps:     deps,
		reg:      newRegistry(deps.Publisher),
		debounce: model.DebounceDelay,
		log:      zerolog.Nop(),
		root:     root,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NavigationCompleted handles a finished page load
func (o *Orchestrator) NavigationCompleted(tabID int, active bool) {
	if active {
		o.trigger(tabID)
	}
}

// Activated handles the user switching to a tab
func (o *Orchestrator) Activated(tabID int) {
	status, ok := o.reg.status(tabID)
	if !ok || status.Type == model.StatusIdle {
		o.trigger(tabID)
	}
}

// HistoryStateUpdated handles single-page-app navigation; only the top frame counts
func (o *Orchestrator) HistoryStateUpdated(tabID, frameID int) {
	if frameID == 0 {
		o.trigger(tabID)
	}
}

// Closed drops all state for a tab and abandons its pending or in-flight work
func (o *Orchestrator) Closed(tabID int) {
	o.reg.remove(tabID)
	o.log.Debug().Int("tab_id", tabID).Msg("tab closed")
}

// trigger (re)starts the tab's debounce timer
func (o *Orchestrator) trigger(tabID int) {
	o.reg.schedule(tabID, o.debounce, func() {
		o.Analyze(o.root, tabID, false)
	})
}

// Status returns the tab's current status, idle when it has none
func (o *Orchestrator) Status(tabID int) model.VerdictStatus {
	status, _ := o.reg.status(tabID)
	return status
}

// ActiveStatus returns the status of the focused tab
func (o *Orchestrator) ActiveStatus(ctx context.Context) (model.VerdictStatus, error) {
	tabID, ok, err := o.deps.Tabs.Active(ctx)
	if err != nil {
		return model.Idle(), fmt.Errorf("active tab: %w", err)
	}
	if !ok {
		return model.Idle(), nil
	}
	return o.Status(tabID), nil
}

// Analyze runs the pipeline for one tab and returns its resulting status.
// Starting an analysis supersedes any analysis already running for the tab.
func (o *Orchestrator) Analyze(ctx context.Context, tabID int, force bool) model.VerdictStatus {
	taskCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(o.root, cancel)
	defer func() {
		stop()
		cancel()
	}()

	t := &task{id: uuid.NewString(), cancel: cancel}
	if !o.reg.begin(tabID, t) {
		return model.Idle()
	}
	defer o.reg.finish(tabID, t)

	log := o.log.With().Int("tab_id", tabID).Str("task_id", t.id).Logger()
	status, published := o.run(taskCtx, log, tabID, t, force)
	if published {
		return status
	}
	return o.Status(tabID)
}

// run executes the pipeline steps, publishing through t.
// published is false when nothing changed for the tab.
func (o *Orchestrator) run(ctx context.Context, log zerolog.Logger, tabID int, t *task, force bool) (model.VerdictStatus, bool) {
	publish := func(s model.VerdictStatus) (model.VerdictStatus, bool) {
		return s, o.reg.publish(tabID, t, s)
	}

	settings, err := o.deps.Settings.Get(ctx)
	if err != nil {
		log.Error().Err(err).Msg("load settings")
		return publish(model.Failed(msgSettingsLoad, false))
	}
	if !settings.Enabled {
		return publish(model.Disabled())
	}
	if settings.APIConfig.APIKey == "" {
		return publish(errorStatus(ErrNoAPIKey))
	}

	rawURL, err := o.deps.Tabs.URL(ctx, tabID)
	if err != nil {
		if !errors.Is(err, ErrTabNotFound) {
			log.Warn().Err(err).Msg("tab lookup failed")
		}
		o.reg.removeTask(tabID, t)
		return model.Idle(), false
	}
	log = log.With().Str("url", rawURL).Logger()

	if !force && o.reg.lastURL(tabID) == rawURL {
		log.Debug().Msg("already analyzed")
		return model.VerdictStatus{}, false
	}

	if reason := skipReason(rawURL, settings.SkipDomains); reason != "" {
		log.Debug().Str("reason", reason).Msg("skipped")
		return publish(model.Skipped(reason))
	}

	profile := settings.Profile
	if !force {
		cached, err := o.deps.Cache.Get(ctx, rawURL, profile)
		if err != nil {
			log.Warn().Err(err).Msg("cache read failed")
		}
		if cached != nil {
			log.Debug().Msg("cache hit")
			status := model.Success(*cached)
			return status, o.reg.complete(tabID, t, rawURL, status)
		}
	}

	if _, ok := publish(model.Loading()); !ok {
		return model.VerdictStatus{}, false
	}

	page, err := o.extract(ctx, tabID)
	if err != nil {
		if ctx.Err() != nil {
			return model.VerdictStatus{}, false
		}
		log.Warn().Err(err).Msg("extraction failed")
		return publish(errorStatus(err))
	}
	if page == nil || utf8.RuneCountInString(page.Excerpt) < model.MinExcerptChars {
		return publish(model.Skipped(msgNoContent))
	}

	verdict, err := o.deps.LLM.Evaluate(ctx, settings.APIConfig, profile, *page)
	if err != nil {
		if ctx.Err() != nil {
			log.Debug().Err(err).Msg("analysis abandoned")
			return model.VerdictStatus{}, false
		}
		log.Warn().Err(err).Msg("evaluation failed")
		return publish(errorStatus(err))
	}

	if err := o.deps.Cache.Put(ctx, rawURL, profile, verdict); err != nil {
		log.Warn().Err(err).Msg("cache write failed")
	}
	if o.deps.Stats != nil {
		tokens := llm.EstimateTokens(page.Excerpt) + model.PromptOverheadTokens
		if err := o.deps.Stats.RecordAnalysis(ctx, tokens); err != nil {
			log.Warn().Err(err).Msg("stats update failed")
		}
	}

	log.Info().
		Str("verdict", string(verdict.Verdict)).
		Int("score", verdict.Score).
		Msg("page analyzed")

	status := model.Success(verdict)
	return status, o.reg.complete(tabID, t, rawURL, status)
}

// extract asks the extractor for page data, re-injecting once on failure
func (o *Orchestrator) extract(ctx context.Context, tabID int) (*model.PageData, error) {
	page, err := o.deps.Extractor.Extract(ctx, tabID)
	if err == nil {
		return page, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if ierr := o.deps.Extractor.Inject(ctx, tabID); ierr != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, errors.Join(err, ierr))
	}
	page, err = o.deps.Extractor.Extract(ctx, tabID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return page, nil
}

// Toggle persists the enabled flag and updates every tab. Disabling marks
// tabs disabled and stops their work; enabling resets them to idle without
// starting an analysis.
func (o *Orchestrator) Toggle(ctx context.Context, enabled bool) error {
	if _, err := o.deps.Settings.Update(ctx, func(s *model.Settings) { s.Enabled = enabled }); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	ids, err := o.deps.Tabs.List(ctx)
	if err != nil {
		o.log.Warn().Err(err).Msg("list tabs")
		ids = nil
	}

	if enabled {
		o.reg.setAll(ids, model.Idle(), true)
	} else {
		o.reg.setAll(ids, model.Disabled(), false)
	}
	o.log.Info().Bool("enabled", enabled).Msg("analysis toggled")
	return nil
}

// HandleMessage answers a popup request
func (o *Orchestrator) HandleMessage(ctx context.Context, msg model.Message) (any, error) {
	switch msg.Type {
	case model.MsgGetStatus:
		return o.ActiveStatus(ctx)

	case model.MsgAnalyzePage, model.MsgReanalyzePage:
		tabID, ok, err := o.deps.Tabs.Active(ctx)
		if err != nil {
			return nil, fmt.Errorf("active tab: %w", err)
		}
		if !ok {
			return model.Idle(), nil
		}
		return o.Analyze(ctx, tabID, msg.Type == model.MsgReanalyzePage), nil

	case model.MsgToggleEnabled:
		if msg.Enabled == nil {
			return nil, errors.New("TOGGLE_ENABLED requires enabled")
		}
		if err := o.Toggle(ctx, *msg.Enabled); err != nil {
			return nil, err
		}
		return model.Ack{OK: true}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
}

// Close stops all timers, cancels every task and waits for them to return
func (o *Orchestrator) Close() {
	o.cancel()
	o.reg.close()
}
