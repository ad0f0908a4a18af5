// Package tabs runs the per-tab verdict state machine: it decides when a tab
// is analyzed, consults the cache, calls the model and publishes status.
package tabs

import (
	"context"
	"errors"

	"github.com/tomaslau/focusonly/internal/llm"
	"github.com/tomaslau/focusonly/internal/model"
)

var (
	// ErrNoAPIKey means the settings carry no API key
	ErrNoAPIKey = errors.New("no API key configured")

	// ErrTabNotFound is returned by Tabs for a closed or unknown tab
	ErrTabNotFound = errors.New("tab not found")

	// ErrExtraction means the extractor failed even after re-injection
	ErrExtraction = errors.New("could not extract page content")

	// ErrUnknownMessage is returned by HandleMessage for unsupported types
	ErrUnknownMessage = errors.New("unknown message type")
)

// Tabs is the browser's view of open tabs
type Tabs interface {
	// URL returns the tab's current URL or ErrTabNotFound
	URL(ctx context.Context, tabID int) (string, error)

	// Active returns the focused tab, ok=false when there is none
	Active(ctx context.Context) (tabID int, ok bool, err error)

	// List returns every open tab
	List(ctx context.Context) ([]int, error)
}

// Extractor produces page content for a tab
type Extractor interface {
	Extract(ctx context.Context, tabID int) (*model.PageData, error)

	// Inject (re)loads whatever Extract depends on, after a failed Extract
	Inject(ctx context.Context, tabID int) error
}

// Publisher receives every status change. It is called with the registry
// locked and must not block or call back into the Orchestrator.
type Publisher interface {
	Publish(tabID int, status model.VerdictStatus)
}

// PublisherFunc adapts a function to Publisher
type PublisherFunc func(tabID int, status model.VerdictStatus)

func (f PublisherFunc) Publish(tabID int, status model.VerdictStatus) { f(tabID, status) }

// SettingsStore reads and updates user settings
type SettingsStore interface {
	Get(ctx context.Context) (model.Settings, error)
	Update(ctx context.Context, fn func(*model.Settings)) (model.Settings, error)
}

// VerdictCache is the (URL, profile) verdict cache
type VerdictCache interface {
	Get(ctx context.Context, url string, profile model.Profile) (*model.Verdict, error)
	Put(ctx context.Context, url string, profile model.Profile, verdict model.Verdict) error
}

// Evaluator asks the model for a verdict
type Evaluator interface {
	Evaluate(ctx context.Context, cfg model.APIConfig, profile model.Profile, page model.PageData) (model.Verdict, error)
}

// StatsRecorder counts completed analyses
type StatsRecorder interface {
	RecordAnalysis(ctx context.Context, tokens int) error
}

const (
	msgNoAPIKey     = "Set up your API key in settings."
	msgExtraction   = "Could not extract page content."
	msgNoContent    = "Not enough content to analyze."
	msgInvalidURL   = "Invalid URL"
	msgSettingsLoad = "Could not load settings."
)

// errorStatus maps a pipeline failure to the status shown for the tab
func errorStatus(err error) model.VerdictStatus {
	switch {
	case errors.Is(err, ErrNoAPIKey):
		return model.Failed(msgNoAPIKey, true)
	case errors.Is(err, ErrExtraction):
		return model.Failed(msgExtraction, false)
	default:
		return model.Failed(llm.Message(err), llm.IsSettingsError(err))
	}
}
