package tabs

import (
	"context"
	"sync/atomic"

	"github.com/tomaslau/focusonly/internal/model"
)

// Session triages standalone URLs by opening each one as a short-lived tab.
// It implements worker.Triager for the check and batch commands.
type Session struct {
	tabs   *MemoryTabs
	orch   *Orchestrator
	nextID atomic.Int64
}

// NewSession drives orch through tabs, which must be the Orchestrator's Tabs
func NewSession(tabs *MemoryTabs, orch *Orchestrator) *Session {
	return &Session{tabs: tabs, orch: orch}
}

// Triage analyzes url in a fresh tab and closes the tab afterwards
func (s *Session) Triage(ctx context.Context, url string, force bool) (model.VerdictStatus, error) {
	if err := ctx.Err(); err != nil {
		return model.VerdictStatus{}, err
	}

	tabID := int(s.nextID.Add(1))
	s.tabs.Navigate(tabID, url)
	defer func() {
		s.orch.Closed(tabID)
		s.tabs.Remove(tabID)
	}()

	status := s.orch.Analyze(ctx, tabID, force)
	if err := ctx.Err(); err != nil && status.Type == model.StatusLoading {
		return status, err
	}
	return status, nil
}
