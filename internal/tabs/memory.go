package tabs

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryTabs is a Tabs implementation fed by events from outside the
// process (the HTTP bridge) or by the CLI. It also serves as the URL
// resolver for extract.HTTPExtractor.
type MemoryTabs struct {
	mu        sync.RWMutex
	urls      map[int]string
	active    int
	hasActive bool
}

// NewMemoryTabs creates an empty tab set
func NewMemoryTabs() *MemoryTabs {
	return &MemoryTabs{urls: make(map[int]string)}
}

// Navigate records that tabID now shows url, opening the tab if needed
func (m *MemoryTabs) Navigate(tabID int, url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls[tabID] = url
}

// Activate marks tabID as the focused tab
func (m *MemoryTabs) Activate(tabID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.urls[tabID]; !ok {
		m.urls[tabID] = ""
	}
	m.active = tabID
	m.hasActive = true
}

// Remove forgets tabID
func (m *MemoryTabs) Remove(tabID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.urls, tabID)
	if m.hasActive && m.active == tabID {
		m.hasActive = false
	}
}

func (m *MemoryTabs) URL(ctx context.Context, tabID int) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	url, ok := m.urls[tabID]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrTabNotFound, tabID)
	}
	return url, nil
}

func (m *MemoryTabs) Active(ctx context.Context) (int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active, m.hasActive, nil
}

func (m *MemoryTabs) List(ctx context.Context) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int, 0, len(m.urls))
	for id := range m.urls {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}
