package tabs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomaslau/focusonly/internal/model"
)

// task is one analysis run for a tab
type task struct {
	id     string
	cancel context.CancelFunc
}

type tabState struct {
	status    model.VerdictStatus
	hasStatus bool
	lastURL   string
	timer     *time.Timer
	task      *task
}

// registry holds per-tab state for one session. Entries are created on the
// first event for a tab and removed when the tab closes.
type registry struct {
	mu        sync.Mutex
	tabs      map[int]*tabState
	publisher Publisher
	closed    bool
	active    sync.WaitGroup // running tasks
}

func newRegistry(p Publisher) *registry {
	return &registry{tabs: make(map[int]*tabState), publisher: p}
}

func (r *registry) ensure(tabID int) *tabState {
	st, ok := r.tabs[tabID]
	if !ok {
		st = &tabState{}
		r.tabs[tabID] = st
	}
	return st
}

// schedule (re)starts the tab's debounce timer. fire runs once the timer
// expires unless it was superseded or the tab closed in the meantime.
func (r *registry) schedule(tabID int, delay time.Duration, fire func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	st := r.ensure(tabID)
	if st.timer != nil {
		st.timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		r.mu.Lock()
		cur, ok := r.tabs[tabID]
		live := ok && !r.closed && cur.timer == timer
		if live {
			cur.timer = nil
		}
		r.mu.Unlock()

		if live {
			fire()
		}
	})
	st.timer = timer
}

// begin makes t the tab's current task, cancelling any previous one.
// A successful begin must be paired with finish.
func (r *registry) begin(tabID int, t *task) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	r.active.Add(1)
	st := r.ensure(tabID)
	if st.task != nil {
		st.task.cancel()
	}
	st.task = t
	return true
}

// finish clears t if it is still the tab's current task
func (r *registry) finish(tabID int, t *task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.active.Done()

	if st, ok := r.tabs[tabID]; ok && st.task == t {
		st.task = nil
	}
}

// publish stores status only while t is the tab's current task, so results
// for closed or superseded tabs are dropped.
func (r *registry) publish(tabID int, t *task, status model.VerdictStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.tabs[tabID]
	if !ok || st.task != t {
		return false
	}
	r.set(tabID, st, status)
	return true
}

func (r *registry) set(tabID int, st *tabState, status model.VerdictStatus) {
	st.status = status
	st.hasStatus = true
	if r.publisher != nil {
		r.publisher.Publish(tabID, status)
	}
}

// complete records a successful analysis of url for the current task
func (r *registry) complete(tabID int, t *task, url string, status model.VerdictStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.tabs[tabID]
	if !ok || st.task != t {
		return false
	}
	st.lastURL = url
	r.set(tabID, st, status)
	return true
}

func (r *registry) lastURL(tabID int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if st, ok := r.tabs[tabID]; ok {
		return st.lastURL
	}
	return ""
}

func (r *registry) status(tabID int) (model.VerdictStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.tabs[tabID]
	if !ok || !st.hasStatus {
		return model.Idle(), false
	}
	return st.status, true
}

// remove drops every trace of a tab, stopping its timer and cancelling its task
func (r *registry) remove(tabID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.tabs[tabID]
	if !ok {
		return
	}
	stopTab(st)
	delete(r.tabs, tabID)
}

// removeTask drops a tab entry owned by t (the tab vanished mid-analysis)
func (r *registry) removeTask(tabID int, t *task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if st, ok := r.tabs[tabID]; ok && st.task == t {
		stopTab(st)
		delete(r.tabs, tabID)
	}
}

// setAll applies status to the given tabs plus every known tab.
// When reset is set the last-URL memory is cleared as well.
func (r *registry) setAll(ids []int, status model.VerdictStatus, reset bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	for _, id := range ids {
		r.ensure(id)
	}
	for _, id := range r.idsLocked() {
		st := r.tabs[id]
		if status.Type == model.StatusDisabled {
			stopTab(st)
		}
		if reset {
			st.lastURL = ""
		}
		r.set(id, st, status)
	}
}

func (r *registry) idsLocked() []int {
	ids := make([]int, 0, len(r.tabs))
	for id := range r.tabs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// close stops all timers and tasks, then waits for running tasks to finish.
// Later calls to schedule and begin fail.
func (r *registry) close() {
	r.mu.Lock()
	r.closed = true
	for _, st := range r.tabs {
		stopTab(st)
	}
	r.mu.Unlock()

	r.active.Wait()
}

func stopTab(st *tabState) {
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	if st.task != nil {
		st.task.cancel()
		st.task = nil
	}
}
