package ingest

import (
	"sort"
	"sync"
	"time"

	"github.com/sells-group/linkedin-ingest/internal/model"
)

// StatusTracker holds in-memory status records for ingestion requests, keyed
// by request id. It is mutated at each stage transition and swept for aged
// terminal entries. All methods are safe for concurrent use; HTTP handlers
// read it while an ingestion mutates it.
type StatusTracker struct {
	mu       sync.RWMutex
	statuses map[string]*model.IngestionStatus

	// nowFunc allows test injection of time.
	nowFunc func() time.Time
}

// NewStatusTracker creates an empty tracker.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		statuses: make(map[string]*model.IngestionStatus),
		nowFunc:  time.Now,
	}
}

// Start registers a new RUNNING status for the request.
func (t *StatusTracker) Start(id, url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses[id] = &model.IngestionStatus{
		ID:        id,
		State:     model.IngestionRunning,
		URL:       url,
		StartedAt: t.nowFunc().UTC(),
		Progress: model.Progress{
			Stage:      StageProfileFetch,
			Step:       1,
			TotalSteps: 1,
		},
	}
}

// Advance updates the progress of a running request. Terminal states are
// immutable; advancing a terminal or unknown request is a no-op.
func (t *StatusTracker) Advance(id, stage string, step, totalSteps int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.statuses[id]
	if !ok || st.State.Terminal() {
		return
	}
	st.Progress = model.Progress{Stage: stage, Step: step, TotalSteps: totalSteps}
}

// Complete marks the request SUCCESS.
func (t *StatusTracker) Complete(id string) {
	t.finish(id, model.IngestionSuccess, "")
}

// Fail marks the request FAILED with the triggering message.
func (t *StatusTracker) Fail(id, msg string) {
	t.finish(id, model.IngestionFailed, msg)
}

func (t *StatusTracker) finish(id string, state model.IngestionState, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.statuses[id]
	if !ok || st.State.Terminal() {
		return
	}
	now := t.nowFunc().UTC()
	st.State = state
	st.CompletedAt = &now
	st.Error = msg
}

// Get returns a copy of the status for the request id.
func (t *StatusTracker) Get(id string) (model.IngestionStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	st, ok := t.statuses[id]
	if !ok {
		return model.IngestionStatus{}, false
	}
	return *st, true
}

// List returns copies of all tracked statuses, newest first.
func (t *StatusTracker) List() []model.IngestionStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.IngestionStatus, 0, len(t.statuses))
	for _, st := range t.statuses {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

// Sweep removes terminal entries whose completion is older than maxAge and
// returns the number evicted. Running entries are never touched.
func (t *StatusTracker) Sweep(maxAge time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := t.nowFunc().UTC().Add(-maxAge)
	n := 0
	for id, st := range t.statuses {
		if st.State.Terminal() && st.CompletedAt != nil && st.CompletedAt.Before(cutoff) {
			delete(t.statuses, id)
			n++
		}
	}
	return n
}
