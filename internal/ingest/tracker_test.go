package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/linkedin-ingest/internal/model"
)

func TestStatusTracker_Lifecycle(t *testing.T) {
	t.Parallel()
	tr := NewStatusTracker()
	tr.Start("req-1", "https://linkedin.com/in/janedoe")

	st, ok := tr.Get("req-1")
	require.True(t, ok)
	assert.Equal(t, model.IngestionRunning, st.State)
	assert.Equal(t, StageProfileFetch, st.Progress.Stage)
	assert.Nil(t, st.CompletedAt)

	tr.Advance("req-1", StageCompanyFetch, 2, 4)
	st, _ = tr.Get("req-1")
	assert.Equal(t, StageCompanyFetch, st.Progress.Stage)
	assert.Equal(t, 2, st.Progress.Step)
	assert.Equal(t, 4, st.Progress.TotalSteps)

	tr.Complete("req-1")
	st, _ = tr.Get("req-1")
	assert.Equal(t, model.IngestionSuccess, st.State)
	require.NotNil(t, st.CompletedAt)
}

func TestStatusTracker_Fail(t *testing.T) {
	t.Parallel()
	tr := NewStatusTracker()
	tr.Start("req-1", "https://linkedin.com/in/janedoe")
	tr.Fail("req-1", "workflow run failed")

	st, _ := tr.Get("req-1")
	assert.Equal(t, model.IngestionFailed, st.State)
	assert.Equal(t, "workflow run failed", st.Error)
}

func TestStatusTracker_TerminalIsImmutable(t *testing.T) {
	t.Parallel()
	tr := NewStatusTracker()
	tr.Start("req-1", "https://linkedin.com/in/janedoe")
	tr.Complete("req-1")

	tr.Advance("req-1", StageCompanyFetch, 3, 5)
	tr.Fail("req-1", "too late")

	st, _ := tr.Get("req-1")
	assert.Equal(t, model.IngestionSuccess, st.State)
	assert.Empty(t, st.Error)
	assert.Equal(t, StageProfileFetch, st.Progress.Stage)
}

func TestStatusTracker_UnknownIDIsNoop(t *testing.T) {
	t.Parallel()
	tr := NewStatusTracker()
	tr.Advance("nope", StageCompanyFetch, 1, 1)
	tr.Complete("nope")

	_, ok := tr.Get("nope")
	assert.False(t, ok)
}

func TestStatusTracker_ListNewestFirst(t *testing.T) {
	t.Parallel()
	tr := NewStatusTracker()
	now := time.Now()
	tr.nowFunc = func() time.Time { return now }
	tr.Start("old", "https://linkedin.com/in/a")

	tr.nowFunc = func() time.Time { return now.Add(time.Minute) }
	tr.Start("new", "https://linkedin.com/in/b")

	list := tr.List()
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
}

func TestStatusTracker_Sweep(t *testing.T) {
	t.Parallel()
	tr := NewStatusTracker()
	now := time.Now()
	tr.nowFunc = func() time.Time { return now.Add(-48 * time.Hour) }
	tr.Start("stale-done", "https://linkedin.com/in/a")
	tr.Complete("stale-done")
	tr.Start("stale-running", "https://linkedin.com/in/b")

	tr.nowFunc = func() time.Time { return now }
	tr.Start("fresh-done", "https://linkedin.com/in/c")
	tr.Complete("fresh-done")

	evicted := tr.Sweep(24 * time.Hour)
	assert.Equal(t, 1, evicted)

	_, ok := tr.Get("stale-done")
	assert.False(t, ok, "aged terminal entry was evicted")
	_, ok = tr.Get("stale-running")
	assert.True(t, ok, "running entries are never swept")
	_, ok = tr.Get("fresh-done")
	assert.True(t, ok, "recent terminal entry survives")
}
