package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/linkedin-ingest/internal/adapter"
	"github.com/sells-group/linkedin-ingest/internal/ingest"
	"github.com/sells-group/linkedin-ingest/internal/resilience"
	"github.com/sells-group/linkedin-ingest/internal/store"
	"github.com/sells-group/linkedin-ingest/pkg/cassidy"
)

const testAPIKey = "test-key"

// stubClient serves a fixed profile document for any URL.
type stubClient struct {
	profile json.RawMessage
	err     error
}

func (s *stubClient) FetchProfile(ctx context.Context, url string) (json.RawMessage, error) {
	return s.profile, s.err
}

func (s *stubClient) FetchCompany(ctx context.Context, url string) (json.RawMessage, error) {
	return json.RawMessage(`{"company_name": "Acme Corp"}`), nil
}

func newTestEnv(t *testing.T, client cassidy.Client) *ingestEnv {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	tracker := ingest.NewStatusTracker()
	orch := ingest.New(client, st, tracker, ingest.Config{
		EnrichmentEnabled: true,
		CompanyDelay:      time.Millisecond,
	})
	return &ingestEnv{Store: st, Tracker: tracker, Orchestrator: orch}
}

func okProfileClient() *stubClient {
	return &stubClient{profile: json.RawMessage(`{
		"profile_id": "jane-doe-123",
		"full_name": "Jane Doe",
		"linkedin_url": "https://linkedin.com/in/janedoe"
	}`)}
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("X-API-Key", testAPIKey)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthUnauthenticated(t *testing.T) {
	r := newRouter(newTestEnv(t, okProfileClient()), testAPIKey)

	rec := doRequest(t, r, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestRouter_RejectsMissingAPIKey(t *testing.T) {
	r := newRouter(newTestEnv(t, okProfileClient()), testAPIKey)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/ingestions", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RejectsWhenNoKeyConfigured(t *testing.T) {
	r := newRouter(newTestEnv(t, okProfileClient()), "")

	rec := doRequest(t, r, http.MethodGet, "/api/v1/ingestions", "", true)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_IngestValidatesBody(t *testing.T) {
	r := newRouter(newTestEnv(t, okProfileClient()), testAPIKey)

	rec := doRequest(t, r, http.MethodPost, "/api/v1/profiles/ingest", `{not json`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, r, http.MethodPost, "/api/v1/profiles/ingest", `{"wait": true}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "url is required")
}

func TestRouter_IngestSynchronous(t *testing.T) {
	env := newTestEnv(t, okProfileClient())
	r := newRouter(env, testAPIKey)

	body := `{"url": "https://linkedin.com/in/janedoe", "wait": true, "enrich": false}`
	rec := doRequest(t, r, http.MethodPost, "/api/v1/profiles/ingest", body, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var enriched struct {
		Profile struct {
			FullName string `json:"full_name"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enriched))
	assert.Equal(t, "Jane Doe", enriched.Profile.FullName)

	// The profile was persisted and is retrievable.
	rec = doRequest(t, r, http.MethodGet, "/api/v1/profiles/jane-doe-123", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_IngestAsynchronousReturnsAccepted(t *testing.T) {
	env := newTestEnv(t, okProfileClient())
	r := newRouter(env, testAPIKey)

	body := `{"url": "https://linkedin.com/in/janedoe", "enrich": false}`
	rec := doRequest(t, r, http.MethodPost, "/api/v1/profiles/ingest", body, true)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["request_id"])
	assert.Equal(t, "https://linkedin.com/in/janedoe", resp["url"])

	// The tracker learns about the request; poll until it turns terminal.
	require.Eventually(t, func() bool {
		st, ok := env.Tracker.Get(resp["request_id"])
		return ok && st.State.Terminal()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRouter_IngestIncompleteDataIs422(t *testing.T) {
	client := &stubClient{profile: json.RawMessage(`{"headline": "no essentials"}`)}
	r := newRouter(newTestEnv(t, client), testAPIKey)

	body := `{"url": "https://linkedin.com/in/janedoe", "wait": true}`
	rec := doRequest(t, r, http.MethodPost, "/api/v1/profiles/ingest", body, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		MissingFields []string `json:"missing_fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"profile_id", "full_name", "linkedin_url"}, resp.MissingFields)
}

func TestRouter_GetIngestionNotFound(t *testing.T) {
	r := newRouter(newTestEnv(t, okProfileClient()), testAPIKey)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/ingestions/nope", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_GetProfileNotFound(t *testing.T) {
	r := newRouter(newTestEnv(t, okProfileClient()), testAPIKey)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/profiles/nope", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteIngestError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "incomplete data",
			err:        &adapter.IncompleteDataError{Entity: "profile", MissingFields: []string{"full_name"}},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "rate limited",
			err:        eris.Wrap(&resilience.RateLimitError{RetryAfter: 30 * time.Second}, "fetch profile"),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "workflow failed",
			err:        &cassidy.WorkflowError{Errors: []string{"login wall detected"}},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "upstream api error",
			err:        &cassidy.APIError{StatusCode: 500, Body: "boom"},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "malformed envelope",
			err:        eris.Wrap(cassidy.ErrMalformedResponse, "decode"),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "unknown",
			err:        eris.New("disk full"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeIngestError(rec, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestWriteIngestError_RetryAfterHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	writeIngestError(rec, &resilience.RateLimitError{RetryAfter: 30 * time.Second})
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
}
