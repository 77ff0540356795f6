// Package cassidy provides a client for the Cassidy extraction provider's
// asynchronous-workflow API.
package cassidy

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/linkedin-ingest/internal/resilience"
)

// Client defines the provider operations. Each call runs one workflow on the
// provider and returns the decoded domain payload.
type Client interface {
	// FetchProfile runs the profile workflow for a LinkedIn profile URL.
	FetchProfile(ctx context.Context, profileURL string) (json.RawMessage, error)
	// FetchCompany runs the company workflow for a LinkedIn company URL.
	// An empty provider result is non-fatal: the sentinel unknown-company
	// record is returned instead, since the provider sometimes returns
	// nothing for a company lookup.
	FetchCompany(ctx context.Context, companyURL string) (json.RawMessage, error)
}

// workflowRequest is the body POSTed to both workflow endpoints.
type workflowRequest struct {
	Profile string `json:"profile"`
}

// unknownCompanyPayload is returned when a company workflow yields no data.
// The field name matches the provider schema so the transformer handles it
// like any other company document.
var unknownCompanyPayload = json.RawMessage(`{"company_name":"Unknown Company"}`)

// Option configures the httpClient.
type Option func(*httpClient)

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the read timeout for workflow calls. Workflows can run
// for minutes, so the default is generous (300s).
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

// WithConnectTimeout sets the TCP connect timeout for workflow calls.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if t, ok := c.http.Transport.(*http.Transport); ok {
			t.DialContext = (&net.Dialer{Timeout: d}).DialContext
		}
	}
}

// WithRetry overrides the retry configuration.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

// WithBreaker installs a circuit breaker in front of both endpoints.
func WithBreaker(b *resilience.Breaker) Option {
	return func(c *httpClient) {
		c.breaker = b
	}
}

type httpClient struct {
	profileURL string
	companyURL string
	http       *http.Client
	retry      resilience.RetryConfig
	breaker    *resilience.Breaker
}

// NewClient creates a provider client for the given profile and company
// workflow endpoints.
func NewClient(profileURL, companyURL string, opts ...Option) Client {
	c := &httpClient{
		profileURL: profileURL,
		companyURL: companyURL,
		retry:      resilience.DefaultRetryConfig(),
		http: &http.Client{
			Timeout: 300 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 30 * time.Second,
				}).DialContext,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) FetchProfile(ctx context.Context, profileURL string) (json.RawMessage, error) {
	raw, err := c.executeWorkflow(ctx, "profile", c.profileURL, profileURL)
	if err != nil {
		return nil, eris.Wrap(err, "cassidy: fetch profile")
	}

	payload, err := DecodeEnvelope(raw)
	if err != nil {
		return nil, eris.Wrap(err, "cassidy: fetch profile")
	}
	return payload, nil
}

func (c *httpClient) FetchCompany(ctx context.Context, companyURL string) (json.RawMessage, error) {
	raw, err := c.executeWorkflow(ctx, "company", c.companyURL, companyURL)
	if err != nil {
		return nil, eris.Wrap(err, "cassidy: fetch company")
	}

	payload, err := DecodeEnvelope(raw)
	if eris.Is(err, ErrNoPayload) {
		zap.L().Warn("cassidy: empty company result, using unknown-company sentinel",
			zap.String("company_url", companyURL),
		)
		return unknownCompanyPayload, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "cassidy: fetch company")
	}
	return payload, nil
}

// executeWorkflow POSTs {"profile": url} to the endpoint and returns the raw
// envelope body. Connection failures, timeouts, and 429 are retried with
// exponential backoff; any other non-2xx is a terminal *APIError.
func (c *httpClient) executeWorkflow(ctx context.Context, workflow, endpoint, targetURL string) ([]byte, error) {
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			return nil, err
		}
	}

	cfg := c.retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger("cassidy", workflow)
	}

	body, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]byte, error) {
		return c.doOnce(ctx, workflow, endpoint, targetURL)
	})

	if c.breaker != nil {
		c.breaker.Record(err)
	}
	return body, err
}

func (c *httpClient) doOnce(ctx context.Context, workflow, endpoint, targetURL string) ([]byte, error) {
	buf, err := json.Marshal(workflowRequest{Profile: targetURL})
	if err != nil {
		return nil, eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		zap.L().Warn("cassidy: request failed",
			zap.String("workflow", workflow),
			zap.String("target", targetURL),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response body")
	}

	zap.L().Info("cassidy: workflow response",
		zap.String("workflow", workflow),
		zap.String("target", targetURL),
		zap.Int("status", resp.StatusCode),
		zap.String("body_preview", truncate(string(data), 256)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &resilience.RateLimitError{
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(data), 1024),
		}
	}

	return data, nil
}

// parseRetryAfter handles the delay-seconds form of the Retry-After header.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
