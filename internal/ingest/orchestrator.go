// Package ingest orchestrates profile retrieval and per-experience company
// enrichment under the provider rate limit.
package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/linkedin-ingest/internal/adapter"
	"github.com/sells-group/linkedin-ingest/internal/model"
	"github.com/sells-group/linkedin-ingest/internal/store"
	"github.com/sells-group/linkedin-ingest/pkg/cassidy"
)

// Stage names reported through the status tracker.
const (
	StageProfileFetch = "profile_fetch"
	StageCompanyFetch = "company_fetch"
)

// Request describes one ingestion.
type Request struct {
	// ID identifies the request in the status tracker. Assigned if empty.
	ID string
	// ProfileURL is the LinkedIn profile URL to ingest.
	ProfileURL string
	// Enrich requests company enrichment for this ingestion. It is also
	// gated by the global enrichment flag.
	Enrich bool
}

// Config controls orchestrator behavior.
type Config struct {
	// EnrichmentEnabled globally enables company enrichment.
	EnrichmentEnabled bool
	// CompanyDelay is the pause between consecutive company workflow calls.
	// The provider rate-limits company lookups, so the batch is strictly
	// sequential. Default: 10s.
	CompanyDelay time.Duration
}

// Orchestrator sequences profile fetch, transform, and per-company
// enrichment for ingestion requests. One logical flow per request; company
// fetches within a request are never parallelized.
type Orchestrator struct {
	client  cassidy.Client
	store   store.Store // may be nil (status-only mode)
	tracker *StatusTracker
	cfg     Config
}

// New creates an Orchestrator.
func New(client cassidy.Client, st store.Store, tracker *StatusTracker, cfg Config) *Orchestrator {
	if cfg.CompanyDelay <= 0 {
		cfg.CompanyDelay = 10 * time.Second
	}
	return &Orchestrator{
		client:  client,
		store:   st,
		tracker: tracker,
		cfg:     cfg,
	}
}

// Process runs one ingestion: fetch the profile, transform it, then fetch
// each distinct company referenced in its experience history. A single
// company failure is recorded as an absent slot and never aborts the batch;
// profile-level faults propagate and mark the request FAILED.
func (o *Orchestrator) Process(ctx context.Context, req Request) (*model.EnrichedProfile, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	log := zap.L().With(zap.String("request_id", req.ID), zap.String("url", req.ProfileURL))

	o.tracker.Start(req.ID, req.ProfileURL)

	raw, err := o.client.FetchProfile(ctx, req.ProfileURL)
	if err != nil {
		o.tracker.Fail(req.ID, err.Error())
		return nil, eris.Wrap(err, "ingest: fetch profile")
	}

	profile, err := adapter.Transform(raw)
	if err != nil {
		o.tracker.Fail(req.ID, err.Error())
		return nil, eris.Wrap(err, "ingest: transform profile")
	}

	if o.store != nil {
		if saveErr := o.store.SaveProfile(ctx, profile); saveErr != nil {
			log.Warn("ingest: failed to persist profile", zap.Error(saveErr))
		}
	}

	enriched := &model.EnrichedProfile{
		Profile:     profile,
		CompanyURLs: []string{},
		Companies:   []*model.CanonicalCompany{},
		CreatedAt:   time.Now().UTC(),
	}

	if req.Enrich && o.cfg.EnrichmentEnabled {
		urls := companyURLs(profile.Experiences)
		if len(urls) > 0 {
			companies, batchErr := o.fetchCompanies(ctx, req.ID, log, urls)
			if batchErr != nil {
				o.tracker.Fail(req.ID, batchErr.Error())
				return nil, batchErr
			}
			enriched.CompanyURLs = urls
			enriched.Companies = companies
		}
	}

	o.tracker.Complete(req.ID)
	log.Info("ingest: complete",
		zap.Int("experiences", len(profile.Experiences)),
		zap.Int("companies_requested", len(enriched.CompanyURLs)),
		zap.Int("companies_resolved", enriched.CompanyCount()),
	)
	return enriched, nil
}

// fetchCompanies resolves each company URL strictly sequentially, paced by a
// rate limiter so the delay applies between requests, not after the last.
// The returned slice is positionally aligned with urls; a failed fetch
// leaves a nil entry at its index. Context cancellation aborts the batch.
func (o *Orchestrator) fetchCompanies(ctx context.Context, requestID string, log *zap.Logger, urls []string) ([]*model.CanonicalCompany, error) {
	companies := make([]*model.CanonicalCompany, len(urls))
	limiter := rate.NewLimiter(rate.Every(o.cfg.CompanyDelay), 1)
	totalSteps := 1 + len(urls)

	for i, companyURL := range urls {
		o.tracker.Advance(requestID, StageCompanyFetch, i+2, totalSteps)

		if err := limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "ingest: company batch cancelled")
		}

		company, err := o.fetchCompany(ctx, companyURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(err, "ingest: company batch cancelled")
			}
			log.Warn("ingest: company fetch failed, leaving slot absent",
				zap.String("company_url", companyURL),
				zap.Error(err),
			)
			continue
		}
		companies[i] = company

		if o.store != nil && !company.IsUnknown() {
			if saveErr := o.store.SaveCompany(ctx, company); saveErr != nil {
				log.Warn("ingest: failed to persist company", zap.Error(saveErr))
			}
		}
	}
	return companies, nil
}

func (o *Orchestrator) fetchCompany(ctx context.Context, companyURL string) (*model.CanonicalCompany, error) {
	raw, err := o.client.FetchCompany(ctx, companyURL)
	if err != nil {
		return nil, err
	}
	return adapter.TransformCompany(raw)
}

// companyURLs returns the de-duplicated company URLs referenced by the
// experience entries, in first-seen order.
func companyURLs(experiences []model.Experience) []string {
	seen := make(map[string]struct{}, len(experiences))
	var urls []string
	for _, exp := range experiences {
		u := exp.CompanyURL
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}
