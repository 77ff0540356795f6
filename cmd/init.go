package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/linkedin-ingest/internal/ingest"
	"github.com/sells-group/linkedin-ingest/internal/resilience"
	"github.com/sells-group/linkedin-ingest/internal/store"
	"github.com/sells-group/linkedin-ingest/pkg/cassidy"
)

// ingestEnv holds the initialized store, provider client, tracker, and
// orchestrator needed by the serve/ingest commands.
type ingestEnv struct {
	Store        store.Store
	Tracker      *ingest.StatusTracker
	Orchestrator *ingest.Orchestrator
}

// Close releases resources held by the environment.
func (e *ingestEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv sets up the store, the Cassidy client, and the orchestrator.
// Callers should defer env.Close().
func initEnv(ctx context.Context) (*ingestEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	client := cassidy.NewClient(
		cfg.Cassidy.ProfileWorkflowURL,
		cfg.Cassidy.CompanyWorkflowURL,
		cassidy.WithTimeout(time.Duration(cfg.Cassidy.TimeoutSecs)*time.Second),
		cassidy.WithConnectTimeout(time.Duration(cfg.Cassidy.ConnectTimeoutSecs)*time.Second),
		cassidy.WithRetry(resilience.RetryConfig{
			MaxAttempts: cfg.Cassidy.MaxAttempts,
			BaseDelay:   time.Duration(cfg.Cassidy.BackoffBaseSecs) * time.Second,
			MaxDelay:    time.Duration(cfg.Cassidy.BackoffMaxSecs) * time.Second,
			Multiplier:  cfg.Cassidy.BackoffMultiplier,
		}),
		cassidy.WithBreaker(resilience.NewBreaker(0, 0)),
	)

	tracker := ingest.NewStatusTracker()
	orch := ingest.New(client, st, tracker, ingest.Config{
		EnrichmentEnabled: cfg.Enrichment.Enabled,
		CompanyDelay:      cfg.Enrichment.CompanyDelay(),
	})

	return &ingestEnv{
		Store:        st,
		Tracker:      tracker,
		Orchestrator: orch,
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
