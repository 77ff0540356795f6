package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/linkedin-ingest/internal/adapter"
	"github.com/sells-group/linkedin-ingest/internal/ingest"
	"github.com/sells-group/linkedin-ingest/internal/resilience"
	"github.com/sells-group/linkedin-ingest/pkg/cassidy"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ingestion REST API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env, cfg.Server.APIKey),
		}

		retention := time.Duration(cfg.Status.RetentionHours) * time.Hour
		sweepEvery := time.Duration(cfg.Status.SweepIntervalMins) * time.Minute

		g, gCtx := errgroup.WithContext(ctx)

		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		g.Go(func() error {
			ticker := time.NewTicker(sweepEvery)
			defer ticker.Stop()
			for {
				select {
				case <-gCtx.Done():
					return nil
				case <-ticker.C:
					if n := env.Tracker.Sweep(retention); n > 0 {
						zap.L().Info("swept ingestion statuses", zap.Int("evicted", n))
					}
				}
			}
		})

		g.Go(func() error {
			<-gCtx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the chi router serving the ingestion API.
func newRouter(env *ingestEnv, apiKey string) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyAuth(apiKey))
		r.Post("/profiles/ingest", handleIngest(env))
		r.Get("/profiles/{id}", handleGetProfile(env))
		r.Get("/ingestions", handleListIngestions(env))
		r.Get("/ingestions/{id}", handleGetIngestion(env))
	})

	return r
}

// apiKeyAuth rejects requests whose X-API-Key header does not match.
func apiKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" || r.Header.Get("X-API-Key") != apiKey {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type ingestRequest struct {
	URL    string `json:"url"`
	Enrich *bool  `json:"enrich,omitempty"`
	Wait   bool   `json:"wait,omitempty"`
}

// handleIngest accepts an ingestion request. By default the ingestion runs
// asynchronously and the response carries the request id for status polling;
// with "wait": true the handler blocks and returns the enriched profile, so
// provider faults map directly onto the response status.
func handleIngest(env *ingestEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ingestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.URL == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"})
			return
		}

		enrich := true
		if req.Enrich != nil {
			enrich = *req.Enrich
		}

		ingestReq := ingest.Request{
			ID:         uuid.New().String(),
			ProfileURL: req.URL,
			Enrich:     enrich,
		}

		if req.Wait {
			enriched, err := env.Orchestrator.Process(r.Context(), ingestReq)
			if err != nil {
				writeIngestError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, enriched)
			return
		}

		// Detach from the request context: the ingestion outlives the
		// HTTP exchange.
		go func() {
			if _, err := env.Orchestrator.Process(context.Background(), ingestReq); err != nil {
				zap.L().Error("ingestion failed",
					zap.String("request_id", ingestReq.ID),
					zap.String("url", ingestReq.ProfileURL),
					zap.Error(err),
				)
			}
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"request_id": ingestReq.ID,
			"url":        req.URL,
		})
	}
}

func handleGetIngestion(env *ingestEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		status, ok := env.Tracker.Get(id)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown ingestion id"})
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func handleListIngestions(env *ingestEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, env.Tracker.List())
	}
}

func handleGetProfile(env *ingestEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		profile, err := env.Store.GetProfile(r.Context(), id)
		if err != nil {
			zap.L().Error("get profile failed", zap.String("id", id), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failure"})
			return
		}
		if profile == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown profile id"})
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// writeIngestError maps pipeline faults onto HTTP statuses: incomplete data
// is a client-visible validation failure, rate limiting carries a retry
// hint, and upstream/workflow faults surface as bad gateway.
func writeIngestError(w http.ResponseWriter, err error) {
	var incomplete *adapter.IncompleteDataError
	if errors.As(err, &incomplete) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":          incomplete.Error(),
			"missing_fields": incomplete.MissingFields,
		})
		return
	}

	var rl *resilience.RateLimitError
	if errors.As(err, &rl) {
		if rl.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.RetryAfter.Seconds())))
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "provider rate limited"})
		return
	}

	var wf *cassidy.WorkflowError
	var api *cassidy.APIError
	if errors.As(err, &wf) || errors.As(err, &api) || errors.Is(err, cassidy.ErrMalformedResponse) {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
