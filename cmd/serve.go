package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/contact-cli/internal/classify"
	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/internal/pipeline"
	"github.com/sells-group/contact-cli/internal/resolve"
)

// maxBodyBytes bounds request bodies; one session's exports fit well inside.
const maxBodyBytes = 64 << 20

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API used by the reconciliation front end",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		p, classifier, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           buildRouter(p, classifier, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// sourcePayload is one source export in a reconcile request.
type sourcePayload struct {
	Name    string           `json:"name"`
	Kind    model.SourceKind `json:"kind"`
	Header  []string         `json:"header,omitempty"`
	Records []model.Record   `json:"records"`
}

type reconcileRequest struct {
	Sources []sourcePayload `json:"sources"`
}

type reconcileResponse struct {
	SessionID  string                    `json:"session_id"`
	Stats      resolve.Stats             `json:"stats"`
	Categories map[model.Category]int    `json:"categories"`
	Sets       map[string][]model.Record `json:"sets"`
	Error      string                    `json:"error,omitempty"`
}

type classifyRequest struct {
	Records []model.Record `json:"records"`
}

type classifyResponse struct {
	Results []classify.Result `json:"results"`
}

// buildRouter wires the API routes. A nil pipeline or classifier answers
// its routes with 503.
func buildRouter(p *pipeline.Pipeline, classifier *classify.Classifier, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/reconcile", func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				writeError(w, http.StatusServiceUnavailable, "pipeline not configured")
				return
			}
			var req reconcileRequest
			if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if len(req.Sources) == 0 {
				writeError(w, http.StatusBadRequest, "sources are required")
				return
			}

			sources := make([]model.Source, len(req.Sources))
			for i, s := range req.Sources {
				if s.Kind.Rank() == len(model.SourceOrder) {
					writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown source kind %q", s.Kind))
					return
				}
				sources[i] = model.Source(s)
			}

			result, err := p.Run(r.Context(), sources)
			if result == nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			resp := reconcileResponse{
				SessionID:  result.SessionID,
				Stats:      result.Stats,
				Categories: result.Categories,
				Sets:       make(map[string][]model.Record, len(result.Sets)),
			}
			for name, recs := range result.Sets {
				resp.Sets[string(name)] = recs
			}
			if err != nil {
				zap.L().Warn("reconcile finished with errors", zap.String("session_id", result.SessionID), zap.Error(err))
				resp.Error = err.Error()
			}
			writeJSON(w, http.StatusOK, resp)
		})

		r.Post("/classify", func(w http.ResponseWriter, r *http.Request) {
			if classifier == nil {
				writeError(w, http.StatusServiceUnavailable, "classifier not configured")
				return
			}
			var req classifyRequest
			if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			resp := classifyResponse{Results: make([]classify.Result, len(req.Records))}
			for i, rec := range req.Records {
				resp.Results[i] = classifier.Classify(rec)
			}
			writeJSON(w, http.StatusOK, resp)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
