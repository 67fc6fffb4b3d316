package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dispatch "github.com/dispatchlabs/inference-gateway"
	"github.com/dispatchlabs/inference-gateway/internal/admin"
	"github.com/dispatchlabs/inference-gateway/internal/auditlog"
	"github.com/dispatchlabs/inference-gateway/internal/logging"
	"github.com/dispatchlabs/inference-gateway/internal/version"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	audit, err := auditlog.NewFromEnv(os.Getenv("AUDIT_SQLITE_DSN"), os.Getenv("AUDIT_POSTGRES_DSN"))
	if err != nil {
		log.Fatalf("audit log: %v", err)
	}

	cfg := dispatch.ConfigFromEnv()
	cfg.Audit = audit
	engine := dispatch.NewEngine(cfg)
	defer engine.Close()

	if seedPath := os.Getenv("GATEWAY_SEED"); seedPath != "" {
		sf, err := dispatch.LoadSeedFile(seedPath)
		if err != nil {
			log.Fatalf("seed file: %v", err)
		}
		engine.ApplySeedFile(context.Background(), sf)
	}

	adminHandlers, err := admin.NewHandlers(engine)
	if err != nil {
		log.Fatalf("admin handlers: %v", err)
	}

	r := newRouter(engine, adminHandlers)

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logging.Logger.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Logger.Error("shutdown error", "err", err)
		}
	}()

	logging.Logger.Info("inference gateway listening", "version", version.Short(), "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stop()
		log.Fatalf("server error: %v", err)
	}
	logging.Logger.Info("server stopped")
}

func newRouter(engine *dispatch.Engine, adminHandlers *admin.Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(authMiddleware(engine))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/admin/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/admin", func(r chi.Router) {
		r.Mount("/", adminHandlers.Routes())
	})

	r.Post("/v1/chat/completions", chatCompletionsHandler(engine))
	r.Post("/v1/embeddings", embeddingsHandler(engine))
	r.Post("/v1/images/generations", imagesHandler(engine))

	return r
}

// authMiddleware enforces §4.9's gate ahead of every request: the engine's
// internal gate already knows whether auth is disabled (empty API_KEYS).
func authMiddleware(engine *dispatch.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/admin/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			if err := engine.Authorize(r.Header.Get("Authorization")); err != nil {
				writeDispatchError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func chatCompletionsHandler(engine *dispatch.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dispatch.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeOpenAIError(w, http.StatusBadRequest, err.Error(), "invalid_request_error")
			return
		}

		if req.Stream {
			ch, err := engine.SubmitChatStream(r.Context(), req)
			if err != nil {
				writeDispatchError(w, err)
				return
			}
			writeSSE(w, ch)
			return
		}

		resp, err := engine.SubmitChatBuffered(r.Context(), req)
		if err != nil {
			writeDispatchError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func embeddingsHandler(engine *dispatch.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dispatch.EmbeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeOpenAIError(w, http.StatusBadRequest, err.Error(), "invalid_request_error")
			return
		}
		resp, err := engine.SubmitEmbedding(r.Context(), req)
		if err != nil {
			writeDispatchError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func imagesHandler(engine *dispatch.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dispatch.ImageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeOpenAIError(w, http.StatusBadRequest, err.Error(), "invalid_request_error")
			return
		}
		resp, err := engine.SubmitImage(r.Context(), req)
		if err != nil {
			writeDispatchError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeDispatchError(w http.ResponseWriter, err error) {
	de, ok := err.(*dispatch.Error)
	if !ok {
		writeOpenAIError(w, http.StatusInternalServerError, err.Error(), "server_error")
		return
	}
	writeOpenAIError(w, de.StatusCode(), de.Message, de.Reason)
}

func writeOpenAIError(w http.ResponseWriter, status int, message, errType string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"type":    errType,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeSSE streams chat chunk frames (already-marshaled JSON strings or the
// literal "[DONE]" sentinel) as SSE events, per §4.5.
func writeSSE(w http.ResponseWriter, ch <-chan string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)
	for frame := range ch {
		_, _ = fmt.Fprintf(w, "data: %s\n\n", frame)
		if flusher != nil {
			flusher.Flush()
		}
	}
}
