package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/math-quiz/internal/config"
	"github.com/gokatarajesh/math-quiz/internal/logging"
)

// WSUpgrader handles WebSocket upgrades.
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to configured origins once the UI is served from a fixed host
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// RouteRegistrar mounts a group of endpoints.
type RouteRegistrar interface {
	Register(mux *http.ServeMux)
}

// NewHTTPServer wires base routes (health, metrics, images) plus the quiz API.
// redis may be nil; wsHandler may be nil until sockets are enabled.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, redis *redis.Client, api RouteRegistrar, wsHandler http.HandlerFunc) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewMux(cfg, logger, redis, api, wsHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewMux builds the router. It is separate from NewHTTPServer for tests.
func NewMux(cfg *config.App, logger zerolog.Logger, redis *redis.Client, api RouteRegistrar, wsHandler http.HandlerFunc) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), redis); err != nil {
			log := logging.FromContext(r.Context())
			log.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	// Question images, relative to the image root.
	images := http.FileServer(http.Dir(cfg.Questions.ImageRoot))
	mux.Handle("GET /v1/images/", http.StripPrefix("/v1/images/", images))

	if api != nil {
		api.Register(mux)
	}

	if wsHandler != nil {
		mux.HandleFunc("GET /ws/sessions/{id}", wsHandler)
	} else {
		mux.HandleFunc("GET /ws/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "WebSocket handler not yet integrated", http.StatusNotImplemented)
		})
	}

	return withLogger(mux, logger)
}

// withLogger makes the request-scoped logger available via logging.FromContext.
func withLogger(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.With().Str("method", r.Method).Str("path", r.URL.Path).Logger()
		next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), reqLogger)))
	})
}

func pingDependencies(ctx context.Context, redis *redis.Client) error {
	if redis == nil {
		return nil
	}
	return redis.Ping(ctx).Err()
}
