package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/math-quiz/internal/config"
	"github.com/gokatarajesh/math-quiz/internal/logging"
	"github.com/gokatarajesh/math-quiz/internal/metrics"
	"github.com/gokatarajesh/math-quiz/internal/question"
	"github.com/gokatarajesh/math-quiz/internal/quiz"
	"github.com/gokatarajesh/math-quiz/internal/server"
	ws "github.com/gokatarajesh/math-quiz/pkg/http/ws"
)

// Application aggregates shared infrastructure (bank store, session state, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	redis *redis.Client
	http  *http.Server

	reloadWorker *question.ReloadWorker
	broadcaster  *ws.Broadcaster
	sweeper      *quiz.SessionSweeper
	bgCancels    []context.CancelFunc
}

// New bootstraps logger, question store, optional Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Msg("starting application bootstrap")

	m := metrics.New(prometheus.DefaultRegisterer)

	store := question.NewStore(question.StoreOptions{
		Path:     cfg.Questions.Path,
		Fallback: cfg.Questions.Fallback,
		Observer: m,
	}, logger)
	bank := store.Bank(ctx)
	stats := bank.Stats()
	logger.Info().
		Str("path", store.Path()).
		Int("subjects", stats.SubjectsWithQuestions).
		Int("questions", stats.TotalQuestions).
		Msg("question bank ready")

	var redisClient *redis.Client
	var states quiz.StateStore
	var sweeper *quiz.SessionSweeper
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		states = quiz.NewRedisStateStore(redisClient, cfg.Quiz.SessionTTL, logger)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("session state in redis")
	} else {
		memory := quiz.NewMemoryStateStore(cfg.Quiz.SessionTTL)
		states = memory
		if cfg.Quiz.SessionTTL > 0 {
			sweeper = quiz.NewSessionSweeper(memory, cfg.Quiz.SweepInterval, logger)
		}
		logger.Info().Msg("session state in process memory")
	}

	svc := quiz.NewService(store, question.NewAssets(cfg.Questions.ImageRoot), states, quiz.ServiceOptions{
		Defaults: quiz.Options{
			Strategy:     quiz.Strategy(cfg.Quiz.Strategy),
			Timed:        cfg.Quiz.Timed,
			TimerSeconds: cfg.Quiz.TimerSeconds,
		},
		Observer: m,
	}, logger)

	wsHub := ws.NewHub(logger)
	broadcaster := ws.NewBroadcaster(redisClient, wsHub, cfg.Redis.Channel, logger)
	var reloadWorker *question.ReloadWorker
	if cfg.Questions.ReloadInterval > 0 {
		reloadWorker = question.NewReloadWorker(store, quiz.NewBankNotifier(broadcaster, m), cfg.Questions.ReloadInterval, logger)
	}

	httpHandlers := quiz.NewHTTPHandlers(svc, wsHub, logger)
	wsHandler := quiz.NewHandler(svc, wsHub, logger)

	apiServer := server.NewHTTPServer(cfg, logger, redisClient, httpHandlers, wsHandler.HandleWebSocket(&server.WSUpgrader))

	return &Application{
		cfg:          cfg,
		logger:       logger,
		redis:        redisClient,
		http:         apiServer,
		reloadWorker: reloadWorker,
		broadcaster:  broadcaster,
		sweeper:      sweeper,
		bgCancels:    make([]context.CancelFunc, 0, 3),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.reloadWorker != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.reloadWorker.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn().Err(err).Msg("bank reload worker stopped")
			}
		}()
	}

	if a.sweeper != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.sweeper.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn().Err(err).Msg("session sweeper stopped")
			}
		}()
	}

	if a.broadcaster != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.broadcaster.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn().Err(err).Msg("bank broadcaster stopped")
			}
		}()
	}
}
