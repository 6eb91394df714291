package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sportshop-be/internal/background"
	"sportshop-be/internal/cart"
	"sportshop-be/internal/config"
	"sportshop-be/internal/db"
	"sportshop-be/internal/logger"
	"sportshop-be/internal/metrics"
	"sportshop-be/internal/middleware"
	"sportshop-be/internal/notify"
	"sportshop-be/internal/order"
	"sportshop-be/internal/product"
	"sportshop-be/internal/restock"
	"sportshop-be/internal/session"
	"sportshop-be/internal/transport"
	"sportshop-be/internal/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	tokenTTL        = 24 * time.Hour
	shutdownTimeout = 15 * time.Second
)

type app struct {
	router  http.Handler
	runner  *background.Runner
	limiter *middleware.RateLimiter
}

// close stops background work started by newApp.
func (a *app) close(ctx context.Context) error {
	a.limiter.Stop()
	return a.runner.Shutdown(ctx)
}

func newApp(cfg *config.Config, database *sql.DB, redisClient *redis.Client) (*app, error) {
	if cfg.JWTSecret == "" {
		return nil, user.ErrMissingSecret
	}

	runner := background.New(logger.L())
	notifier := notify.New(cfg)
	stats := &metrics.Checkout{}

	productRepo := product.NewRepository(database)
	// Restock needs plain lookups, so it gets a catalog without a listener.
	restockSvc := restock.NewService(
		restock.NewRepository(database),
		product.NewService(productRepo, nil),
		notifier,
		runner,
	)
	productSvc := product.NewService(productRepo, restockSvc)

	tokens := user.NewTokens(cfg.JWTSecret, tokenTTL)
	sessions := session.NewManager(cfg, redisClient)
	limiter := middleware.NewRateLimiter()

	h := transport.NewHandler(transport.Deps{
		Products:  productSvc,
		Carts:     cart.NewService(productSvc),
		CartStore: cart.NewSessionStore(sessions),
		Orders:    order.NewService(order.NewRepository(database), productSvc, stats),
		Restock:   restockSvc,
		Users:     user.NewService(user.NewRepository(database), tokens, notifier),
		Stats:     stats,
		DB:        database,
	})

	router := transport.NewRouter(h, transport.RouterOptions{
		Sessions:   sessions,
		Tokens:     tokens,
		Limiter:    limiter,
		CORSOrigin: cfg.CORSOrigin,
	})

	return &app{router: router, runner: runner, limiter: limiter}, nil
}

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	log := logger.L()

	database, err := db.NewDatabase(cfg)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := session.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatal("redis init failed", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	a, err := newApp(cfg, database, redisClient)
	if err != nil {
		log.Fatal("app init failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}
	if err := a.close(shutdownCtx); err != nil {
		log.Warn("background work did not finish", zap.Error(err))
	}
	log.Info("server exited")
}
