package session

import (
	"context"
	"fmt"
	"net/http"

	"sportshop-be/internal/config"
	"sportshop-be/internal/logger"

	"github.com/alexedwards/scs/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const CookieName = "sportshop_session"

// NewRedisClient connects to cfg.RedisAddr. It returns nil, nil when Redis is not configured.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewManager builds the session manager holding carts. A nil client keeps
// sessions in process memory.
func NewManager(cfg *config.Config, client *redis.Client) *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = cfg.SessionLifetime
	sm.Cookie.Name = CookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = cfg.AppEnv == "production"

	if client != nil {
		sm.Store = NewRedisStore(client)
		logger.L().Info("session store ready", zap.String("store", "redis"), zap.String("addr", cfg.RedisAddr))
	} else {
		logger.L().Warn("REDIS_ADDR not set, sessions kept in memory")
	}

	sm.ErrorFunc = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.FromCtx(r.Context()).Error("session error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}

	return sm
}
