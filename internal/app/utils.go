// Package app assembles storage, the redirect service and the HTTP router from a Config.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"redirector/internal/config"
	"redirector/internal/handlers"
	"redirector/internal/ratelimit"
	"redirector/internal/selector"
	"redirector/internal/services"
	"redirector/internal/session"
	"redirector/internal/storage"
	"redirector/internal/token"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is a destination table the server and the CLI can both use.
type Store interface {
	storage.TargetStore
	storage.TargetWriter
	Close() error
}

// SelectStorage - selects the destination table: database when a DSN is configured, otherwise memory.
func SelectStorage(ctx context.Context, c *config.Config, logger *zap.SugaredLogger) (Store, error) {
	if c.DBConnection != "" {
		dialect := storage.DetectDialect(c.DBConnection)
		logger.Infow("using database", "dialect", dialect)
		s, err := storage.NewStorageDB(ctx, c.DBConnection)
		if err != nil {
			return nil, fmt.Errorf("storage %s: %w", dialect, err)
		}
		return s, nil
	}

	logger.Warn("using memory storage; no destinations until seeded")
	return storage.NewStorageMemory(), nil
}

// Service is the assembled redirect core.
type Service struct {
	*services.RedirectServ
	// Stats: in-memory admission counters served on /debug/admission.
	Stats *ratelimit.MemoryStatsStore

	redis *redis.Client
}

// NewService wires limiter, token store, selector and stats sinks around st.
func NewService(c *config.Config, st storage.TargetStore, logger *zap.SugaredLogger) *Service {
	limiter := ratelimit.New(c.RateLimit, c.RateWindowDuration(),
		ratelimit.WithGlobalCeiling(c.RateGlobalRPS, c.RateGlobalBurst))
	tokens := token.NewStore(token.WithTTL(c.TokenTTLDuration()))

	svc := &Service{Stats: ratelimit.NewMemoryStatsStore()}
	sinks := []ratelimit.StatsStore{svc.Stats}
	if c.StatsRedisAddr != "" {
		svc.redis = redis.NewClient(&redis.Options{Addr: c.StatsRedisAddr})
		sinks = append(sinks, ratelimit.NewRedisStatsStore(svc.redis))
		logger.Infow("admission stats to redis", "addr", c.StatsRedisAddr)
	}

	svc.RedirectServ = services.NewRedirectService(st, tokens, limiter, selector.New(st), logger, sinks...)
	return svc
}

// Close releases the Redis client, if any.
func (s *Service) Close() error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Close()
}

// NewRouter builds the chi router serving svc.
func NewRouter(c *config.Config, svc *Service, logger *zap.SugaredLogger) *chi.Mux {
	var opts []handlers.ControllerOption
	if c.BindTokens {
		sessions := session.NewManager([]byte(c.CookieHashKey), []byte(c.CookieBlockKey),
			session.WithMaxAge(c.TokenTTLDuration()+time.Hour))
		opts = append(opts, handlers.WithSessions(sessions))
	}

	ctrl := handlers.NewController(c, svc, logger, opts...)
	r := chi.NewRouter()
	InitMiddleware(r, c, ctrl)
	Routing(r, ctrl, svc.Stats)
	return r
}

// CreateServer creates and configures an HTTP server.
func CreateServer(c *config.Config, handler http.Handler, logger *zap.SugaredLogger) *http.Server {
	logger.Infof("Redirector at %s", c.Addr)

	return &http.Server{
		Addr:              c.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 20 * time.Second,
	}
}
