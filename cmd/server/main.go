package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/featureflags"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/handler"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/infrastructure/logger"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/infrastructure/redis"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/observability/metrics"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/observability/tracing"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/reliability/retry"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/repository"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security/auth"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security/middleware"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/service"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/worker"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/pkg/cache"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/pkg/config"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting auth server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Optional tracing
	if featureflags.Enabled("tracing") {
		shutdownTracing, err := tracing.Init(ctx, log, "tgoo-auth", cfg.Environment)
		if err != nil {
			log.Error("failed to initialize tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdownTracing(context.Background())
	}

	// 4. Connect to postgres (with startup retry, the DB may still be booting)
	pool, err := retry.Do(ctx, retry.DefaultConfig(), log, "connect database",
		func(ctx context.Context) (*database.ConnectionPool, error) {
			return database.NewConnectionPool(ctx, &database.Config{
				Host:     cfg.Database.Host,
				Port:     cfg.Database.Port,
				User:     cfg.Database.User,
				Password: cfg.Database.Password,
				Database: cfg.Database.Name,
				SSLMode:  cfg.Database.SSLMode,
			}, log)
		})
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Optional redis platform cache
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = retry.Do(ctx, retry.DefaultConfig(), log, "connect redis",
			func(ctx context.Context) (*redis.Client, error) {
				return redis.NewClient(cfg.RedisURL)
			})
		if err != nil {
			log.Error("failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
	}

	// 6. Repositories
	userRepo := repository.NewPostgresUserRepository(pool.GetDB(), log)
	var platformRepo domain.PlatformRepository = repository.NewPostgresPlatformRepository(pool.GetDB(), log)
	if redisClient != nil {
		platformRepo = repository.NewCachedPlatformRepository(platformRepo, redisClient, log)
	}

	// 7. Security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "tgoo-auth", cfg.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	authz := security.NewAuthorizationService(log)

	// 8. Services
	authService := service.NewAuthService(userRepo, platformRepo, tokenManager, hasher, log)
	adminService := service.NewAdminService(userRepo, platformRepo, authz, hasher, log)
	platformService := service.NewPlatformService(platformRepo, authz, cache.New(), log)
	apiKeyService := service.NewAPIKeyService(userRepo, log)

	// 9. Handlers and routes
	healthDeps := map[string]handler.Pinger{
		"database": handler.PingerFunc(pool.Health),
	}
	if redisClient != nil {
		healthDeps["redis"] = redisClient
	}

	mux := handler.NewRouter(
		handler.NewAuthHandler(authService, platformService, log),
		handler.NewAdminHandler(adminService, platformService, log),
		handler.NewPasswordHandler(authService, log),
		handler.NewAPIKeyHandler(apiKeyService, log),
		handler.NewHealthHandler(healthDeps),
		tokenManager,
		log,
	)

	// Chain middleware: request ID -> metrics -> content type -> CORS -> routes
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.ValidateJSONContentType(log)(
				withCORS(cfg.CORSAllowedOrigins, mux),
			),
		),
		log,
	)
	rootHandler = otelhttp.NewHandler(rootHandler, "http.server")

	// 10. Background stats worker
	statsWorker := worker.NewStatsWorker(userRepo, platformRepo, log,
		time.Duration(cfg.StatsIntervalMinutes)*time.Minute)
	go statsWorker.Start(ctx)

	// 11. HTTP server with graceful shutdown
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Duration("token_ttl", cfg.TokenTTL),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop stats worker
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

// withCORS honors the configured origins and answers preflight requests.
func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(allowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(allowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
