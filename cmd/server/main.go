package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/natalia11920/pairpay/internal/auth"
	"github.com/natalia11920/pairpay/internal/cache"
	"github.com/natalia11920/pairpay/internal/config"
	"github.com/natalia11920/pairpay/internal/httpapi"
	"github.com/natalia11920/pairpay/internal/middleware"
	"github.com/natalia11920/pairpay/internal/rpc"
	"github.com/natalia11920/pairpay/internal/service"
	"github.com/natalia11920/pairpay/internal/storage/sqlite"
	"github.com/natalia11920/pairpay/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", logging.Err(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info")
		return err
	}
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	balanceCache, err := newBalanceCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer balanceCache.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	services := service.New(service.Deps{
		Store:         store,
		Cache:         balanceCache,
		Authenticator: auth.NewPasswordAuthenticator(store, 0),
		JWT:           jwtManager,
		IsAdminMail:   cfg.IsAdminEmail,
		Logger:        slog.Default(),
	})

	metrics := middleware.NewMetrics()
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(metrics)
	if err := limiter.TrustProxies(cfg.TrustedProxies...); err != nil {
		return err
	}
	go limiter.Run(ctx)

	rpcPath, rpcHandler := rpc.NewHandler(rpc.NewLedgerServer(services.Debts), jwtManager)
	handler := httpapi.NewRouter(httpapi.Options{
		Services:    services,
		JWT:         jwtManager,
		Metrics:     metrics,
		Limiter:     limiter,
		MetricsUser: cfg.MetricsUser,
		MetricsPass: cfg.MetricsPass,
		CORSOrigins: cfg.CORSOrigins,
		Ping:        store.Ping,
		RPCPath:     rpcPath,
		RPCHandler:  rpcHandler,
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", server.Addr, "rpc", rpcPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("Server stopped")
	return nil
}

// newBalanceCache uses Redis when REDIS_ADDR is set and an in-process cache otherwise.
func newBalanceCache(ctx context.Context, cfg *config.Config) (cache.BalanceCache, error) {
	if cfg.RedisAddr == "" {
		slog.Info("Using in-memory balance cache", "ttl", cfg.CacheTTL)
		return cache.NewMemory(cfg.CacheTTL), nil
	}
	c, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}
	slog.Info("Using redis balance cache", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return c, nil
}
