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

	"wedding-guests/internal/authz"
	"wedding-guests/internal/config"
	"wedding-guests/internal/observability/logging"
	"wedding-guests/internal/observability/metrics"
	"wedding-guests/internal/service"
	impl "wedding-guests/internal/service/impl"
	"wedding-guests/internal/store"
	httpx "wedding-guests/internal/transport/http"
	"wedding-guests/pkg/db"
)

func main() {
	cfg := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: "guests",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)

	logger.Info("starting service")
	metrics.MustRegister("guests")

	// 1) DB
	gdb, err := db.OpenGorm(db.Config{
		Driver: cfg.DatabaseDriver,
		DSN:    cfg.DatabaseURL,
		LogSQL: cfg.LogSQL,
	})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	st := store.New(gdb)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := st.Migrate(ctx); err != nil {
		cancel()
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}
	cancel()

	// 2) Services
	pw := impl.NewPasswordServiceBcrypt(cfg.BcryptCost)
	ts := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
		AccessTTL:  cfg.AccessTTL,
		SigningKey: []byte(cfg.SigningKey),
	})
	gs := impl.NewGuestServiceImpl(st, pw, cfg.CeremonyTypes())

	var as service.AdminService
	if cfg.AdminLoginEnabled() {
		as = impl.NewAdminServiceImpl(cfg.AdminUsername, cfg.AdminPasswordHash, pw, ts)
	} else {
		logger.Warn("admin login disabled; set ADMIN_USERNAME and ADMIN_PASSWORD_HASH or mint tokens with guestctl")
	}

	// 3) HTTP router
	guard := authz.NewGuard(ts, httpx.RejectUnauthorized)
	router := httpx.NewRouter(gs, as, guard, httpx.Options{
		CORSOrigins:     cfg.CORSOrigins,
		LoginRateLimit:  cfg.LoginRateLimit,
		LoginRateWindow: cfg.LoginRateWindow,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	slog.Info("guests service listening",
		"addr", srv.Addr,
		"driver", cfg.DatabaseDriver,
		"ceremonies", cfg.CeremonyTypes(),
		"bcrypt_cost", pw.Cost(),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server closed")
}
