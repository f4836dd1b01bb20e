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

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	config "github.com/Fooxyj/dacha/configs"
	"github.com/Fooxyj/dacha/internal/auth"
	"github.com/Fooxyj/dacha/internal/db"
	"github.com/Fooxyj/dacha/internal/handlers"
	"github.com/Fooxyj/dacha/internal/logger"
	"github.com/Fooxyj/dacha/internal/notifier"
	"github.com/Fooxyj/dacha/internal/paykeeper"
	"github.com/Fooxyj/dacha/internal/seed"
	"github.com/Fooxyj/dacha/internal/traffic"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Init(cfg.Database); err != nil {
		return err
	}

	if cfg.SeedFile != "" {
		fx, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return err
		}
		if _, err := seed.Apply(db.DB, fx); err != nil {
			return err
		}
	}

	// ── notifications ──
	email, err := notifier.NewEmailSender(ctx, cfg.Email)
	if err != nil {
		log.Warn("email notifications disabled", "error", err)
	}

	var events *notifier.Publisher
	if cfg.AMQP.URL != "" {
		events, err = notifier.DialPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Warn("event publishing disabled", "error", err)
		} else {
			defer events.Close()
		}
	}

	dispatcher := notifier.NewDispatcher(notifier.NewSMSSender(cfg.SMS), email, events, log)
	defer dispatcher.Wait()

	handlers.SetNotifier(dispatcher)
	handlers.SetGateway(paykeeper.New(cfg.PayKeeper))
	handlers.SetAdminConfig(cfg.Admin)

	sso, err := auth.NewOIDC(ctx, cfg.OIDC)
	if err != nil {
		log.Warn("oidc login disabled", "error", err)
	}

	// ── router ──
	r := gin.New()
	r.Use(logger.RequestID(), logger.Middleware(log), gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   cfg.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(auth.SessionName, store))
	r.Use(traffic.Middleware(), auth.LoadPrincipal())

	handlers.RegisterRoutes(r, sso)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
