package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fitness/internal/api"
	"fitness/internal/auth"
	"fitness/internal/config"
	"fitness/internal/db"
	"fitness/internal/email"
	"fitness/internal/identity"
	"fitness/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	slog.Info("starting server", "name", cfg.Server.Name)

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	slog.Info("database opened", "path", cfg.Database.Path)

	queries := database.Queries()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cleanupService := db.NewCleanupService(queries.Users, cfg.Auth.VerificationRetention)
	cleanupDone := make(chan struct{})
	go func() {
		defer close(cleanupDone)
		cleanupService.Start(ctx)
	}()

	emailService := email.NewSMTPService(
		cfg.Email.SMTP.Host,
		cfg.Email.SMTP.Port,
		cfg.Email.SMTP.Username,
		cfg.Email.SMTP.Password,
		cfg.Email.SMTP.From,
	)
	slog.Info("email configured", "host", cfg.Email.SMTP.Host, "port", cfg.Email.SMTP.Port)

	clock, err := service.NewReferenceClock(cfg.Plans.Timezone)
	if err != nil {
		return err
	}

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	plans := service.NewPlanService(queries.Plans, queries.Exercises, clock)
	services := api.Services{
		Accounts: service.NewAccountService(
			queries.Users,
			newIdentityProvider(cfg.Identity),
			emailService,
			auth.NewVerificationTokenService(cfg.Auth.VerificationTokenTTL),
			service.AccountConfig{AppName: cfg.Email.AppName, FrontendURL: cfg.Server.FrontendURL},
		),
		Users:   service.NewUserService(queries.Users, plans),
		History: service.NewHistoryService(queries.Users),
	}

	server, err := api.NewServer(cfg, database, queries.Users, jwtService, services)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	addr := cfg.Addr()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr, "base_url", cfg.Server.BaseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			stop()
			<-cleanupDone
			return fmt.Errorf("server failed: %w", err)
		}
	}

	slog.Info("shutting down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
	<-cleanupDone

	slog.Info("server stopped")
	return nil
}

func newIdentityProvider(cfg config.IdentityConfig) service.IdentityProvider {
	if cfg.Provider == config.IdentityFirebase {
		slog.Info("identity provider configured", "provider", cfg.Provider)
		return identity.NewFirebaseClient(cfg.APIKey, cfg.BaseURL)
	}
	slog.Warn("identity provider disabled; accounts will exist only in the local database")
	return identity.Disabled{}
}
