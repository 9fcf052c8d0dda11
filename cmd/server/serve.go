package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"noteful/internal/auth"
	"noteful/internal/db"
	"noteful/internal/folders"
	mcpserver "noteful/internal/mcp"
	"noteful/internal/notes"
	"noteful/internal/ratelimit"
	"noteful/internal/server"
	"noteful/internal/tags"
	"noteful/internal/users"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context) error {
	// Context for startup
	ctx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()

	// Connect to MongoDB
	log.Info("connecting to MongoDB", zap.String("database", cfg.Mongo.Database))
	database, err := db.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return err
	}
	defer database.Client().Disconnect(context.Background())
	log.Info("connected to MongoDB")

	// Wire dependencies
	noteRepo := notes.NewRepo(database)
	folderRepo := folders.NewRepo(database)
	tagRepo := tags.NewRepo(database)
	userRepo := users.NewRepo(database)
	for _, repo := range []interface {
		EnsureIndexes(context.Context) error
	}{noteRepo, folderRepo, tagRepo, userRepo} {
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn("failed to ensure indexes", zap.Error(err))
		}
	}

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	userSvc := users.NewService(userRepo, auth.BcryptHasher{Cost: cfg.Auth.BcryptCost})
	noteSvc := notes.NewService(noteRepo, notes.NewReferenceValidator(folderRepo, tagRepo))
	folderSvc := folders.NewService(folderRepo, noteRepo)
	tagSvc := tags.NewService(tagRepo, noteRepo)

	loginLimit := ratelimit.New(cfg.Auth.LoginRPS, cfg.Auth.LoginBurst, 10*time.Minute)
	stopSweep := sweep(loginLimit, time.Minute)
	defer stopSweep()

	handler := server.NewRouter(server.Deps{
		Users:       users.NewHandler(userSvc, log),
		Auth:        auth.NewHandler(userSvc, issuer, log),
		Notes:       notes.NewHandler(noteSvc, tagRepo, log),
		Folders:     folders.NewHandler(folderSvc, log),
		Tags:        tags.NewHandler(tagSvc, log),
		Issuer:      issuer,
		LoginLimit:  loginLimit,
		MCP:         mcpserver.NewServer(noteSvc, folderSvc, tagSvc, log),
		CorsOrigins: cfg.App.CorsAllowedOrigins,
		Log:         log,
	})

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	log.Info("server starting",
		zap.String("port", cfg.App.Port),
		zap.String("environment", cfg.App.Environment),
		zap.String("api", "http://localhost:"+cfg.App.Port+"/api"),
		zap.String("mcp", "http://localhost:"+cfg.App.Port+"/mcp"),
	)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	log.Info("server stopped")
	return nil
}

// sweep drops idle login buckets every interval until the returned func is called.
func sweep(l *ratelimit.Limiter, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				l.Cleanup()
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}
