package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/reelmates/reelmates-backend/api/routes"
	"github.com/reelmates/reelmates-backend/internal/auth"
	"github.com/reelmates/reelmates-backend/internal/chat"
	"github.com/reelmates/reelmates-backend/internal/friends"
	"github.com/reelmates/reelmates-backend/internal/groups"
	"github.com/reelmates/reelmates-backend/internal/picks"
	"github.com/reelmates/reelmates-backend/internal/users"
	"github.com/reelmates/reelmates-backend/pkg/auth/session"
	"github.com/reelmates/reelmates-backend/pkg/config"
	"github.com/reelmates/reelmates-backend/pkg/db"
	"github.com/reelmates/reelmates-backend/pkg/logger"
	"github.com/reelmates/reelmates-backend/pkg/migrate"
	redisclient "github.com/reelmates/reelmates-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redisclient.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		Limiter:        redisClient,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	var directory friends.Directory = &friends.StaticDirectory{}
	if cfg.Friends.BaseURL != "" {
		httpDirectory, err := friends.NewHTTPDirectory(cfg.Friends)
		if err != nil {
			logg.Error(context.Background(), "failed to create friends directory", err)
			os.Exit(1)
		}
		directory = httpDirectory
	}

	chatRepo := chat.NewRepository(dbClient.DB())
	membershipChecker := groups.NewMembershipChecker(dbClient)

	groupService, err := groups.NewService(groups.ServiceParams{
		DB:        dbClient,
		Directory: directory,
		Unseen:    chatRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create group service", err)
		os.Exit(1)
	}

	pickService, err := picks.NewService(picks.ServiceParams{
		Store:   picks.NewRepository(dbClient.DB()),
		Members: membershipChecker,
		Seen:    chatRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pick service", err)
		os.Exit(1)
	}

	chatService, err := chat.NewService(chat.ServiceParams{
		Store:   chatRepo,
		Senders: users.NewRepository(dbClient.DB()),
		Members: membershipChecker,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create chat service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Sessions:     sessionManager,
			Registry:     registry,
			AuthService:  authService,
			GroupService: groupService,
			PickService:  pickService,
			ChatService:  chatService,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
