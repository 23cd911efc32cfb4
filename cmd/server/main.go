package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/yukikurage/workspace-api/internal/config"
	"github.com/yukikurage/workspace-api/internal/database"
	"github.com/yukikurage/workspace-api/internal/handlers"
	"github.com/yukikurage/workspace-api/internal/identity"
	"github.com/yukikurage/workspace-api/internal/logger"
	"github.com/yukikurage/workspace-api/internal/metrics"
	"github.com/yukikurage/workspace-api/internal/repository"
	"github.com/yukikurage/workspace-api/internal/services"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: !cfg.IsProduction(),
	})
	defer log.Sync()

	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	workspaceMetrics := metrics.NewMetrics()
	if err := workspaceMetrics.Register(registry); err != nil {
		log.Fatal("Failed to register metrics", zap.Error(err))
	}

	discoveryCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	provider, err := identity.NewOIDCProvider(discoveryCtx, cfg.OIDC)
	cancel()
	if err != nil {
		log.Fatal("Failed to initialize identity provider", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	workspaceService := services.NewWorkspaceService(
		repository.NewWorkspaceRepository(db),
		repository.NewInviteRepository(db),
		userRepo,
		cfg.InviteURL,
		log.Named("workspaces"),
		workspaceMetrics,
	)
	authService := services.NewAuthService(userRepo, provider, workspaceService, log.Named("auth"))
	avatarService := services.NewAvatarService(userRepo, services.AvatarServiceConfig{
		AllowedHosts:  cfg.AvatarAllowedHosts,
		InsecureHosts: cfg.AvatarInsecureHosts,
	}, log.Named("avatars"))

	store, err := newSessionStore(cfg)
	if err != nil {
		log.Fatal("Failed to create session store", zap.Error(err))
	}

	r := handlers.NewRouter(handlers.RouterConfig{
		Auth:          authService,
		Workspaces:    workspaceService,
		Avatars:       avatarService,
		SessionStore:  store,
		Gatherer:      registry,
		Logger:        log,
		InviteURL:     cfg.InviteURL,
		WorkspaceURL:  cfg.WorkspaceURL,
		SecureCookies: cfg.IsProduction(),
		AfterLogin:    cfg.BaseURL + "/",
	})

	log.Info("Server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

// newSessionStore uses Redis when configured and falls back to signed cookies.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.RedisHost != "" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,    // Redis pool size
			"tcp", // network type
			redisAddr,
			"", // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, err
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
