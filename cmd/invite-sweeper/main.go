// Command invite-sweeper deletes expired workspace invites. It runs once and
// exits, so it can be scheduled from cron or a Kubernetes CronJob.
package main

import (
	"context"
	"os"
	"time"

	"github.com/yukikurage/workspace-api/internal/config"
	"github.com/yukikurage/workspace-api/internal/database"
	"github.com/yukikurage/workspace-api/internal/logger"
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
	}).Named("invite-sweeper")
	defer log.Sync()

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	workspaceService := services.NewWorkspaceService(
		repository.NewWorkspaceRepository(db),
		repository.NewInviteRepository(db),
		repository.NewUserRepository(db),
		cfg.InviteURL,
		log,
		nil,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := workspaceService.SweepExpiredInvites(ctx)
	if err != nil {
		log.Error("Sweep failed", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Sweep finished", zap.Int64("removed", removed))
}
