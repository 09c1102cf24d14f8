package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/taskward-dev/taskward/db"
	"github.com/taskward-dev/taskward/internal/auth"
	"github.com/taskward-dev/taskward/internal/config"
	"github.com/taskward-dev/taskward/internal/realtime"
	"github.com/taskward-dev/taskward/internal/router"
	"github.com/taskward-dev/taskward/internal/services"
	"github.com/taskward-dev/taskward/internal/store"
	"github.com/taskward-dev/taskward/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("no .env file found, using environment")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Mode == "debug" {
		logger.Init("debug")
	}

	if err := auth.InitJWT(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpireHour)*time.Hour); err != nil {
		logger.Fatalf("Failed to initialize JWT: %v", err)
	}

	if err := db.ConnectDatabase(cfg.Database.Driver, cfg.Database.DSN); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)

	st := store.New(db.DB)
	hub := realtime.NewHub()
	mailer := services.NewMailer(cfg.SMTP, cfg.CORS.FrontendURL)

	if !mailer.Enabled() {
		logger.Warn().Msg("SMTP not configured, outgoing email disabled")
	}

	r := router.NewRouter(cfg, st, hub, mailer)

	logger.Infof("Listening on port %s", cfg.Server.Port)

	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
