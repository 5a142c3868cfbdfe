package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/equipstore/backend/internal/config"
	"github.com/equipstore/backend/internal/database"
	"github.com/equipstore/backend/internal/logger"
	"github.com/equipstore/backend/internal/server"
	"github.com/equipstore/backend/internal/services"
	"github.com/equipstore/backend/internal/version"
)

func main() {
	cfg, err := config.Load(os.Getenv("STORE_CONFIG_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	out := logger.RotatingOutput(cfg.Logging.Dir, "store.log")
	log.SetOutput(out)
	logger.Init(cfg.Logging.Debug, out)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	// Handle CLI commands
	if len(os.Args) > 1 && os.Args[1] == "reset-password" {
		if len(os.Args) != 4 {
			log.Fatalf("Usage: %s reset-password <email> <new-password>", os.Args[0])
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("migrate database: %v", err)
		}
		authService := services.NewAuthService(db, cfg.Auth)
		if err := authService.ResetPassword(context.Background(), os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("reset password: %v", err)
		}
		log.Printf("Password updated successfully for user %s", os.Args[2])
		return
	}

	logger.Log().WithField("version", version.Full()).Infof("starting %s backend", version.Name)

	srv, err := server.New(db, cfg)
	if err != nil {
		log.Fatalf("init server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
	logger.Log().Info("server stopped")
}
