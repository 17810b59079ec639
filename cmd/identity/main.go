package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/redmonkez12/go-todo-auth/docs" // Swagger docs (generated)
	"github.com/redmonkez12/go-todo-auth/internal/auth"
	"github.com/redmonkez12/go-todo-auth/internal/config"
	"github.com/redmonkez12/go-todo-auth/internal/database"
	httpServer "github.com/redmonkez12/go-todo-auth/internal/http"
	"github.com/redmonkez12/go-todo-auth/internal/logging"
	"github.com/redmonkez12/go-todo-auth/internal/user"
)

// @title           Identity Service
// @version         1.0
// @description     Registers users and issues the tokens the todos service verifies.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:5000
// @BasePath  /

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load(config.ServiceIdentity)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment()).With("service", cfg.Service)
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_format", cfg.Auth.TokenFormat,
		"hasher", cfg.Auth.PasswordHasher,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, cfg.Service, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	tokenService, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	hasher, err := auth.NewPasswordHasher(cfg.Auth.PasswordHasher, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to initialize password hasher: %w", err)
	}

	credentials := auth.NewCredentials(user.NewRepository(db), hasher, cfg.Server.OperationTimeout)
	authHandler := auth.NewHandler(auth.NewService(credentials, tokenService))

	router := httpServer.NewIdentityRouter(cfg, authHandler, logger)
	server := httpServer.NewServer(cfg.Server, router, logger)

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
