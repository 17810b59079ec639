package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/go-todo-auth/docs" // Swagger docs (generated)
	"github.com/redmonkez12/go-todo-auth/internal/auth"
	"github.com/redmonkez12/go-todo-auth/internal/config"
	"github.com/redmonkez12/go-todo-auth/internal/database"
	httpServer "github.com/redmonkez12/go-todo-auth/internal/http"
	"github.com/redmonkez12/go-todo-auth/internal/logging"
	"github.com/redmonkez12/go-todo-auth/internal/todo"
)

// @title           Todos Service
// @version         1.0
// @description     Ownership-scoped todo lists behind bearer token verification.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:5001
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token issued by the identity service.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load(config.ServiceTodos)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment()).With("service", cfg.Service)
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_format", cfg.Auth.TokenFormat,
		"cache", cfg.Redis.Enabled(),
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

	var listCache todo.ListCache = todo.NopListCache{}
	if cfg.Redis.Enabled() {
		redisClient := initRedis(ctx, cfg.Redis, logger)
		defer redisClient.Close()
		listCache = todo.NewRedisListCache(redisClient, cfg.Redis.CacheTTL)
	}

	tokenService, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	todoService := todo.NewService(todo.NewRepository(db), listCache, logger, cfg.Server.OperationTimeout)
	todoHandler := todo.NewHandler(todoService)
	authMiddleware := auth.NewMiddleware(tokenService)

	router := httpServer.NewTodoRouter(cfg, todoHandler, authMiddleware, logger)
	server := httpServer.NewServer(cfg.Server, router, logger)

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// initRedis returns a client even when the first ping fails. The list cache
// is best-effort, so an unreachable Redis only costs cache hits.
func initRedis(ctx context.Context, cfg config.RedisConfig, logger *logging.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, todo lists will be read from the database", "addr", cfg.Address(), "error", err)
	}

	return client
}
