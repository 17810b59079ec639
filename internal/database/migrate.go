package database

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/redmonkez12/go-todo-auth/internal/config"
	"github.com/redmonkez12/go-todo-auth/internal/logging"
)

//go:embed migrations
var embedMigrations embed.FS

// goose keeps its settings in package globals.
var gooseMu sync.Mutex

// Migrate applies the schema owned by service. Each service tracks its own
// goose version table so both schemas may share one database in local runs.
func Migrate(ctx context.Context, db *bun.DB, service config.Service, logger *logging.Logger) error {
	return withGoose(db, service, logger, func(dir string) error {
		if err := goose.UpContext(ctx, db.DB, dir); err != nil {
			return fmt.Errorf("goose up failed: %w", err)
		}
		return nil
	})
}

// MigrationStatus logs the applied/pending state of every migration.
func MigrationStatus(ctx context.Context, db *bun.DB, service config.Service, logger *logging.Logger) error {
	return withGoose(db, service, logger, func(dir string) error {
		if err := goose.StatusContext(ctx, db.DB, dir); err != nil {
			return fmt.Errorf("goose status failed: %w", err)
		}
		return nil
	})
}

func withGoose(db *bun.DB, service config.Service, logger *logging.Logger, fn func(dir string) error) error {
	gooseDialect, dir, err := migrationSource(db, service)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetTableName(fmt.Sprintf("goose_%s_version", service))
	if logger != nil {
		goose.SetLogger(gooseLogger{logger: logger})
	} else {
		goose.SetLogger(goose.NopLogger())
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return fn(dir)
}

func migrationSource(db *bun.DB, service config.Service) (string, string, error) {
	var gooseDialect, folder string
	switch db.Dialect().Name() {
	case dialect.PG:
		gooseDialect, folder = "postgres", "postgres"
	case dialect.SQLite:
		gooseDialect, folder = "sqlite3", "sqlite"
	default:
		return "", "", fmt.Errorf("no migrations for dialect %s", db.Dialect().Name())
	}

	switch service {
	case config.ServiceIdentity, config.ServiceTodos:
	default:
		return "", "", fmt.Errorf("unknown service %q", service)
	}

	return gooseDialect, path.Join("migrations", folder, string(service)), nil
}

// gooseLogger routes goose output through the structured logger.
type gooseLogger struct {
	logger *logging.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
	os.Exit(1)
}
