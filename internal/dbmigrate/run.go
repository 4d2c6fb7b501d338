package dbmigrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var allowedCommands = map[string]bool{
	"up":     true,
	"down":   true,
	"status": true,
}

// Run applies the given goose command against the database. Only the
// commands the migrate CLI exposes are accepted; anything else is
// rejected before a connection is opened.
func Run(ctx context.Context, command, dbURL, migrationsDir string) error {
	if !allowedCommands[command] {
		return fmt.Errorf("unsupported migration command %q", command)
	}
	if dbURL == "" {
		return fmt.Errorf("database URL is empty")
	}
	if migrationsDir == "" {
		migrationsDir = DefaultMigrationsDir
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, migrationsDir); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}
