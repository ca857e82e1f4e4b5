// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

// Package migrations embeds the schema migrations for both stores: the
// client SQLite library database and the server PostgreSQL record store.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var embedMigrations embed.FS

// Migrate brings db up to the latest schema. The dialect picks both the
// goose dialect and the migration set: "sqlite3" for the client store,
// "pgx" (or "postgres") for the server store.
func Migrate(db *sql.DB, dialect string) error {
	if db == nil {
		return fmt.Errorf("migration error: db is nil")
	}

	dir, err := dialectDir(dialect)
	if err != nil {
		return err
	}

	goose.SetBaseFS(embedMigrations)

	if err = goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err = goose.Up(db, dir); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}

func dialectDir(dialect string) (string, error) {
	switch dialect {
	case "sqlite3", "sqlite":
		return "sqlite", nil
	case "pgx", "postgres":
		return "postgres", nil
	default:
		return "", fmt.Errorf("migration error: unknown dialect %q", dialect)
	}
}
