package store

import (
	"context"
	"fmt"

	"github.com/shelfsync/shelfsync/internal/config"
	"github.com/shelfsync/shelfsync/internal/logger"
)

// Storages groups the server-side repositories into a single value the
// handler layer is wired with.
type Storages struct {
	Accounts AccountRepository
	Records  RecordRepository

	db *DB
}

// NewStorages initialises the server storage layer: opens the PostgreSQL
// connection, runs pending schema migrations and constructs the
// repositories over the shared connection.
func NewStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectPostgres(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err := db.Migrate("pgx"); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		Accounts: NewAccountRepository(db, logger),
		Records:  NewRecordRepository(db, logger),
		db:       db,
	}, nil
}

// Close releases the underlying database connection.
func (s *Storages) Close() error {
	return s.db.Close()
}
