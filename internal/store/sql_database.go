package store

import (
	"database/sql"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/migrations"
)

type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// ErrorClassificator decides whether a failed database operation is worth
// retrying. The client SQLite store uses the nil classificator (nothing is
// retried); the server wires [PostgresErrorClassifier].
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// Migrate applies the embedded migrations for the given goose dialect
// ("sqlite3" for the client store, "pgx" for the server store).
func (db *DB) Migrate(dialect string) error {
	return migrations.Migrate(db.DB, dialect)
}
