package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/models"
)

// ErrTransactionNotFound is returned when a change-log entry does not
// exist, typically because the log was cleared by a reset.
var ErrTransactionNotFound = errors.New("transaction not found")

type localTransactionLogRepository struct {
	*DB
	logger *logger.Logger
}

// NewLocalTransactionLogRepository constructs the SQLite-backed
// [TransactionLogRepository].
func NewLocalTransactionLogRepository(db *DB, logger *logger.Logger) TransactionLogRepository {
	return &localTransactionLogRepository{
		DB:     db,
		logger: logger,
	}
}

func (l *localTransactionLogRepository) ListAfter(ctx context.Context, afterID int64, limit int) ([]models.LocalTransaction, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListTransactionsAfter(afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("build transaction list query: %w", err)
	}

	rows, err := l.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "localTransactionLogRepository.ListAfter").
			Int64("after_id", afterID).
			Msg("failed to query transactions")
		return nil, fmt.Errorf("failed to query transactions after %d: %w", afterID, err)
	}
	defer rows.Close()

	var transactions []models.LocalTransaction
	for rows.Next() {
		transaction, scanErr := scanTransaction(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "localTransactionLogRepository.ListAfter").
				Msg("failed to scan transaction row")
			return nil, fmt.Errorf("failed to scan transaction row: %w", scanErr)
		}
		transactions = append(transactions, transaction)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "localTransactionLogRepository.ListAfter").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating transaction rows: %w", rowsErr)
	}

	return transactions, nil
}

func (l *localTransactionLogRepository) Get(ctx context.Context, id int64) (models.LocalTransaction, error) {
	log := logger.FromContext(ctx)

	transaction, err := scanTransaction(l.DB.QueryRowContext(ctx, getTransaction, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.LocalTransaction{}, ErrTransactionNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "localTransactionLogRepository.Get").
			Int64("transaction_id", id).
			Msg("failed to scan transaction row")
		return models.LocalTransaction{}, fmt.Errorf("failed to get transaction (id=%d): %w", id, err)
	}

	return transaction, nil
}

func (l *localTransactionLogRepository) Count(ctx context.Context, afterID int64) (int, error) {
	log := logger.FromContext(ctx)

	var count int
	if err := l.DB.QueryRowContext(ctx, countTransactionsAfter, afterID).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "localTransactionLogRepository.Count").
			Int64("after_id", afterID).
			Msg("failed to count transactions")
		return 0, fmt.Errorf("failed to count transactions after %d: %w", afterID, err)
	}

	return count, nil
}

func (l *localTransactionLogRepository) Clear(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if _, err := l.DB.ExecContext(ctx, clearTransactions); err != nil {
		log.Err(err).
			Str("func", "localTransactionLogRepository.Clear").
			Msg("failed to clear transaction log")
		return fmt.Errorf("failed to clear transaction log: %w", err)
	}

	return nil
}

func scanTransaction(row rowScanner) (models.LocalTransaction, error) {
	var (
		transaction   models.LocalTransaction
		entityType    string
		kind          string
		changedFields string
	)

	err := row.Scan(
		&transaction.ID,
		&entityType,
		&transaction.EntityID,
		&kind,
		&changedFields,
		&transaction.Timestamp,
	)
	if err != nil {
		return models.LocalTransaction{}, err
	}

	transaction.EntityType = models.EntityType(entityType)
	transaction.Kind = models.TransactionKind(kind)
	if changedFields != "" && changedFields != "null" {
		if err = json.Unmarshal([]byte(changedFields), &transaction.ChangedFields); err != nil {
			return models.LocalTransaction{}, fmt.Errorf("decode changed fields: %w", err)
		}
	}

	return transaction, nil
}
