package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/models"
)

type localShelfRepository struct {
	*DB
	logger *logger.Logger
}

// NewLocalShelfRepository constructs the SQLite-backed [ShelfRepository].
func NewLocalShelfRepository(db *DB, logger *logger.Logger) ShelfRepository {
	return &localShelfRepository{
		DB:     db,
		logger: logger,
	}
}

func (l *localShelfRepository) Save(ctx context.Context, shelf models.Shelf, changedFields []string) (models.Shelf, error) {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()
	if shelf.CreatedAt.IsZero() {
		shelf.CreatedAt = now
	}
	shelf.UpdatedAt = now

	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Shelf{}, fmt.Errorf("begin save shelf transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM shelves WHERE id = $1)`, shelf.ID).Scan(&exists)
	if err != nil {
		log.Err(err).
			Str("func", "localShelfRepository.Save").
			Str("shelf_id", shelf.ID).
			Msg("failed to check shelf existence")
		return models.Shelf{}, fmt.Errorf("failed to check shelf existence (id=%s): %w", shelf.ID, err)
	}

	if err = execUpsertShelf(ctx, tx, shelf); err != nil {
		log.Err(err).
			Str("func", "localShelfRepository.Save").
			Str("shelf_id", shelf.ID).
			Msg("failed to execute upsert for shelf")
		return models.Shelf{}, fmt.Errorf("failed to save shelf (id=%s): %w", shelf.ID, err)
	}

	kind := models.TxInsert
	if exists {
		kind = models.TxUpdate
	}
	if err = appendTransactionTx(ctx, tx, models.EntityShelves, shelf.ID, kind, changedFields, now); err != nil {
		log.Err(err).
			Str("func", "localShelfRepository.Save").
			Str("shelf_id", shelf.ID).
			Msg("failed to append transaction for shelf save")
		return models.Shelf{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Shelf{}, fmt.Errorf("commit save shelf transaction: %w", err)
	}

	return shelf, nil
}

func (l *localShelfRepository) Get(ctx context.Context, id string) (models.Shelf, error) {
	log := logger.FromContext(ctx)

	shelf, err := scanShelf(l.DB.QueryRowContext(ctx, getSingleShelf, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Shelf{}, ErrShelfNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "localShelfRepository.Get").
			Str("shelf_id", id).
			Msg("failed to scan shelf row")
		return models.Shelf{}, fmt.Errorf("failed to get shelf (id=%s): %w", id, err)
	}

	return shelf, nil
}

func (l *localShelfRepository) GetByRemoteName(ctx context.Context, remoteName string) (models.Shelf, error) {
	log := logger.FromContext(ctx)

	shelf, err := scanShelf(l.DB.QueryRowContext(ctx, getShelfByRemoteName, remoteName))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Shelf{}, ErrShelfNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "localShelfRepository.GetByRemoteName").
			Str("remote_name", remoteName).
			Msg("failed to scan shelf row")
		return models.Shelf{}, fmt.Errorf("failed to get shelf (remote_name=%s): %w", remoteName, err)
	}

	return shelf, nil
}

func (l *localShelfRepository) GetAll(ctx context.Context) ([]models.Shelf, error) {
	log := logger.FromContext(ctx)

	rows, err := l.DB.QueryContext(ctx, getAllShelves)
	if err != nil {
		log.Err(err).
			Str("func", "localShelfRepository.GetAll").
			Msg("failed to execute query for getting all shelves")
		return nil, fmt.Errorf("failed to query all shelves: %w", err)
	}
	defer rows.Close()

	var shelves []models.Shelf
	for rows.Next() {
		shelf, scanErr := scanShelf(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "localShelfRepository.GetAll").
				Msg("failed to scan shelf row")
			return nil, fmt.Errorf("failed to scan shelf row: %w", scanErr)
		}
		shelves = append(shelves, shelf)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "localShelfRepository.GetAll").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating shelf rows: %w", rowsErr)
	}

	return shelves, nil
}

func (l *localShelfRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete shelf transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, softDeleteShelf, now, id)
	if err != nil {
		log.Err(err).
			Str("func", "localShelfRepository.Delete").
			Str("shelf_id", id).
			Msg("failed to execute soft delete for shelf")
		return fmt.Errorf("failed to delete shelf (id=%s): %w", id, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrShelfNotFound
	}

	if err = appendTransactionTx(ctx, tx, models.EntityShelves, id, models.TxDelete, nil, now); err != nil {
		log.Err(err).
			Str("func", "localShelfRepository.Delete").
			Str("shelf_id", id).
			Msg("failed to append transaction for shelf delete")
		return err
	}

	return tx.Commit()
}

func (l *localShelfRepository) ApplyRemote(ctx context.Context, shelf models.Shelf) error {
	log := logger.FromContext(ctx)

	if err := execUpsertShelf(ctx, l.DB, shelf); err != nil {
		log.Err(err).
			Str("func", "localShelfRepository.ApplyRemote").
			Str("shelf_id", shelf.ID).
			Msg("failed to apply remote shelf")
		return fmt.Errorf("failed to apply remote shelf (id=%s): %w", shelf.ID, err)
	}

	return nil
}

func (l *localShelfRepository) SetSystemFields(ctx context.Context, id, remoteName string, systemFields []byte) error {
	log := logger.FromContext(ctx)

	_, err := l.DB.ExecContext(ctx, setShelfSystemFields, nullString(remoteName), nullBytes(systemFields), id)
	if err != nil {
		log.Err(err).
			Str("func", "localShelfRepository.SetSystemFields").
			Str("shelf_id", id).
			Msg("failed to store system fields for shelf")
		return fmt.Errorf("failed to store system fields (id=%s): %w", id, err)
	}

	return nil
}

func (l *localShelfRepository) RemoveLocal(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	if _, err := l.DB.ExecContext(ctx, removeShelf, id); err != nil {
		log.Err(err).
			Str("func", "localShelfRepository.RemoveLocal").
			Str("shelf_id", id).
			Msg("failed to remove shelf row")
		return fmt.Errorf("failed to remove shelf (id=%s): %w", id, err)
	}

	return nil
}

func (l *localShelfRepository) Counts(ctx context.Context) (total, uploaded int, err error) {
	log := logger.FromContext(ctx)

	if err = l.DB.QueryRowContext(ctx, countShelves).Scan(&total, &uploaded); err != nil {
		log.Err(err).
			Str("func", "localShelfRepository.Counts").
			Msg("failed to count shelves")
		return 0, 0, fmt.Errorf("failed to count shelves: %w", err)
	}

	return total, uploaded, nil
}

func execUpsertShelf(ctx context.Context, db execer, shelf models.Shelf) error {
	bookIDs, err := json.Marshal(shelf.BookIDs)
	if err != nil {
		return fmt.Errorf("encode book ids: %w", err)
	}

	_, err = db.ExecContext(ctx, upsertShelf,
		shelf.ID,
		shelf.Name,
		shelf.Sort,
		string(bookIDs),
		shelf.CreatedAt,
		shelf.UpdatedAt,
		shelf.Deleted,
		nullString(shelf.RemoteName),
		nullBytes(shelf.SystemFields),
	)
	return err
}

func scanShelf(row rowScanner) (models.Shelf, error) {
	var (
		shelf        models.Shelf
		bookIDs      string
		remoteName   sql.NullString
		systemFields []byte
	)

	err := row.Scan(
		&shelf.ID,
		&shelf.Name,
		&shelf.Sort,
		&bookIDs,
		&shelf.CreatedAt,
		&shelf.UpdatedAt,
		&shelf.Deleted,
		&remoteName,
		&systemFields,
	)
	if err != nil {
		return models.Shelf{}, err
	}

	if bookIDs != "" {
		if err = json.Unmarshal([]byte(bookIDs), &shelf.BookIDs); err != nil {
			return models.Shelf{}, fmt.Errorf("decode book ids: %w", err)
		}
	}
	shelf.RemoteName = remoteName.String
	shelf.SystemFields = systemFields

	return shelf, nil
}
