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

type localBookRepository struct {
	*DB
	logger *logger.Logger
}

// NewLocalBookRepository constructs the SQLite-backed [BookRepository].
func NewLocalBookRepository(db *DB, logger *logger.Logger) BookRepository {
	return &localBookRepository{
		DB:     db,
		logger: logger,
	}
}

// Save upserts a book and appends the matching transaction in one database
// transaction, so the change log can never disagree with the data.
func (l *localBookRepository) Save(ctx context.Context, book models.Book, changedFields []string) (models.Book, error) {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now

	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Book{}, fmt.Errorf("begin save book transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, book.ID).Scan(&exists)
	if err != nil {
		log.Err(err).
			Str("func", "localBookRepository.Save").
			Str("book_id", book.ID).
			Msg("failed to check book existence")
		return models.Book{}, fmt.Errorf("failed to check book existence (id=%s): %w", book.ID, err)
	}

	if err = execUpsertBook(ctx, tx, book); err != nil {
		log.Err(err).
			Str("func", "localBookRepository.Save").
			Str("book_id", book.ID).
			Msg("failed to execute upsert for book")
		return models.Book{}, fmt.Errorf("failed to save book (id=%s): %w", book.ID, err)
	}

	kind := models.TxInsert
	if exists {
		kind = models.TxUpdate
	}
	if err = appendTransactionTx(ctx, tx, models.EntityBooks, book.ID, kind, changedFields, now); err != nil {
		log.Err(err).
			Str("func", "localBookRepository.Save").
			Str("book_id", book.ID).
			Msg("failed to append transaction for book save")
		return models.Book{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Book{}, fmt.Errorf("commit save book transaction: %w", err)
	}

	return book, nil
}

func (l *localBookRepository) Get(ctx context.Context, id string) (models.Book, error) {
	log := logger.FromContext(ctx)

	book, err := scanBook(l.DB.QueryRowContext(ctx, getSingleBook, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Book{}, ErrBookNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "localBookRepository.Get").
			Str("book_id", id).
			Msg("failed to scan book row")
		return models.Book{}, fmt.Errorf("failed to get book (id=%s): %w", id, err)
	}

	return book, nil
}

func (l *localBookRepository) GetByRemoteName(ctx context.Context, remoteName string) (models.Book, error) {
	log := logger.FromContext(ctx)

	book, err := scanBook(l.DB.QueryRowContext(ctx, getBookByRemoteName, remoteName))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Book{}, ErrBookNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "localBookRepository.GetByRemoteName").
			Str("remote_name", remoteName).
			Msg("failed to scan book row")
		return models.Book{}, fmt.Errorf("failed to get book (remote_name=%s): %w", remoteName, err)
	}

	return book, nil
}

func (l *localBookRepository) GetAll(ctx context.Context) ([]models.Book, error) {
	log := logger.FromContext(ctx)

	rows, err := l.DB.QueryContext(ctx, getAllBooks)
	if err != nil {
		log.Err(err).
			Str("func", "localBookRepository.GetAll").
			Msg("failed to execute query for getting all books")
		return nil, fmt.Errorf("failed to query all books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		book, scanErr := scanBook(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "localBookRepository.GetAll").
				Msg("failed to scan book row")
			return nil, fmt.Errorf("failed to scan book row: %w", scanErr)
		}
		books = append(books, book)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "localBookRepository.GetAll").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating book rows: %w", rowsErr)
	}

	return books, nil
}

// Delete soft-deletes a book and logs the deletion in the same database
// transaction. The row survives as a tombstone until the deletion upload is
// confirmed and RemoveLocal clears it.
func (l *localBookRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete book transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, softDeleteBook, now, id)
	if err != nil {
		log.Err(err).
			Str("func", "localBookRepository.Delete").
			Str("book_id", id).
			Msg("failed to execute soft delete for book")
		return fmt.Errorf("failed to delete book (id=%s): %w", id, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrBookNotFound
	}

	if err = appendTransactionTx(ctx, tx, models.EntityBooks, id, models.TxDelete, nil, now); err != nil {
		log.Err(err).
			Str("func", "localBookRepository.Delete").
			Str("book_id", id).
			Msg("failed to append transaction for book delete")
		return err
	}

	return tx.Commit()
}

// ApplyRemote writes a downloaded book without touching the transaction
// log: downstream writes must never be re-uploaded.
func (l *localBookRepository) ApplyRemote(ctx context.Context, book models.Book) error {
	log := logger.FromContext(ctx)

	if err := execUpsertBook(ctx, l.DB, book); err != nil {
		log.Err(err).
			Str("func", "localBookRepository.ApplyRemote").
			Str("book_id", book.ID).
			Msg("failed to apply remote book")
		return fmt.Errorf("failed to apply remote book (id=%s): %w", book.ID, err)
	}

	return nil
}

func (l *localBookRepository) SetSystemFields(ctx context.Context, id, remoteName string, systemFields []byte) error {
	log := logger.FromContext(ctx)

	_, err := l.DB.ExecContext(ctx, setBookSystemFields, nullString(remoteName), nullBytes(systemFields), id)
	if err != nil {
		log.Err(err).
			Str("func", "localBookRepository.SetSystemFields").
			Str("book_id", id).
			Msg("failed to store system fields for book")
		return fmt.Errorf("failed to store system fields (id=%s): %w", id, err)
	}

	return nil
}

func (l *localBookRepository) RemoveLocal(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	if _, err := l.DB.ExecContext(ctx, removeBook, id); err != nil {
		log.Err(err).
			Str("func", "localBookRepository.RemoveLocal").
			Str("book_id", id).
			Msg("failed to remove book row")
		return fmt.Errorf("failed to remove book (id=%s): %w", id, err)
	}

	return nil
}

func (l *localBookRepository) Counts(ctx context.Context) (total, uploaded int, err error) {
	log := logger.FromContext(ctx)

	if err = l.DB.QueryRowContext(ctx, countBooks).Scan(&total, &uploaded); err != nil {
		log.Err(err).
			Str("func", "localBookRepository.Counts").
			Msg("failed to count books")
		return 0, 0, fmt.Errorf("failed to count books: %w", err)
	}

	return total, uploaded, nil
}

// execer covers both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execUpsertBook(ctx context.Context, db execer, book models.Book) error {
	authors, err := json.Marshal(book.Authors)
	if err != nil {
		return fmt.Errorf("encode authors: %w", err)
	}

	_, err = db.ExecContext(ctx, upsertBook,
		book.ID,
		book.Title,
		string(authors),
		book.Description,
		book.ISBN,
		book.PageCount,
		book.CurrentPage,
		book.Rating,
		book.Notes,
		string(book.ReadState),
		book.Sort,
		book.CoverURL,
		nullTime(book.StartedReading),
		nullTime(book.FinishedReading),
		book.CreatedAt,
		book.UpdatedAt,
		book.Deleted,
		nullString(book.RemoteName),
		nullBytes(book.SystemFields),
	)
	return err
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (models.Book, error) {
	var (
		book         models.Book
		authors      string
		readState    string
		started      sql.NullTime
		finished     sql.NullTime
		remoteName   sql.NullString
		systemFields []byte
	)

	err := row.Scan(
		&book.ID,
		&book.Title,
		&authors,
		&book.Description,
		&book.ISBN,
		&book.PageCount,
		&book.CurrentPage,
		&book.Rating,
		&book.Notes,
		&readState,
		&book.Sort,
		&book.CoverURL,
		&started,
		&finished,
		&book.CreatedAt,
		&book.UpdatedAt,
		&book.Deleted,
		&remoteName,
		&systemFields,
	)
	if err != nil {
		return models.Book{}, err
	}

	if authors != "" {
		if err = json.Unmarshal([]byte(authors), &book.Authors); err != nil {
			return models.Book{}, fmt.Errorf("decode authors: %w", err)
		}
	}
	book.ReadState = models.ReadState(readState)
	if started.Valid {
		t := started.Time
		book.StartedReading = &t
	}
	if finished.Valid {
		t := finished.Time
		book.FinishedReading = &t
	}
	book.RemoteName = remoteName.String
	book.SystemFields = systemFields

	return book, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullBytes maps an empty blob to NULL so COUNT(system_fields) only counts
// confirmed uploads.
func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

// appendTransactionTx writes one change-log entry inside the caller's
// transaction.
func appendTransactionTx(ctx context.Context, tx execer, entityType models.EntityType, entityID string, kind models.TransactionKind, changedFields []string, at time.Time) error {
	fields, err := json.Marshal(changedFields)
	if err != nil {
		return fmt.Errorf("encode changed fields: %w", err)
	}

	if _, err = tx.ExecContext(ctx, appendTransaction, string(entityType), entityID, string(kind), string(fields), at); err != nil {
		return fmt.Errorf("failed to append transaction (%s %s): %w", kind, entityID, err)
	}

	return nil
}
