package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/utils"
	"github.com/shelfsync/shelfsync/models"
)

// accountRepository is the PostgreSQL-backed implementation of
// [AccountRepository]. All methods obtain a context-scoped logger via
// [logger.FromContext] for request-level tracing of database interactions.
type accountRepository struct {
	logger *logger.Logger
	db     *DB
	uuids  *utils.UUIDGenerator
}

// NewAccountRepository constructs an [AccountRepository] backed by the
// provided database connection and logger.
func NewAccountRepository(db *DB, logger *logger.Logger) AccountRepository {
	logger.Debug().Msg("creating account repository")
	return &accountRepository{
		db:     db,
		logger: logger,
		uuids:  utils.NewUUIDGenerator(),
	}
}

// CreateAccount persists a new account and returns the fully populated
// [models.Account] with server-assigned fields (ID, RecordName, CreatedAt).
// The stable record name is minted here; it is the identity the engine
// compares across sessions to detect account switches.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrLoginAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *accountRepository) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	log := logger.FromContext(ctx)

	account.RecordName = r.uuids.Generate()
	row := r.db.QueryRowContext(ctx, createAccount, account.Login, account.Secret, account.RecordName)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*accountRepository.CreateAccount").Msg("error: row is nil")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.Account{}, ErrLoginAlreadyExists
		default:
			return models.Account{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	if err := row.Scan(&account.ID, &account.Login, &account.Secret, &account.RecordName, &account.CreatedAt); err != nil {
		log.Err(err).Str("func", "*accountRepository.CreateAccount").Msg("error: scanning error")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.Account{}, ErrLoginAlreadyExists
		}
		return models.Account{}, err
	}

	return account, nil
}

// FindAccountByLogin retrieves the account whose Login matches login.
// A missing row maps to [ErrNoAccountFound].
func (r *accountRepository) FindAccountByLogin(ctx context.Context, login string) (models.Account, error) {
	log := logger.FromContext(ctx)

	var account models.Account
	row := r.db.QueryRowContext(ctx, findAccountByLogin, login)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*accountRepository.FindAccountByLogin").Msg("error: row is nil")
		return models.Account{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := row.Scan(&account.ID, &account.Login, &account.Secret, &account.RecordName, &account.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, ErrNoAccountFound
		}
		log.Err(err).Str("func", "*accountRepository.FindAccountByLogin").Msg("error: scanning error")
		return models.Account{}, err
	}

	return account, nil
}

// GetAccount retrieves the account by its primary key.
func (r *accountRepository) GetAccount(ctx context.Context, accountID int64) (models.Account, error) {
	log := logger.FromContext(ctx)

	var account models.Account
	row := r.db.QueryRowContext(ctx, getAccountByID, accountID)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*accountRepository.GetAccount").Msg("error: row is nil")
		return models.Account{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := row.Scan(&account.ID, &account.Login, &account.Secret, &account.RecordName, &account.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, ErrNoAccountFound
		}
		log.Err(err).Str("func", "*accountRepository.GetAccount").Msg("error: scanning error")
		return models.Account{}, err
	}

	return account, nil
}
