package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/utils"
	"github.com/shelfsync/shelfsync/models"
)

// sync_state keys. Change tokens are keyed per entity type under a common
// prefix so DropChangeTokens can remove them all with one statement.
const (
	stateKeyTokenPrefix   = "change_token:"
	stateKeyConfirmedTxID = "confirmed_transaction_id"
	stateKeyDisabled      = "disabled_reason"
	stateKeyAccount       = "account_record_name"
	stateKeyDeviceID      = "device_id"
)

type localSyncStateRepository struct {
	*DB
	logger *logger.Logger
	uuids  *utils.UUIDGenerator
}

// NewLocalSyncStateRepository constructs the SQLite-backed
// [SyncStateRepository].
func NewLocalSyncStateRepository(db *DB, logger *logger.Logger) SyncStateRepository {
	return &localSyncStateRepository{
		DB:     db,
		logger: logger,
		uuids:  utils.NewUUIDGenerator(),
	}
}

func (l *localSyncStateRepository) GetChangeToken(ctx context.Context, entityType models.EntityType) (models.ChangeToken, error) {
	value, err := l.getValue(ctx, stateKeyTokenPrefix+string(entityType))
	if err != nil {
		return "", err
	}
	return models.ChangeToken(value), nil
}

func (l *localSyncStateRepository) SetChangeToken(ctx context.Context, entityType models.EntityType, token models.ChangeToken) error {
	return l.setValue(ctx, stateKeyTokenPrefix+string(entityType), string(token))
}

func (l *localSyncStateRepository) DropChangeTokens(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if _, err := l.DB.ExecContext(ctx, deleteSyncStateKeysLike, stateKeyTokenPrefix+"%"); err != nil {
		log.Err(err).
			Str("func", "localSyncStateRepository.DropChangeTokens").
			Msg("failed to drop change tokens")
		return fmt.Errorf("failed to drop change tokens: %w", err)
	}

	return nil
}

func (l *localSyncStateRepository) GetConfirmedTransactionID(ctx context.Context) (int64, error) {
	value, err := l.getValue(ctx, stateKeyConfirmedTxID)
	if err != nil {
		return 0, err
	}
	if value == "" {
		return 0, nil
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse confirmed transaction id: %w", err)
	}
	return id, nil
}

func (l *localSyncStateRepository) SetConfirmedTransactionID(ctx context.Context, id int64) error {
	return l.setValue(ctx, stateKeyConfirmedTxID, strconv.FormatInt(id, 10))
}

func (l *localSyncStateRepository) GetDisabledReason(ctx context.Context) (models.DisabledReason, error) {
	value, err := l.getValue(ctx, stateKeyDisabled)
	if err != nil {
		return models.ReasonNone, err
	}
	return models.DisabledReason(value), nil
}

func (l *localSyncStateRepository) SetDisabledReason(ctx context.Context, reason models.DisabledReason) error {
	return l.setValue(ctx, stateKeyDisabled, string(reason))
}

func (l *localSyncStateRepository) GetAccountIdentity(ctx context.Context) (models.AccountIdentity, error) {
	value, err := l.getValue(ctx, stateKeyAccount)
	if err != nil {
		return models.AccountIdentity{}, err
	}
	return models.AccountIdentity{RecordName: value}, nil
}

func (l *localSyncStateRepository) SetAccountIdentity(ctx context.Context, identity models.AccountIdentity) error {
	return l.setValue(ctx, stateKeyAccount, identity.RecordName)
}

// DeviceID returns the persisted installation identifier, minting one on
// first use.
func (l *localSyncStateRepository) DeviceID(ctx context.Context) (string, error) {
	value, err := l.getValue(ctx, stateKeyDeviceID)
	if err != nil {
		return "", err
	}
	if value != "" {
		return value, nil
	}

	value = l.uuids.Generate()
	if err = l.setValue(ctx, stateKeyDeviceID, value); err != nil {
		return "", err
	}
	return value, nil
}

// getValue returns "" for a missing key; absence of state is not an error.
func (l *localSyncStateRepository) getValue(ctx context.Context, key string) (string, error) {
	log := logger.FromContext(ctx)

	var value string
	err := l.DB.QueryRowContext(ctx, getSyncStateValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "localSyncStateRepository.getValue").
			Str("key", key).
			Msg("failed to read sync state value")
		return "", fmt.Errorf("failed to read sync state (key=%s): %w", key, err)
	}

	return value, nil
}

func (l *localSyncStateRepository) setValue(ctx context.Context, key, value string) error {
	log := logger.FromContext(ctx)

	if _, err := l.DB.ExecContext(ctx, upsertSyncStateValue, key, value); err != nil {
		log.Err(err).
			Str("func", "localSyncStateRepository.setValue").
			Str("key", key).
			Msg("failed to write sync state value")
		return fmt.Errorf("failed to write sync state (key=%s): %w", key, err)
	}

	return nil
}
