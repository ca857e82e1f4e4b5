package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/shelfsync/shelfsync/models"
)

const (
	createAccount = `INSERT INTO accounts (login, secret, record_name)
		VALUES ($1, $2, $3)
		RETURNING account_id, login, secret, record_name, created_at;`

	findAccountByLogin = `SELECT account_id, login, secret, record_name, created_at
		FROM accounts
		WHERE login = $1;`

	getAccountByID = `SELECT account_id, login, secret, record_name, created_at
		FROM accounts
		WHERE account_id = $1;`

	ensureZone = `INSERT INTO zones (account_id, name)
		VALUES ($1, $2)
		ON CONFLICT (account_id, name) DO NOTHING;`

	findZone = `SELECT zone_id, gc_floor FROM zones
		WHERE account_id = $1 AND name = $2;`

	ensureSubscription = `INSERT INTO subscriptions (zone_id, device_id)
		VALUES ($1, $2)
		ON CONFLICT (zone_id, device_id) DO NOTHING;`

	findRecordForUpdate = `SELECT revision, deleted FROM records
		WHERE zone_id = $1 AND type = $2 AND name = $3
		FOR UPDATE;`

	upsertRecord = `INSERT INTO records (
			zone_id,
			type,
			name,
			schema_version,
			fields,
			revision,
			deleted,
			seq,
			last_device,
			modified_at
		) VALUES ($1, $2, $3, $4, $5, $6, false, nextval('record_seq'), $7, NOW())
		ON CONFLICT (zone_id, type, name) DO UPDATE SET
			schema_version = excluded.schema_version,
			fields         = excluded.fields,
			revision       = excluded.revision,
			deleted        = false,
			seq            = excluded.seq,
			last_device    = excluded.last_device,
			modified_at    = NOW()
		RETURNING revision, modified_at;`

	maxSeqForType = `SELECT COALESCE(MAX(seq), 0) FROM records
		WHERE zone_id = $1 AND type = $2;`

	tombstoneRecord = `UPDATE records SET
			deleted     = true,
			fields      = '{}'::jsonb,
			revision    = revision + 1,
			seq         = nextval('record_seq'),
			last_device = $4,
			modified_at = NOW()
		WHERE zone_id = $1 AND type = $2 AND name = $3;`
)

// postgresBuilder produces $N placeholder queries for the server store.
var postgresBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// buildFetchRecordsQuery selects the live revision of the named records in
// one zone.
func buildFetchRecordsQuery(zoneID int64, entityType models.EntityType, names []string) (string, []any, error) {
	return postgresBuilder.
		Select("name", "schema_version", "fields", "revision", "modified_at").
		From("records").
		Where(sq.Eq{
			"zone_id": zoneID,
			"type":    string(entityType),
			"name":    names,
			"deleted": false,
		}).
		ToSql()
}

// buildFetchChangesQuery reads one page of the change feed: records of one
// type past the cursor, oldest first. Changes written by excludeDevice are
// skipped so a device does not download its own pushes.
func buildFetchChangesQuery(zoneID int64, entityType models.EntityType, cursor int64, excludeDevice string, limit int) (string, []any, error) {
	b := postgresBuilder.
		Select("name", "schema_version", "fields", "revision", "deleted", "seq", "modified_at").
		From("records").
		Where(sq.Eq{"zone_id": zoneID, "type": string(entityType)}).
		Where(sq.Gt{"seq": cursor}).
		OrderBy("seq ASC")
	if excludeDevice != "" {
		b = b.Where(sq.NotEq{"last_device": excludeDevice})
	}
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	return b.ToSql()
}
