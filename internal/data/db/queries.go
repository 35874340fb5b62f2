package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Queries groups the SQL statements used by the stores.
type Queries struct {
	db sqlx.ExtContext
}

// New binds a query set to a connection.
func New(db sqlx.ExtContext) *Queries {
	return &Queries{db: db}
}

// KvStore is a row of the kv_store table.
type KvStore struct {
	Key       string `db:"key"`
	Value     []byte `db:"value"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

// KVSetParams holds the values for an upsert into kv_store.
type KVSetParams struct {
	Key       string
	Value     []byte
	CreatedAt int64
	UpdatedAt int64
}

const kvGet = `SELECT key, value, created_at, updated_at FROM kv_store WHERE key = ?`

// KVGet returns the row for key or sql.ErrNoRows.
func (q *Queries) KVGet(ctx context.Context, key string) (KvStore, error) {
	var row KvStore
	err := sqlx.GetContext(ctx, q.db, &row, kvGet, key)
	return row, err
}

const kvSet = `
INSERT INTO kv_store (key, value, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE SET
    value = excluded.value,
    updated_at = excluded.updated_at`

// KVSet inserts or replaces the value for a key. created_at is preserved on
// overwrite.
func (q *Queries) KVSet(ctx context.Context, arg KVSetParams) error {
	_, err := q.db.ExecContext(ctx, kvSet, arg.Key, arg.Value, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const kvDelete = `DELETE FROM kv_store WHERE key = ?`

// KVDelete removes a key. Deleting a missing key is not an error.
func (q *Queries) KVDelete(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, kvDelete, key)
	return err
}

const kvHas = `SELECT COUNT(*) FROM kv_store WHERE key = ?`

// KVHas returns 1 when the key exists and 0 otherwise.
func (q *Queries) KVHas(ctx context.Context, key string) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, q.db, &count, kvHas, key)
	return count, err
}

const kvListKeys = `SELECT key FROM kv_store ORDER BY key`

// KVListKeys returns every key in ascending order.
func (q *Queries) KVListKeys(ctx context.Context) ([]string, error) {
	keys := []string{}
	err := sqlx.SelectContext(ctx, q.db, &keys, kvListKeys)
	return keys, err
}

const kvCount = `SELECT COUNT(*) FROM kv_store`

// KVCount returns the number of stored keys.
func (q *Queries) KVCount(ctx context.Context) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, q.db, &count, kvCount)
	return count, err
}
