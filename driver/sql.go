package driver

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"duocache/cacheerr"
)

// OpenMySQL opens a *sqlx.DB against dsn using the MySQL driver, for
// callers that want a SQLDriver without managing the connection themselves.
func OpenMySQL(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "driver: open mysql")
	}
	return db, nil
}

// SQLDriver is a MySQL-backed Driver, usable as an L2 tier when a team
// already runs MySQL and doesn't want to stand up Redis just for caching.
// It keeps every entry in a single table, matching how the teacher's query
// builders (mysql.InsertFrom/SelectFrom/UpdateFrom/DeleteFrom) operate on
// one table at a time with *sqlx.DB.
type SQLDriver struct {
	db    *sqlx.DB
	table string
}

type sqlRow struct {
	Key       string       `db:"cache_key"`
	Value     []byte       `db:"cache_value"`
	ExpiresAt sql.NullTime `db:"expires_at"`
}

// NewSQLDriver wraps an already-opened *sqlx.DB. table must already exist
// with columns (cache_key VARCHAR PRIMARY KEY, cache_value BLOB, expires_at
// DATETIME NULL).
func NewSQLDriver(db *sqlx.DB, table string) *SQLDriver {
	return &SQLDriver{db: db, table: table}
}

func (d *SQLDriver) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := d.db.Rebind("SELECT cache_key, cache_value, expires_at FROM " + d.table + " WHERE cache_key = ?")

	var row sqlRow
	err := d.db.GetContext(ctx, &row, query, key)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, cacheerr.New(cacheerr.KindDriverError, key, "driver.SQLDriver.Get", err)
	}
	if row.ExpiresAt.Valid && !time.Now().Before(row.ExpiresAt.Time) {
		_, _ = d.Delete(ctx, key)
		return nil, false, nil
	}
	return row.Value, true, nil
}

func (d *SQLDriver) Pull(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok, err := d.Get(ctx, key)
	if err != nil || !ok {
		return value, ok, err
	}
	if _, err := d.Delete(ctx, key); err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (d *SQLDriver) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: time.Now().Add(ttl), Valid: true}
	}

	query := d.db.Rebind(
		"INSERT INTO " + d.table + " (cache_key, cache_value, expires_at) VALUES (?, ?, ?) " +
			"ON DUPLICATE KEY UPDATE cache_value = VALUES(cache_value), expires_at = VALUES(expires_at)",
	)
	if _, err := d.db.ExecContext(ctx, query, key, value, expiresAt); err != nil {
		return cacheerr.New(cacheerr.KindDriverError, key, "driver.SQLDriver.Set", err)
	}
	return nil
}

func (d *SQLDriver) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := d.Get(ctx, key)
	return ok, err
}

func (d *SQLDriver) Delete(ctx context.Context, key string) (bool, error) {
	query := d.db.Rebind("DELETE FROM " + d.table + " WHERE cache_key = ?")
	res, err := d.db.ExecContext(ctx, query, key)
	if err != nil {
		return false, cacheerr.New(cacheerr.KindDriverError, key, "driver.SQLDriver.Delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, cacheerr.New(cacheerr.KindDriverError, key, "driver.SQLDriver.Delete", err)
	}
	return n > 0, nil
}

func (d *SQLDriver) DeleteMany(ctx context.Context, keys []string) (bool, error) {
	if len(keys) == 0 {
		return false, nil
	}
	args := make([]any, len(keys))
	placeholders := make([]byte, 0, len(keys)*2)
	for i, k := range keys {
		args[i] = k
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}

	query := d.db.Rebind("DELETE FROM " + d.table + " WHERE cache_key IN (" + string(placeholders) + ")")
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, cacheerr.New(cacheerr.KindDriverError, "", "driver.SQLDriver.DeleteMany", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, cacheerr.New(cacheerr.KindDriverError, "", "driver.SQLDriver.DeleteMany", err)
	}
	return n > 0, nil
}

func (d *SQLDriver) Clear(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM "+d.table); err != nil {
		return cacheerr.New(cacheerr.KindDriverError, "", "driver.SQLDriver.Clear", err)
	}
	return nil
}

func (d *SQLDriver) Disconnect(_ context.Context) error {
	if err := d.db.Close(); err != nil {
		return cacheerr.New(cacheerr.KindDriverError, "", "driver.SQLDriver.Disconnect", err)
	}
	return nil
}

func (d *SQLDriver) Namespace(prefix string) Driver {
	return &namespaced{prefix: prefix, inner: d}
}
