// Package sqlrepo provides a SQLite-backed sample model for the binding
// engine: an orders access object with batch and finder capabilities, and
// a TxManager over database/sql. The engine itself never depends on this
// package; it is consumed by the CLI and by integration tests.
package sqlrepo

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/repobind/repobind/pkg/errors"
	"github.com/repobind/repobind/pkg/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id INTEGER PRIMARY KEY,
	customer TEXT NOT NULL,
	total_cents INTEGER NOT NULL DEFAULT 0
);
`

// Open opens (and migrates) a SQLite database at dsn.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "failed to open database %s", dsn)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to migrate database")
	}
	return db, nil
}

type txKey struct{}

// TxManager demarcates transaction boundaries over a *sql.DB. The
// transaction travels in the context; access objects pick it up through
// conn. The callback's error is always returned unchanged so the caller
// sees the original failure after rollback.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a transaction manager over db.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx implements types.TxManager.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to begin transaction")
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger := logging.GetLogger("sqlrepo")
			logger.Error().Err(rbErr).Msg("Rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to commit transaction")
	}
	return nil
}

// querier is the subset of *sql.DB and *sql.Tx the access objects use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func conn(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}
