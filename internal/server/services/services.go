// Package services contains the server-side business logic behind the
// identity and dream endpoints. Services take a *sql.DB plus a
// RepositoryManager; a nil db means the manager is in-memory and runs
// without transactions.
package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/dreamteller/internal/dbx"
)

func runInTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, db, nil, fn)
}

// handle returns the DBTX repositories outside a transaction are bound to.
func handle(db *sql.DB) dbx.DBTX {
	if db == nil {
		return nil
	}
	return db
}
