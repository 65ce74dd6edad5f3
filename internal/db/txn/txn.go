// Package txn runs generated queries inside a pgx transaction.
package txn

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	dbgen "github.com/noah-isme/backend-storefront/internal/db/gen"
)

// Beginner starts transactions. *pgxpool.Pool satisfies it.
type Beginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Run executes fn with queries bound to a new transaction and commits when fn
// returns nil. Any error rolls the transaction back.
func Run(ctx context.Context, db Beginner, opts pgx.TxOptions, fn func(q *dbgen.Queries) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(dbgen.New(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
