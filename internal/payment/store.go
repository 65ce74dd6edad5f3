package payment

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	dbgen "github.com/noah-isme/backend-storefront/internal/db/gen"
	"github.com/noah-isme/backend-storefront/internal/db/txn"
)

// Queries lists the generated queries payment processing relies on.
type Queries interface {
	GetOrderForUser(ctx context.Context, arg dbgen.GetOrderForUserParams) (dbgen.Order, error)
	GetOrderForUpdate(ctx context.Context, id pgtype.UUID) (dbgen.Order, error)
	TransitionOrderStatus(ctx context.Context, arg dbgen.TransitionOrderStatusParams) (int64, error)

	GetLivePaymentForOrder(ctx context.Context, orderID pgtype.UUID) (dbgen.Payment, error)
	CountPaymentsForOrder(ctx context.Context, orderID pgtype.UUID) (int64, error)
	CreatePayment(ctx context.Context, arg dbgen.CreatePaymentParams) (dbgen.Payment, error)
	GetPaymentByProviderRef(ctx context.Context, arg dbgen.GetPaymentByProviderRefParams) (dbgen.Payment, error)
	UpdatePaymentStatus(ctx context.Context, arg dbgen.UpdatePaymentStatusParams) error
}

// Store exposes payment queries plus transactional execution.
type Store interface {
	Queries
	WithinTx(ctx context.Context, fn func(q Queries) error) error
}

// PGStore backs Store with a pgx pool.
type PGStore struct {
	*dbgen.Queries
	pool *pgxpool.Pool
}

// NewPGStore wraps pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{Queries: dbgen.New(pool), pool: pool}
}

// WithinTx runs fn inside a transaction.
func (s *PGStore) WithinTx(ctx context.Context, fn func(q Queries) error) error {
	return txn.Run(ctx, s.pool, pgx.TxOptions{}, func(q *dbgen.Queries) error {
		return fn(q)
	})
}
