package user

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	dbgen "github.com/noah-isme/backend-storefront/internal/db/gen"
	"github.com/noah-isme/backend-storefront/internal/db/txn"
)

// Queries is the subset of generated queries used by the address book,
// saved payment methods and profile reads.
type Queries interface {
	GetUserByID(ctx context.Context, id pgtype.UUID) (dbgen.User, error)

	ListAddresses(ctx context.Context, userID pgtype.UUID) ([]dbgen.Address, error)
	GetAddress(ctx context.Context, arg dbgen.GetAddressParams) (dbgen.Address, error)
	CountAddresses(ctx context.Context, userID pgtype.UUID) (int64, error)
	CreateAddress(ctx context.Context, arg dbgen.CreateAddressParams) (dbgen.Address, error)
	UpdateAddress(ctx context.Context, arg dbgen.UpdateAddressParams) (dbgen.Address, error)
	ClearDefaultAddress(ctx context.Context, userID pgtype.UUID) error
	DeleteAddress(ctx context.Context, arg dbgen.DeleteAddressParams) (bool, error)
	PromoteNewestAddress(ctx context.Context, userID pgtype.UUID) error

	ListPaymentMethods(ctx context.Context, userID pgtype.UUID) ([]dbgen.ListPaymentMethodsRow, error)
	GetPaymentMethod(ctx context.Context, arg dbgen.GetPaymentMethodParams) (dbgen.GetPaymentMethodRow, error)
	CountPaymentMethods(ctx context.Context, userID pgtype.UUID) (int64, error)
	CreatePaymentMethod(ctx context.Context, arg dbgen.CreatePaymentMethodParams) (dbgen.CreatePaymentMethodRow, error)
	ClearDefaultPaymentMethod(ctx context.Context, userID pgtype.UUID) error
	DeletePaymentMethod(ctx context.Context, arg dbgen.DeletePaymentMethodParams) (bool, error)
	PromoteNewestPaymentMethod(ctx context.Context, userID pgtype.UUID) error
}

// Store exposes queries plus transactional execution.
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

// WithinTx runs fn inside a read-committed transaction.
func (s *PGStore) WithinTx(ctx context.Context, fn func(q Queries) error) error {
	return txn.Run(ctx, s.pool, pgx.TxOptions{}, func(q *dbgen.Queries) error {
		return fn(q)
	})
}
