package order

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	dbgen "github.com/noah-isme/backend-storefront/internal/db/gen"
	"github.com/noah-isme/backend-storefront/internal/db/txn"
)

// Queries lists the generated queries order placement and lifecycle rely on.
type Queries interface {
	GetCartByUser(ctx context.Context, userID pgtype.UUID) (dbgen.Cart, error)
	ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]dbgen.CartItem, error)
	ClearCart(ctx context.Context, cartID pgtype.UUID) error

	LockProductsForUpdate(ctx context.Context, ids []pgtype.UUID) ([]dbgen.Product, error)
	ListDealsByProduct(ctx context.Context, productID pgtype.UUID) ([]dbgen.Deal, error)
	DecrementStock(ctx context.Context, arg dbgen.DecrementStockParams) (int64, error)
	RestoreStock(ctx context.Context, arg dbgen.RestoreStockParams) error

	GetAddress(ctx context.Context, arg dbgen.GetAddressParams) (dbgen.Address, error)
	GetPaymentMethod(ctx context.Context, arg dbgen.GetPaymentMethodParams) (dbgen.GetPaymentMethodRow, error)

	CreateOrder(ctx context.Context, arg dbgen.CreateOrderParams) (dbgen.Order, error)
	CreateOrderItem(ctx context.Context, arg dbgen.CreateOrderItemParams) (dbgen.OrderItem, error)
	GetOrderForUser(ctx context.Context, arg dbgen.GetOrderForUserParams) (dbgen.Order, error)
	GetOrderForUpdate(ctx context.Context, id pgtype.UUID) (dbgen.Order, error)
	ListOrdersByUser(ctx context.Context, arg dbgen.ListOrdersByUserParams) ([]dbgen.Order, error)
	CountOrdersByUser(ctx context.Context, userID pgtype.UUID) (int64, error)
	ListOrderItems(ctx context.Context, orderID pgtype.UUID) ([]dbgen.OrderItem, error)
	TransitionOrderStatus(ctx context.Context, arg dbgen.TransitionOrderStatusParams) (int64, error)
	ExpirePendingPayments(ctx context.Context, orderID pgtype.UUID) error
}

// Store exposes order queries plus transactional execution.
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

// WithinTx runs fn inside a read-committed transaction. Row locks taken by
// LockProductsForUpdate and GetOrderForUpdate are held until fn returns.
func (s *PGStore) WithinTx(ctx context.Context, fn func(q Queries) error) error {
	return txn.Run(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(q *dbgen.Queries) error {
		return fn(q)
	})
}
