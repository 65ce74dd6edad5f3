package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"

	"github.com/noah-isme/backend-storefront/internal/common"
	dbgen "github.com/noah-isme/backend-storefront/internal/db/gen"
	"github.com/noah-isme/backend-storefront/internal/db/pgconv"
)

var (
	// ErrItemNotFound indicates the product is not in the buyer's cart.
	ErrItemNotFound = common.NotFound("item not in cart")
	// ErrProductNotFound indicates the referenced product does not exist.
	ErrProductNotFound = common.NotFound("product not found")
	// ErrInvalidQuantity is returned for non-positive quantities.
	ErrInvalidQuantity = common.Validation(nil, map[string]string{"quantity": "gt=0"})
)

// Queries is the subset of generated queries the cart relies on.
type Queries interface {
	GetCartByUser(ctx context.Context, userID pgtype.UUID) (dbgen.Cart, error)
	UpsertCart(ctx context.Context, arg dbgen.UpsertCartParams) (dbgen.Cart, error)
	ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]dbgen.CartItem, error)
	AddCartItem(ctx context.Context, arg dbgen.AddCartItemParams) (dbgen.CartItem, error)
	UpdateCartItemQty(ctx context.Context, arg dbgen.UpdateCartItemQtyParams) (int64, error)
	DeleteCartItem(ctx context.Context, arg dbgen.DeleteCartItemParams) (int64, error)
	ClearCart(ctx context.Context, cartID pgtype.UUID) error
	GetProductByID(ctx context.Context, id pgtype.UUID) (dbgen.Product, error)
}

// Cart is a buyer's cart with its lines in insertion order.
type Cart struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	Lines     []Line    `json:"lines"`
}

// Line is one product entry in a cart.
type Line struct {
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// ItemCount sums the quantities of all lines.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Service encapsulates cart domain operations.
type Service struct {
	Q   Queries
	TTL time.Duration
	Now func() time.Time
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 30 * 24 * time.Hour
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Expired reports whether a stored cart has passed its expiry at now.
func Expired(c dbgen.Cart, now time.Time) bool {
	return c.ExpiresAt.Valid && c.ExpiresAt.Time.Before(now)
}

// CartWithLines returns the buyer's cart or nil when the buyer has none or it expired.
func (s *Service) CartWithLines(ctx context.Context, buyerID string) (*Cart, error) {
	if s == nil || s.Q == nil {
		return nil, errors.New("cart service not configured")
	}
	ctx, span := otel.Tracer("cart.Service").Start(ctx, "CartWithLines")
	defer span.End()

	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return nil, fmt.Errorf("parse buyer id: %w", err)
	}
	row, err := s.Q.GetCartByUser(ctx, uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if Expired(row, s.now()) {
		return nil, nil
	}
	items, err := s.Q.ListCartItems(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	return toCart(row, items), nil
}

// AddItem adds qty units of a product, creating the cart when needed.
func (s *Service) AddItem(ctx context.Context, buyerID, productID string, qty int) (*Cart, error) {
	if s == nil || s.Q == nil {
		return nil, errors.New("cart service not configured")
	}
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return nil, fmt.Errorf("parse buyer id: %w", err)
	}
	pid, err := pgconv.ToUUID(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}
	if _, err := s.Q.GetProductByID(ctx, pid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	row, err := s.touch(ctx, uid)
	if err != nil {
		return nil, err
	}
	if _, err := s.Q.AddCartItem(ctx, dbgen.AddCartItemParams{CartID: row.ID, ProductID: pid, Qty: int32(qty)}); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return s.reload(ctx, row)
}

// UpdateQty sets the quantity of a product already in the cart.
func (s *Service) UpdateQty(ctx context.Context, buyerID, productID string, qty int) (*Cart, error) {
	if s == nil || s.Q == nil {
		return nil, errors.New("cart service not configured")
	}
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	row, pid, err := s.lookup(ctx, buyerID, productID)
	if err != nil {
		return nil, err
	}
	n, err := s.Q.UpdateCartItemQty(ctx, dbgen.UpdateCartItemQtyParams{CartID: row.ID, ProductID: pid, Qty: int32(qty)})
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	if n == 0 {
		return nil, ErrItemNotFound
	}
	return s.reload(ctx, row)
}

// RemoveItem deletes a product from the cart.
func (s *Service) RemoveItem(ctx context.Context, buyerID, productID string) (*Cart, error) {
	if s == nil || s.Q == nil {
		return nil, errors.New("cart service not configured")
	}
	row, pid, err := s.lookup(ctx, buyerID, productID)
	if err != nil {
		return nil, err
	}
	n, err := s.Q.DeleteCartItem(ctx, dbgen.DeleteCartItemParams{CartID: row.ID, ProductID: pid})
	if err != nil {
		return nil, fmt.Errorf("delete cart item: %w", err)
	}
	if n == 0 {
		return nil, ErrItemNotFound
	}
	return s.reload(ctx, row)
}

// Clear empties the buyer's cart. A missing cart is not an error.
func (s *Service) Clear(ctx context.Context, buyerID string) error {
	if s == nil || s.Q == nil {
		return errors.New("cart service not configured")
	}
	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return fmt.Errorf("parse buyer id: %w", err)
	}
	row, err := s.Q.GetCartByUser(ctx, uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("get cart: %w", err)
	}
	if err := s.Q.ClearCart(ctx, row.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *Service) touch(ctx context.Context, uid pgtype.UUID) (dbgen.Cart, error) {
	row, err := s.Q.UpsertCart(ctx, dbgen.UpsertCartParams{
		UserID:    uid,
		ExpiresAt: pgconv.Timestamptz(s.now().Add(s.ttl())),
	})
	if err != nil {
		return dbgen.Cart{}, fmt.Errorf("upsert cart: %w", err)
	}
	return row, nil
}

func (s *Service) lookup(ctx context.Context, buyerID, productID string) (dbgen.Cart, pgtype.UUID, error) {
	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return dbgen.Cart{}, pgtype.UUID{}, fmt.Errorf("parse buyer id: %w", err)
	}
	pid, err := pgconv.ToUUID(productID)
	if err != nil {
		return dbgen.Cart{}, pgtype.UUID{}, ErrItemNotFound
	}
	row, err := s.Q.GetCartByUser(ctx, uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dbgen.Cart{}, pgtype.UUID{}, ErrItemNotFound
		}
		return dbgen.Cart{}, pgtype.UUID{}, fmt.Errorf("get cart: %w", err)
	}
	if Expired(row, s.now()) {
		return dbgen.Cart{}, pgtype.UUID{}, ErrItemNotFound
	}
	row, err = s.touch(ctx, uid)
	if err != nil {
		return dbgen.Cart{}, pgtype.UUID{}, err
	}
	return row, pid, nil
}

func (s *Service) reload(ctx context.Context, row dbgen.Cart) (*Cart, error) {
	items, err := s.Q.ListCartItems(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	return toCart(row, items), nil
}

func toCart(row dbgen.Cart, items []dbgen.CartItem) *Cart {
	c := &Cart{
		ID:        pgconv.UUIDString(row.ID),
		UserID:    pgconv.UUIDString(row.UserID),
		ExpiresAt: pgconv.Time(row.ExpiresAt),
		Lines:     make([]Line, 0, len(items)),
	}
	for _, it := range items {
		c.Lines = append(c.Lines, Line{
			ProductID: pgconv.UUIDString(it.ProductID),
			Quantity:  int(it.Qty),
			AddedAt:   pgconv.Time(it.CreatedAt),
		})
	}
	return c
}
