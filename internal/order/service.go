package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-storefront/internal/cart"
	"github.com/noah-isme/backend-storefront/internal/catalog"
	"github.com/noah-isme/backend-storefront/internal/common"
	dbgen "github.com/noah-isme/backend-storefront/internal/db/gen"
	"github.com/noah-isme/backend-storefront/internal/db/pgconv"
	"github.com/noah-isme/backend-storefront/internal/lock"
	"github.com/noah-isme/backend-storefront/internal/obs"
	"github.com/noah-isme/backend-storefront/internal/pricing"
)

var (
	ErrUnauthorized          = common.Unauthorized("")
	ErrEmptyCart             = common.BadRequest("EMPTY_CART", "cart is empty")
	ErrOrderNotFound         = common.NotFound("order not found")
	ErrAddressNotFound       = common.Validation(nil, map[string]string{"shippingAddressId": "exists"})
	ErrPaymentMethodNotFound = common.Validation(nil, map[string]string{"paymentMethodId": "exists"})
	ErrInvalidState          = common.Conflict("INVALID_STATE", "only pending orders can be canceled")
	ErrOrderInProgress       = common.Conflict("ORDER_IN_PROGRESS", "another order is being placed")
)

// Locker serialises order placement per buyer.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// CacheInvalidator drops cached product snapshots after stock changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, productIDs ...string) error
}

// TaskEnqueuer schedules background tasks. *asynq.Client satisfies it.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// CreateInput is the payload for placing an order from the buyer's cart.
type CreateInput struct {
	ShippingAddressID string `json:"shippingAddressId" validate:"required,uuid"`
	PaymentMethodID   string `json:"paymentMethodId" validate:"omitempty,uuid"`
}

// Order is the buyer-facing projection of a stored order.
type Order struct {
	ID                string          `json:"id"`
	Status            string          `json:"status"`
	Currency          string          `json:"currency"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	TaxAmount         decimal.Decimal `json:"taxAmount"`
	ShippingCost      decimal.Decimal `json:"shippingCost"`
	DiscountAmount    decimal.Decimal `json:"discountAmount"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	ShippingAddressID *string         `json:"shippingAddressId"`
	PaymentMethodID   *string         `json:"paymentMethodId"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	Items             []Item          `json:"items,omitempty"`
}

// Item is one priced line frozen at order time.
type Item struct {
	ProductID     string          `json:"productId"`
	DealID        *string         `json:"dealId"`
	Position      int             `json:"position"`
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
}

// ListResult is a page of the buyer's orders.
type ListResult struct {
	Items []Order
	Total int64
}

// Service places orders from carts and manages their pending lifecycle.
type Service struct {
	Store      Store
	Locker     Locker
	LockTTL    time.Duration
	Catalog    CacheInvalidator
	Tasks      TaskEnqueuer
	Pricing    pricing.Config
	Currency   string
	PaymentTTL time.Duration
	Now        func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) currency() string {
	if s.Currency == "" {
		return "USD"
	}
	return s.Currency
}

func (s *Service) paymentTTL() time.Duration {
	if s.PaymentTTL <= 0 {
		return 30 * time.Minute
	}
	return s.PaymentTTL
}

// Create turns the buyer's cart into a PENDING_PAYMENT order.
//
// The cart and products are re-read inside one transaction with the product rows
// locked, every line is stock checked before anything is written and all shortfalls
// are reported together as *pricing.StockShortageError. Totals are priced the same
// way the checkout summary prices them.
func (s *Service) Create(ctx context.Context, buyerID string, in CreateInput) (Order, error) {
	ctx, span := otel.Tracer("order.Service").Start(ctx, "Create")
	defer span.End()

	out, err := s.create(ctx, buyerID, in)
	result := createResult(err)
	if result == "error" {
		span.RecordError(err)
	}
	span.SetAttributes(attribute.String("order.result", result))
	obs.Observe(obs.OrderCreateTotal, result)
	return out, err
}

func createResult(err error) string {
	var shortage *pricing.StockShortageError
	var appErr *common.AppError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.As(err, &shortage):
		return "insufficient_stock"
	case errors.Is(err, ErrOrderInProgress):
		return "busy"
	case errors.As(err, &appErr) && appErr.HTTPStatus < 500:
		return "invalid"
	default:
		return "error"
	}
}

func (s *Service) create(ctx context.Context, buyerID string, in CreateInput) (Order, error) {
	if buyerID == "" {
		return Order{}, ErrUnauthorized
	}
	if err := common.Validate(in); err != nil {
		return Order{}, err
	}
	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return Order{}, ErrUnauthorized
	}
	addressID, err := pgconv.ToUUID(in.ShippingAddressID)
	if err != nil {
		return Order{}, ErrAddressNotFound
	}
	methodID, err := pgconv.OptionalUUID(in.PaymentMethodID)
	if err != nil {
		return Order{}, ErrPaymentMethodNotFound
	}

	var (
		placed     Order
		productIDs []string
	)
	run := func(ctx context.Context) error {
		return s.Store.WithinTx(ctx, func(q Queries) error {
			var err error
			placed, productIDs, err = s.place(ctx, q, uid, addressID, methodID)
			return err
		})
	}
	if s.Locker != nil {
		err = s.Locker.WithLock(ctx, lock.BuyerKey(buyerID), s.LockTTL, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return Order{}, ErrOrderInProgress
		}
		return Order{}, err
	}

	logger := zerolog.Ctx(ctx)
	if s.Catalog != nil {
		if err := s.Catalog.Invalidate(ctx, productIDs...); err != nil {
			logger.Warn().Err(err).Str("order_id", placed.ID).Msg("invalidate product cache")
		}
	}
	if err := s.scheduleExpiry(ctx, placed.ID); err != nil {
		logger.Error().Err(err).Str("order_id", placed.ID).Msg("schedule order expiry")
	}
	logger.Info().Str("order_id", placed.ID).Str("total", placed.TotalAmount.StringFixed(2)).Msg("order placed")
	return placed, nil
}

func (s *Service) place(ctx context.Context, q Queries, uid, addressID, methodID pgtype.UUID) (Order, []string, error) {
	if _, err := q.GetAddress(ctx, dbgen.GetAddressParams{ID: addressID, UserID: uid}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, nil, ErrAddressNotFound
		}
		return Order{}, nil, fmt.Errorf("get address: %w", err)
	}
	if methodID.Valid {
		if _, err := q.GetPaymentMethod(ctx, dbgen.GetPaymentMethodParams{ID: methodID, UserID: uid}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Order{}, nil, ErrPaymentMethodNotFound
			}
			return Order{}, nil, fmt.Errorf("get payment method: %w", err)
		}
	}

	now := s.now()
	c, err := q.GetCartByUser(ctx, uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, nil, ErrEmptyCart
		}
		return Order{}, nil, fmt.Errorf("get cart: %w", err)
	}
	if cart.Expired(c, now) {
		return Order{}, nil, ErrEmptyCart
	}
	lines, err := q.ListCartItems(ctx, c.ID)
	if err != nil {
		return Order{}, nil, fmt.Errorf("list cart items: %w", err)
	}
	if len(lines) == 0 {
		return Order{}, nil, ErrEmptyCart
	}

	ids := make([]pgtype.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	rows, err := q.LockProductsForUpdate(ctx, ids)
	if err != nil {
		return Order{}, nil, fmt.Errorf("lock products: %w", err)
	}
	products := make(map[string]pricing.Product, len(rows))
	for _, row := range rows {
		dealRows, err := q.ListDealsByProduct(ctx, row.ID)
		if err != nil {
			return Order{}, nil, fmt.Errorf("list product deals: %w", err)
		}
		deals, err := catalog.DealsFromRows(dealRows)
		if err != nil {
			return Order{}, nil, err
		}
		snapshot := catalog.SnapshotFromRow(row, deals)
		products[snapshot.ID] = snapshot
	}

	reqs := make([]pricing.StockRequest, 0, len(lines))
	for _, l := range lines {
		id := pgconv.UUIDString(l.ProductID)
		p, ok := products[id]
		if !ok {
			reqs = append(reqs, pricing.StockRequest{Item: id, Requested: int(l.Qty)})
			continue
		}
		reqs = append(reqs, pricing.StockRequest{Item: p.Name, Requested: int(l.Qty), Available: p.Stock})
	}
	if err := pricing.CheckAllStock(reqs); err != nil {
		return Order{}, nil, err
	}

	priced := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		priced = append(priced, pricing.PriceLine(products[pgconv.UUIDString(l.ProductID)], int(l.Qty), now))
	}
	totals := s.Pricing.Calculate(pricing.Subtotal(priced), decimal.Zero)

	row, err := q.CreateOrder(ctx, dbgen.CreateOrderParams{
		UserID:            uid,
		Currency:          s.currency(),
		SubtotalCents:     pricing.ToMinor(totals.Subtotal),
		TaxCents:          pricing.ToMinor(totals.TaxAmount),
		ShippingCents:     pricing.ToMinor(totals.ShippingCost),
		DiscountCents:     pricing.ToMinor(totals.DiscountAmount),
		TotalCents:        pricing.ToMinor(totals.TotalAmount),
		ShippingAddressID: addressID,
		PaymentMethodID:   methodID,
	})
	if err != nil {
		return Order{}, nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]dbgen.OrderItem, 0, len(priced))
	touched := make([]string, 0, len(priced))
	for i, l := range priced {
		productID, err := pgconv.ToUUID(l.Product.ID)
		if err != nil {
			return Order{}, nil, err
		}
		var dealID pgtype.UUID
		if l.ActiveDeal != nil {
			if dealID, err = pgconv.ToUUID(l.ActiveDeal.ID); err != nil {
				return Order{}, nil, err
			}
		}
		item, err := q.CreateOrderItem(ctx, dbgen.CreateOrderItemParams{
			OrderID:            row.ID,
			ProductID:          productID,
			DealID:             dealID,
			Position:           int32(i + 1),
			Name:               l.Product.Name,
			Quantity:           int32(l.Quantity),
			OriginalPriceCents: pricing.ToMinor(l.Product.BasePrice),
			UnitPriceCents:     pricing.ToMinor(l.EffectivePrice),
			LineTotalCents:     pricing.ToMinor(l.LineTotal),
		})
		if err != nil {
			return Order{}, nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)

		affected, err := q.DecrementStock(ctx, dbgen.DecrementStockParams{Qty: int32(l.Quantity), ID: productID})
		if err != nil {
			return Order{}, nil, fmt.Errorf("decrement stock: %w", err)
		}
		if affected == 0 {
			return Order{}, nil, &pricing.StockShortageError{Items: []pricing.InsufficientStockError{{
				Item: l.Product.Name, Available: l.Product.Stock, Requested: l.Quantity,
			}}}
		}
		touched = append(touched, l.Product.ID)
	}

	if err := q.ClearCart(ctx, c.ID); err != nil {
		return Order{}, nil, fmt.Errorf("clear cart: %w", err)
	}
	return toOrder(row, items), touched, nil
}

// Expire moves a still-pending order to EXPIRED, returns its stock and expires any
// outstanding payment intents. Orders that already left PENDING_PAYMENT are left alone.
func (s *Service) Expire(ctx context.Context, orderID string) error {
	ctx, span := otel.Tracer("order.Service").Start(ctx, "Expire")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	released, err := s.release(ctx, orderID, pgtype.UUID{}, dbgen.OrderStatusEXPIRED)
	result := "expired"
	switch {
	case errors.Is(err, ErrOrderNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
		span.RecordError(err)
	case !released:
		result = "skipped"
	}
	obs.Observe(obs.OrderExpireTotal, result)
	return err
}

// Cancel lets the buyer cancel their own pending order.
func (s *Service) Cancel(ctx context.Context, buyerID, orderID string) error {
	ctx, span := otel.Tracer("order.Service").Start(ctx, "Cancel")
	defer span.End()

	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return ErrUnauthorized
	}
	released, err := s.release(ctx, orderID, uid, dbgen.OrderStatusCANCELED)
	if err != nil {
		return err
	}
	if !released {
		return ErrInvalidState
	}
	return nil
}

// AdminCancel cancels any pending order.
func (s *Service) AdminCancel(ctx context.Context, orderID string) error {
	ctx, span := otel.Tracer("order.Service").Start(ctx, "AdminCancel")
	defer span.End()

	released, err := s.release(ctx, orderID, pgtype.UUID{}, dbgen.OrderStatusCANCELED)
	if err != nil {
		return err
	}
	if !released {
		return ErrInvalidState
	}
	return nil
}

// release transitions a PENDING_PAYMENT order to target and restores its stock.
// A valid owner restricts the lookup to that buyer's orders.
func (s *Service) release(ctx context.Context, orderID string, owner pgtype.UUID, target dbgen.OrderStatus) (bool, error) {
	id, err := pgconv.ToUUID(orderID)
	if err != nil {
		return false, ErrOrderNotFound
	}
	var (
		released bool
		touched  []string
	)
	err = s.Store.WithinTx(ctx, func(q Queries) error {
		row, err := q.GetOrderForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("get order: %w", err)
		}
		if owner.Valid && row.UserID != owner {
			return ErrOrderNotFound
		}
		if row.Status != dbgen.OrderStatusPENDINGPAYMENT {
			return nil
		}
		affected, err := q.TransitionOrderStatus(ctx, dbgen.TransitionOrderStatusParams{
			Status:     target,
			ID:         id,
			FromStatus: dbgen.OrderStatusPENDINGPAYMENT,
		})
		if err != nil {
			return fmt.Errorf("transition order: %w", err)
		}
		if affected == 0 {
			return nil
		}
		items, err := q.ListOrderItems(ctx, id)
		if err != nil {
			return fmt.Errorf("list order items: %w", err)
		}
		for _, it := range items {
			if err := q.RestoreStock(ctx, dbgen.RestoreStockParams{Qty: it.Quantity, ID: it.ProductID}); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
			touched = append(touched, pgconv.UUIDString(it.ProductID))
		}
		if err := q.ExpirePendingPayments(ctx, id); err != nil {
			return fmt.Errorf("expire payments: %w", err)
		}
		released = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if released && s.Catalog != nil {
		if err := s.Catalog.Invalidate(ctx, touched...); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("order_id", orderID).Msg("invalidate product cache")
		}
	}
	return released, nil
}

// List returns a page of the buyer's orders, newest first, without items.
func (s *Service) List(ctx context.Context, buyerID string, page common.Pagination) (ListResult, error) {
	ctx, span := otel.Tracer("order.Service").Start(ctx, "List")
	defer span.End()

	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return ListResult{}, ErrUnauthorized
	}
	total, err := s.Store.CountOrdersByUser(ctx, uid)
	if err != nil {
		return ListResult{}, fmt.Errorf("count orders: %w", err)
	}
	rows, err := s.Store.ListOrdersByUser(ctx, dbgen.ListOrdersByUserParams{
		UserID: uid,
		Limit:  int32(page.PerPage),
		Offset: int32(page.Offset()),
	})
	if err != nil {
		return ListResult{}, fmt.Errorf("list orders: %w", err)
	}
	out := ListResult{Items: make([]Order, 0, len(rows)), Total: total}
	for _, row := range rows {
		out.Items = append(out.Items, toOrder(row, nil))
	}
	return out, nil
}

// Get returns one of the buyer's orders with its items.
func (s *Service) Get(ctx context.Context, buyerID, orderID string) (Order, error) {
	ctx, span := otel.Tracer("order.Service").Start(ctx, "Get")
	defer span.End()

	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return Order{}, ErrUnauthorized
	}
	id, err := pgconv.ToUUID(orderID)
	if err != nil {
		return Order{}, ErrOrderNotFound
	}
	row, err := s.Store.GetOrderForUser(ctx, dbgen.GetOrderForUserParams{ID: id, UserID: uid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	items, err := s.Store.ListOrderItems(ctx, id)
	if err != nil {
		return Order{}, fmt.Errorf("list order items: %w", err)
	}
	return toOrder(row, items), nil
}

func toOrder(row dbgen.Order, items []dbgen.OrderItem) Order {
	o := Order{
		ID:                pgconv.UUIDString(row.ID),
		Status:            string(row.Status),
		Currency:          row.Currency,
		Subtotal:          pricing.FromMinor(row.SubtotalCents),
		TaxAmount:         pricing.FromMinor(row.TaxCents),
		ShippingCost:      pricing.FromMinor(row.ShippingCents),
		DiscountAmount:    pricing.FromMinor(row.DiscountCents),
		TotalAmount:       pricing.FromMinor(row.TotalCents),
		ShippingAddressID: pgconv.UUIDPtr(row.ShippingAddressID),
		PaymentMethodID:   pgconv.UUIDPtr(row.PaymentMethodID),
		CreatedAt:         pgconv.Time(row.CreatedAt),
		UpdatedAt:         pgconv.Time(row.UpdatedAt),
	}
	if items != nil {
		o.Items = make([]Item, 0, len(items))
		for _, it := range items {
			o.Items = append(o.Items, Item{
				ProductID:     pgconv.UUIDString(it.ProductID),
				DealID:        pgconv.UUIDPtr(it.DealID),
				Position:      int(it.Position),
				Name:          it.Name,
				Quantity:      int(it.Quantity),
				OriginalPrice: pricing.FromMinor(it.OriginalPriceCents),
				UnitPrice:     pricing.FromMinor(it.UnitPriceCents),
				LineTotal:     pricing.FromMinor(it.LineTotalCents),
			})
		}
	}
	return o
}
