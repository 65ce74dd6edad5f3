package order_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-storefront/internal/common"
	dbgen "github.com/noah-isme/backend-storefront/internal/db/gen"
	"github.com/noah-isme/backend-storefront/internal/db/pgconv"
	"github.com/noah-isme/backend-storefront/internal/lock"
	"github.com/noah-isme/backend-storefront/internal/obs"
	"github.com/noah-isme/backend-storefront/internal/order"
	"github.com/noah-isme/backend-storefront/internal/pricing"
)

const (
	buyerID    = "11111111-1111-1111-1111-111111111111"
	otherBuyer = "22222222-2222-2222-2222-222222222222"
	addressID  = "33333333-3333-3333-3333-333333333333"
	methodID   = "44444444-4444-4444-4444-444444444444"
	headphones = "aaaaaaaa-0000-0000-0000-000000000001"
	mug        = "aaaaaaaa-0000-0000-0000-000000000002"
	springDeal = "dddddddd-0000-0000-0000-000000000001"
)

var now = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

func mustUUID(s string) pgtype.UUID {
	id, err := pgconv.ToUUID(s)
	if err != nil {
		panic(err)
	}
	return id
}

type fakeStore struct {
	addresses map[pgtype.UUID]pgtype.UUID
	methods   map[pgtype.UUID]pgtype.UUID
	carts     map[pgtype.UUID]dbgen.Cart
	cartItems map[pgtype.UUID][]dbgen.CartItem
	products  map[pgtype.UUID]dbgen.Product
	deals     map[pgtype.UUID][]dbgen.Deal
	orders    map[pgtype.UUID]dbgen.Order
	items     map[pgtype.UUID][]dbgen.OrderItem

	lockedIDs       []pgtype.UUID
	expiredPayments []pgtype.UUID
	rejectDecrement bool
	clock           time.Time
}

func newFakeStore() *fakeStore {
	f := &fakeStore{
		addresses: map[pgtype.UUID]pgtype.UUID{mustUUID(addressID): mustUUID(buyerID)},
		methods:   map[pgtype.UUID]pgtype.UUID{mustUUID(methodID): mustUUID(buyerID)},
		carts:     map[pgtype.UUID]dbgen.Cart{},
		cartItems: map[pgtype.UUID][]dbgen.CartItem{},
		products:  map[pgtype.UUID]dbgen.Product{},
		deals:     map[pgtype.UUID][]dbgen.Deal{},
		orders:    map[pgtype.UUID]dbgen.Order{},
		items:     map[pgtype.UUID][]dbgen.OrderItem{},
		clock:     now,
	}
	f.addProduct(headphones, "Studio Headphones", 10000, 9000, 5)
	f.addProduct(mug, "Mug", 2000, 2000, 10)
	f.deals[mustUUID(headphones)] = []dbgen.Deal{{
		ID:              mustUUID(springDeal),
		Name:            "Spring",
		DiscountPercent: pgconv.Numeric(decimal.NewFromInt(20)),
		StartsAt:        pgconv.Timestamptz(now.Add(-time.Hour)),
		EndsAt:          pgconv.Timestamptz(now.Add(time.Hour)),
	}}
	return f
}

func (f *fakeStore) addProduct(id, name string, base, discounted int64, stock int32) {
	f.products[mustUUID(id)] = dbgen.Product{
		ID:                   mustUUID(id),
		Name:                 name,
		Slug:                 strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		BasePriceCents:       base,
		DiscountedPriceCents: discounted,
		Stock:                stock,
	}
}

func (f *fakeStore) fillCart(buyer string, expiresAt time.Time, lines ...dbgen.CartItem) pgtype.UUID {
	cartID := mustUUID(uuid.NewString())
	f.carts[mustUUID(buyer)] = dbgen.Cart{ID: cartID, UserID: mustUUID(buyer), ExpiresAt: pgconv.Timestamptz(expiresAt)}
	for i := range lines {
		lines[i].CartID = cartID
	}
	f.cartItems[cartID] = lines
	return cartID
}

func (f *fakeStore) stock(id string) int32 {
	return f.products[mustUUID(id)].Stock
}

func (f *fakeStore) tick() pgtype.Timestamptz {
	f.clock = f.clock.Add(time.Second)
	return pgconv.Timestamptz(f.clock)
}

func (f *fakeStore) WithinTx(_ context.Context, fn func(q order.Queries) error) error {
	return fn(f)
}

func (f *fakeStore) GetCartByUser(_ context.Context, userID pgtype.UUID) (dbgen.Cart, error) {
	c, ok := f.carts[userID]
	if !ok {
		return dbgen.Cart{}, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeStore) ListCartItems(_ context.Context, cartID pgtype.UUID) ([]dbgen.CartItem, error) {
	return append([]dbgen.CartItem(nil), f.cartItems[cartID]...), nil
}

func (f *fakeStore) ClearCart(_ context.Context, cartID pgtype.UUID) error {
	delete(f.cartItems, cartID)
	return nil
}

func (f *fakeStore) LockProductsForUpdate(_ context.Context, ids []pgtype.UUID) ([]dbgen.Product, error) {
	sorted := append([]pgtype.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i].Bytes[:], sorted[j].Bytes[:]) < 0 })
	f.lockedIDs = sorted
	out := []dbgen.Product{}
	for _, id := range sorted {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListDealsByProduct(_ context.Context, productID pgtype.UUID) ([]dbgen.Deal, error) {
	return f.deals[productID], nil
}

func (f *fakeStore) DecrementStock(_ context.Context, arg dbgen.DecrementStockParams) (int64, error) {
	p, ok := f.products[arg.ID]
	if !ok || f.rejectDecrement || p.Stock < arg.Qty {
		return 0, nil
	}
	p.Stock -= arg.Qty
	f.products[arg.ID] = p
	return 1, nil
}

func (f *fakeStore) RestoreStock(_ context.Context, arg dbgen.RestoreStockParams) error {
	p := f.products[arg.ID]
	p.Stock += arg.Qty
	f.products[arg.ID] = p
	return nil
}

func (f *fakeStore) GetAddress(_ context.Context, arg dbgen.GetAddressParams) (dbgen.Address, error) {
	if owner, ok := f.addresses[arg.ID]; !ok || owner != arg.UserID {
		return dbgen.Address{}, pgx.ErrNoRows
	}
	return dbgen.Address{ID: arg.ID, UserID: arg.UserID}, nil
}

func (f *fakeStore) GetPaymentMethod(_ context.Context, arg dbgen.GetPaymentMethodParams) (dbgen.GetPaymentMethodRow, error) {
	if owner, ok := f.methods[arg.ID]; !ok || owner != arg.UserID {
		return dbgen.GetPaymentMethodRow{}, pgx.ErrNoRows
	}
	return dbgen.GetPaymentMethodRow{ID: arg.ID, UserID: arg.UserID}, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, arg dbgen.CreateOrderParams) (dbgen.Order, error) {
	ts := f.tick()
	o := dbgen.Order{
		ID:                mustUUID(uuid.NewString()),
		UserID:            arg.UserID,
		Status:            dbgen.OrderStatusPENDINGPAYMENT,
		Currency:          arg.Currency,
		SubtotalCents:     arg.SubtotalCents,
		TaxCents:          arg.TaxCents,
		ShippingCents:     arg.ShippingCents,
		DiscountCents:     arg.DiscountCents,
		TotalCents:        arg.TotalCents,
		ShippingAddressID: arg.ShippingAddressID,
		PaymentMethodID:   arg.PaymentMethodID,
		CreatedAt:         ts,
		UpdatedAt:         ts,
	}
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeStore) CreateOrderItem(_ context.Context, arg dbgen.CreateOrderItemParams) (dbgen.OrderItem, error) {
	it := dbgen.OrderItem{
		ID:                 mustUUID(uuid.NewString()),
		OrderID:            arg.OrderID,
		ProductID:          arg.ProductID,
		DealID:             arg.DealID,
		Position:           arg.Position,
		Name:               arg.Name,
		Quantity:           arg.Quantity,
		OriginalPriceCents: arg.OriginalPriceCents,
		UnitPriceCents:     arg.UnitPriceCents,
		LineTotalCents:     arg.LineTotalCents,
	}
	f.items[arg.OrderID] = append(f.items[arg.OrderID], it)
	return it, nil
}

func (f *fakeStore) GetOrderForUser(_ context.Context, arg dbgen.GetOrderForUserParams) (dbgen.Order, error) {
	o, ok := f.orders[arg.ID]
	if !ok || o.UserID != arg.UserID {
		return dbgen.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (f *fakeStore) GetOrderForUpdate(_ context.Context, id pgtype.UUID) (dbgen.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return dbgen.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (f *fakeStore) ListOrdersByUser(_ context.Context, arg dbgen.ListOrdersByUserParams) ([]dbgen.Order, error) {
	var out []dbgen.Order
	for _, o := range f.orders {
		if o.UserID == arg.UserID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Time.After(out[j].CreatedAt.Time) })
	start := int(arg.Offset)
	if start > len(out) {
		return []dbgen.Order{}, nil
	}
	end := start + int(arg.Limit)
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (f *fakeStore) CountOrdersByUser(_ context.Context, userID pgtype.UUID) (int64, error) {
	var n int64
	for _, o := range f.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListOrderItems(_ context.Context, orderID pgtype.UUID) ([]dbgen.OrderItem, error) {
	return append([]dbgen.OrderItem{}, f.items[orderID]...), nil
}

func (f *fakeStore) TransitionOrderStatus(_ context.Context, arg dbgen.TransitionOrderStatusParams) (int64, error) {
	o, ok := f.orders[arg.ID]
	if !ok || o.Status != arg.FromStatus {
		return 0, nil
	}
	o.Status = arg.Status
	o.UpdatedAt = f.tick()
	f.orders[arg.ID] = o
	return 1, nil
}

func (f *fakeStore) ExpirePendingPayments(_ context.Context, orderID pgtype.UUID) error {
	f.expiredPayments = append(f.expiredPayments, orderID)
	return nil
}

type fakeCatalog struct {
	invalidated []string
}

func (f *fakeCatalog) Invalidate(_ context.Context, ids ...string) error {
	f.invalidated = append(f.invalidated, ids...)
	return nil
}

type fakeTasks struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
}

func (f *fakeTasks) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

type fixture struct {
	store   *fakeStore
	catalog *fakeCatalog
	tasks   *fakeTasks
	redis   *miniredis.Miniredis
	svc     *order.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	fx := &fixture{store: newFakeStore(), catalog: &fakeCatalog{}, tasks: &fakeTasks{}, redis: mr}
	fx.svc = &order.Service{
		Store:      fx.store,
		Locker:     lock.Locker{R: client, RetryBackoff: 5 * time.Millisecond, MaxWait: 50 * time.Millisecond},
		LockTTL:    time.Second,
		Catalog:    fx.catalog,
		Tasks:      fx.tasks,
		Pricing:    pricing.DefaultConfig(),
		Currency:   "USD",
		PaymentTTL: 15 * time.Minute,
		Now:        func() time.Time { return now },
	}
	return fx
}

func (fx *fixture) standardCart() pgtype.UUID {
	return fx.store.fillCart(buyerID, now.Add(time.Hour),
		dbgen.CartItem{ProductID: mustUUID(mug), Qty: 1},
		dbgen.CartItem{ProductID: mustUUID(headphones), Qty: 2},
	)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreatePricesAndPersistsOrder(t *testing.T) {
	fx := newFixture(t)
	cartID := fx.standardCart()

	ord, err := fx.svc.Create(context.Background(), buyerID, order.CreateInput{ShippingAddressID: addressID, PaymentMethodID: methodID})
	require.NoError(t, err)

	require.Equal(t, "PENDING_PAYMENT", ord.Status)
	require.Equal(t, "USD", ord.Currency)
	require.True(t, ord.Subtotal.Equal(dec("180")), ord.Subtotal.String())
	require.True(t, ord.TaxAmount.Equal(dec("14.40")))
	require.True(t, ord.ShippingCost.IsZero())
	require.True(t, ord.TotalAmount.Equal(dec("194.40")))
	require.Equal(t, methodID, *ord.PaymentMethodID)

	require.Len(t, ord.Items, 2)
	require.Equal(t, "Mug", ord.Items[0].Name, "items keep cart order")
	require.Equal(t, 1, ord.Items[0].Position)
	require.Nil(t, ord.Items[0].DealID)
	second := ord.Items[1]
	require.Equal(t, 2, second.Position)
	require.Equal(t, springDeal, *second.DealID)
	require.True(t, second.OriginalPrice.Equal(dec("100")))
	require.True(t, second.UnitPrice.Equal(dec("80")))
	require.True(t, second.LineTotal.Equal(dec("160")))

	stored := fx.store.orders[mustUUID(ord.ID)]
	require.EqualValues(t, 19440, stored.TotalCents)
	require.EqualValues(t, 1440, stored.TaxCents)

	require.EqualValues(t, 3, fx.store.stock(headphones))
	require.EqualValues(t, 9, fx.store.stock(mug))
	require.Empty(t, fx.store.cartItems[cartID], "cart is cleared")
	require.Equal(t, []pgtype.UUID{mustUUID(headphones), mustUUID(mug)}, fx.store.lockedIDs, "rows are locked in id order")
	require.ElementsMatch(t, []string{headphones, mug}, fx.catalog.invalidated)
	require.False(t, fx.redis.Exists(lock.BuyerKey(buyerID)), "buyer lock is released")

	require.Len(t, fx.tasks.tasks, 1)
	task := fx.tasks.tasks[0]
	require.Equal(t, order.TypeExpire, task.Type())
	require.JSONEq(t, `{"orderId":"`+ord.ID+`"}`, string(task.Payload()))
	var delay time.Duration
	for _, opt := range fx.tasks.opts[0] {
		if opt.Type() == asynq.ProcessInOpt {
			delay = opt.Value().(time.Duration)
		}
	}
	require.Equal(t, 15*time.Minute, delay)
}

func TestCreateMatchesCheckoutRounding(t *testing.T) {
	fx := newFixture(t)
	fx.store.addProduct("aaaaaaaa-0000-0000-0000-000000000003", "Sticker", 333, 333, 10)
	fx.store.fillCart(buyerID, now.Add(time.Hour),
		dbgen.CartItem{ProductID: mustUUID("aaaaaaaa-0000-0000-0000-000000000003"), Qty: 3},
	)

	ord, err := fx.svc.Create(context.Background(), buyerID, order.CreateInput{ShippingAddressID: addressID})
	require.NoError(t, err)

	summary := pricing.DefaultConfig().Calculate(dec("9.99"), decimal.Zero)
	require.True(t, ord.Subtotal.Equal(summary.Subtotal))
	require.True(t, ord.TaxAmount.Equal(summary.TaxAmount))
	require.True(t, ord.ShippingCost.Equal(dec("5.99")))
	require.True(t, ord.TotalAmount.Equal(summary.TotalAmount))
	require.Nil(t, ord.PaymentMethodID)
}

func TestCreateAggregatesShortages(t *testing.T) {
	obs.MustRegisterDomainMetrics("test", prometheus.NewRegistry())
	before := testutil.ToFloat64(obs.OrderCreateTotal.WithLabelValues("insufficient_stock"))

	fx := newFixture(t)
	fx.store.addProduct(mug, "Mug", 2000, 2000, 0)
	fx.store.fillCart(buyerID, now.Add(time.Hour),
		dbgen.CartItem{ProductID: mustUUID(headphones), Qty: 6},
		dbgen.CartItem{ProductID: mustUUID(mug), Qty: 1},
	)

	_, err := fx.svc.Create(context.Background(), buyerID, order.CreateInput{ShippingAddressID: addressID})
	var shortage *pricing.StockShortageError
	require.True(t, errors.As(err, &shortage))
	require.Len(t, shortage.Items, 2)
	require.Equal(t, pricing.InsufficientStockError{Item: "Studio Headphones", Available: 5, Requested: 6}, shortage.Items[0])
	require.Equal(t, pricing.InsufficientStockError{Item: "Mug", Available: 0, Requested: 1}, shortage.Items[1])

	require.Empty(t, fx.store.orders)
	require.EqualValues(t, 5, fx.store.stock(headphones))
	require.Empty(t, fx.tasks.tasks)
	require.Equal(t, before+1, testutil.ToFloat64(obs.OrderCreateTotal.WithLabelValues("insufficient_stock")))
}

func TestCreateGuardedDecrement(t *testing.T) {
	fx := newFixture(t)
	fx.standardCart()
	fx.store.rejectDecrement = true

	_, err := fx.svc.Create(context.Background(), buyerID, order.CreateInput{ShippingAddressID: addressID})
	var shortage *pricing.StockShortageError
	require.True(t, errors.As(err, &shortage))
	require.Empty(t, fx.tasks.tasks)
}

func TestCreateEmptyCart(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.Create(context.Background(), buyerID, order.CreateInput{ShippingAddressID: addressID})
	require.ErrorIs(t, err, order.ErrEmptyCart)

	fx.store.fillCart(buyerID, now.Add(-time.Minute), dbgen.CartItem{ProductID: mustUUID(mug), Qty: 1})
	_, err = fx.svc.Create(context.Background(), buyerID, order.CreateInput{ShippingAddressID: addressID})
	require.ErrorIs(t, err, order.ErrEmptyCart, "expired cart counts as absent")

	fx.store.fillCart(buyerID, now.Add(time.Hour))
	_, err = fx.svc.Create(context.Background(), buyerID, order.CreateInput{ShippingAddressID: addressID})
	require.ErrorIs(t, err, order.ErrEmptyCart)
}

func TestCreateValidatesOwnership(t *testing.T) {
	fx := newFixture(t)
	fx.standardCart()
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, buyerID, order.CreateInput{})
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	require.Equal(t, map[string]string{"shippingAddressId": "required"}, appErr.Details)

	fx.store.addresses[mustUUID(addressID)] = mustUUID(otherBuyer)
	_, err = fx.svc.Create(ctx, buyerID, order.CreateInput{ShippingAddressID: addressID})
	require.ErrorIs(t, err, order.ErrAddressNotFound)

	fx.store.addresses[mustUUID(addressID)] = mustUUID(buyerID)
	_, err = fx.svc.Create(ctx, buyerID, order.CreateInput{ShippingAddressID: addressID, PaymentMethodID: uuid.NewString()})
	require.ErrorIs(t, err, order.ErrPaymentMethodNotFound)

	_, err = fx.svc.Create(ctx, "", order.CreateInput{ShippingAddressID: addressID})
	require.ErrorIs(t, err, order.ErrUnauthorized)
	require.Empty(t, fx.store.orders)
}

func TestCreateWhileBuyerLocked(t *testing.T) {
	fx := newFixture(t)
	fx.standardCart()
	require.NoError(t, fx.redis.Set(lock.BuyerKey(buyerID), "someone-else"))

	_, err := fx.svc.Create(context.Background(), buyerID, order.CreateInput{ShippingAddressID: addressID})
	require.ErrorIs(t, err, order.ErrOrderInProgress)
	require.Empty(t, fx.store.orders)
}

func TestExpireRestoresStockOnce(t *testing.T) {
	fx := newFixture(t)
	fx.standardCart()
	ctx := context.Background()
	ord, err := fx.svc.Create(ctx, buyerID, order.CreateInput{ShippingAddressID: addressID})
	require.NoError(t, err)
	fx.catalog.invalidated = nil

	require.NoError(t, fx.svc.Expire(ctx, ord.ID))
	require.Equal(t, dbgen.OrderStatusEXPIRED, fx.store.orders[mustUUID(ord.ID)].Status)
	require.EqualValues(t, 5, fx.store.stock(headphones))
	require.EqualValues(t, 10, fx.store.stock(mug))
	require.Equal(t, []pgtype.UUID{mustUUID(ord.ID)}, fx.store.expiredPayments)
	require.ElementsMatch(t, []string{headphones, mug}, fx.catalog.invalidated)

	require.NoError(t, fx.svc.Expire(ctx, ord.ID))
	require.EqualValues(t, 5, fx.store.stock(headphones), "second expiry is a no-op")

	require.ErrorIs(t, fx.svc.Expire(ctx, uuid.NewString()), order.ErrOrderNotFound)
}

func TestExpireSkipsPaidOrder(t *testing.T) {
	fx := newFixture(t)
	fx.standardCart()
	ctx := context.Background()
	ord, err := fx.svc.Create(ctx, buyerID, order.CreateInput{ShippingAddressID: addressID})
	require.NoError(t, err)
	paid := fx.store.orders[mustUUID(ord.ID)]
	paid.Status = dbgen.OrderStatusPAID
	fx.store.orders[paid.ID] = paid

	require.NoError(t, fx.svc.Expire(ctx, ord.ID))
	require.Equal(t, dbgen.OrderStatusPAID, fx.store.orders[paid.ID].Status)
	require.EqualValues(t, 3, fx.store.stock(headphones))
	require.ErrorIs(t, fx.svc.AdminCancel(ctx, ord.ID), order.ErrInvalidState)
}

func TestCancelByBuyer(t *testing.T) {
	fx := newFixture(t)
	fx.standardCart()
	ctx := context.Background()
	ord, err := fx.svc.Create(ctx, buyerID, order.CreateInput{ShippingAddressID: addressID})
	require.NoError(t, err)

	require.ErrorIs(t, fx.svc.Cancel(ctx, otherBuyer, ord.ID), order.ErrOrderNotFound)
	require.NoError(t, fx.svc.Cancel(ctx, buyerID, ord.ID))
	require.Equal(t, dbgen.OrderStatusCANCELED, fx.store.orders[mustUUID(ord.ID)].Status)
	require.EqualValues(t, 5, fx.store.stock(headphones))
	require.ErrorIs(t, fx.svc.Cancel(ctx, buyerID, ord.ID), order.ErrInvalidState)
}

func TestHandleExpireTask(t *testing.T) {
	fx := newFixture(t)
	fx.standardCart()
	ctx := context.Background()
	ord, err := fx.svc.Create(ctx, buyerID, order.CreateInput{ShippingAddressID: addressID})
	require.NoError(t, err)

	task, err := order.NewExpireTask(ord.ID)
	require.NoError(t, err)
	require.NoError(t, fx.svc.HandleExpireTask(ctx, task))
	require.Equal(t, dbgen.OrderStatusEXPIRED, fx.store.orders[mustUUID(ord.ID)].Status)

	unknown, err := order.NewExpireTask(uuid.NewString())
	require.NoError(t, err)
	require.NoError(t, fx.svc.HandleExpireTask(ctx, unknown))

	err = fx.svc.HandleExpireTask(ctx, asynq.NewTask(order.TypeExpire, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestListAndGet(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		fx.store.fillCart(buyerID, now.Add(time.Hour), dbgen.CartItem{ProductID: mustUUID(mug), Qty: 1})
		ord, err := fx.svc.Create(ctx, buyerID, order.CreateInput{ShippingAddressID: addressID})
		require.NoError(t, err)
		ids = append(ids, ord.ID)
	}

	res, err := fx.svc.List(ctx, buyerID, common.Pagination{Page: 1, PerPage: 2})
	require.NoError(t, err)
	require.EqualValues(t, 3, res.Total)
	require.Len(t, res.Items, 2)
	require.Equal(t, ids[2], res.Items[0].ID, "newest first")
	require.Nil(t, res.Items[0].Items)

	got, err := fx.svc.Get(ctx, buyerID, ids[0])
	require.NoError(t, err)
	require.Len(t, got.Items, 1)

	_, err = fx.svc.Get(ctx, otherBuyer, ids[0])
	require.ErrorIs(t, err, order.ErrOrderNotFound)
	_, err = fx.svc.Get(ctx, buyerID, "not-a-uuid")
	require.ErrorIs(t, err, order.ErrOrderNotFound)
}

type errorBody struct {
	Error struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func TestCreateHandler(t *testing.T) {
	cases := []struct {
		name   string
		buyer  string
		body   string
		setup  func(fx *fixture)
		status int
		code   string
	}{
		{name: "unauthorized", body: `{"shippingAddressId":"` + addressID + `"}`, status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "bad json", buyer: buyerID, body: `{`, status: http.StatusBadRequest, code: "INVALID_JSON"},
		{name: "empty cart", buyer: buyerID, body: `{"shippingAddressId":"` + addressID + `"}`, status: http.StatusBadRequest, code: "EMPTY_CART"},
		{
			name:  "shortage",
			buyer: buyerID,
			body:  `{"shippingAddressId":"` + addressID + `"}`,
			setup: func(fx *fixture) {
				fx.store.fillCart(buyerID, now.Add(time.Hour), dbgen.CartItem{ProductID: mustUUID(headphones), Qty: 9})
			},
			status: http.StatusConflict,
			code:   "INSUFFICIENT_STOCK",
		},
		{
			name:   "created",
			buyer:  buyerID,
			body:   `{"shippingAddressId":"` + addressID + `"}`,
			setup:  func(fx *fixture) { fx.standardCart() },
			status: http.StatusCreated,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t)
			if tc.setup != nil {
				tc.setup(fx)
			}
			h := &order.Handler{Svc: fx.svc}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(tc.body))
			if tc.buyer != "" {
				req = req.WithContext(common.WithUserID(req.Context(), tc.buyer))
			}
			rec := httptest.NewRecorder()
			h.Create(rec, req)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.code == "" {
				require.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/api/v1/orders/"))
				return
			}
			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tc.code, body.Error.Code)
			if tc.code == "INSUFFICIENT_STOCK" {
				require.JSONEq(t, `[{"product":"Studio Headphones","available":5,"requested":9}]`, string(body.Error.Details))
			}
		})
	}
}

func TestListHandlerSetsTotalCount(t *testing.T) {
	fx := newFixture(t)
	fx.standardCart()
	_, err := fx.svc.Create(context.Background(), buyerID, order.CreateInput{ShippingAddressID: addressID})
	require.NoError(t, err)

	h := &order.Handler{Svc: fx.svc}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?page=1&limit=10", nil)
	req = req.WithContext(common.WithUserID(req.Context(), buyerID))
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	var body struct {
		Data       []order.Order     `json:"data"`
		Pagination common.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, 1, body.Pagination.TotalItems)
	require.Equal(t, 10, body.Pagination.PerPage)
}
