package checkout_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-storefront/internal/cart"
	"github.com/noah-isme/backend-storefront/internal/checkout"
	"github.com/noah-isme/backend-storefront/internal/common"
	"github.com/noah-isme/backend-storefront/internal/pricing"
	"github.com/noah-isme/backend-storefront/internal/user"
)

const buyer = "11111111-1111-1111-1111-111111111111"

var now = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeCarts struct {
	cart *cart.Cart
	err  error
}

func (f fakeCarts) CartWithLines(context.Context, string) (*cart.Cart, error) {
	return f.cart, f.err
}

type fakeProducts struct {
	products map[string]pricing.Product
	calls    []string
	err      error
}

func (f *fakeProducts) ProductSnapshot(_ context.Context, id string) (pricing.Product, error) {
	f.calls = append(f.calls, id)
	if f.err != nil {
		return pricing.Product{}, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return pricing.Product{}, errors.New("missing product")
	}
	return p, nil
}

type fakeUsers struct {
	addresses []user.Address
	methods   []user.PaymentMethod
	addrErr   error
}

func (f fakeUsers) ListAddresses(context.Context, string) ([]user.Address, error) {
	return f.addresses, f.addrErr
}

func (f fakeUsers) ListPaymentMethods(context.Context, string) ([]user.PaymentMethod, error) {
	return f.methods, nil
}

func (f fakeUsers) Profile(_ context.Context, id string) (user.Profile, error) {
	return user.Profile{ID: id, Email: "buyer@example.com", FirstName: "Grace", LastName: "Hopper"}, nil
}

func headphones(stock int) pricing.Product {
	return pricing.Product{
		ID:              "p-headphones",
		Name:            "Studio Headphones",
		Slug:            "studio-headphones",
		BasePrice:       dec("100"),
		DiscountedPrice: dec("90"),
		Stock:           stock,
		Deals: []pricing.Deal{{
			ID:              "d-spring",
			Name:            "Spring",
			DiscountPercent: dec("20"),
			StartsAt:        now.Add(-time.Hour),
			EndsAt:          now.Add(time.Hour),
		}},
	}
}

func cartWith(lines ...cart.Line) *cart.Cart {
	return &cart.Cart{ID: "c-1", UserID: buyer, Lines: lines}
}

func newService(c *cart.Cart, products *fakeProducts, users fakeUsers) *checkout.Service {
	return &checkout.Service{
		Carts:          fakeCarts{cart: c},
		Products:       products,
		Addresses:      users,
		PaymentMethods: users,
		Profiles:       users,
		Pricing:        pricing.DefaultConfig(),
		Now:            func() time.Time { return now },
	}
}

func TestSummaryAppliesActiveDeal(t *testing.T) {
	products := &fakeProducts{products: map[string]pricing.Product{"p-headphones": headphones(5)}}
	users := fakeUsers{
		addresses: []user.Address{{ID: "a-1", IsDefault: true}},
		methods:   []user.PaymentMethod{{ID: "m-1", Type: "card", IsDefault: true}},
	}
	svc := newService(cartWith(cart.Line{ProductID: "p-headphones", Quantity: 2}), products, users)

	out, err := svc.Summary(context.Background(), buyer)
	require.NoError(t, err)

	require.Len(t, out.Cart.Items, 1)
	line := out.Cart.Items[0]
	require.True(t, line.EffectivePrice.Equal(dec("80")))
	require.True(t, line.Savings.Equal(dec("20")))
	require.True(t, line.LineTotal.Equal(dec("160.00")))
	require.NotNil(t, line.ActiveDeal)
	require.Equal(t, "d-spring", line.ActiveDeal.ID)
	require.Equal(t, 2, out.Cart.ItemCount)

	s := out.OrderSummary
	require.True(t, s.Subtotal.Equal(dec("160")))
	require.True(t, s.TaxAmount.Equal(dec("12.80")))
	require.True(t, s.ShippingCost.IsZero())
	require.True(t, s.TotalAmount.Equal(dec("172.80")))
	require.True(t, s.FreeShippingEligible)
	require.True(t, s.FreeShippingThreshold.Equal(dec("50")))

	require.Len(t, out.Addresses, 1)
	require.Len(t, out.PaymentMethods, 1)
	require.Equal(t, "buyer@example.com", out.User.Email)
}

func TestSummaryUsesDiscountedPriceWithoutDeal(t *testing.T) {
	p := headphones(5)
	p.Deals[0].EndsAt = now.Add(-time.Minute)
	products := &fakeProducts{products: map[string]pricing.Product{"p-headphones": p}}
	svc := newService(cartWith(cart.Line{ProductID: "p-headphones", Quantity: 1}), products, fakeUsers{})

	out, err := svc.Summary(context.Background(), buyer)
	require.NoError(t, err)
	require.Nil(t, out.Cart.Items[0].ActiveDeal)
	require.True(t, out.Cart.Items[0].EffectivePrice.Equal(dec("90")))
	require.NotNil(t, out.Addresses)
	require.NotNil(t, out.PaymentMethods)
}

func TestSummaryChargesShippingBelowThreshold(t *testing.T) {
	products := &fakeProducts{products: map[string]pricing.Product{
		"p-mug": {ID: "p-mug", Name: "Mug", BasePrice: dec("20"), DiscountedPrice: dec("20"), Stock: 10},
	}}
	svc := newService(cartWith(cart.Line{ProductID: "p-mug", Quantity: 2}), products, fakeUsers{})

	out, err := svc.Summary(context.Background(), buyer)
	require.NoError(t, err)
	require.True(t, out.OrderSummary.ShippingCost.Equal(dec("5.99")))
	require.False(t, out.OrderSummary.FreeShippingEligible)
	require.True(t, out.OrderSummary.TotalAmount.Equal(dec("49.19")))
}

func TestSummaryInsufficientStockFailsFast(t *testing.T) {
	products := &fakeProducts{products: map[string]pricing.Product{
		"p-headphones": headphones(1),
		"p-mug":        {ID: "p-mug", Name: "Mug", BasePrice: dec("20"), DiscountedPrice: dec("20"), Stock: 0},
	}}
	svc := newService(cartWith(
		cart.Line{ProductID: "p-headphones", Quantity: 3},
		cart.Line{ProductID: "p-mug", Quantity: 1},
	), products, fakeUsers{})

	_, err := svc.Summary(context.Background(), buyer)
	var stockErr *pricing.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	require.Equal(t, "Studio Headphones", stockErr.Item)
	require.Equal(t, 1, stockErr.Available)
	require.Equal(t, 3, stockErr.Requested)
	require.Equal(t, []string{"p-headphones"}, products.calls, "later lines are not read")
}

func TestSummaryEmptyCart(t *testing.T) {
	products := &fakeProducts{}
	for _, c := range []*cart.Cart{nil, cartWith()} {
		svc := newService(c, products, fakeUsers{})
		_, err := svc.Summary(context.Background(), buyer)
		require.ErrorIs(t, err, checkout.ErrEmptyCart)
	}
}

func TestSummaryUnauthorized(t *testing.T) {
	svc := newService(cartWith(), &fakeProducts{}, fakeUsers{})
	_, err := svc.Summary(context.Background(), "")
	require.ErrorIs(t, err, checkout.ErrUnauthorized)
}

func TestSummaryIsIdempotent(t *testing.T) {
	products := &fakeProducts{products: map[string]pricing.Product{"p-headphones": headphones(5)}}
	users := fakeUsers{addresses: []user.Address{{ID: "a-1", IsDefault: true}}}
	svc := newService(cartWith(cart.Line{ProductID: "p-headphones", Quantity: 2}), products, users)

	first, err := svc.Summary(context.Background(), buyer)
	require.NoError(t, err)
	second, err := svc.Summary(context.Background(), buyer)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
}

func TestSummaryHandler(t *testing.T) {
	products := &fakeProducts{products: map[string]pricing.Product{"p-headphones": headphones(1)}}

	cases := []struct {
		name   string
		cart   *cart.Cart
		buyer  string
		users  fakeUsers
		status int
		code   string
	}{
		{name: "unauthorized", cart: cartWith(), status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{
			name:   "buyer id is not a user id",
			cart:   cartWith(cart.Line{ProductID: "p-headphones", Quantity: 1}),
			buyer:  "abc",
			status: http.StatusUnauthorized,
			code:   "UNAUTHORIZED",
		},
		{name: "empty cart", cart: nil, buyer: buyer, status: http.StatusBadRequest, code: "EMPTY_CART"},
		{
			name:   "insufficient stock",
			cart:   cartWith(cart.Line{ProductID: "p-headphones", Quantity: 3}),
			buyer:  buyer,
			status: http.StatusConflict,
			code:   "INSUFFICIENT_STOCK",
		},
		{
			name:   "internal failure",
			cart:   cartWith(cart.Line{ProductID: "p-headphones", Quantity: 1}),
			buyer:  buyer,
			users:  fakeUsers{addrErr: errors.New("connection reset")},
			status: http.StatusInternalServerError,
			code:   "INTERNAL",
		},
		{
			name:   "ok",
			cart:   cartWith(cart.Line{ProductID: "p-headphones", Quantity: 1}),
			buyer:  buyer,
			status: http.StatusOK,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &checkout.Handler{Svc: newService(tc.cart, products, tc.users)}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/summary", nil)
			if tc.buyer != "" {
				req = req.WithContext(common.WithUserID(req.Context(), tc.buyer))
			}
			rec := httptest.NewRecorder()
			h.Summary(rec, req)
			require.Equal(t, tc.status, rec.Code)
			if tc.code == "" {
				return
			}
			var body struct {
				Error struct {
					Code    string         `json:"code"`
					Message string         `json:"message"`
					Details map[string]any `json:"details"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tc.code, body.Error.Code)
			switch tc.code {
			case "INSUFFICIENT_STOCK":
				require.Equal(t, "Studio Headphones", body.Error.Details["product"])
				require.EqualValues(t, 1, body.Error.Details["available"])
				require.EqualValues(t, 3, body.Error.Details["requested"])
			case "INTERNAL":
				require.Equal(t, "unable to build checkout summary", body.Error.Message)
				require.NotContains(t, rec.Body.String(), "connection reset")
			}
		})
	}
}
