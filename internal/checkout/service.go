package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/backend-storefront/internal/cart"
	"github.com/noah-isme/backend-storefront/internal/common"
	"github.com/noah-isme/backend-storefront/internal/obs"
	"github.com/noah-isme/backend-storefront/internal/pricing"
	"github.com/noah-isme/backend-storefront/internal/user"
)

var (
	// ErrUnauthorized is returned when the request carries no valid buyer identity.
	ErrUnauthorized = common.Unauthorized("")
	// ErrEmptyCart is returned when the buyer has no cart or the cart has no lines.
	ErrEmptyCart = common.BadRequest("EMPTY_CART", "cart is empty")
)

// CartReader loads the buyer's cart with its lines in persisted order.
type CartReader interface {
	CartWithLines(ctx context.Context, buyerID string) (*cart.Cart, error)
}

// ProductReader loads a product snapshot including its deals.
type ProductReader interface {
	ProductSnapshot(ctx context.Context, productID string) (pricing.Product, error)
}

// AddressLister lists saved addresses, default first then newest first.
type AddressLister interface {
	ListAddresses(ctx context.Context, buyerID string) ([]user.Address, error)
}

// PaymentMethodLister lists saved payment methods without provider tokens.
type PaymentMethodLister interface {
	ListPaymentMethods(ctx context.Context, buyerID string) ([]user.PaymentMethod, error)
}

// ProfileReader loads the buyer's profile subset.
type ProfileReader interface {
	Profile(ctx context.Context, buyerID string) (user.Profile, error)
}

// Summary is the read-only checkout snapshot presented before payment.
type Summary struct {
	Cart           CartView             `json:"cart"`
	OrderSummary   OrderSummaryView     `json:"orderSummary"`
	Addresses      []user.Address       `json:"addresses"`
	PaymentMethods []user.PaymentMethod `json:"paymentMethods"`
	User           user.Profile         `json:"user"`
}

// CartView projects the priced cart.
type CartView struct {
	ID        string     `json:"id"`
	Items     []LineView `json:"items"`
	ItemCount int        `json:"itemCount"`
}

// LineView is one priced cart line.
type LineView struct {
	ProductID      string          `json:"productId"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	ImageURL       string          `json:"imageUrl"`
	OriginalPrice  decimal.Decimal `json:"originalPrice"`
	EffectivePrice decimal.Decimal `json:"effectivePrice"`
	Savings        decimal.Decimal `json:"savings"`
	Quantity       int             `json:"quantity"`
	LineTotal      decimal.Decimal `json:"lineTotal"`
	Stock          int             `json:"stock"`
	ActiveDeal     *DealSummary    `json:"activeDeal"`
}

// DealSummary describes the deal applied to a line.
type DealSummary struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	EndsAt          time.Time       `json:"endsAt"`
}

// OrderSummaryView adds free shipping flags to the monetary breakdown.
type OrderSummaryView struct {
	pricing.OrderSummary
	FreeShippingEligible  bool            `json:"freeShippingEligible"`
	FreeShippingThreshold decimal.Decimal `json:"freeShippingThreshold"`
}

// Service assembles checkout summaries.
type Service struct {
	Carts          CartReader
	Products       ProductReader
	Addresses      AddressLister
	PaymentMethods PaymentMethodLister
	Profiles       ProfileReader
	Pricing        pricing.Config
	Now            func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Summary prices the buyer's cart and gathers the addresses, payment methods and
// profile needed to place an order. It never mutates state.
//
// Lines are processed in cart order and the first out of stock line aborts the
// whole summary with *pricing.InsufficientStockError.
func (s *Service) Summary(ctx context.Context, buyerID string) (Summary, error) {
	ctx, span := otel.Tracer("checkout.Service").Start(ctx, "Summary")
	defer span.End()

	out, err := s.summary(ctx, buyerID)
	result := "ok"
	var stockErr *pricing.InsufficientStockError
	switch {
	case err == nil:
	case errors.Is(err, ErrUnauthorized):
		result = "unauthorized"
	case errors.Is(err, ErrEmptyCart):
		result = "empty_cart"
	case errors.As(err, &stockErr):
		result = "insufficient_stock"
	default:
		result = "error"
		span.RecordError(err)
	}
	span.SetAttributes(attribute.String("checkout.result", result))
	obs.Observe(obs.CheckoutSummaryTotal, result)
	return out, err
}

func (s *Service) summary(ctx context.Context, buyerID string) (Summary, error) {
	if _, err := uuid.Parse(buyerID); err != nil {
		return Summary{}, ErrUnauthorized
	}
	c, err := s.Carts.CartWithLines(ctx, buyerID)
	if err != nil {
		return Summary{}, fmt.Errorf("load cart: %w", err)
	}
	if c == nil || len(c.Lines) == 0 {
		return Summary{}, ErrEmptyCart
	}

	now := s.now()
	lines := make([]pricing.Line, 0, len(c.Lines))
	for _, cl := range c.Lines {
		product, err := s.Products.ProductSnapshot(ctx, cl.ProductID)
		if err != nil {
			return Summary{}, fmt.Errorf("load product %s: %w", cl.ProductID, err)
		}
		if err := pricing.CheckStock(cl.Quantity, product.Stock, product.Name); err != nil {
			return Summary{}, err
		}
		lines = append(lines, pricing.PriceLine(product, cl.Quantity, now))
	}
	totals := s.Pricing.Calculate(pricing.Subtotal(lines), decimal.Zero)

	out := Summary{
		Cart: CartView{ID: c.ID, Items: make([]LineView, 0, len(lines)), ItemCount: c.ItemCount()},
		OrderSummary: OrderSummaryView{
			OrderSummary:          totals,
			FreeShippingEligible:  totals.FreeShipping(),
			FreeShippingThreshold: s.Pricing.FreeShippingThreshold,
		},
	}
	for _, l := range lines {
		out.Cart.Items = append(out.Cart.Items, lineView(l))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addresses, err := s.Addresses.ListAddresses(gctx, buyerID)
		if err != nil {
			return fmt.Errorf("list addresses: %w", err)
		}
		out.Addresses = addresses
		return nil
	})
	g.Go(func() error {
		methods, err := s.PaymentMethods.ListPaymentMethods(gctx, buyerID)
		if err != nil {
			return fmt.Errorf("list payment methods: %w", err)
		}
		out.PaymentMethods = methods
		return nil
	})
	g.Go(func() error {
		profile, err := s.Profiles.Profile(gctx, buyerID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		out.User = profile
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	if out.Addresses == nil {
		out.Addresses = []user.Address{}
	}
	if out.PaymentMethods == nil {
		out.PaymentMethods = []user.PaymentMethod{}
	}
	return out, nil
}

func lineView(l pricing.Line) LineView {
	v := LineView{
		ProductID:      l.Product.ID,
		Name:           l.Product.Name,
		Slug:           l.Product.Slug,
		ImageURL:       l.Product.ImageURL,
		OriginalPrice:  l.Product.BasePrice,
		EffectivePrice: pricing.RoundCents(l.EffectivePrice),
		Savings:        pricing.RoundCents(l.Savings),
		Quantity:       l.Quantity,
		LineTotal:      l.LineTotal,
		Stock:          l.Product.Stock,
	}
	if l.ActiveDeal != nil {
		v.ActiveDeal = &DealSummary{
			ID:              l.ActiveDeal.ID,
			Name:            l.ActiveDeal.Name,
			DiscountPercent: l.ActiveDeal.DiscountPercent,
			EndsAt:          l.ActiveDeal.EndsAt,
		}
	}
	return v
}
