package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	dbgen "github.com/noah-isme/backend-storefront/internal/db/gen"
	"github.com/noah-isme/backend-storefront/internal/db/pgconv"
	"github.com/noah-isme/backend-storefront/internal/pricing"
)

// WishlistQueries is the subset of generated queries the wishlist relies on.
type WishlistQueries interface {
	AddWishlistItem(ctx context.Context, arg dbgen.AddWishlistItemParams) error
	DeleteWishlistItem(ctx context.Context, arg dbgen.DeleteWishlistItemParams) (int64, error)
	ListWishlist(ctx context.Context, userID pgtype.UUID) ([]dbgen.ListWishlistRow, error)
	GetProductByID(ctx context.Context, id pgtype.UUID) (dbgen.Product, error)
}

// WishlistItem is a saved product, newest first.
type WishlistItem struct {
	ProductID       string          `json:"productId"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	ImageURL        *string         `json:"imageUrl,omitempty"`
	OriginalPrice   decimal.Decimal `json:"originalPrice"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	InStock         bool            `json:"inStock"`
	AddedAt         time.Time       `json:"addedAt"`
}

// Wishlist manages saved products.
type Wishlist struct {
	Q WishlistQueries
}

// Add saves a product. Adding twice is a no-op.
func (w *Wishlist) Add(ctx context.Context, buyerID, productID string) error {
	if w == nil || w.Q == nil {
		return errors.New("wishlist not configured")
	}
	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return fmt.Errorf("parse buyer id: %w", err)
	}
	pid, err := pgconv.ToUUID(productID)
	if err != nil {
		return ErrProductNotFound
	}
	if _, err := w.Q.GetProductByID(ctx, pid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("get product: %w", err)
	}
	if err := w.Q.AddWishlistItem(ctx, dbgen.AddWishlistItemParams{UserID: uid, ProductID: pid}); err != nil {
		return fmt.Errorf("add wishlist item: %w", err)
	}
	return nil
}

// Remove deletes a saved product.
func (w *Wishlist) Remove(ctx context.Context, buyerID, productID string) error {
	if w == nil || w.Q == nil {
		return errors.New("wishlist not configured")
	}
	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return fmt.Errorf("parse buyer id: %w", err)
	}
	pid, err := pgconv.ToUUID(productID)
	if err != nil {
		return ErrItemNotFound
	}
	n, err := w.Q.DeleteWishlistItem(ctx, dbgen.DeleteWishlistItemParams{UserID: uid, ProductID: pid})
	if err != nil {
		return fmt.Errorf("delete wishlist item: %w", err)
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// List returns the buyer's saved products.
func (w *Wishlist) List(ctx context.Context, buyerID string) ([]WishlistItem, error) {
	if w == nil || w.Q == nil {
		return nil, errors.New("wishlist not configured")
	}
	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return nil, fmt.Errorf("parse buyer id: %w", err)
	}
	rows, err := w.Q.ListWishlist(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	items := make([]WishlistItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, WishlistItem{
			ProductID:       pgconv.UUIDString(row.ProductID),
			Name:            row.Name,
			Slug:            row.Slug,
			ImageURL:        pgconv.TextPtr(row.ImageUrl),
			OriginalPrice:   pricing.FromMinor(row.BasePriceCents),
			DiscountedPrice: pricing.FromMinor(row.DiscountedPriceCents),
			InStock:         row.Stock > 0,
			AddedAt:         pgconv.Time(row.CreatedAt),
		})
	}
	return items, nil
}
