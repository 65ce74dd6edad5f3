package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-storefront/internal/common"
	dbgen "github.com/noah-isme/backend-storefront/internal/db/gen"
	"github.com/noah-isme/backend-storefront/internal/db/pgconv"
	"github.com/noah-isme/backend-storefront/internal/obs"
	"github.com/noah-isme/backend-storefront/internal/pricing"
)

var (
	// ErrProductNotFound is returned when the referenced product does not exist.
	ErrProductNotFound = common.NotFound("product not found")
	// ErrDealNotFound is returned when the referenced deal does not exist.
	ErrDealNotFound = common.NotFound("deal not found")
)

type queryProvider interface {
	GetProductByID(ctx context.Context, id pgtype.UUID) (dbgen.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (dbgen.Product, error)
	ListProducts(ctx context.Context, arg dbgen.ListProductsParams) ([]dbgen.Product, error)
	CountProducts(ctx context.Context, search pgtype.Text) (int64, error)
	ListDealsByProduct(ctx context.Context, productID pgtype.UUID) ([]dbgen.Deal, error)
	ListDealsForProducts(ctx context.Context, productIds []pgtype.UUID) ([]dbgen.ListDealsForProductsRow, error)
	CreateDeal(ctx context.Context, arg dbgen.CreateDealParams) (dbgen.Deal, error)
	GetDeal(ctx context.Context, id pgtype.UUID) (dbgen.Deal, error)
	AttachDeal(ctx context.Context, arg dbgen.AttachDealParams) error
	DetachDeal(ctx context.Context, arg dbgen.DetachDealParams) (int64, error)
}

// Service serves product snapshots, public listings and deal administration.
type Service struct {
	queries      queryProvider
	cache        *Cache
	now          func() time.Time
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries      queryProvider
	Cache        *Cache
	Now          func() time.Time
	DefaultLimit int
	MaxLimit     int
}

// ListParams captures filters for product listing.
type ListParams struct {
	Query string
	Page  int
	Limit int
}

// ProductView is the public projection of a product priced at the current instant.
type ProductView struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Description     string          `json:"description"`
	ImageURL        *string         `json:"imageUrl,omitempty"`
	OriginalPrice   decimal.Decimal `json:"originalPrice"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	EffectivePrice  decimal.Decimal `json:"effectivePrice"`
	Savings         decimal.Decimal `json:"savings"`
	Stock           int             `json:"stock"`
	InStock         bool            `json:"inStock"`
	ActiveDeal      *pricing.Deal   `json:"activeDeal"`
}

// ProductListResult contains list data and pagination metadata.
type ProductListResult struct {
	Items []ProductView
	Total int64
	Page  int
	Limit int
}

// DealInput is the payload accepted when creating a deal.
type DealInput struct {
	Name            string          `json:"name" validate:"required,max=120"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	StartsAt        time.Time       `json:"startsAt" validate:"required"`
	EndsAt          time.Time       `json:"endsAt" validate:"required,gtfield=StartsAt"`
}

var hundred = decimal.NewFromInt(100)

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries provider is required")
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = common.MaxPerPage
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		queries:      cfg.Queries,
		cache:        cfg.Cache,
		now:          now,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ParseListParams normalises raw query values into list filters.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{Page: 1, Limit: s.defaultLimit}
	params.Query = strings.TrimSpace(values.Get("q"))

	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, badRequest("page", "page must be a positive integer", err)
		}
		params.Page = page
	}
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return params, badRequest("limit", "limit must be a positive integer", err)
		}
		params.Limit = limit
	}
	if params.Limit > s.maxLimit {
		params.Limit = s.maxLimit
	}
	return params, nil
}

// ProductSnapshot returns the pricing snapshot of a product with its deals ordered by
// start time. Snapshots are cached in Redis until the product or its deals change.
func (s *Service) ProductSnapshot(ctx context.Context, productID string) (pricing.Product, error) {
	ctx, span := otel.Tracer("catalog.Service").Start(ctx, "ProductSnapshot")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", productID))

	id, err := pgconv.ToUUID(productID)
	if err != nil {
		return pricing.Product{}, ErrProductNotFound
	}
	key := productCacheKey(productID)
	if s.cache != nil {
		var cached pricing.Product
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		switch {
		case err != nil:
			obs.Observe(obs.CatalogCacheTotal, "error")
			zerolog.Ctx(ctx).Warn().Err(err).Str("product_id", productID).Msg("product cache read failed")
		case ok:
			obs.Observe(obs.CatalogCacheTotal, "hit")
			return cached, nil
		default:
			obs.Observe(obs.CatalogCacheTotal, "miss")
		}
	}

	row, err := s.queries.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.Product{}, ErrProductNotFound
		}
		return pricing.Product{}, fmt.Errorf("get product: %w", err)
	}
	deals, err := s.queries.ListDealsByProduct(ctx, id)
	if err != nil {
		return pricing.Product{}, fmt.Errorf("list product deals: %w", err)
	}
	converted, err := DealsFromRows(deals)
	if err != nil {
		return pricing.Product{}, err
	}
	snapshot := SnapshotFromRow(row, converted)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, snapshot); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("product_id", productID).Msg("product cache write failed")
		}
	}
	return snapshot, nil
}

// Invalidate drops cached snapshots for the given products.
func (s *Service) Invalidate(ctx context.Context, productIDs ...string) error {
	if s.cache == nil || len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, productCacheKey(id))
	}
	return s.cache.Delete(ctx, keys...)
}

// ListProducts returns a page of products priced at the current instant.
func (s *Service) ListProducts(ctx context.Context, params ListParams) (ProductListResult, error) {
	ctx, span := otel.Tracer("catalog.Service").Start(ctx, "ListProducts")
	defer span.End()

	search := pgtype.Text{}
	if params.Query != "" {
		search = pgconv.Text(params.Query)
	}
	total, err := s.queries.CountProducts(ctx, search)
	if err != nil {
		return ProductListResult{}, fmt.Errorf("count products: %w", err)
	}
	offset := (params.Page - 1) * params.Limit
	if offset < 0 {
		offset = 0
	}
	rows, err := s.queries.ListProducts(ctx, dbgen.ListProductsParams{
		Search:     search,
		PageLimit:  int32(params.Limit),
		PageOffset: int32(offset),
	})
	if err != nil {
		return ProductListResult{}, fmt.Errorf("list products: %w", err)
	}

	dealsByProduct := map[string][]pricing.Deal{}
	if len(rows) > 0 {
		ids := make([]pgtype.UUID, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		dealRows, err := s.queries.ListDealsForProducts(ctx, ids)
		if err != nil {
			return ProductListResult{}, fmt.Errorf("list deals for products: %w", err)
		}
		for _, d := range dealRows {
			deal, err := dealFromRow(d.ID, d.Name, d.DiscountPercent, d.StartsAt, d.EndsAt)
			if err != nil {
				return ProductListResult{}, err
			}
			pid := pgconv.UUIDString(d.ProductID)
			dealsByProduct[pid] = append(dealsByProduct[pid], deal)
		}
	}

	now := s.now()
	items := make([]ProductView, 0, len(rows))
	for _, row := range rows {
		items = append(items, s.view(row, dealsByProduct[pgconv.UUIDString(row.ID)], now))
	}
	return ProductListResult{Items: items, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

// ProductBySlug returns the public view of a single product.
func (s *Service) ProductBySlug(ctx context.Context, slug string) (ProductView, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductView{}, badRequest("slug", "slug is required", nil)
	}
	row, err := s.queries.GetProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductView{}, ErrProductNotFound
		}
		return ProductView{}, fmt.Errorf("get product by slug: %w", err)
	}
	deals, err := s.queries.ListDealsByProduct(ctx, row.ID)
	if err != nil {
		return ProductView{}, fmt.Errorf("list product deals: %w", err)
	}
	converted := make([]pricing.Deal, 0, len(deals))
	for _, d := range deals {
		deal, err := dealFromRow(d.ID, d.Name, d.DiscountPercent, d.StartsAt, d.EndsAt)
		if err != nil {
			return ProductView{}, err
		}
		converted = append(converted, deal)
	}
	return s.view(row, converted, s.now()), nil
}

// CreateDeal validates and stores a new deal. The window is validated here only;
// readers trust stored deals.
func (s *Service) CreateDeal(ctx context.Context, in DealInput) (pricing.Deal, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := common.Validate(in); err != nil {
		return pricing.Deal{}, err
	}
	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(hundred) {
		return pricing.Deal{}, common.Validation(nil, map[string]string{"discountPercent": "between=0,100"})
	}
	row, err := s.queries.CreateDeal(ctx, dbgen.CreateDealParams{
		Name:            in.Name,
		DiscountPercent: pgconv.Numeric(in.DiscountPercent),
		StartsAt:        pgconv.Timestamptz(in.StartsAt),
		EndsAt:          pgconv.Timestamptz(in.EndsAt),
	})
	if err != nil {
		return pricing.Deal{}, fmt.Errorf("create deal: %w", err)
	}
	return dealFromRow(row.ID, row.Name, row.DiscountPercent, row.StartsAt, row.EndsAt)
}

// AttachDeal links a deal to a product and drops the product's cached snapshot.
func (s *Service) AttachDeal(ctx context.Context, productID, dealID string) error {
	pid, did, err := s.resolveLink(ctx, productID, dealID)
	if err != nil {
		return err
	}
	if err := s.queries.AttachDeal(ctx, dbgen.AttachDealParams{ProductID: pid, DealID: did}); err != nil {
		return fmt.Errorf("attach deal: %w", err)
	}
	s.invalidateQuietly(ctx, productID)
	return nil
}

// DetachDeal removes a product/deal link.
func (s *Service) DetachDeal(ctx context.Context, productID, dealID string) error {
	pid, err := pgconv.ToUUID(productID)
	if err != nil {
		return ErrProductNotFound
	}
	did, err := pgconv.ToUUID(dealID)
	if err != nil {
		return ErrDealNotFound
	}
	n, err := s.queries.DetachDeal(ctx, dbgen.DetachDealParams{ProductID: pid, DealID: did})
	if err != nil {
		return fmt.Errorf("detach deal: %w", err)
	}
	if n == 0 {
		return common.NotFound("deal is not attached to product")
	}
	s.invalidateQuietly(ctx, productID)
	return nil
}

func (s *Service) resolveLink(ctx context.Context, productID, dealID string) (pgtype.UUID, pgtype.UUID, error) {
	pid, err := pgconv.ToUUID(productID)
	if err != nil {
		return pgtype.UUID{}, pgtype.UUID{}, ErrProductNotFound
	}
	did, err := pgconv.ToUUID(dealID)
	if err != nil {
		return pgtype.UUID{}, pgtype.UUID{}, ErrDealNotFound
	}
	if _, err := s.queries.GetProductByID(ctx, pid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgtype.UUID{}, pgtype.UUID{}, ErrProductNotFound
		}
		return pgtype.UUID{}, pgtype.UUID{}, fmt.Errorf("get product: %w", err)
	}
	if _, err := s.queries.GetDeal(ctx, did); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgtype.UUID{}, pgtype.UUID{}, ErrDealNotFound
		}
		return pgtype.UUID{}, pgtype.UUID{}, fmt.Errorf("get deal: %w", err)
	}
	return pid, did, nil
}

func (s *Service) invalidateQuietly(ctx context.Context, productIDs ...string) {
	if err := s.Invalidate(ctx, productIDs...); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Strs("product_ids", productIDs).Msg("product cache invalidation failed")
	}
}

func (s *Service) view(row dbgen.Product, deals []pricing.Deal, now time.Time) ProductView {
	snapshot := SnapshotFromRow(row, deals)
	deal := pricing.ResolveActiveDeal(snapshot.Deals, now)
	effective, savings := pricing.EffectivePrice(snapshot.BasePrice, snapshot.DiscountedPrice, deal)
	return ProductView{
		ID:              snapshot.ID,
		Name:            snapshot.Name,
		Slug:            snapshot.Slug,
		Description:     row.Description,
		ImageURL:        pgconv.TextPtr(row.ImageUrl),
		OriginalPrice:   snapshot.BasePrice,
		DiscountedPrice: snapshot.DiscountedPrice,
		EffectivePrice:  pricing.RoundCents(effective),
		Savings:         pricing.RoundCents(savings),
		Stock:           snapshot.Stock,
		InStock:         snapshot.Stock > 0,
		ActiveDeal:      deal,
	}
}

// SnapshotFromRow converts a stored product and its deals into a pricing snapshot.
// Deals must already be in resolution order.
func SnapshotFromRow(row dbgen.Product, deals []pricing.Deal) pricing.Product {
	if deals == nil {
		deals = []pricing.Deal{}
	}
	return pricing.Product{
		ID:              pgconv.UUIDString(row.ID),
		Name:            row.Name,
		Slug:            row.Slug,
		BasePrice:       pricing.FromMinor(row.BasePriceCents),
		DiscountedPrice: pricing.FromMinor(row.DiscountedPriceCents),
		Stock:           int(row.Stock),
		ImageURL:        pgconv.TextValue(row.ImageUrl),
		Deals:           deals,
	}
}

// DealsFromRows converts stored deals, preserving their order.
func DealsFromRows(rows []dbgen.Deal) ([]pricing.Deal, error) {
	out := make([]pricing.Deal, 0, len(rows))
	for _, d := range rows {
		deal, err := dealFromRow(d.ID, d.Name, d.DiscountPercent, d.StartsAt, d.EndsAt)
		if err != nil {
			return nil, err
		}
		out = append(out, deal)
	}
	return out, nil
}

func dealFromRow(id pgtype.UUID, name string, pct pgtype.Numeric, startsAt, endsAt pgtype.Timestamptz) (pricing.Deal, error) {
	percent, err := pgconv.Decimal(pct)
	if err != nil {
		return pricing.Deal{}, fmt.Errorf("deal %s discount: %w", pgconv.UUIDString(id), err)
	}
	return pricing.Deal{
		ID:              pgconv.UUIDString(id),
		Name:            name,
		DiscountPercent: percent,
		StartsAt:        pgconv.Time(startsAt),
		EndsAt:          pgconv.Time(endsAt),
	}, nil
}

func productCacheKey(id string) string {
	return "catalog:product:" + id
}

func badRequest(field, message string, err error) *common.AppError {
	return &common.AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details: map[string]any{
			"field": field,
		},
	}
}
