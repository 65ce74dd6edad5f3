package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/noah-isme/backend-storefront/internal/common"
	dbgen "github.com/noah-isme/backend-storefront/internal/db/gen"
	"github.com/noah-isme/backend-storefront/internal/db/pgconv"
)

var (
	// ErrAddressNotFound is returned when the address does not belong to the buyer.
	ErrAddressNotFound = common.NotFound("address not found")
	// ErrUserNotFound is returned when the buyer has no profile row.
	ErrUserNotFound = common.NotFound("user not found")
)

// Address represents a saved shipping address.
type Address struct {
	ID            string    `json:"id"`
	Label         string    `json:"label"`
	RecipientName string    `json:"recipientName"`
	Phone         string    `json:"phone"`
	Line1         string    `json:"line1"`
	Line2         *string   `json:"line2,omitempty"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	PostalCode    string    `json:"postalCode"`
	Country       string    `json:"country"`
	IsDefault     bool      `json:"isDefault"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AddressInput captures payload for creating or updating an address.
type AddressInput struct {
	Label         string `json:"label" validate:"max=50"`
	RecipientName string `json:"recipientName" validate:"required,max=120"`
	Phone         string `json:"phone" validate:"required,max=32"`
	Line1         string `json:"line1" validate:"required,max=200"`
	Line2         string `json:"line2" validate:"max=200"`
	City          string `json:"city" validate:"required,max=100"`
	State         string `json:"state" validate:"required,max=100"`
	PostalCode    string `json:"postalCode" validate:"required,max=20"`
	Country       string `json:"country" validate:"required,iso3166_1_alpha2"`
	IsDefault     bool   `json:"isDefault"`
}

// Profile is the buyer subset shown at checkout.
type Profile struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     *string `json:"phone"`
}

// Service manages buyer addresses, saved payment methods and profile reads.
type Service struct {
	store    Store
	verifier MethodVerifier
}

// NewService constructs a Service. verifier may be nil when saved cards are disabled.
func NewService(store Store, verifier MethodVerifier) *Service {
	return &Service{store: store, verifier: verifier}
}

// Profile returns the buyer's profile subset.
func (s *Service) Profile(ctx context.Context, buyerID string) (Profile, error) {
	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return Profile{}, common.Unauthorized("")
	}
	row, err := s.store.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, fmt.Errorf("get user: %w", err)
	}
	return Profile{
		ID:        pgconv.UUIDString(row.ID),
		Email:     row.Email,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Phone:     pgconv.TextPtr(row.Phone),
	}, nil
}

// ListAddresses returns the buyer's addresses, default first then newest first.
func (s *Service) ListAddresses(ctx context.Context, buyerID string) ([]Address, error) {
	ctx, span := otel.Tracer("user.Service").Start(ctx, "ListAddresses")
	defer span.End()

	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return nil, common.Unauthorized("")
	}
	rows, err := s.store.ListAddresses(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	out := make([]Address, 0, len(rows))
	for _, row := range rows {
		out = append(out, convertAddress(row))
	}
	return out, nil
}

// CreateAddress stores a new address. The first address always becomes the default.
func (s *Service) CreateAddress(ctx context.Context, buyerID string, in AddressInput) (Address, error) {
	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return Address{}, common.Unauthorized("")
	}
	in = normalizeAddress(in)
	if err := common.Validate(in); err != nil {
		return Address{}, err
	}

	var created dbgen.Address
	err = s.store.WithinTx(ctx, func(q Queries) error {
		count, err := q.CountAddresses(ctx, uid)
		if err != nil {
			return fmt.Errorf("count addresses: %w", err)
		}
		isDefault := in.IsDefault || count == 0
		if isDefault {
			if err := q.ClearDefaultAddress(ctx, uid); err != nil {
				return fmt.Errorf("clear default address: %w", err)
			}
		}
		created, err = q.CreateAddress(ctx, dbgen.CreateAddressParams{
			UserID:        uid,
			Label:         in.Label,
			RecipientName: in.RecipientName,
			Phone:         in.Phone,
			Line1:         in.Line1,
			Line2:         pgconv.Text(in.Line2),
			City:          in.City,
			State:         in.State,
			PostalCode:    in.PostalCode,
			Country:       in.Country,
			IsDefault:     isDefault,
		})
		if err != nil {
			return fmt.Errorf("create address: %w", err)
		}
		return nil
	})
	if err != nil {
		return Address{}, err
	}
	return convertAddress(created), nil
}

// UpdateAddress replaces an address. The current default cannot be unset directly;
// another address must be made default instead.
func (s *Service) UpdateAddress(ctx context.Context, buyerID, addressID string, in AddressInput) (Address, error) {
	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return Address{}, common.Unauthorized("")
	}
	aid, err := pgconv.ToUUID(addressID)
	if err != nil {
		return Address{}, ErrAddressNotFound
	}
	in = normalizeAddress(in)
	if err := common.Validate(in); err != nil {
		return Address{}, err
	}

	var updated dbgen.Address
	err = s.store.WithinTx(ctx, func(q Queries) error {
		existing, err := q.GetAddress(ctx, dbgen.GetAddressParams{ID: aid, UserID: uid})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrAddressNotFound
			}
			return fmt.Errorf("get address: %w", err)
		}
		isDefault := in.IsDefault || existing.IsDefault
		if in.IsDefault && !existing.IsDefault {
			if err := q.ClearDefaultAddress(ctx, uid); err != nil {
				return fmt.Errorf("clear default address: %w", err)
			}
		}
		updated, err = q.UpdateAddress(ctx, dbgen.UpdateAddressParams{
			ID:            aid,
			UserID:        uid,
			Label:         in.Label,
			RecipientName: in.RecipientName,
			Phone:         in.Phone,
			Line1:         in.Line1,
			Line2:         pgconv.Text(in.Line2),
			City:          in.City,
			State:         in.State,
			PostalCode:    in.PostalCode,
			Country:       in.Country,
			IsDefault:     isDefault,
		})
		if err != nil {
			return fmt.Errorf("update address: %w", err)
		}
		return nil
	})
	if err != nil {
		return Address{}, err
	}
	return convertAddress(updated), nil
}

// DeleteAddress removes an address and promotes the newest remaining one when the
// default was deleted.
func (s *Service) DeleteAddress(ctx context.Context, buyerID, addressID string) error {
	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return common.Unauthorized("")
	}
	aid, err := pgconv.ToUUID(addressID)
	if err != nil {
		return ErrAddressNotFound
	}
	return s.store.WithinTx(ctx, func(q Queries) error {
		wasDefault, err := q.DeleteAddress(ctx, dbgen.DeleteAddressParams{ID: aid, UserID: uid})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrAddressNotFound
			}
			return fmt.Errorf("delete address: %w", err)
		}
		if wasDefault {
			if err := q.PromoteNewestAddress(ctx, uid); err != nil {
				return fmt.Errorf("promote address: %w", err)
			}
		}
		return nil
	})
}

func normalizeAddress(in AddressInput) AddressInput {
	in.Label = strings.TrimSpace(in.Label)
	in.RecipientName = strings.TrimSpace(in.RecipientName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Line1 = strings.TrimSpace(in.Line1)
	in.Line2 = strings.TrimSpace(in.Line2)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.Country = strings.ToUpper(strings.TrimSpace(in.Country))
	return in
}

func convertAddress(row dbgen.Address) Address {
	return Address{
		ID:            pgconv.UUIDString(row.ID),
		Label:         row.Label,
		RecipientName: row.RecipientName,
		Phone:         row.Phone,
		Line1:         row.Line1,
		Line2:         pgconv.TextPtr(row.Line2),
		City:          row.City,
		State:         row.State,
		PostalCode:    row.PostalCode,
		Country:       row.Country,
		IsDefault:     row.IsDefault,
		CreatedAt:     pgconv.Time(row.CreatedAt),
	}
}
