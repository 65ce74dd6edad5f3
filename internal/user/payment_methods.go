package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"

	"github.com/noah-isme/backend-storefront/internal/common"
	dbgen "github.com/noah-isme/backend-storefront/internal/db/gen"
	"github.com/noah-isme/backend-storefront/internal/db/pgconv"
)

var (
	// ErrPaymentMethodNotFound is returned when the method does not belong to the buyer.
	ErrPaymentMethodNotFound = common.NotFound("payment method not found")
	// ErrInvalidPaymentMethod is returned when the provider rejects the token.
	ErrInvalidPaymentMethod = common.NewAppError("INVALID_PAYMENT_METHOD", "payment method could not be verified", http.StatusUnprocessableEntity, nil)
)

// MethodDetails are the non-sensitive attributes a provider reports for a token.
type MethodDetails struct {
	Type     string
	Brand    string
	Last4    string
	ExpMonth int
	ExpYear  int
}

// MethodVerifier resolves a client-side payment token into stored card metadata.
type MethodVerifier interface {
	VerifyMethod(ctx context.Context, token string) (MethodDetails, error)
}

// PaymentMethod is a saved payment instrument without its provider token.
type PaymentMethod struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Brand        *string   `json:"brand"`
	Last4        *string   `json:"last4"`
	ExpMonth     *int      `json:"expMonth"`
	ExpYear      *int      `json:"expYear"`
	BillingName  *string   `json:"billingName"`
	BillingEmail *string   `json:"billingEmail"`
	IsDefault    bool      `json:"isDefault"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PaymentMethodInput is the payload for saving a payment method.
type PaymentMethodInput struct {
	Token        string `json:"token" validate:"required,max=255"`
	BillingName  string `json:"billingName" validate:"max=120"`
	BillingEmail string `json:"billingEmail" validate:"omitempty,email"`
	IsDefault    bool   `json:"isDefault"`
}

// ListPaymentMethods returns saved methods, default first then newest first.
func (s *Service) ListPaymentMethods(ctx context.Context, buyerID string) ([]PaymentMethod, error) {
	ctx, span := otel.Tracer("user.Service").Start(ctx, "ListPaymentMethods")
	defer span.End()

	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return nil, common.Unauthorized("")
	}
	rows, err := s.store.ListPaymentMethods(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	out := make([]PaymentMethod, 0, len(rows))
	for _, row := range rows {
		out = append(out, paymentMethod(row.ID, row.Type, row.Brand, row.Last4, row.ExpMonth, row.ExpYear,
			row.BillingName, row.BillingEmail, row.IsDefault, row.CreatedAt))
	}
	return out, nil
}

// GetPaymentMethod returns one of the buyer's saved methods.
func (s *Service) GetPaymentMethod(ctx context.Context, buyerID, methodID string) (PaymentMethod, error) {
	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return PaymentMethod{}, common.Unauthorized("")
	}
	mid, err := pgconv.ToUUID(methodID)
	if err != nil {
		return PaymentMethod{}, ErrPaymentMethodNotFound
	}
	row, err := s.store.GetPaymentMethod(ctx, dbgen.GetPaymentMethodParams{ID: mid, UserID: uid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PaymentMethod{}, ErrPaymentMethodNotFound
		}
		return PaymentMethod{}, fmt.Errorf("get payment method: %w", err)
	}
	return paymentMethod(row.ID, row.Type, row.Brand, row.Last4, row.ExpMonth, row.ExpYear,
		row.BillingName, row.BillingEmail, row.IsDefault, row.CreatedAt), nil
}

// AddPaymentMethod verifies the token with the provider and stores it server side.
// The first method always becomes the default.
func (s *Service) AddPaymentMethod(ctx context.Context, buyerID string, in PaymentMethodInput) (PaymentMethod, error) {
	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return PaymentMethod{}, common.Unauthorized("")
	}
	in.Token = strings.TrimSpace(in.Token)
	in.BillingName = strings.TrimSpace(in.BillingName)
	in.BillingEmail = strings.TrimSpace(in.BillingEmail)
	if err := common.Validate(in); err != nil {
		return PaymentMethod{}, err
	}
	if s.verifier == nil {
		return PaymentMethod{}, common.NewAppError("PAYMENTS_DISABLED", "saved payment methods are not enabled", http.StatusServiceUnavailable, nil)
	}
	details, err := s.verifier.VerifyMethod(ctx, in.Token)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			return PaymentMethod{}, err
		}
		return PaymentMethod{}, &common.AppError{
			Code:       ErrInvalidPaymentMethod.Code,
			Message:    ErrInvalidPaymentMethod.Message,
			HTTPStatus: ErrInvalidPaymentMethod.HTTPStatus,
			Err:        err,
		}
	}

	var created dbgen.CreatePaymentMethodRow
	err = s.store.WithinTx(ctx, func(q Queries) error {
		count, err := q.CountPaymentMethods(ctx, uid)
		if err != nil {
			return fmt.Errorf("count payment methods: %w", err)
		}
		isDefault := in.IsDefault || count == 0
		if isDefault {
			if err := q.ClearDefaultPaymentMethod(ctx, uid); err != nil {
				return fmt.Errorf("clear default payment method: %w", err)
			}
		}
		created, err = q.CreatePaymentMethod(ctx, dbgen.CreatePaymentMethodParams{
			UserID:        uid,
			Type:          details.Type,
			ProviderToken: in.Token,
			Brand:         pgconv.Text(details.Brand),
			Last4:         pgconv.Text(details.Last4),
			ExpMonth:      pgconv.Int4(details.ExpMonth),
			ExpYear:       pgconv.Int4(details.ExpYear),
			BillingName:   pgconv.Text(in.BillingName),
			BillingEmail:  pgconv.Text(in.BillingEmail),
			IsDefault:     isDefault,
		})
		if err != nil {
			return fmt.Errorf("create payment method: %w", err)
		}
		return nil
	})
	if err != nil {
		return PaymentMethod{}, err
	}
	return paymentMethod(created.ID, created.Type, created.Brand, created.Last4, created.ExpMonth, created.ExpYear,
		created.BillingName, created.BillingEmail, created.IsDefault, created.CreatedAt), nil
}

// DeletePaymentMethod removes a saved method and promotes the newest remaining one
// when the default was deleted.
func (s *Service) DeletePaymentMethod(ctx context.Context, buyerID, methodID string) error {
	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return common.Unauthorized("")
	}
	mid, err := pgconv.ToUUID(methodID)
	if err != nil {
		return ErrPaymentMethodNotFound
	}
	return s.store.WithinTx(ctx, func(q Queries) error {
		wasDefault, err := q.DeletePaymentMethod(ctx, dbgen.DeletePaymentMethodParams{ID: mid, UserID: uid})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPaymentMethodNotFound
			}
			return fmt.Errorf("delete payment method: %w", err)
		}
		if wasDefault {
			if err := q.PromoteNewestPaymentMethod(ctx, uid); err != nil {
				return fmt.Errorf("promote payment method: %w", err)
			}
		}
		return nil
	})
}

func paymentMethod(id pgtype.UUID, typ string, brand, last4 pgtype.Text, expMonth, expYear pgtype.Int4,
	billingName, billingEmail pgtype.Text, isDefault bool, createdAt pgtype.Timestamptz) PaymentMethod {
	return PaymentMethod{
		ID:           pgconv.UUIDString(id),
		Type:         typ,
		Brand:        pgconv.TextPtr(brand),
		Last4:        pgconv.TextPtr(last4),
		ExpMonth:     intPtr(expMonth),
		ExpYear:      intPtr(expYear),
		BillingName:  pgconv.TextPtr(billingName),
		BillingEmail: pgconv.TextPtr(billingEmail),
		IsDefault:    isDefault,
		CreatedAt:    pgconv.Time(createdAt),
	}
}

func intPtr(v pgtype.Int4) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int32)
	return &n
}
