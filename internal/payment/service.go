package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
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
	// ErrPaymentsDisabled is returned when no provider is configured.
	ErrPaymentsDisabled = common.NewAppError("PAYMENTS_DISABLED", "payments are not configured", http.StatusServiceUnavailable, nil)
	ErrOrderNotFound    = common.NotFound("order not found")
	// ErrOrderNotPayable is returned for orders that are no longer awaiting payment.
	ErrOrderNotPayable = common.Conflict("ORDER_NOT_PAYABLE", "order is not awaiting payment")
	ErrPaymentNotFound = common.NotFound("payment not found")
	ErrAmountMismatch  = common.BadRequest("AMOUNT_MISMATCH", "provider amount does not match the recorded intent")
	ErrProviderFailure = common.NewAppError("PROVIDER_ERROR", "payment provider unavailable", http.StatusBadGateway, nil)
)

// Intent is the buyer-facing projection of a payment intent.
type Intent struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"orderId"`
	Provider     string          `json:"provider"`
	ProviderRef  string          `json:"providerRef"`
	ClientSecret string          `json:"clientSecret,omitempty"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	ExpiresAt    time.Time       `json:"expiresAt"`
	Reused       bool            `json:"reused"`
}

// Event is a provider notification normalised for settlement.
type Event struct {
	ID          string
	ProviderRef string
	AmountMinor int64
	Status      dbgen.PaymentStatus
}

// Service coordinates payment intents and their settlement.
type Service struct {
	Store     Store
	Provider  Provider
	IntentTTL time.Duration
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) intentTTL() time.Duration {
	if s.IntentTTL <= 0 {
		return 30 * time.Minute
	}
	return s.IntentTTL
}

func (s *Service) providerName() string {
	if s.Provider == nil {
		return "none"
	}
	return s.Provider.Name()
}

// CreateIntent opens a payment intent for one of the buyer's pending orders, or
// returns the live intent already recorded for it. The charged amount is always the
// order's stored total, never a client supplied value.
func (s *Service) CreateIntent(ctx context.Context, buyerID, orderID string) (Intent, error) {
	ctx, span := otel.Tracer("payment.Service").Start(ctx, "CreateIntent")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	intent, result, err := s.createIntent(ctx, buyerID, orderID)
	if err != nil {
		span.RecordError(err)
	}
	span.SetAttributes(attribute.String("payment.intent.result", result))
	obs.Observe(obs.PaymentIntentTotal, s.providerName(), result)
	return intent, err
}

func (s *Service) createIntent(ctx context.Context, buyerID, orderID string) (Intent, string, error) {
	if s.Provider == nil {
		return Intent{}, "disabled", ErrPaymentsDisabled
	}
	uid, err := pgconv.ToUUID(buyerID)
	if err != nil {
		return Intent{}, "unauthorized", common.Unauthorized("")
	}
	oid, err := pgconv.ToUUID(orderID)
	if err != nil {
		return Intent{}, "not_found", ErrOrderNotFound
	}
	ord, err := s.Store.GetOrderForUser(ctx, dbgen.GetOrderForUserParams{ID: oid, UserID: uid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Intent{}, "not_found", ErrOrderNotFound
		}
		return Intent{}, "error", fmt.Errorf("get order: %w", err)
	}
	if ord.Status != dbgen.OrderStatusPENDINGPAYMENT {
		return Intent{}, "not_payable", ErrOrderNotPayable
	}

	live, err := s.Store.GetLivePaymentForOrder(ctx, oid)
	switch {
	case err == nil:
		out := toIntent(live)
		out.Reused = true
		return out, "reused", nil
	case !errors.Is(err, pgx.ErrNoRows):
		return Intent{}, "error", fmt.Errorf("get live payment: %w", err)
	}

	// Each recorded intent consumes an attempt.
	attempts, err := s.Store.CountPaymentsForOrder(ctx, oid)
	if err != nil {
		return Intent{}, "error", fmt.Errorf("count payments: %w", err)
	}
	resp, err := s.Provider.CreateIntent(ctx, IntentRequest{
		OrderID:        orderID,
		AmountMinor:    ord.TotalCents,
		Currency:       ord.Currency,
		IdempotencyKey: IntentIdempotencyKey(orderID, attempts+1),
		Metadata:       map[string]string{"buyer_id": buyerID},
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("order_id", orderID).Str("provider", s.Provider.Name()).Msg("create payment intent")
		return Intent{}, "provider_error", common.NewAppError(ErrProviderFailure.Code, ErrProviderFailure.Message, ErrProviderFailure.HTTPStatus, err)
	}
	row, err := s.Store.CreatePayment(ctx, dbgen.CreatePaymentParams{
		OrderID:      oid,
		Provider:     s.Provider.Name(),
		ProviderRef:  resp.Ref,
		ClientSecret: pgconv.Text(resp.ClientSecret),
		AmountCents:  ord.TotalCents,
		Currency:     ord.Currency,
		ExpiresAt:    pgconv.Timestamptz(s.now().Add(s.intentTTL())),
	})
	if err != nil {
		return Intent{}, "error", fmt.Errorf("record payment: %w", err)
	}
	return toIntent(row), "created", nil
}

// IntentIdempotencyKey names the provider request for the given attempt at
// paying orderID. Retries of the same attempt share a key.
func IntentIdempotencyKey(orderID string, attempt int64) string {
	return fmt.Sprintf("order-intent-%s-%d", orderID, attempt)
}

// Settle applies a provider event to the recorded payment. A successful payment
// moves its order from PENDING_PAYMENT to PAID. Replayed events are no-ops.
func (s *Service) Settle(ctx context.Context, ev Event) error {
	ctx, span := otel.Tracer("payment.Service").Start(ctx, "Settle")
	defer span.End()
	span.SetAttributes(attribute.String("payment.ref", ev.ProviderRef), attribute.String("payment.status", string(ev.Status)))

	logger := zerolog.Ctx(ctx)
	return s.Store.WithinTx(ctx, func(q Queries) error {
		p, err := q.GetPaymentByProviderRef(ctx, dbgen.GetPaymentByProviderRefParams{
			Provider:    s.providerName(),
			ProviderRef: ev.ProviderRef,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPaymentNotFound
			}
			return fmt.Errorf("get payment: %w", err)
		}
		if ev.AmountMinor > 0 && ev.AmountMinor != p.AmountCents {
			return ErrAmountMismatch
		}
		if p.Status == ev.Status || p.Status == dbgen.PaymentStatusPAID {
			return nil
		}
		if err := q.UpdatePaymentStatus(ctx, dbgen.UpdatePaymentStatusParams{ID: p.ID, Status: ev.Status}); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}
		if ev.Status != dbgen.PaymentStatusPAID {
			return nil
		}
		if _, err := q.GetOrderForUpdate(ctx, p.OrderID); err != nil {
			return fmt.Errorf("lock order: %w", err)
		}
		affected, err := q.TransitionOrderStatus(ctx, dbgen.TransitionOrderStatusParams{
			Status:     dbgen.OrderStatusPAID,
			ID:         p.OrderID,
			FromStatus: dbgen.OrderStatusPENDINGPAYMENT,
		})
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		if affected == 0 {
			// Captured after the order expired or was canceled; needs a manual refund.
			logger.Warn().Str("order_id", pgconv.UUIDString(p.OrderID)).Str("payment_ref", ev.ProviderRef).
				Msg("payment captured for order that is no longer pending")
		}
		return nil
	})
}

func toIntent(p dbgen.Payment) Intent {
	return Intent{
		ID:           pgconv.UUIDString(p.ID),
		OrderID:      pgconv.UUIDString(p.OrderID),
		Provider:     p.Provider,
		ProviderRef:  p.ProviderRef,
		ClientSecret: pgconv.TextValue(p.ClientSecret),
		Status:       string(p.Status),
		Amount:       pricing.FromMinor(p.AmountCents),
		Currency:     p.Currency,
		ExpiresAt:    pgconv.Time(p.ExpiresAt),
	}
}
