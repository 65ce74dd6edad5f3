package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/noah-isme/backend-storefront/internal/common"
	dbgen "github.com/noah-isme/backend-storefront/internal/db/gen"
)

const maxWebhookBody = 64 << 10

// Webhook receives Stripe event callbacks, verifies their signature and settles
// the matching payment.
type Webhook struct {
	Svc       *Service
	Secret    string
	Replay    *redis.Client
	ReplayTTL time.Duration
}

// Handle serves POST /api/v1/payments/webhook/stripe.
func (h Webhook) Handle(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil || h.Secret == "" {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "payment webhook not configured", nil)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "unable to read payload", nil)
		return
	}
	event, err := webhook.ConstructEventWithOptions(body, r.Header.Get("Stripe-Signature"), h.Secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		common.JSONError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "signature verification failed", nil)
		return
	}

	logger := zerolog.Ctx(r.Context()).With().Str("event_id", event.ID).Str("event_type", string(event.Type)).Logger()
	status, ok := eventStatus(event.Type)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil || intent.ID == "" {
		common.JSONError(w, http.StatusBadRequest, "WEBHOOK_INVALID", "event does not carry a payment intent", nil)
		return
	}

	replayKey := "wh:stripe:" + event.ID
	if h.Replay != nil && h.ReplayTTL > 0 {
		fresh, err := h.Replay.SetNX(r.Context(), replayKey, "1", h.ReplayTTL).Result()
		if err != nil {
			common.WriteError(w, r, common.Internal("replay store unavailable", err))
			return
		}
		if !fresh {
			logger.Debug().Msg("duplicate webhook ignored")
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}

	amount := intent.AmountReceived
	if amount == 0 {
		amount = intent.Amount
	}
	err = h.Svc.Settle(r.Context(), Event{ID: event.ID, ProviderRef: intent.ID, AmountMinor: amount, Status: status})
	switch {
	case err == nil:
		logger.Info().Str("payment_ref", intent.ID).Str("status", string(status)).Msg("payment settled")
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ErrPaymentNotFound):
		// Intents opened outside this service are acknowledged so Stripe stops retrying.
		logger.Warn().Str("payment_ref", intent.ID).Msg("webhook for unknown payment")
		w.WriteHeader(http.StatusNoContent)
	default:
		if h.Replay != nil && h.ReplayTTL > 0 {
			_ = h.Replay.Del(r.Context(), replayKey).Err()
		}
		common.WriteError(w, r, err)
	}
}

// eventStatus maps the PaymentIntent events that change a payment's status.
// payment_intent.payment_failed is ignored: the intent stays open for a retry.
func eventStatus(t stripe.EventType) (dbgen.PaymentStatus, bool) {
	switch t {
	case "payment_intent.succeeded":
		return dbgen.PaymentStatusPAID, true
	case "payment_intent.canceled":
		return dbgen.PaymentStatusFAILED, true
	default:
		return "", false
	}
}
