package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-storefront/internal/resilience"
	"github.com/noah-isme/backend-storefront/internal/user"
)

const providerStripe = "stripe"

type stripeIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripePaymentMethodAPI interface {
	Get(id string, params *stripe.PaymentMethodParams) (*stripe.PaymentMethod, error)
}

// StripeConfig configures the Stripe adapters.
type StripeConfig struct {
	APIKey    string
	AccountID string
	Timeout   time.Duration
	// Breaker, when set, fails Stripe calls fast while the API is unhealthy.
	Breaker *resilience.Breaker

	intents        stripeIntentAPI
	paymentMethods stripePaymentMethodAPI
}

func (cfg StripeConfig) api() (*client.API, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("stripe: api key is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: resilience.Transport{
			Base:    otelhttp.NewTransport(http.DefaultTransport),
			Breaker: cfg.Breaker,
		},
	}
	return client.New(key, stripe.NewBackends(httpClient)), nil
}

// StripeProvider opens PaymentIntents through the Stripe API.
type StripeProvider struct {
	intents stripeIntentAPI
	account string
}

// NewStripeProvider constructs a Stripe provider.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	intents := cfg.intents
	if intents == nil {
		sc, err := cfg.api()
		if err != nil {
			return nil, err
		}
		intents = sc.PaymentIntents
	}
	return &StripeProvider{intents: intents, account: strings.TrimSpace(cfg.AccountID)}, nil
}

// Name implements Provider.
func (p *StripeProvider) Name() string { return providerStripe }

// CreateIntent implements Provider.
func (p *StripeProvider) CreateIntent(ctx context.Context, req IntentRequest) (IntentResponse, error) {
	if p == nil {
		return IntentResponse{}, errors.New("stripe: provider is nil")
	}
	if req.AmountMinor <= 0 {
		return IntentResponse{}, fmt.Errorf("stripe: amount must be positive, got %d", req.AmountMinor)
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		params.SetIdempotencyKey(key)
	}
	if p.account != "" {
		params.SetStripeAccount(p.account)
	}
	params.AddMetadata("order_id", req.OrderID)
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	intent, err := p.intents.New(params)
	if err != nil {
		return IntentResponse{}, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return IntentResponse{
		Ref:          intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}, nil
}

// StripeMethodVerifier resolves saved card metadata from Stripe PaymentMethods.
type StripeMethodVerifier struct {
	api     stripePaymentMethodAPI
	account string
}

var _ user.MethodVerifier = (*StripeMethodVerifier)(nil)

// NewStripeMethodVerifier constructs a verifier.
func NewStripeMethodVerifier(cfg StripeConfig) (*StripeMethodVerifier, error) {
	methods := cfg.paymentMethods
	if methods == nil {
		sc, err := cfg.api()
		if err != nil {
			return nil, err
		}
		methods = sc.PaymentMethods
	}
	return &StripeMethodVerifier{api: methods, account: strings.TrimSpace(cfg.AccountID)}, nil
}

// VerifyMethod implements user.MethodVerifier.
func (v *StripeMethodVerifier) VerifyMethod(ctx context.Context, token string) (user.MethodDetails, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.MethodDetails{}, errors.New("stripe: payment method token is required")
	}
	params := &stripe.PaymentMethodParams{}
	params.Context = ctx
	if v.account != "" {
		params.SetStripeAccount(v.account)
	}
	pm, err := v.api.Get(token, params)
	if err != nil {
		return user.MethodDetails{}, fmt.Errorf("stripe: get payment method: %w", err)
	}
	details := user.MethodDetails{Type: string(pm.Type)}
	if pm.Type == stripe.PaymentMethodTypeCard && pm.Card != nil {
		details.Brand = strings.ToLower(string(pm.Card.Brand))
		details.Last4 = strings.TrimSpace(pm.Card.Last4)
		details.ExpMonth = int(pm.Card.ExpMonth)
		details.ExpYear = int(pm.Card.ExpYear)
	}
	return details, nil
}
