package payment

import (
	"context"
)

// IntentRequest captures what a provider needs to open a payment intent.
type IntentRequest struct {
	OrderID        string
	AmountMinor    int64
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
}

// IntentResponse is the provider's view of a newly opened intent.
type IntentResponse struct {
	Ref          string
	ClientSecret string
	Status       string
}

// Provider abstracts the operations required from an upstream payment provider.
type Provider interface {
	Name() string
	CreateIntent(ctx context.Context, req IntentRequest) (IntentResponse, error)
}
