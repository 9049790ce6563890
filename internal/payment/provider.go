package payment

import (
	"context"
	"encoding/json"
	"errors"
)

// StatusApproved is the only provider status with dedicated handling;
// everything else is passed through verbatim.
const StatusApproved = "approved"

var ErrPaymentNotFound = errors.New("payment not found")

// SessionRequest carries everything a provider needs to open a hosted
// checkout session for an order.
type SessionRequest struct {
	OrderID       string
	CustomerName  string
	CustomerEmail string
	Items         []SessionItem
	Total         float64
}

type SessionItem struct {
	PhotoID   string
	Title     string
	UnitPrice float64
}

// Session is the provider-side checkout session the shopper is redirected to.
type Session struct {
	ID          string
	RedirectURL string
}

// Payment is the authoritative payment record fetched back from the
// provider. Detail holds the raw provider response for persistence.
type Payment struct {
	ID                string
	Status            string
	ExternalReference string
	Detail            json.RawMessage
}

// Provider abstracts a hosted-checkout payment provider. Implementations
// are injected into the checkout and webhook services.
type Provider interface {
	Name() string
	CreateSession(ctx context.Context, req *SessionRequest) (*Session, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
}
