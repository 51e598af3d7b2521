package gateway

import (
	"context"
)

// EventTypeCheckoutCompleted is the provider event emitted when a hosted
// checkout session finishes with a successful payment.
const EventTypeCheckoutCompleted = "checkout.session.completed"

// LineItem is a single priced entry in a checkout session manifest.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int
}

// SessionInput holds the parameters for creating a hosted checkout session.
// OrderID is attached as session metadata so provider events can be
// correlated back to the order.
type SessionInput struct {
	OrderID       string
	Currency      string
	CustomerEmail string
	LineItems     []LineItem
}

// Session is a created hosted checkout session. URL is where the customer
// completes payment.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Event is a verified provider webhook event.
type Event struct {
	Type            string
	SessionID       string
	OrderID         string
	PaymentIntentID string
	PaymentStatus   string
	CustomerEmail   string
}

// SessionStatus is the provider's current view of a checkout session,
// fetched directly from the provider rather than taken from a client claim.
type SessionStatus struct {
	ID              string
	OrderID         string
	PaymentIntentID string
	PaymentStatus   string
	CustomerEmail   string
	Paid            bool
}

// CheckoutGateway defines the interface for hosted checkout provider
// integrations.
type CheckoutGateway interface {
	// Name returns the provider name (e.g., "mock", "stripe").
	Name() string

	// CreateCheckoutSession opens a hosted checkout session for an order.
	CreateCheckoutSession(ctx context.Context, input *SessionInput) (*Session, error)

	// VerifyEvent checks the webhook signature and parses the payload.
	// An invalid signature fails before any payload field is read.
	VerifyEvent(payload []byte, signature string) (*Event, error)

	// GetCheckoutSession fetches the session state from the provider.
	GetCheckoutSession(ctx context.Context, id string) (*SessionStatus, error)
}
