package mock

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/shoplane/storefront/internal/gateway"
	apperrors "github.com/shoplane/storefront/pkg/errors"
)

// Gateway is an in-memory checkout gateway for development and testing.
// Webhook payloads are JSON-encoded gateway.Event values signed with
// HMAC-SHA256, so signature handling is exercised end to end without a
// provider account.
type Gateway struct {
	secret []byte

	mu       sync.Mutex
	sessions map[string]*gateway.SessionStatus
}

// New creates a mock gateway with the given webhook signing secret.
func New(secret string) *Gateway {
	return &Gateway{
		secret:   []byte(secret),
		sessions: make(map[string]*gateway.SessionStatus),
	}
}

// Name returns the provider name.
func (g *Gateway) Name() string {
	return "mock"
}

// CreateCheckoutSession records an unpaid session and returns a local URL.
func (g *Gateway) CreateCheckoutSession(_ context.Context, input *gateway.SessionInput) (*gateway.Session, error) {
	id := "mock_cs_" + uuid.New().String()

	g.mu.Lock()
	g.sessions[id] = &gateway.SessionStatus{
		ID:            id,
		OrderID:       input.OrderID,
		PaymentStatus: "unpaid",
		CustomerEmail: input.CustomerEmail,
		Paid:          false,
	}
	g.mu.Unlock()

	return &gateway.Session{
		ID:  id,
		URL: "https://checkout.mock.invalid/" + id,
	}, nil
}

// VerifyEvent checks the HMAC signature and parses the payload.
func (g *Gateway) VerifyEvent(payload []byte, signature string) (*gateway.Event, error) {
	if !hmac.Equal([]byte(g.Sign(payload)), []byte(signature)) {
		return nil, apperrors.InvalidSignature("webhook signature verification failed")
	}

	var event gateway.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event payload: %w", err)
	}

	return &event, nil
}

// GetCheckoutSession returns the recorded session state.
func (g *Gateway) GetCheckoutSession(_ context.Context, id string) (*gateway.SessionStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	status, ok := g.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("checkout session", id)
	}

	copied := *status
	return &copied, nil
}

// CompleteSession marks a session as paid, as if the customer finished the
// hosted checkout flow.
func (g *Gateway) CompleteSession(id string) (*gateway.SessionStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	status, ok := g.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("checkout session", id)
	}

	status.Paid = true
	status.PaymentStatus = "paid"
	status.PaymentIntentID = "mock_pi_" + uuid.New().String()

	copied := *status
	return &copied, nil
}

// Sign computes the hex HMAC-SHA256 signature for a payload.
func (g *Gateway) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
