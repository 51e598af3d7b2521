package mock

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplane/storefront/internal/gateway"
	apperrors "github.com/shoplane/storefront/pkg/errors"
)

func TestGateway_SessionLifecycle(t *testing.T) {
	g := New("whsec_test")

	sess, err := g.CreateCheckoutSession(context.Background(), &gateway.SessionInput{
		OrderID:       "order-1",
		Currency:      "usd",
		CustomerEmail: "alice@example.com",
		LineItems:     []gateway.LineItem{{Name: "Widget", UnitAmount: 1000, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Contains(t, sess.URL, sess.ID)

	status, err := g.GetCheckoutSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.False(t, status.Paid)
	assert.Equal(t, "order-1", status.OrderID)

	completed, err := g.CompleteSession(sess.ID)
	require.NoError(t, err)
	assert.True(t, completed.Paid)
	assert.NotEmpty(t, completed.PaymentIntentID)

	status, err = g.GetCheckoutSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.True(t, status.Paid)
	assert.Equal(t, "paid", status.PaymentStatus)
}

func TestGateway_GetCheckoutSession_NotFound(t *testing.T) {
	g := New("whsec_test")

	_, err := g.GetCheckoutSession(context.Background(), "mock_cs_missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGateway_VerifyEvent_RoundTrip(t *testing.T) {
	g := New("whsec_test")

	payload, err := json.Marshal(gateway.Event{
		Type:            gateway.EventTypeCheckoutCompleted,
		SessionID:       "mock_cs_1",
		OrderID:         "order-1",
		PaymentIntentID: "mock_pi_1",
		PaymentStatus:   "paid",
		CustomerEmail:   "alice@example.com",
	})
	require.NoError(t, err)

	event, err := g.VerifyEvent(payload, g.Sign(payload))
	require.NoError(t, err)
	assert.Equal(t, gateway.EventTypeCheckoutCompleted, event.Type)
	assert.Equal(t, "order-1", event.OrderID)
	assert.Equal(t, "mock_pi_1", event.PaymentIntentID)
}

func TestGateway_VerifyEvent_BadSignature(t *testing.T) {
	g := New("whsec_test")

	payload := []byte(`{"type":"checkout.session.completed"}`)

	event, err := g.VerifyEvent(payload, "deadbeef")
	assert.Nil(t, event)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)
}

func TestGateway_VerifyEvent_SecretMismatch(t *testing.T) {
	signer := New("whsec_other")
	g := New("whsec_test")

	payload := []byte(`{"type":"checkout.session.completed"}`)

	_, err := g.VerifyEvent(payload, signer.Sign(payload))
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)
}
