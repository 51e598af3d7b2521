package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/shoplane/storefront/internal/gateway"
	apperrors "github.com/shoplane/storefront/pkg/errors"
)

// metadataOrderKey is the session metadata key carrying the order ID.
const metadataOrderKey = "order_id"

// Config holds the Stripe gateway settings.
type Config struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// Gateway implements gateway.CheckoutGateway against Stripe hosted checkout.
// Remote calls go through a circuit breaker so a degraded provider does not
// pile up blocked requests.
type Gateway struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
	breaker       *gobreaker.CircuitBreaker[*stripe.CheckoutSession]
}

// New creates a Stripe-backed checkout gateway.
func New(cfg Config) *Gateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	breaker := gobreaker.NewCircuitBreaker[*stripe.CheckoutSession](gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Gateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		breaker:       breaker,
	}
}

// Name returns the provider name.
func (g *Gateway) Name() string {
	return "stripe"
}

// CreateCheckoutSession opens a hosted checkout session for an order.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, input *gateway.SessionInput) (*gateway.Session, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(g.successURL),
		CancelURL:  stripe.String(g.cancelURL),
	}

	if input.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(input.CustomerEmail)
	}

	for _, item := range input.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(input.Currency),
				UnitAmount: stripe.Int64(item.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		})
	}

	params.AddMetadata(metadataOrderKey, input.OrderID)

	sess, err := g.breaker.Execute(func() (*stripe.CheckoutSession, error) {
		return g.api.CheckoutSessions.New(params)
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &gateway.Session{
		ID:  sess.ID,
		URL: sess.URL,
	}, nil
}

// VerifyEvent checks the webhook signature and parses the payload. The
// payload is not trusted until the signature check passes.
func (g *Gateway) VerifyEvent(payload []byte, signature string) (*gateway.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, apperrors.InvalidSignature("webhook signature verification failed")
	}

	out := &gateway.Event{Type: string(event.Type)}

	if event.Type != stripe.EventType(gateway.EventTypeCheckoutCompleted) {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal checkout session event: %w", err)
	}

	out.SessionID = sess.ID
	out.OrderID = sess.Metadata[metadataOrderKey]
	out.PaymentStatus = string(sess.PaymentStatus)
	out.CustomerEmail = sessionEmail(&sess)
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}

	return out, nil
}

// GetCheckoutSession fetches the session state from Stripe. Manual payment
// confirmation relies on this instead of the client's claim.
func (g *Gateway) GetCheckoutSession(ctx context.Context, id string) (*gateway.SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Context: ctx,
		},
	}

	sess, err := g.breaker.Execute(func() (*stripe.CheckoutSession, error) {
		return g.api.CheckoutSessions.Get(id, params)
	})
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}

	status := &gateway.SessionStatus{
		ID:            sess.ID,
		OrderID:       sess.Metadata[metadataOrderKey],
		PaymentStatus: string(sess.PaymentStatus),
		CustomerEmail: sessionEmail(sess),
		Paid:          sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
	if sess.PaymentIntent != nil {
		status.PaymentIntentID = sess.PaymentIntent.ID
	}

	return status, nil
}

func sessionEmail(sess *stripe.CheckoutSession) string {
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		return sess.CustomerDetails.Email
	}
	return sess.CustomerEmail
}
