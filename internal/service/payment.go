package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shoplane/storefront/internal/domain"
	"github.com/shoplane/storefront/internal/event"
	"github.com/shoplane/storefront/internal/gateway"
	"github.com/shoplane/storefront/internal/repository"
	apperrors "github.com/shoplane/storefront/pkg/errors"
)

// PaymentService reconciles orders with the checkout provider. The paid
// transition always goes through the guarded repository update, so webhook
// retries, concurrent deliveries, and the webhook/manual race all collapse
// to a single recorded payment.
type PaymentService struct {
	orders   repository.OrderRepository
	gateway  gateway.CheckoutGateway
	producer *event.Producer
	logger   *slog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	orders repository.OrderRepository,
	gw gateway.CheckoutGateway,
	producer *event.Producer,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		orders:   orders,
		gateway:  gw,
		producer: producer,
		logger:   logger,
	}
}

// CreateCheckoutIntent opens a hosted checkout session for an unpaid order.
// The order ID rides along as session metadata so provider events can be
// correlated back.
func (s *PaymentService) CreateCheckoutIntent(ctx context.Context, orderID, userID, customerEmail string) (*gateway.Session, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order for checkout: %w", err)
	}

	if order.UserID != userID {
		return nil, apperrors.Forbidden("order belongs to another user")
	}
	if order.IsPaid {
		return nil, apperrors.Conflict("order is already paid")
	}
	if len(order.Items) == 0 {
		return nil, apperrors.InvalidInput("order has no items")
	}

	input := &gateway.SessionInput{
		OrderID:       order.ID,
		Currency:      order.Currency,
		CustomerEmail: customerEmail,
	}
	for _, item := range order.Items {
		input.LineItems = append(input.LineItems, gateway.LineItem{
			Name:       item.Name,
			UnitAmount: item.Price,
			Quantity:   item.Quantity,
		})
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	s.logger.InfoContext(ctx, "checkout session created",
		slog.String("order_id", order.ID),
		slog.String("session_id", session.ID),
		slog.String("provider", s.gateway.Name()),
	)

	return session, nil
}

// HandleProviderEvent processes a raw webhook delivery. The signature is
// verified before any payload field is read; a bad signature is rejected
// outright. Events that cannot be correlated to an order are acknowledged
// without effect so the provider stops retrying them.
func (s *PaymentService) HandleProviderEvent(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.gateway.VerifyEvent(payload, signature)
	if err != nil {
		return err
	}

	if evt.Type != gateway.EventTypeCheckoutCompleted {
		s.logger.DebugContext(ctx, "ignoring provider event",
			slog.String("event_type", evt.Type),
		)
		return nil
	}

	if evt.OrderID == "" {
		s.logger.WarnContext(ctx, "checkout event without order metadata",
			slog.String("session_id", evt.SessionID),
		)
		return nil
	}

	result := domain.PaymentResult{
		TransactionID: evt.PaymentIntentID,
		Status:        evt.PaymentStatus,
		PayerEmail:    evt.CustomerEmail,
	}

	if _, _, err := s.settle(ctx, evt.OrderID, result); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "checkout event for unknown order",
				slog.String("order_id", evt.OrderID),
				slog.String("session_id", evt.SessionID),
			)
			return nil
		}
		return err
	}

	return nil
}

// ConfirmManual settles an order from a client-initiated confirmation. The
// session state is re-fetched from the provider; the client's claim that
// payment happened is never trusted on its own.
func (s *PaymentService) ConfirmManual(ctx context.Context, orderID, sessionID, userID string, isAdmin bool) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order for confirmation: %w", err)
	}

	if order.UserID != userID && !isAdmin {
		return nil, apperrors.Forbidden("order belongs to another user")
	}

	status, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("verify checkout session: %w", err)
	}

	if status.OrderID != orderID {
		return nil, apperrors.InvalidInput("checkout session does not belong to this order")
	}
	if !status.Paid {
		return nil, apperrors.PaymentFailed("checkout session is not paid")
	}

	s.logger.WarnContext(ctx, "manual payment confirmation",
		slog.String("order_id", orderID),
		slog.String("session_id", sessionID),
		slog.String("user_id", userID),
	)

	result := domain.PaymentResult{
		TransactionID: status.PaymentIntentID,
		Status:        status.PaymentStatus,
		PayerEmail:    status.CustomerEmail,
	}

	settled, _, err := s.settle(ctx, orderID, result)
	if err != nil {
		return nil, err
	}

	return settled, nil
}

// settle performs the single guarded paid transition and publishes the
// order.paid event exactly when this call performed the transition.
func (s *PaymentService) settle(ctx context.Context, orderID string, result domain.PaymentResult) (*domain.Order, bool, error) {
	transitioned, err := s.orders.MarkPaid(ctx, orderID, result, time.Now().UTC())
	if err != nil {
		return nil, false, fmt.Errorf("mark order paid: %w", err)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, transitioned, fmt.Errorf("reload order after settlement: %w", err)
	}

	if !transitioned {
		s.logger.InfoContext(ctx, "order already settled",
			slog.String("order_id", orderID),
			slog.String("transaction_id", result.TransactionID),
		)
		return order, false, nil
	}

	if s.producer != nil {
		if pubErr := s.producer.PublishOrderPaid(ctx, order); pubErr != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.paid event",
				slog.String("order_id", order.ID),
				slog.String("error", pubErr.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "order settled",
		slog.String("order_id", order.ID),
		slog.String("transaction_id", result.TransactionID),
	)

	return order, true, nil
}
