package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shoplane/storefront/internal/domain"
	"github.com/shoplane/storefront/internal/event"
	"github.com/shoplane/storefront/internal/repository"
	apperrors "github.com/shoplane/storefront/pkg/errors"
)

// OrderService implements the business logic for orders. Orders are created
// from the cart snapshot; line names and prices are frozen at creation time.
type OrderService struct {
	orders   repository.OrderRepository
	carts    repository.CartRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		carts:    carts,
		producer: producer,
		logger:   logger,
	}
}

// CreateOrder snapshots the user's cart into a new unpaid order and clears
// the cart.
func (s *OrderService) CreateOrder(ctx context.Context, userID string) (*domain.Order, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("cart is empty")
		}
		return nil, fmt.Errorf("get cart for order: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:          uuid.New().String(),
		UserID:      userID,
		TotalAmount: cart.TotalAmount(),
		Currency:    cart.Currency,
		IsPaid:      false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if order.Currency == "" {
		order.Currency = "usd"
	}

	for _, item := range cart.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.carts.Delete(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after order creation",
			slog.String("user_id", userID),
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	if s.producer != nil {
		if pubErr := s.producer.PublishOrderCreated(ctx, order); pubErr != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.created event",
				slog.String("order_id", order.ID),
				slog.String("error", pubErr.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
		slog.Int64("total_amount", order.TotalAmount),
	)

	return order, nil
}

// GetOrder retrieves an order. Customers can only read their own orders;
// admins can read any.
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID string, isAdmin bool) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	if order.UserID != userID && !isAdmin {
		return nil, apperrors.Forbidden("order belongs to another user")
	}

	return order, nil
}

// ListMyOrders returns the user's order history.
func (s *OrderService) ListMyOrders(ctx context.Context, userID string, page, perPage int) ([]domain.Order, int, error) {
	filter := repository.OrderFilter{
		UserID:  &userID,
		Page:    page,
		PerPage: perPage,
	}
	return s.listOrders(ctx, filter)
}

// ListAllOrders returns every order. Admin only; the router enforces it.
func (s *OrderService) ListAllOrders(ctx context.Context, page, perPage int) ([]domain.Order, int, error) {
	filter := repository.OrderFilter{
		Page:    page,
		PerPage: perPage,
	}
	return s.listOrders(ctx, filter)
}

func (s *OrderService) listOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}
