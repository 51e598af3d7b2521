package repository

import (
	"context"
	"time"

	"github.com/shoplane/storefront/internal/domain"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	Category *string
	Search   *string
	Page     int
	PerPage  int
}

// ProductRepository defines the interface for product persistence operations.
// Reviews are part of the product aggregate: the review mutation methods
// persist the review row and the recomputed product aggregates atomically.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier, eagerly loading
	// its reviews.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetBySlug retrieves a product by its URL-friendly slug, eagerly loading
	// its reviews.
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// List returns products matching the given filter along with the total
	// count. Listed products carry aggregates only, not the review bodies.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update modifies an existing product in the store.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product and its reviews from the store.
	Delete(ctx context.Context, id string) error

	// Categories returns the distinct product categories.
	Categories(ctx context.Context) ([]string, error)

	// TopRated returns the highest-rated products, best first.
	TopRated(ctx context.Context, limit int) ([]domain.Product, error)

	// CreateReview inserts the review and writes the product's recomputed
	// aggregates in the same transaction. The unique (product_id, user_id)
	// constraint is the authoritative one-review-per-user guard.
	CreateReview(ctx context.Context, product *domain.Product, review *domain.Review) error

	// UpdateReview persists a mutated review (rating, comment, reactions,
	// admin reply) and the product aggregates in the same transaction.
	UpdateReview(ctx context.Context, product *domain.Product, review *domain.Review) error

	// DeleteReview removes the review and writes the product's recomputed
	// aggregates in the same transaction.
	DeleteReview(ctx context.Context, product *domain.Product, reviewID string) error
}

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	UserID  *string
	Paid    *bool
	Page    int
	PerPage int
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts a new order and its items atomically.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its ID, eagerly loading its items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the given filter with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// MarkPaid performs the guarded unpaid-to-paid transition. It returns
	// true when this call performed the transition and false when the order
	// was already paid. A missing order is an error.
	MarkPaid(ctx context.Context, id string, result domain.PaymentResult, at time.Time) (bool, error)
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns users with the total count.
	List(ctx context.Context, page, perPage int) ([]domain.User, int, error)
}

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	// Get retrieves the cart for a user.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// Save persists a cart.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes a user's cart.
	Delete(ctx context.Context, userID string) error
}

// StatsRepository aggregates the figures shown on the admin dashboard.
type StatsRepository interface {
	// Summary computes the dashboard aggregates in one pass.
	Summary(ctx context.Context) (*domain.AdminSummary, error)
}
