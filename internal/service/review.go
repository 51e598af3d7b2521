package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shoplane/storefront/internal/domain"
	"github.com/shoplane/storefront/internal/event"
	"github.com/shoplane/storefront/internal/repository"
	apperrors "github.com/shoplane/storefront/pkg/errors"
	"github.com/shoplane/storefront/pkg/validator"
)

// ReviewService implements the business logic for reviews, which live inside
// the product aggregate. Every mutation recomputes the product's aggregates
// in memory and persists both sides in one repository transaction.
type ReviewService struct {
	products repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(products repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// AddReviewInput holds the parameters for creating a review.
type AddReviewInput struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required,min=1,max=2000"`
}

// ReplyInput holds the parameters for an admin reply.
type ReplyInput struct {
	Comment string `json:"comment" validate:"required,min=1,max=2000"`
}

// AddReview creates a review for a product. A user may review each product
// at most once.
func (s *ReviewService) AddReview(ctx context.Context, productID, userID, userName string, input *AddReviewInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product for review: %w", err)
	}

	now := time.Now().UTC()
	review := domain.Review{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		UserID:    userID,
		UserName:  userName,
		Rating:    input.Rating,
		Comment:   input.Comment,
		Likes:     []string{},
		Dislikes:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := product.AddReview(review); err != nil {
		return nil, err
	}

	if err := s.products.CreateReview(ctx, product, &review); err != nil {
		return nil, fmt.Errorf("persist review: %w", err)
	}

	if s.producer != nil {
		if pubErr := s.producer.PublishReviewCreated(ctx, product, &review); pubErr != nil {
			s.logger.ErrorContext(ctx, "failed to publish review.created event",
				slog.String("product_id", product.ID),
				slog.String("error", pubErr.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("product_id", product.ID),
		slog.String("review_id", review.ID),
		slog.Int("rating", review.Rating),
	)

	return product, nil
}

// DeleteReview removes a review. The author may delete their own review;
// admins may delete any review.
func (s *ReviewService) DeleteReview(ctx context.Context, productID, reviewID, userID string, isAdmin bool) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product for review delete: %w", err)
	}

	review := product.ReviewByID(reviewID)
	if review == nil {
		return nil, apperrors.NotFound("review", reviewID)
	}
	if review.UserID != userID && !isAdmin {
		return nil, apperrors.Forbidden("review belongs to another user")
	}

	if err := product.RemoveReview(reviewID); err != nil {
		return nil, err
	}

	if err := s.products.DeleteReview(ctx, product, reviewID); err != nil {
		return nil, fmt.Errorf("delete review: %w", err)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("product_id", product.ID),
		slog.String("review_id", reviewID),
	)

	return product, nil
}

// ToggleReaction flips the user's like or dislike on a review. Toggling the
// kind the user already holds removes it; the opposite kind replaces it.
// Aggregates are unaffected since reactions do not carry a rating.
func (s *ReviewService) ToggleReaction(ctx context.Context, productID, reviewID, userID, kind string) (*domain.Review, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product for reaction: %w", err)
	}

	review := product.ReviewByID(reviewID)
	if review == nil {
		return nil, apperrors.NotFound("review", reviewID)
	}

	if err := review.ToggleReaction(userID, kind); err != nil {
		return nil, err
	}
	review.UpdatedAt = time.Now().UTC()

	if err := s.products.UpdateReview(ctx, product, review); err != nil {
		return nil, fmt.Errorf("persist reaction: %w", err)
	}

	s.logger.DebugContext(ctx, "review reaction toggled",
		slog.String("review_id", reviewID),
		slog.String("kind", kind),
	)

	return review, nil
}

// ReplyToReview sets the single admin reply on a review. Replies are
// immutable; a second reply is rejected.
func (s *ReviewService) ReplyToReview(ctx context.Context, productID, reviewID string, input *ReplyInput) (*domain.Review, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product for reply: %w", err)
	}

	review := product.ReviewByID(reviewID)
	if review == nil {
		return nil, apperrors.NotFound("review", reviewID)
	}

	now := time.Now().UTC()
	if err := review.Reply(input.Comment, now); err != nil {
		return nil, err
	}
	review.UpdatedAt = now

	if err := s.products.UpdateReview(ctx, product, review); err != nil {
		return nil, fmt.Errorf("persist reply: %w", err)
	}

	s.logger.InfoContext(ctx, "admin reply added",
		slog.String("product_id", product.ID),
		slog.String("review_id", reviewID),
	)

	return review, nil
}
