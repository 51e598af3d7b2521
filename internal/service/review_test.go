package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shoplane/storefront/internal/domain"
	apperrors "github.com/shoplane/storefront/pkg/errors"
)

func newReviewService(products *mockProductRepo) *ReviewService {
	return &ReviewService{
		products: products,
		producer: nil,
		logger:   newTestLogger(),
	}
}

func productWithReview(reviewUserID string) *domain.Product {
	now := time.Now().UTC()
	p := &domain.Product{
		ID:       "prod-1",
		Name:     "Widget",
		Slug:     "widget",
		Price:    1500,
		Currency: "usd",
		Reviews:  []domain.Review{},
	}
	_ = p.AddReview(domain.Review{
		ID:        "rev-1",
		ProductID: "prod-1",
		UserID:    reviewUserID,
		UserName:  "Alice",
		Rating:    4,
		Comment:   "good",
		CreatedAt: now,
		UpdatedAt: now,
	})
	return p
}

// --- AddReview ---

func TestAddReview_PersistsReviewAndAggregates(t *testing.T) {
	products := new(mockProductRepo)
	svc := newReviewService(products)

	p := &domain.Product{ID: "prod-1", Reviews: []domain.Review{}}
	products.On("GetByID", mock.Anything, "prod-1").Return(p, nil)
	products.On("CreateReview", mock.Anything, p, mock.MatchedBy(func(rv *domain.Review) bool {
		return rv.UserID == "user-1" && rv.Rating == 5
	})).Return(nil)

	got, err := svc.AddReview(context.Background(), "prod-1", "user-1", "Alice", &AddReviewInput{
		Rating:  5,
		Comment: "excellent",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, got.NumReviews)
	assert.Equal(t, 5.0, got.Rating)

	products.AssertExpectations(t)
}

func TestAddReview_DuplicateUser(t *testing.T) {
	products := new(mockProductRepo)
	svc := newReviewService(products)

	products.On("GetByID", mock.Anything, "prod-1").Return(productWithReview("user-1"), nil)

	got, err := svc.AddReview(context.Background(), "prod-1", "user-1", "Alice", &AddReviewInput{
		Rating:  3,
		Comment: "again",
	})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	products.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddReview_InvalidRating(t *testing.T) {
	products := new(mockProductRepo)
	svc := newReviewService(products)

	got, err := svc.AddReview(context.Background(), "prod-1", "user-1", "Alice", &AddReviewInput{
		Rating:  6,
		Comment: "too high",
	})
	assert.Nil(t, got)
	assert.Error(t, err)

	products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

// --- DeleteReview ---

func TestDeleteReview_OwnerDeletes(t *testing.T) {
	products := new(mockProductRepo)
	svc := newReviewService(products)

	p := productWithReview("user-1")
	products.On("GetByID", mock.Anything, "prod-1").Return(p, nil)
	products.On("DeleteReview", mock.Anything, p, "rev-1").Return(nil)

	got, err := svc.DeleteReview(context.Background(), "prod-1", "rev-1", "user-1", false)
	require.NoError(t, err)

	assert.Equal(t, 0, got.NumReviews)
	assert.Equal(t, 0.0, got.Rating)

	products.AssertExpectations(t)
}

func TestDeleteReview_AdminDeletesForeignReview(t *testing.T) {
	products := new(mockProductRepo)
	svc := newReviewService(products)

	p := productWithReview("user-1")
	products.On("GetByID", mock.Anything, "prod-1").Return(p, nil)
	products.On("DeleteReview", mock.Anything, p, "rev-1").Return(nil)

	_, err := svc.DeleteReview(context.Background(), "prod-1", "rev-1", "admin-1", true)
	assert.NoError(t, err)
}

func TestDeleteReview_ForeignReviewForbidden(t *testing.T) {
	products := new(mockProductRepo)
	svc := newReviewService(products)

	products.On("GetByID", mock.Anything, "prod-1").Return(productWithReview("user-1"), nil)

	got, err := svc.DeleteReview(context.Background(), "prod-1", "rev-1", "user-2", false)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	products.AssertNotCalled(t, "DeleteReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteReview_NotFound(t *testing.T) {
	products := new(mockProductRepo)
	svc := newReviewService(products)

	products.On("GetByID", mock.Anything, "prod-1").Return(productWithReview("user-1"), nil)

	got, err := svc.DeleteReview(context.Background(), "prod-1", "rev-missing", "user-1", false)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- ToggleReaction ---

func TestToggleReaction_PersistsUpdatedSets(t *testing.T) {
	products := new(mockProductRepo)
	svc := newReviewService(products)

	p := productWithReview("user-1")
	products.On("GetByID", mock.Anything, "prod-1").Return(p, nil)
	products.On("UpdateReview", mock.Anything, p, mock.MatchedBy(func(rv *domain.Review) bool {
		return rv.HasLike("user-2") && !rv.HasDislike("user-2")
	})).Return(nil)

	review, err := svc.ToggleReaction(context.Background(), "prod-1", "rev-1", "user-2", domain.ReactionLike)
	require.NoError(t, err)
	assert.True(t, review.HasLike("user-2"))

	products.AssertExpectations(t)
}

func TestToggleReaction_InvalidKind(t *testing.T) {
	products := new(mockProductRepo)
	svc := newReviewService(products)

	products.On("GetByID", mock.Anything, "prod-1").Return(productWithReview("user-1"), nil)

	review, err := svc.ToggleReaction(context.Background(), "prod-1", "rev-1", "user-2", "love")
	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	products.AssertNotCalled(t, "UpdateReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestToggleReaction_ReviewNotFound(t *testing.T) {
	products := new(mockProductRepo)
	svc := newReviewService(products)

	products.On("GetByID", mock.Anything, "prod-1").Return(productWithReview("user-1"), nil)

	review, err := svc.ToggleReaction(context.Background(), "prod-1", "rev-missing", "user-2", domain.ReactionLike)
	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- ReplyToReview ---

func TestReplyToReview_SetsReply(t *testing.T) {
	products := new(mockProductRepo)
	svc := newReviewService(products)

	p := productWithReview("user-1")
	products.On("GetByID", mock.Anything, "prod-1").Return(p, nil)
	products.On("UpdateReview", mock.Anything, p, mock.MatchedBy(func(rv *domain.Review) bool {
		return rv.AdminReply != nil && rv.AdminReply.Comment == "thank you"
	})).Return(nil)

	review, err := svc.ReplyToReview(context.Background(), "prod-1", "rev-1", &ReplyInput{Comment: "thank you"})
	require.NoError(t, err)
	require.NotNil(t, review.AdminReply)
	assert.Equal(t, "thank you", review.AdminReply.Comment)

	products.AssertExpectations(t)
}

func TestReplyToReview_SecondReplyConflicts(t *testing.T) {
	products := new(mockProductRepo)
	svc := newReviewService(products)

	p := productWithReview("user-1")
	require.NoError(t, p.Reviews[0].Reply("first", time.Now().UTC()))
	products.On("GetByID", mock.Anything, "prod-1").Return(p, nil)

	review, err := svc.ReplyToReview(context.Background(), "prod-1", "rev-1", &ReplyInput{Comment: "second"})
	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	products.AssertNotCalled(t, "UpdateReview", mock.Anything, mock.Anything, mock.Anything)
}
