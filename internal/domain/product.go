package domain

import (
	"time"

	apperrors "github.com/shoplane/storefront/pkg/errors"
)

// Product represents a product in the catalog, together with its embedded
// reviews and the derived review aggregates (NumReviews, Rating).
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Brand       string    `json:"brand"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
	Price       int64     `json:"price"`
	Currency    string    `json:"currency"`
	StockCount  int       `json:"stock_count"`
	NumReviews  int       `json:"num_reviews"`
	Rating      float64   `json:"rating"`
	Reviews     []Review  `json:"reviews"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RecalcRating recomputes the derived review aggregates from the embedded
// review list. The mean of an empty list is defined as 0.
func (p *Product) RecalcRating() {
	p.NumReviews = len(p.Reviews)
	if p.NumReviews == 0 {
		p.Rating = 0
		return
	}

	var sum int
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.Rating = float64(sum) / float64(p.NumReviews)
}

// ReviewByUser returns the review authored by the given user, if any.
func (p *Product) ReviewByUser(userID string) *Review {
	for i := range p.Reviews {
		if p.Reviews[i].UserID == userID {
			return &p.Reviews[i]
		}
	}
	return nil
}

// ReviewByID returns the review with the given id, if any.
func (p *Product) ReviewByID(reviewID string) *Review {
	for i := range p.Reviews {
		if p.Reviews[i].ID == reviewID {
			return &p.Reviews[i]
		}
	}
	return nil
}

// AddReview appends a review to the product and recomputes the aggregates.
// A user may review a product at most once; a second review by the same
// user fails with an already-exists conflict. The persistence layer backs
// this pre-check with a unique (product_id, user_id) constraint, which is
// the authoritative guard under concurrent submissions.
func (p *Product) AddReview(review Review) error {
	if p.ReviewByUser(review.UserID) != nil {
		return apperrors.AlreadyExists("review", "user_id", review.UserID)
	}

	p.Reviews = append(p.Reviews, review)
	p.RecalcRating()
	return nil
}

// RemoveReview deletes the review with the given id and recomputes the
// aggregates. Removing the last review resets the rating to 0.
func (p *Product) RemoveReview(reviewID string) error {
	for i := range p.Reviews {
		if p.Reviews[i].ID == reviewID {
			p.Reviews = append(p.Reviews[:i], p.Reviews[i+1:]...)
			p.RecalcRating()
			return nil
		}
	}
	return apperrors.NotFound("review", reviewID)
}
