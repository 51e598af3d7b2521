package domain

import (
	"time"

	apperrors "github.com/shoplane/storefront/pkg/errors"
)

// Reaction kinds a user can place on a review.
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// AdminReply is a single, immutable reply placed on a review by an admin.
type AdminReply struct {
	Comment   string    `json:"comment"`
	RepliedAt time.Time `json:"replied_at"`
}

// Review represents a product review. Reviews are owned by their product:
// they have no lifecycle of their own and are persisted as part of the
// product aggregate.
type Review struct {
	ID         string      `json:"id"`
	ProductID  string      `json:"product_id"`
	UserID     string      `json:"user_id"`
	UserName   string      `json:"user_name"`
	Rating     int         `json:"rating"`
	Comment    string      `json:"comment"`
	Likes      []string    `json:"likes"`
	Dislikes   []string    `json:"dislikes"`
	AdminReply *AdminReply `json:"admin_reply,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// HasLike reports whether the given user currently likes the review.
func (r *Review) HasLike(userID string) bool {
	return contains(r.Likes, userID)
}

// HasDislike reports whether the given user currently dislikes the review.
func (r *Review) HasDislike(userID string) bool {
	return contains(r.Dislikes, userID)
}

// ToggleReaction flips the user's membership in the given reaction set.
// If the user is already in the target set they are removed (un-vote);
// otherwise they are added and removed from the opposite set, so the like
// and dislike sets stay disjoint. Returns InvalidInput for an unknown kind.
func (r *Review) ToggleReaction(userID, kind string) error {
	switch kind {
	case ReactionLike:
		if r.HasLike(userID) {
			r.Likes = remove(r.Likes, userID)
		} else {
			r.Likes = append(r.Likes, userID)
			r.Dislikes = remove(r.Dislikes, userID)
		}
	case ReactionDislike:
		if r.HasDislike(userID) {
			r.Dislikes = remove(r.Dislikes, userID)
		} else {
			r.Dislikes = append(r.Dislikes, userID)
			r.Likes = remove(r.Likes, userID)
		}
	default:
		return apperrors.InvalidInput("reaction kind must be \"like\" or \"dislike\"")
	}
	return nil
}

// Reply sets the admin reply on the review. A reply is permanent: once a
// non-empty comment is recorded, further replies fail with a conflict.
func (r *Review) Reply(comment string, at time.Time) error {
	if r.AdminReply != nil && r.AdminReply.Comment != "" {
		return apperrors.Conflict("review already has a reply")
	}
	r.AdminReply = &AdminReply{
		Comment:   comment,
		RepliedAt: at,
	}
	return nil
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

func remove(s []string, v string) []string {
	out := s[:0]
	for _, e := range s {
		if e != v {
			out = append(out, e)
		}
	}
	return out
}
