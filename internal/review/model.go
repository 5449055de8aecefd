package review

import (
	"time"

	"github.com/gofrs/uuid"
)

// Review is a buyer's rating of a product. IsVerifiedPurchase is computed by
// the server.
type Review struct {
	ID                 uuid.UUID  `json:"id"`
	ProductID          uuid.UUID  `json:"product_id"`
	UserID             uuid.UUID  `json:"user_id"`
	OrderID            *uuid.UUID `json:"order_id,omitempty"`
	Rating             int        `json:"rating"`
	Title              *string    `json:"title,omitempty"`
	Comment            *string    `json:"comment,omitempty"`
	IsVerifiedPurchase bool       `json:"is_verified_purchase"`
	IsApproved         bool       `json:"is_approved"`
	HelpfulCount       int        `json:"helpful_count"`
	UserName           *string    `json:"user_name,omitempty"`
	UserAvatar         *string    `json:"user_avatar,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type CreateRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	OrderID   uuid.UUID `json:"order_id" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Title     *string   `json:"title,omitempty" validate:"omitempty,max=200"`
	Comment   *string   `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

type UpdateRequest struct {
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Title   *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// Stats is the rating summary of a product.
type Stats struct {
	ProductID      uuid.UUID `json:"product_id"`
	AverageRating  float64   `json:"average_rating"`
	TotalReviews   int       `json:"total_reviews"`
	FiveStarCount  int       `json:"five_star_count"`
	FourStarCount  int       `json:"four_star_count"`
	ThreeStarCount int       `json:"three_star_count"`
	TwoStarCount   int       `json:"two_star_count"`
	OneStarCount   int       `json:"one_star_count"`
}

// Page is one page of a product's reviews.
type Page struct {
	Reviews      []Review `json:"reviews"`
	TotalReviews int      `json:"total_reviews"`
	Page         int      `json:"page"`
	Limit        int      `json:"limit"`
}

// CanReview is the server's answer to GET /reviews/can-review/{productId}.
type CanReview struct {
	CanReview        bool       `json:"can_review"`
	Reason           string     `json:"reason,omitempty"`
	ExistingReviewID *uuid.UUID `json:"existing_review_id,omitempty"`
}
