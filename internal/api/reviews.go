package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/storefront/internal/review"
)

const reviewsPath = "/api/v1/reviews"

func (c *Client) CreateReview(ctx context.Context, req review.CreateRequest) (*review.Review, error) {
	v, err := fetch[review.Review](ctx, c, http.MethodPost, reviewsPath, req)
	return mustData(v, err, http.MethodPost, reviewsPath)
}

// ListProductReviews returns one page of approved reviews. Zero page or
// limit leaves the server default.
func (c *Client) ListProductReviews(ctx context.Context, productID uuid.UUID, page, limit int) (*review.Page, error) {
	endpoint := reviewsPath + "/product/" + productID.String()
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	v, err := fetch[review.Page](ctx, c, http.MethodGet, endpoint, nil)
	return mustData(v, err, http.MethodGet, endpoint)
}

func (c *Client) ProductRatingStats(ctx context.Context, productID uuid.UUID) (*review.Stats, error) {
	endpoint := reviewsPath + "/product/" + productID.String() + "/stats"
	v, err := fetch[review.Stats](ctx, c, http.MethodGet, endpoint, nil)
	return mustData(v, err, http.MethodGet, endpoint)
}

func (c *Client) UpdateReview(ctx context.Context, id uuid.UUID, req review.UpdateRequest) error {
	return send(ctx, c, http.MethodPut, reviewsPath+"/"+id.String(), req)
}

func (c *Client) DeleteReview(ctx context.Context, id uuid.UUID) error {
	return send(ctx, c, http.MethodDelete, reviewsPath+"/"+id.String(), nil)
}

func (c *Client) MarkReviewHelpful(ctx context.Context, id uuid.UUID) error {
	return send(ctx, c, http.MethodPost, reviewsPath+"/"+id.String()+"/helpful", nil)
}

func (c *Client) CanReview(ctx context.Context, productID uuid.UUID) (*review.CanReview, error) {
	endpoint := reviewsPath + "/can-review/" + productID.String()
	v, err := fetch[review.CanReview](ctx, c, http.MethodGet, endpoint, nil)
	return mustData(v, err, http.MethodGet, endpoint)
}
