package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/order"
	"github.com/vasiliy-maslov/storefront/internal/validation"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

var (
	ErrNotEligible     = errors.New("you cannot review this product")
	ErrNoOrderSelected = errors.New("please select an order")
	ErrRatingRequired  = errors.New("please select a rating")
	ErrNothingToUpdate = errors.New("nothing to update")
)

type API interface {
	CanReview(ctx context.Context, productID uuid.UUID) (*CanReview, error)
	CreateReview(ctx context.Context, req CreateRequest) (*Review, error)
	ListProductReviews(ctx context.Context, productID uuid.UUID, page, limit int) (*Page, error)
	ProductRatingStats(ctx context.Context, productID uuid.UUID) (*Stats, error)
	UpdateReview(ctx context.Context, id uuid.UUID, req UpdateRequest) error
	DeleteReview(ctx context.Context, id uuid.UUID) error
	MarkReviewHelpful(ctx context.Context, id uuid.UUID) error
}

// Orders lists the buyer's orders.
type Orders interface {
	List(ctx context.Context) ([]order.Order, error)
}

// Form is what the buyer typed into the review form.
type Form struct {
	Rating  int
	Title   string
	Comment string
}

type Service struct {
	api    API
	orders Orders
}

func NewService(api API, orders Orders) *Service {
	return &Service{api: api, orders: orders}
}

// Compose opens the review form for a product. The server's can-review
// answer is checked first; when it allows a review the buyer's orders
// decide between auto-selecting and choosing.
func (s *Service) Compose(ctx context.Context, productID uuid.UUID) (Eligibility, error) {
	verdict, err := s.api.CanReview(ctx, productID)
	if err != nil {
		return Eligibility{}, fmt.Errorf("review: can review %s: %w", productID, err)
	}
	if !verdict.CanReview {
		msg := verdict.Reason
		if msg == "" {
			msg = blockedMessage
		}
		return Eligibility{
			ProductID:        productID,
			Mode:             ModeBlocked,
			Orders:           []order.Order{},
			Message:          msg,
			ExistingReviewID: verdict.ExistingReviewID,
		}, nil
	}

	orders, err := s.orders.List(ctx)
	if err != nil {
		return Eligibility{}, fmt.Errorf("review: list orders: %w", err)
	}
	return Evaluate(orders, productID), nil
}

// Submit validates the form against the gate's verdict and creates the
// review. Nothing is sent when a local check fails.
func (s *Service) Submit(ctx context.Context, e Eligibility, f Form) (*Review, error) {
	if e.Mode == ModeBlocked {
		return nil, ErrNotEligible
	}
	if e.Selected == nil {
		return nil, ErrNoOrderSelected
	}
	if f.Rating == 0 {
		return nil, ErrRatingRequired
	}

	req := CreateRequest{
		ProductID: e.ProductID,
		OrderID:   *e.Selected,
		Rating:    f.Rating,
		Title:     optional(f.Title),
		Comment:   optional(f.Comment),
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	r, err := s.api.CreateReview(ctx, req)
	if err != nil {
		log.Warn().Err(err).Stringer("product_id", e.ProductID).Msg("review: create rejected")
		return nil, fmt.Errorf("review: create: %w", err)
	}
	log.Info().Stringer("review_id", r.ID).Stringer("product_id", r.ProductID).Int("rating", r.Rating).Msg("review: created")
	return r, nil
}

// List returns a page of a product's reviews, defaulting to page 1 of 10.
func (s *Service) List(ctx context.Context, productID uuid.UUID, page, limit int) (*Page, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	p, err := s.api.ListProductReviews(ctx, productID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("review: list %s: %w", productID, err)
	}
	return p, nil
}

func (s *Service) Stats(ctx context.Context, productID uuid.UUID) (*Stats, error) {
	st, err := s.api.ProductRatingStats(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("review: stats %s: %w", productID, err)
	}
	return st, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) error {
	if req.Rating == nil && req.Title == nil && req.Comment == nil {
		return ErrNothingToUpdate
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	if err := s.api.UpdateReview(ctx, id, req); err != nil {
		return fmt.Errorf("review: update %s: %w", id, err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.api.DeleteReview(ctx, id); err != nil {
		return fmt.Errorf("review: delete %s: %w", id, err)
	}
	log.Info().Stringer("review_id", id).Msg("review: deleted")
	return nil
}

// MarkHelpful sends one vote per call. Repeated votes are the server's
// concern.
func (s *Service) MarkHelpful(ctx context.Context, id uuid.UUID) error {
	if err := s.api.MarkReviewHelpful(ctx, id); err != nil {
		return fmt.Errorf("review: mark helpful %s: %w", id, err)
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
