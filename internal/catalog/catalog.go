// Package catalog holds the product read model and search query.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID            uuid.UUID       `json:"id"`
	ShopID        uuid.UUID       `json:"shop_id"`
	CategoryID    *uuid.UUID      `json:"category_id,omitempty"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      *string         `json:"image_url,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InStock reports whether at least one unit can be ordered.
func (p Product) InStock() bool {
	return p.IsActive && p.StockQuantity > 0
}

type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortName      Sort = "name"
)

var (
	ErrInvalidPriceRange = errors.New("minimum price cannot be greater than maximum price")
	ErrNegativePrice     = errors.New("price filter cannot be negative")
	ErrUnknownSort       = errors.New("unknown sort order")
)

// Query filters GET /products. Zero values are omitted.
type Query struct {
	Search   string
	Sort     Sort
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Page     int
	Limit    int
}

// Validate checks the query locally.
func (q Query) Validate() error {
	if q.MinPrice != nil && q.MinPrice.IsNegative() || q.MaxPrice != nil && q.MaxPrice.IsNegative() {
		return ErrNegativePrice
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return ErrInvalidPriceRange
	}
	switch q.Sort {
	case "", SortNewest, SortPriceAsc, SortPriceDesc, SortName:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSort, q.Sort)
	}
	return nil
}

// Values encodes the query string.
func (q Query) Values() url.Values {
	v := url.Values{}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.Sort != "" {
		v.Set("sort", string(q.Sort))
	}
	if q.MinPrice != nil {
		v.Set("min_price", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		v.Set("max_price", q.MaxPrice.String())
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

type API interface {
	ListProducts(ctx context.Context, query url.Values) ([]Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

// Search lists products matching q. Invalid queries never reach the API.
func (s *Service) Search(ctx context.Context, q Query) ([]Product, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	products, err := s.api.ListProducts(ctx, q.Values())
	if err != nil {
		log.Error().Err(err).Str("search", q.Search).Msg("catalog: failed to list products")
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	return products, nil
}

func (s *Service) Product(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("catalog: get product %s: %w", id, err)
	}
	return p, nil
}
