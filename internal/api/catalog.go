package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/storefront/internal/catalog"
	"github.com/vasiliy-maslov/storefront/internal/vendor"
)

const (
	productsPath = "/api/v1/products"
	usersPath    = "/api/v1/users"
	shopsPath    = "/api/v1/shops"
)

func (c *Client) ListProducts(ctx context.Context, query url.Values) ([]catalog.Product, error) {
	endpoint := productsPath
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	v, err := fetch[[]catalog.Product](ctx, c, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return []catalog.Product{}, nil
	}
	return *v, nil
}

func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	endpoint := productsPath + "/" + id.String()
	v, err := fetch[catalog.Product](ctx, c, http.MethodGet, endpoint, nil)
	return mustData(v, err, http.MethodGet, endpoint)
}

func (c *Client) GetProfile(ctx context.Context) (*vendor.User, error) {
	const endpoint = usersPath + "/profile"
	v, err := fetch[vendor.User](ctx, c, http.MethodGet, endpoint, nil)
	return mustData(v, err, http.MethodGet, endpoint)
}

func (c *Client) BecomeVendor(ctx context.Context, req vendor.BecomeVendorRequest) (*vendor.BecomeVendorResponse, error) {
	const endpoint = usersPath + "/become-vendor"
	v, err := fetch[vendor.BecomeVendorResponse](ctx, c, http.MethodPost, endpoint, req)
	return mustData(v, err, http.MethodPost, endpoint)
}

func (c *Client) CreateShop(ctx context.Context, req vendor.CreateShopRequest) (*vendor.Shop, error) {
	v, err := fetch[vendor.Shop](ctx, c, http.MethodPost, shopsPath, req)
	return mustData(v, err, http.MethodPost, shopsPath)
}
