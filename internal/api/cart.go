package api

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/storefront/internal/cart"
)

const (
	cartPath      = "/api/v1/cart"
	cartItemsPath = "/api/v1/cart/items"
)

// GetCart returns the signed-in user's cart. The server creates an empty
// one on first access.
func (c *Client) GetCart(ctx context.Context) (*cart.Cart, error) {
	v, err := fetch[cart.Cart](ctx, c, http.MethodGet, cartPath, nil)
	return mustData(v, err, http.MethodGet, cartPath)
}

func (c *Client) AddCartItem(ctx context.Context, req cart.AddItemRequest) error {
	return send(ctx, c, http.MethodPost, cartItemsPath, req)
}

func (c *Client) UpdateCartItem(ctx context.Context, itemID uuid.UUID, req cart.UpdateItemRequest) error {
	return send(ctx, c, http.MethodPut, cartItemsPath+"/"+itemID.String(), req)
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID uuid.UUID) error {
	return send(ctx, c, http.MethodDelete, cartItemsPath+"/"+itemID.String(), nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return send(ctx, c, http.MethodDelete, cartPath, nil)
}
