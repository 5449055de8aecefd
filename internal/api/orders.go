package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/storefront/internal/checkout"
	"github.com/vasiliy-maslov/storefront/internal/order"
)

const (
	ordersPath       = "/api/v1/orders"
	vendorOrdersPath = "/api/v1/vendor/orders"
)

// CreateOrder places a cash-on-delivery order from the cart.
func (c *Client) CreateOrder(ctx context.Context, req checkout.OrderRequest) (*order.Order, error) {
	v, err := fetch[order.Order](ctx, c, http.MethodPost, ordersPath, req)
	return mustData(v, err, http.MethodPost, ordersPath)
}

// CreateCardCheckout creates a pending order and a hosted payment session.
func (c *Client) CreateCardCheckout(ctx context.Context, req checkout.OrderRequest) (*checkout.CardSession, error) {
	const endpoint = ordersPath + "/checkout/card"
	v, err := fetch[checkout.CardSession](ctx, c, http.MethodPost, endpoint, req)
	return mustData(v, err, http.MethodPost, endpoint)
}

func (c *Client) VerifyCheckoutSession(ctx context.Context, sessionID string) (*checkout.SessionStatus, error) {
	endpoint := ordersPath + "/checkout/verify?" + url.Values{"session_id": {sessionID}}.Encode()
	v, err := fetch[checkout.SessionStatus](ctx, c, http.MethodGet, endpoint, nil)
	return mustData(v, err, http.MethodGet, endpoint)
}

func (c *Client) ListOrders(ctx context.Context) ([]order.Order, error) {
	return listOrders(ctx, c, ordersPath)
}

func (c *Client) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	endpoint := ordersPath + "/" + id.String()
	v, err := fetch[order.Order](ctx, c, http.MethodGet, endpoint, nil)
	return mustData(v, err, http.MethodGet, endpoint)
}

func (c *Client) CancelOrder(ctx context.Context, id uuid.UUID) error {
	return send(ctx, c, http.MethodPost, ordersPath+"/"+id.String()+"/cancel", nil)
}

// ListVendorOrders returns orders containing the vendor's products.
func (c *Client) ListVendorOrders(ctx context.Context) ([]order.Order, error) {
	return listOrders(ctx, c, vendorOrdersPath)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status order.Status) error {
	return send(ctx, c, http.MethodPatch, vendorOrdersPath+"/"+id.String()+"/status", order.StatusUpdateRequest{Status: status})
}

func listOrders(ctx context.Context, c *Client, endpoint string) ([]order.Order, error) {
	v, err := fetch[[]order.Order](ctx, c, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return []order.Order{}, nil
	}
	return *v, nil
}
