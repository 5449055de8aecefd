package api

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/storefront/internal/address"
)

const addressesPath = "/api/v1/addresses"

func (c *Client) ListAddresses(ctx context.Context) ([]address.Address, error) {
	v, err := fetch[[]address.Address](ctx, c, http.MethodGet, addressesPath, nil)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return []address.Address{}, nil
	}
	return *v, nil
}

// GetDefaultAddress returns nil, nil when the user has no default. The
// server answers that case with either an empty envelope or a 404.
func (c *Client) GetDefaultAddress(ctx context.Context) (*address.Address, error) {
	v, err := fetch[address.Address](ctx, c, http.MethodGet, addressesPath+"/default", nil)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Client) CreateAddress(ctx context.Context, in address.Input) (*address.Address, error) {
	v, err := fetch[address.Address](ctx, c, http.MethodPost, addressesPath, in)
	return mustData(v, err, http.MethodPost, addressesPath)
}

func (c *Client) UpdateAddress(ctx context.Context, id uuid.UUID, in address.Input) (*address.Address, error) {
	endpoint := addressesPath + "/" + id.String()
	v, err := fetch[address.Address](ctx, c, http.MethodPut, endpoint, in)
	return mustData(v, err, http.MethodPut, endpoint)
}

func (c *Client) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	return send(ctx, c, http.MethodDelete, addressesPath+"/"+id.String(), nil)
}

func (c *Client) SetDefaultAddress(ctx context.Context, id uuid.UUID) error {
	return send(ctx, c, http.MethodPatch, addressesPath+"/"+id.String()+"/default", nil)
}
