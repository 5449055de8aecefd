// Package checkout turns the buyer's cart and address choice into an order,
// either placed directly (cash on delivery) or handed to the hosted card
// payment page.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/address"
	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/order"
	"github.com/vasiliy-maslov/storefront/internal/validation"
)

var (
	ErrEmptyCart            = errors.New("your cart is empty")
	ErrUnknownPaymentMethod = errors.New("please choose a payment method")
	ErrBillingRequired      = errors.New("billing address is required when it differs from shipping")
	ErrNoCheckoutURL        = errors.New("payment page address is missing")
)

type API interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*order.Order, error)
	CreateCardCheckout(ctx context.Context, req OrderRequest) (*CardSession, error)
	VerifyCheckoutSession(ctx context.Context, sessionID string) (*SessionStatus, error)
}

// Cart is what the dispatcher needs from the cart manager.
type Cart interface {
	Snapshot() *cart.Cart
	Refresh(ctx context.Context) error
}

// Input is the checkout form.
type Input struct {
	Shipping       *address.Selection
	UseSameAddress bool
	Billing        *address.Input
	Method         PaymentMethod
	Notes          string
}

type ResultKind string

const (
	ResultPlaced   ResultKind = "placed"
	ResultRedirect ResultKind = "redirect"
)

// Result tells the caller where to go next: the order page for a placed
// order, or the external payment page.
type Result struct {
	Kind        ResultKind
	Order       *order.Order
	NextPath    string
	RedirectURL string
}

type Dispatcher struct {
	api  API
	cart Cart
}

func NewDispatcher(api API, c Cart) *Dispatcher {
	return &Dispatcher{api: api, cart: c}
}

// Submit validates the form locally and dispatches on the payment method.
// The card branch computes no totals; the server prices the order.
func (d *Dispatcher) Submit(ctx context.Context, in Input) (*Result, error) {
	if d.cart.Snapshot().IsEmpty() {
		log.Warn().Msg("checkout: submit with empty cart")
		return nil, ErrEmptyCart
	}

	req, err := buildRequest(in)
	if err != nil {
		return nil, err
	}

	switch in.Method {
	case MethodCashOnDelivery:
		return d.placeOrder(ctx, req)
	case MethodCard:
		return d.startCardCheckout(ctx, req)
	default:
		return nil, ErrUnknownPaymentMethod
	}
}

func (d *Dispatcher) placeOrder(ctx context.Context, req OrderRequest) (*Result, error) {
	o, err := d.api.CreateOrder(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("checkout: create order failed")
		return nil, fmt.Errorf("checkout: create order: %w", err)
	}
	if !o.TotalsConsistent() {
		log.Warn().Stringer("order_id", o.ID).Str("total", o.Total.String()).Str("expected", o.ExpectedTotal().String()).Msg("checkout: order totals do not add up")
	}

	// The server empties the cart when it creates the order.
	if err := d.cart.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("checkout: cart refresh after order failed")
	}

	log.Info().Stringer("order_id", o.ID).Str("order_number", o.OrderNumber).Msg("checkout: order placed")
	return &Result{Kind: ResultPlaced, Order: o, NextPath: OrderPath(o)}, nil
}

func (d *Dispatcher) startCardCheckout(ctx context.Context, req OrderRequest) (*Result, error) {
	sess, err := d.api.CreateCardCheckout(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("checkout: card checkout failed")
		return nil, fmt.Errorf("checkout: card checkout: %w", err)
	}
	if _, err := url.ParseRequestURI(sess.CheckoutURL); err != nil || sess.CheckoutURL == "" {
		return nil, ErrNoCheckoutURL
	}

	if sess.Order != nil {
		log.Info().Stringer("order_id", sess.Order.ID).Msg("checkout: redirecting to payment page")
	}
	return &Result{Kind: ResultRedirect, Order: sess.Order, RedirectURL: sess.CheckoutURL}, nil
}

func buildRequest(in Input) (OrderRequest, error) {
	if !in.Method.Valid() {
		return OrderRequest{}, ErrUnknownPaymentMethod
	}
	if in.Shipping == nil {
		return OrderRequest{}, address.ErrNothingSelected
	}
	shippingID, shipping, err := in.Shipping.Payload()
	if err != nil {
		return OrderRequest{}, err
	}

	req := OrderRequest{
		ShippingAddressID: shippingID,
		ShippingAddress:   shipping,
		PaymentMethod:     in.Method,
		UseSameAddress:    in.UseSameAddress,
	}
	if !in.UseSameAddress {
		if in.Billing == nil {
			return OrderRequest{}, ErrBillingRequired
		}
		if err := validation.Struct(*in.Billing); err != nil {
			return OrderRequest{}, err
		}
		billing := *in.Billing
		req.BillingAddress = &billing
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		req.Notes = &notes
	}
	return req, nil
}

// OrderPath is the buyer's page for an order.
func OrderPath(o *order.Order) string {
	return "/orders/" + o.ID.String()
}
