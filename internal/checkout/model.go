package checkout

import (
	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/storefront/internal/address"
	"github.com/vasiliy-maslov/storefront/internal/order"
)

type PaymentMethod string

const (
	MethodCard           PaymentMethod = "card"
	MethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodCard || m == MethodCashOnDelivery
}

// OrderRequest is the body of POST /orders and POST /orders/checkout/card.
// Exactly one of ShippingAddressID and ShippingAddress is set.
type OrderRequest struct {
	ShippingAddressID *uuid.UUID     `json:"shipping_address_id,omitempty"`
	ShippingAddress   *address.Input `json:"shipping_address,omitempty"`
	BillingAddress    *address.Input `json:"billing_address,omitempty"`
	PaymentMethod     PaymentMethod  `json:"payment_method"`
	UseSameAddress    bool           `json:"use_same_address"`
	Notes             *string        `json:"notes,omitempty"`
}

// CardSession is the card checkout answer: the pending order and the hosted
// payment page to send the buyer to.
type CardSession struct {
	Order       *order.Order `json:"order"`
	CheckoutURL string       `json:"checkout_url"`
}

// SessionStatus is the answer of GET /orders/checkout/verify.
type SessionStatus struct {
	SessionID     string    `json:"session_id"`
	PaymentStatus string    `json:"payment_status"`
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
}
