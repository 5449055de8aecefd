package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/storefront/internal/address"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (ps PaymentStatus) String() string {
	return string(ps)
}

// Item is one product line of a placed order. Values are frozen when the
// order is created.
type Item struct {
	ID              uuid.UUID       `json:"id"`
	OrderID         uuid.UUID       `json:"order_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductImageURL *string         `json:"product_image_url,omitempty"`
	ShopID          uuid.UUID       `json:"shop_id"`
	ShopName        string          `json:"shop_name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	CreatedAt       time.Time       `json:"created_at"`
}

type Order struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"user_id"`
	OrderNumber     string           `json:"order_number"`
	Status          Status           `json:"status"`
	ShippingAddress *address.Address `json:"shipping_address,omitempty"`
	BillingAddress  *address.Address `json:"billing_address,omitempty"`
	Items           []Item           `json:"items"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	ShippingCost    decimal.Decimal  `json:"shipping_cost"`
	Tax             decimal.Decimal  `json:"tax"`
	Discount        decimal.Decimal  `json:"discount"`
	Total           decimal.Decimal  `json:"total"`
	PaymentMethod   *string          `json:"payment_method,omitempty"`
	PaymentStatus   PaymentStatus    `json:"payment_status"`
	Notes           *string          `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	ConfirmedAt     *time.Time       `json:"confirmed_at,omitempty"`
	ShippedAt       *time.Time       `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time       `json:"delivered_at,omitempty"`
}

// ExpectedTotal is subtotal + shipping + tax - discount.
func (o *Order) ExpectedTotal() decimal.Decimal {
	return o.Subtotal.Add(o.ShippingCost).Add(o.Tax).Sub(o.Discount)
}

// TotalsConsistent reports whether Total and every line subtotal agree with
// their parts.
func (o *Order) TotalsConsistent() bool {
	if !o.Total.Equal(o.ExpectedTotal()) {
		return false
	}
	for _, it := range o.Items {
		if !it.Subtotal.Equal(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))) {
			return false
		}
	}
	return true
}

// Contains reports whether the order has a line for the product.
func (o *Order) Contains(productID uuid.UUID) bool {
	for _, it := range o.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// UnitCount is the number of units across all lines.
func (o *Order) UnitCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// StatusUpdateRequest is the body of PATCH /vendor/orders/{id}/status.
type StatusUpdateRequest struct {
	Status Status `json:"status" validate:"required"`
}
