package cart

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// Item is one product line in the cart, with the product snapshot the
// server attached to it.
type Item struct {
	ID              uuid.UUID       `json:"id"`
	CartID          uuid.UUID       `json:"cart_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductPrice    decimal.Decimal `json:"product_price"`
	ProductImageURL *string         `json:"product_image_url,omitempty"`
	StockQuantity   int             `json:"stock_quantity"`
	IsActive        bool            `json:"is_active"`
	ShopID          uuid.UUID       `json:"shop_id"`
	ShopName        string          `json:"shop_name"`
	Quantity        int             `json:"quantity"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Cart is the server's view of the signed-in user's cart.
type Cart struct {
	ID        uuid.UUID       `json:"id"`
	UserID    *uuid.UUID      `json:"user_id,omitempty"`
	Items     []Item          `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AddItemRequest is the body of POST /cart/items.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// UpdateItemRequest is the body of PUT /cart/items/{id}.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// IsEmpty reports whether the cart is absent or has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Item returns the line with the given id.
func (c *Cart) Item(itemID uuid.UUID) (Item, bool) {
	if c == nil {
		return Item{}, false
	}
	for _, it := range c.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return Item{}, false
}

// QuantityOf returns how many units of the product are already in the cart.
func (c *Cart) QuantityOf(productID uuid.UUID) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, it := range c.Items {
		if it.ProductID == productID {
			n += it.Quantity
		}
	}
	return n
}

// Consistent reports whether ItemCount and Subtotal agree with the lines.
func (c *Cart) Consistent() bool {
	if c == nil {
		return true
	}
	count, subtotal := c.sums()
	return count == c.ItemCount && subtotal.Equal(c.Subtotal)
}

// Recalculate sets ItemCount and Subtotal from the lines.
func (c *Cart) Recalculate() {
	c.ItemCount, c.Subtotal = c.sums()
}

func (c *Cart) sums() (int, decimal.Decimal) {
	count := 0
	subtotal := decimal.Zero
	for _, it := range c.Items {
		count += it.Quantity
		subtotal = subtotal.Add(it.Subtotal)
	}
	return count, subtotal
}

func (c *Cart) clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = append([]Item(nil), c.Items...)
	return &out
}
