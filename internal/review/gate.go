// Package review decides whether and for which order a buyer may review a
// product, and wraps the review endpoints.
package review

import (
	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/storefront/internal/order"
)

// Mode is what the review form should do about the order choice.
type Mode string

const (
	// ModeBlocked means no delivered order contains the product.
	ModeBlocked Mode = "blocked"
	// ModeAuto means exactly one order qualifies and it is preselected.
	ModeAuto Mode = "auto"
	// ModeChoose means the buyer must pick one of several orders.
	ModeChoose Mode = "choose"
)

const blockedMessage = "You can only review products from delivered orders."

// Eligibility is the gate's verdict.
type Eligibility struct {
	ProductID        uuid.UUID
	Mode             Mode
	Orders           []order.Order
	Selected         *uuid.UUID
	Message          string
	ExistingReviewID *uuid.UUID
}

// Evaluate filters orders to the delivered ones that contain the product.
func Evaluate(orders []order.Order, productID uuid.UUID) Eligibility {
	eligible := make([]order.Order, 0)
	for _, o := range orders {
		if o.Status == order.StatusDelivered && o.Contains(productID) {
			eligible = append(eligible, o)
		}
	}

	switch len(eligible) {
	case 0:
		return Eligibility{ProductID: productID, Mode: ModeBlocked, Orders: eligible, Message: blockedMessage}
	case 1:
		id := eligible[0].ID
		return Eligibility{ProductID: productID, Mode: ModeAuto, Orders: eligible, Selected: &id}
	default:
		return Eligibility{ProductID: productID, Mode: ModeChoose, Orders: eligible}
	}
}

// Select picks one of the eligible orders.
func (e *Eligibility) Select(orderID uuid.UUID) bool {
	for _, o := range e.Orders {
		if o.ID == orderID {
			id := orderID
			e.Selected = &id
			return true
		}
	}
	return false
}
