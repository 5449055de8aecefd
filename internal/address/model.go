package address

import (
	"time"

	"github.com/gofrs/uuid"
)

// Address is a saved shipping or billing location.
type Address struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 *string   `json:"address_line2,omitempty"`
	City         string    `json:"city"`
	State        *string   `json:"state,omitempty"`
	PostalCode   *string   `json:"postal_code,omitempty"`
	Country      string    `json:"country"`
	IsDefault    bool      `json:"is_default"`
	AddressType  string    `json:"address_type,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Input is the address form, used for the address book and inline at
// checkout.
type Input struct {
	FullName     string  `json:"full_name" validate:"required"`
	Phone        string  `json:"phone" validate:"required"`
	AddressLine1 string  `json:"address_line1" validate:"required"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         string  `json:"city" validate:"required"`
	State        *string `json:"state,omitempty"`
	PostalCode   *string `json:"postal_code,omitempty"`
	Country      string  `json:"country" validate:"required"`
	IsDefault    bool    `json:"is_default"`
}

// ToInput returns the form pre-filled from a saved address.
func (a Address) ToInput() Input {
	return Input{
		FullName:     a.FullName,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
		IsDefault:    a.IsDefault,
	}
}
