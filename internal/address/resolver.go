// Package address resolves the shipping address used at checkout and manages
// the user's address book.
package address

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/validation"
)

// Mode says where the checkout address comes from.
type Mode string

const (
	ModeSaved Mode = "saved"
	ModeNew   Mode = "new"
)

var (
	ErrNoSavedAddress  = errors.New("no saved address to use")
	ErrUnknownAddress  = errors.New("address is not in the address book")
	ErrNothingSelected = errors.New("please select a shipping address")
)

// API is the subset of the storefront API the address package calls.
// GetDefaultAddress returns nil, nil when the user has no default.
type API interface {
	GetDefaultAddress(ctx context.Context) (*Address, error)
	ListAddresses(ctx context.Context) ([]Address, error)
	CreateAddress(ctx context.Context, in Input) (*Address, error)
	UpdateAddress(ctx context.Context, id uuid.UUID, in Input) (*Address, error)
	DeleteAddress(ctx context.Context, id uuid.UUID) error
	SetDefaultAddress(ctx context.Context, id uuid.UUID) error
}

// Selection is the checkout's address choice. It is not safe for concurrent
// use; one checkout owns one selection.
type Selection struct {
	Mode     Mode
	Saved    []Address
	Selected *uuid.UUID
	Draft    Input
}

type Resolver struct {
	api API
}

func NewResolver(api API) *Resolver {
	return &Resolver{api: api}
}

// Resolve picks the initial selection: the default address, else the first
// saved one, else an empty form marked as the new default. Lookup failures
// degrade to the next step and are never returned.
func (r *Resolver) Resolve(ctx context.Context) *Selection {
	def, err := r.api.GetDefaultAddress(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("address: default lookup failed, falling back to list")
		def = nil
	}

	saved, err := r.api.ListAddresses(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("address: list failed")
		saved = nil
	}

	sel := &Selection{Saved: saved}
	switch {
	case def != nil:
		sel.Mode = ModeSaved
		id := def.ID
		sel.Selected = &id
		if !containsID(saved, id) {
			sel.Saved = append([]Address{*def}, saved...)
		}
	case len(saved) > 0:
		sel.Mode = ModeSaved
		id := saved[0].ID
		sel.Selected = &id
	case err != nil:
		// The list could not be read, so we cannot claim this will be the
		// first address.
		sel.Mode = ModeNew
	default:
		sel.Mode = ModeNew
		sel.Draft.IsDefault = true
	}
	return sel
}

// UseNew switches to the inline form. With no saved addresses the new one
// becomes the default.
func (s *Selection) UseNew() {
	s.Mode = ModeNew
	if len(s.Saved) == 0 {
		s.Draft.IsDefault = true
	}
}

// UseSaved switches back to the saved list, keeping the current choice or
// picking the first entry.
func (s *Selection) UseSaved() error {
	if len(s.Saved) == 0 {
		return ErrNoSavedAddress
	}
	s.Mode = ModeSaved
	if s.Selected == nil || !containsID(s.Saved, *s.Selected) {
		id := s.Saved[0].ID
		s.Selected = &id
	}
	return nil
}

// Choose selects a saved address.
func (s *Selection) Choose(id uuid.UUID) error {
	if !containsID(s.Saved, id) {
		return fmt.Errorf("%w: %s", ErrUnknownAddress, id)
	}
	s.Mode = ModeSaved
	s.Selected = &id
	return nil
}

// Validate checks the selection locally.
func (s *Selection) Validate() error {
	switch s.Mode {
	case ModeSaved:
		if s.Selected == nil {
			return ErrNothingSelected
		}
		return nil
	case ModeNew:
		return validation.Struct(normalize(s.Draft))
	default:
		return fmt.Errorf("address: unknown mode %q", s.Mode)
	}
}

// Payload returns what the order request carries: exactly one of a saved
// address id or an inline address.
func (s *Selection) Payload() (*uuid.UUID, *Input, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	if s.Mode == ModeSaved {
		id := *s.Selected
		return &id, nil, nil
	}
	in := normalize(s.Draft)
	return nil, &in, nil
}

func containsID(list []Address, id uuid.UUID) bool {
	for _, a := range list {
		if a.ID == id {
			return true
		}
	}
	return false
}
