package address

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/validation"
)

// Book manages the saved addresses.
type Book interface {
	List(ctx context.Context) ([]Address, error)
	Create(ctx context.Context, in Input) (*Address, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Address, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetDefault(ctx context.Context, id uuid.UUID) error
}

type book struct {
	api API
}

func NewBook(api API) Book {
	return &book{api: api}
}

func (b *book) List(ctx context.Context) ([]Address, error) {
	list, err := b.api.ListAddresses(ctx)
	if err != nil {
		return nil, fmt.Errorf("address: list: %w", err)
	}
	return list, nil
}

func (b *book) Create(ctx context.Context, in Input) (*Address, error) {
	in = normalize(in)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	a, err := b.api.CreateAddress(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("address: create: %w", err)
	}
	log.Info().Stringer("address_id", a.ID).Bool("is_default", a.IsDefault).Msg("address: created")
	return a, nil
}

func (b *book) Update(ctx context.Context, id uuid.UUID, in Input) (*Address, error) {
	in = normalize(in)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	a, err := b.api.UpdateAddress(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("address: update %s: %w", id, err)
	}
	return a, nil
}

func (b *book) Delete(ctx context.Context, id uuid.UUID) error {
	if err := b.api.DeleteAddress(ctx, id); err != nil {
		return fmt.Errorf("address: delete %s: %w", id, err)
	}
	log.Info().Stringer("address_id", id).Msg("address: deleted")
	return nil
}

func (b *book) SetDefault(ctx context.Context, id uuid.UUID) error {
	if err := b.api.SetDefaultAddress(ctx, id); err != nil {
		return fmt.Errorf("address: set default %s: %w", id, err)
	}
	return nil
}

// normalize trims the required text fields so whitespace-only input fails
// the required check.
func normalize(in Input) Input {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.AddressLine1 = strings.TrimSpace(in.AddressLine1)
	in.City = strings.TrimSpace(in.City)
	in.Country = strings.TrimSpace(in.Country)
	return in
}
