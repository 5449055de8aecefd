package address_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/storefront/internal/address"
	"github.com/vasiliy-maslov/storefront/internal/validation"
)

type MockAddressAPI struct {
	mock.Mock
}

func (m *MockAddressAPI) GetDefaultAddress(ctx context.Context) (*address.Address, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

func (m *MockAddressAPI) ListAddresses(ctx context.Context) ([]address.Address, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]address.Address), args.Error(1)
}

func (m *MockAddressAPI) CreateAddress(ctx context.Context, in address.Input) (*address.Address, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

func (m *MockAddressAPI) UpdateAddress(ctx context.Context, id uuid.UUID, in address.Input) (*address.Address, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

func (m *MockAddressAPI) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAddressAPI) SetDefaultAddress(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func saved(name string, isDefault bool) address.Address {
	return address.Address{
		ID:           uuid.Must(uuid.NewV4()),
		FullName:     name,
		Phone:        "+15550000000",
		AddressLine1: "1 Main St",
		City:         "Springfield",
		Country:      "US",
		IsDefault:    isDefault,
	}
}

func TestResolver_Resolve(t *testing.T) {
	home := saved("Home", true)
	work := saved("Work", false)
	errDown := errors.New("service unavailable")

	tests := []struct {
		name          string
		def           *address.Address
		defErr        error
		list          []address.Address
		listErr       error
		wantMode      address.Mode
		wantSelected  *uuid.UUID
		wantSaved     int
		wantIsDefault bool
	}{
		{name: "default_wins", def: &home, list: []address.Address{work, home}, wantMode: address.ModeSaved, wantSelected: &home.ID, wantSaved: 2},
		{name: "first_saved_without_default", list: []address.Address{work, home}, wantMode: address.ModeSaved, wantSelected: &work.ID, wantSaved: 2},
		{name: "default_lookup_fails", defErr: errDown, list: []address.Address{work}, wantMode: address.ModeSaved, wantSelected: &work.ID, wantSaved: 1},
		{name: "default_missing_from_list", def: &home, list: []address.Address{work}, wantMode: address.ModeSaved, wantSelected: &home.ID, wantSaved: 2},
		{name: "nothing_saved", list: []address.Address{}, wantMode: address.ModeNew, wantIsDefault: true},
		{name: "list_fails", listErr: errDown, wantMode: address.ModeNew},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAddressAPI)
			if tt.def != nil {
				api.On("GetDefaultAddress", mock.Anything).Return(tt.def, nil).Once()
			} else {
				api.On("GetDefaultAddress", mock.Anything).Return(nil, tt.defErr).Once()
			}
			if tt.list != nil {
				api.On("ListAddresses", mock.Anything).Return(tt.list, nil).Once()
			} else {
				api.On("ListAddresses", mock.Anything).Return(nil, tt.listErr).Once()
			}

			sel := address.NewResolver(api).Resolve(context.Background())

			assert.Equal(t, tt.wantMode, sel.Mode)
			assert.Equal(t, tt.wantSelected, sel.Selected)
			assert.Len(t, sel.Saved, tt.wantSaved)
			assert.Equal(t, tt.wantIsDefault, sel.Draft.IsDefault)
			api.AssertExpectations(t)
		})
	}
}

func TestSelection_Switching(t *testing.T) {
	home := saved("Home", true)
	work := saved("Work", false)
	sel := &address.Selection{Mode: address.ModeSaved, Saved: []address.Address{home, work}, Selected: &home.ID}

	require.NoError(t, sel.Choose(work.ID))
	assert.Equal(t, work.ID, *sel.Selected)
	assert.ErrorIs(t, sel.Choose(uuid.Must(uuid.NewV4())), address.ErrUnknownAddress)

	sel.UseNew()
	assert.Equal(t, address.ModeNew, sel.Mode)
	assert.False(t, sel.Draft.IsDefault, "saved addresses exist, new one is not the default")

	require.NoError(t, sel.UseSaved())
	assert.Equal(t, work.ID, *sel.Selected, "previous choice is kept")

	empty := &address.Selection{Mode: address.ModeNew}
	assert.ErrorIs(t, empty.UseSaved(), address.ErrNoSavedAddress)
	empty.UseNew()
	assert.True(t, empty.Draft.IsDefault)
}

func TestSelection_Payload(t *testing.T) {
	home := saved("Home", true)

	t.Run("saved", func(t *testing.T) {
		sel := &address.Selection{Mode: address.ModeSaved, Saved: []address.Address{home}, Selected: &home.ID}
		id, in, err := sel.Payload()
		require.NoError(t, err)
		assert.Nil(t, in)
		assert.Equal(t, home.ID, *id)
	})

	t.Run("saved_without_choice", func(t *testing.T) {
		sel := &address.Selection{Mode: address.ModeSaved, Saved: []address.Address{home}}
		_, _, err := sel.Payload()
		assert.ErrorIs(t, err, address.ErrNothingSelected)
	})

	t.Run("new_trimmed", func(t *testing.T) {
		draft := home.ToInput()
		draft.City = "  Shelbyville  "
		sel := &address.Selection{Mode: address.ModeNew, Draft: draft}
		id, in, err := sel.Payload()
		require.NoError(t, err)
		assert.Nil(t, id)
		assert.Equal(t, "Shelbyville", in.City)
	})

	t.Run("new_incomplete", func(t *testing.T) {
		sel := &address.Selection{Mode: address.ModeNew, Draft: address.Input{FullName: "Ada", City: "   "}}
		_, _, err := sel.Payload()

		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		for _, field := range []string{"phone", "address_line1", "city", "country"} {
			assert.True(t, verr.Has(field), field)
		}
		assert.False(t, verr.Has("full_name"))
	})
}

func TestBook(t *testing.T) {
	home := saved("Home", false)
	api := new(MockAddressAPI)
	book := address.NewBook(api)
	ctx := context.Background()

	in := home.ToInput()
	in.FullName = " Home "
	want := home.ToInput()
	api.On("CreateAddress", mock.Anything, want).Return(&home, nil).Once()
	api.On("SetDefaultAddress", mock.Anything, home.ID).Return(nil).Once()
	api.On("DeleteAddress", mock.Anything, home.ID).Return(errors.New("address is used by an order")).Once()

	created, err := book.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, home.ID, created.ID)

	require.NoError(t, book.SetDefault(ctx, home.ID))
	assert.ErrorContains(t, book.Delete(ctx, home.ID), "address is used by an order")

	_, err = book.Update(ctx, home.ID, address.Input{})
	var verr *validation.Error
	assert.ErrorAs(t, err, &verr)

	api.AssertExpectations(t)
}
