package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/storefront/internal/api"
	"github.com/vasiliy-maslov/storefront/internal/validation"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestNotifier_ExpiryAndDismiss(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	n := New(WithClock(clock.now))

	first := n.Success("Added to cart")
	second := n.Info("Loading")
	assert.Equal(t, uint64(1), first.ID)
	assert.Equal(t, uint64(2), second.ID)
	assert.Len(t, n.Active(), 2)

	assert.True(t, n.Dismiss(first.ID))
	assert.False(t, n.Dismiss(first.ID))
	assert.Len(t, n.Active(), 1)

	clock.t = clock.t.Add(DefaultTTL)
	assert.Empty(t, n.Active())
}

func TestNotifier_IDsArePerInstance(t *testing.T) {
	a, b := New(), New()
	a.Info("x")
	a.Info("y")
	assert.Equal(t, uint64(1), b.Info("z").ID)
}

func TestClassify(t *testing.T) {
	validationErr := validation.Struct(struct {
		FullName string `json:"full_name" validate:"required"`
	}{})
	require.Error(t, validationErr)

	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "server_rejection_verbatim",
			err:      fmt.Errorf("cart: add: %w", &api.RequestError{Method: http.MethodPost, Endpoint: "/api/v1/cart/items", Status: 400, Message: "insufficient stock"}),
			wantKind: KindError,
			wantMsg:  "insufficient stock",
		},
		{
			name:     "transport_generic",
			err:      &api.TransportError{Method: http.MethodGet, Endpoint: "/api/v1/cart", Err: context.DeadlineExceeded},
			wantKind: KindError,
			wantMsg:  GenericFailure,
		},
		{
			name:     "parse_generic",
			err:      &api.ParseError{Method: http.MethodGet, Endpoint: "/api/v1/cart", Status: 200, Err: errors.New("unexpected EOF")},
			wantKind: KindError,
			wantMsg:  GenericFailure,
		},
		{
			name:     "validation_local",
			err:      validationErr,
			wantKind: KindError,
			wantMsg:  "full name is required",
		},
		{
			name:     "sentinel_unwrapped",
			err:      fmt.Errorf("%w: order ORD-1 is pending", errors.New("only confirmed orders can be cancelled")),
			wantKind: KindError,
			wantMsg:  "only confirmed orders can be cancelled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, msg := Classify(tt.err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestNotifier_ReportWarnings(t *testing.T) {
	errEmpty := errors.New("your cart is empty")
	n := New(WithWarnings(errEmpty))

	got, ok := n.Report(errEmpty)
	require.True(t, ok)
	assert.Equal(t, KindWarning, got.Kind)
	assert.Equal(t, "your cart is empty", got.Message)

	_, ok = n.Report(nil)
	assert.False(t, ok)
	assert.Len(t, n.Active(), 1)
}
