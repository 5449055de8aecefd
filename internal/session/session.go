// Package session wires the storefront components for one signed-in (or
// anonymous) user. Nothing here is global; tests and the CLI build their
// own sessions.
package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/address"
	"github.com/vasiliy-maslov/storefront/internal/api"
	"github.com/vasiliy-maslov/storefront/internal/auth"
	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/catalog"
	"github.com/vasiliy-maslov/storefront/internal/checkout"
	"github.com/vasiliy-maslov/storefront/internal/config"
	"github.com/vasiliy-maslov/storefront/internal/notify"
	"github.com/vasiliy-maslov/storefront/internal/order"
	"github.com/vasiliy-maslov/storefront/internal/review"
	"github.com/vasiliy-maslov/storefront/internal/serial"
	"github.com/vasiliy-maslov/storefront/internal/vendor"
)

type Session struct {
	Client   *api.Client
	Tokens   *auth.Static
	Notifier *notify.Notifier

	Cart      *cart.Manager
	Catalog   *catalog.Service
	Addresses address.Book
	Resolver  *address.Resolver
	Checkout  *checkout.Dispatcher
	Payments  *checkout.Reconciler
	Orders    order.Service
	Board     *order.Board
	Reviews   *review.Service
	Vendor    vendor.Service
}

// New builds a session from configuration. With a token in the
// configuration the session starts signed in, but the cart is not loaded
// until SignIn or Cart.Refresh is called.
func New(cfg *config.Config, opts ...api.Option) (*Session, error) {
	tokens, err := auth.NewStatic(cfg.API.Token)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	clientOpts := []api.Option{api.WithTimeout(cfg.API.Timeout), api.WithTokenProvider(tokens)}
	if cfg.Breaker.Enabled {
		clientOpts = append(clientOpts, api.WithBreaker(api.BreakerSettings{
			Name:        cfg.App.Name + "-api",
			MaxFailures: cfg.Breaker.MaxFailures,
			OpenTimeout: cfg.Breaker.OpenTimeout,
		}))
	}
	client := api.New(cfg.API.BaseURL, append(clientOpts, opts...)...)

	return Assemble(client, tokens, notify.New(
		notify.WithTTL(cfg.Notifications.TTL),
		notify.WithWarnings(
			checkout.ErrEmptyCart,
			cart.ErrExceedsStock,
			cart.ErrNotSignedIn,
			auth.ErrTokenExpired,
		),
	)), nil
}

// Assemble wires the components around an existing client.
func Assemble(client *api.Client, tokens *auth.Static, notifier *notify.Notifier) *Session {
	locks := serial.NewKeyed()
	cartManager := cart.NewManager(client, locks)
	orders := order.NewService(client)

	return &Session{
		Client:    client,
		Tokens:    tokens,
		Notifier:  notifier,
		Cart:      cartManager,
		Catalog:   catalog.NewService(client),
		Addresses: address.NewBook(client),
		Resolver:  address.NewResolver(client),
		Checkout:  checkout.NewDispatcher(client, cartManager),
		Payments:  checkout.NewReconciler(client, cartManager),
		Orders:    orders,
		Board:     order.NewBoard(client, locks),
		Reviews:   review.NewService(client, orders),
		Vendor:    vendor.NewService(client),
	}
}

// SignIn stores the token and loads the cart.
func (s *Session) SignIn(ctx context.Context, token string) error {
	if token != "" {
		if err := s.Tokens.Set(token); err != nil {
			return err
		}
	}
	if !s.Tokens.SignedIn() {
		return cart.ErrNotSignedIn
	}
	if c := s.Tokens.Claims(); c != nil {
		log.Info().Str("subject", c.Subject).Msg("session: signed in")
	}
	return s.Cart.SignIn(ctx)
}

// SignOut forgets the token and the cart.
func (s *Session) SignOut() {
	s.Tokens.Clear()
	s.Cart.Discard()
	log.Info().Msg("session: signed out")
}

// Report shows err to the user. It returns err so callers can write
// `return s.Report(err)`.
func (s *Session) Report(err error) error {
	if n, ok := s.Notifier.Report(err); ok {
		log.Debug().Uint64("notification_id", n.ID).Str("message", n.Message).Msg("session: error reported")
	}
	return err
}
