package order

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/serial"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrCannotCancel            = errors.New("only confirmed orders can be cancelled")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// API is the buyer side of the orders endpoints.
type API interface {
	ListOrders(ctx context.Context) ([]Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) error
}

// VendorAPI is the vendor side of the orders endpoints.
type VendorAPI interface {
	ListVendorOrders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status Status) error
}

type Service interface {
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	Cancel(ctx context.Context, current *Order) (*Order, error)
}

type service struct {
	api API
}

func NewService(api API) Service {
	return &service{api: api}
}

func (s *service) List(ctx context.Context) ([]Order, error) {
	orders, err := s.api.ListOrders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("order: failed to list orders")
		return nil, fmt.Errorf("order: list: %w", err)
	}
	return orders, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.api.GetOrder(ctx, id)
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", id).Msg("order: failed to fetch order")
		return nil, fmt.Errorf("order: get %s: %w", id, err)
	}
	if !o.TotalsConsistent() {
		log.Warn().Stringer("order_id", id).Str("total", o.Total.String()).Str("expected", o.ExpectedTotal().String()).Msg("order: totals do not add up")
	}
	return o, nil
}

// Cancel asks the server to cancel the order the buyer is looking at and
// returns the refetched order. It refuses locally unless the shown status
// allows a buyer cancel.
func (s *service) Cancel(ctx context.Context, current *Order) (*Order, error) {
	if current == nil {
		return nil, ErrOrderNotFound
	}
	if !BuyerCanCancel(current.Status) {
		return nil, fmt.Errorf("%w: order %s is %s", ErrCannotCancel, current.OrderNumber, current.Status)
	}

	if err := s.api.CancelOrder(ctx, current.ID); err != nil {
		log.Warn().Err(err).Stringer("order_id", current.ID).Msg("order: cancel rejected")
		return nil, fmt.Errorf("order: cancel %s: %w", current.ID, err)
	}
	log.Info().Stringer("order_id", current.ID).Msg("order: cancelled")

	return s.Get(ctx, current.ID)
}

// Board is the vendor's order list. It keeps the last loaded orders so the
// list can be filtered and counted without refetching. Safe for concurrent
// use; status updates for the same order never overlap.
type Board struct {
	api   VendorAPI
	locks *serial.Keyed

	mu     sync.RWMutex
	orders []Order
}

func NewBoard(api VendorAPI, locks *serial.Keyed) *Board {
	if locks == nil {
		locks = serial.NewKeyed()
	}
	return &Board{api: api, locks: locks}
}

// Load fetches the vendor's orders and replaces the local list.
func (b *Board) Load(ctx context.Context) ([]Order, error) {
	orders, err := b.api.ListVendorOrders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("order: failed to list vendor orders")
		return nil, fmt.Errorf("order: list vendor orders: %w", err)
	}

	b.mu.Lock()
	b.orders = orders
	b.mu.Unlock()
	return copyOrders(orders), nil
}

// FilterByStatus returns the loaded orders in the given status. An empty
// status returns all of them.
func (b *Board) FilterByStatus(status Status) []Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if status == "" {
		return copyOrders(b.orders)
	}
	out := make([]Order, 0)
	for _, o := range b.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// CountByStatus counts the loaded orders per status. Every known status has
// an entry.
func (b *Board) CountByStatus() map[Status]int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, o := range b.orders {
		counts[o.Status]++
	}
	return counts
}

// Actions returns the statuses the vendor may move an order to.
func (b *Board) Actions(o Order) []Status {
	return NextStatuses(o.Status)
}

// Advance moves a loaded order to next. Transitions outside the table are
// refused without a call; server rejections are returned as is and never
// retried. On success the local copy takes the new status.
func (b *Board) Advance(ctx context.Context, orderID uuid.UUID, next Status) error {
	unlock := b.locks.Lock("order:" + orderID.String())
	defer unlock()

	current, ok := b.find(orderID)
	if !ok {
		log.Warn().Stringer("order_id", orderID).Stringer("new_status", next).Msg("order: order not on board, cannot update status")
		return ErrOrderNotFound
	}

	if current == next {
		log.Info().Stringer("order_id", orderID).Stringer("status", next).Msg("order: status is already the same, no update needed")
		return nil
	}

	if !CanTransition(current, next) {
		log.Warn().
			Stringer("order_id", orderID).
			Stringer("current_status", current).
			Stringer("new_status", next).
			Msg("order: invalid status transition attempt")
		return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, current, next)
	}

	if err := b.api.UpdateOrderStatus(ctx, orderID, next); err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", next).Msg("order: status update rejected")
		return fmt.Errorf("order: update status of %s: %w", orderID, err)
	}

	b.setStatus(orderID, next)
	log.Info().Stringer("order_id", orderID).Stringer("old_status", current).Stringer("new_status", next).Msg("order: status updated")
	return nil
}

func (b *Board) find(id uuid.UUID) (Status, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, o := range b.orders {
		if o.ID == id {
			return o.Status, true
		}
	}
	return "", false
}

func (b *Board) setStatus(id uuid.UUID, s Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.orders {
		if b.orders[i].ID == id {
			b.orders[i].Status = s
		}
	}
}

func copyOrders(in []Order) []Order {
	out := make([]Order, len(in))
	copy(out, in)
	return out
}
