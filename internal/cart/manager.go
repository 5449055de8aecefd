// Package cart mirrors the signed-in user's server-side cart. The server
// is authoritative: every mutation is followed by a full refetch and the
// local copy is never edited in place.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/vasiliy-maslov/storefront/internal/serial"
)

var (
	ErrNotSignedIn      = errors.New("please sign in to use the cart")
	ErrQuantityBelowOne = errors.New("quantity must be at least 1")
	ErrExceedsStock     = errors.New("cannot add more than available stock")
	ErrItemNotFound     = errors.New("item is not in the cart")
	ErrOutOfStock       = errors.New("product is out of stock")
)

type State string

const (
	StateAnonymous State = "anonymous"
	StateLoading   State = "loading"
	StatePopulated State = "populated"
	StateEmpty     State = "empty"
)

type API interface {
	GetCart(ctx context.Context) (*Cart, error)
	AddCartItem(ctx context.Context, req AddItemRequest) error
	UpdateCartItem(ctx context.Context, itemID uuid.UUID, req UpdateItemRequest) error
	RemoveCartItem(ctx context.Context, itemID uuid.UUID) error
	ClearCart(ctx context.Context) error
}

const (
	lockKey   = "cart"
	flightKey = "cart"
)

// Manager is safe for concurrent use. Mutations are serialized; reads
// return copies.
type Manager struct {
	api   API
	locks *serial.Keyed
	seq   serial.Sequence
	sf    singleflight.Group

	mu       sync.RWMutex
	signedIn bool
	loading  bool
	cart     *Cart
}

// NewManager creates a manager for a signed-out session. locks may be
// shared with other components; the cart uses its own key.
func NewManager(api API, locks *serial.Keyed) *Manager {
	if locks == nil {
		locks = serial.NewKeyed()
	}
	return &Manager{api: api, locks: locks}
}

// SignIn marks the session as signed in and loads the cart.
func (m *Manager) SignIn(ctx context.Context) error {
	m.mu.Lock()
	m.signedIn = true
	m.mu.Unlock()
	return m.Refresh(ctx)
}

// Discard drops the local cart on sign-out. In-flight responses are
// ignored when they arrive.
func (m *Manager) Discard() {
	m.seq.Next()
	m.mu.Lock()
	m.signedIn = false
	m.loading = false
	m.cart = nil
	m.mu.Unlock()
	log.Debug().Msg("cart: discarded")
}

// Refresh refetches the cart. Concurrent refreshes share one request. On
// failure the cart becomes absent.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.refresh(ctx, false)
}

func (m *Manager) refresh(ctx context.Context, fresh bool) error {
	m.mu.Lock()
	if !m.signedIn {
		m.cart = nil
		m.mu.Unlock()
		return nil
	}
	m.loading = true
	m.mu.Unlock()

	token := m.seq.Next()
	if fresh {
		m.sf.Forget(flightKey)
	}
	v, err, _ := m.sf.Do(flightKey, func() (any, error) {
		return m.api.GetCart(ctx)
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.seq.Current(token) {
		log.Debug().Uint64("token", token).Msg("cart: stale refresh discarded")
		return nil
	}
	m.loading = false
	if err != nil {
		m.cart = nil
		log.Warn().Err(err).Msg("cart: refresh failed")
		return fmt.Errorf("cart: refresh: %w", err)
	}

	c, _ := v.(*Cart)
	c = c.clone()
	if c != nil && !c.Consistent() {
		log.Warn().Int("item_count", c.ItemCount).Str("subtotal", c.Subtotal.String()).Msg("cart: server totals disagree with lines, recalculating")
		c.Recalculate()
	}
	m.cart = c
	return nil
}

// Add puts quantity units of a product in the cart. stock is the product's
// available stock as shown to the buyer; units already in the cart count
// against it.
func (m *Manager) Add(ctx context.Context, productID uuid.UUID, quantity, stock int) error {
	if err := m.requireSignedIn(); err != nil {
		return err
	}
	if quantity < 1 {
		return ErrQuantityBelowOne
	}
	if stock < 1 {
		return ErrOutOfStock
	}

	unlock := m.locks.Lock(lockKey)
	defer unlock()

	if m.Snapshot().QuantityOf(productID)+quantity > stock {
		return ErrExceedsStock
	}
	if err := m.api.AddCartItem(ctx, AddItemRequest{ProductID: productID, Quantity: quantity}); err != nil {
		return fmt.Errorf("cart: add %s: %w", productID, err)
	}
	log.Info().Stringer("product_id", productID).Int("quantity", quantity).Msg("cart: item added")
	m.refreshAfterWrite(ctx)
	return nil
}

// UpdateQuantity sets a line's quantity.
func (m *Manager) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if err := m.requireSignedIn(); err != nil {
		return err
	}
	if quantity < 1 {
		return ErrQuantityBelowOne
	}

	unlock := m.locks.Lock(lockKey)
	defer unlock()

	return m.update(ctx, itemID, func(Item) int { return quantity })
}

// Increment adds one unit to a line, up to the line's stock.
func (m *Manager) Increment(ctx context.Context, itemID uuid.UUID) error {
	if err := m.requireSignedIn(); err != nil {
		return err
	}
	unlock := m.locks.Lock(lockKey)
	defer unlock()

	return m.update(ctx, itemID, func(it Item) int { return it.Quantity + 1 })
}

// Decrement removes one unit from a line. A line at one unit must be
// removed instead.
func (m *Manager) Decrement(ctx context.Context, itemID uuid.UUID) error {
	if err := m.requireSignedIn(); err != nil {
		return err
	}
	unlock := m.locks.Lock(lockKey)
	defer unlock()

	return m.update(ctx, itemID, func(it Item) int { return it.Quantity - 1 })
}

// update must be called with the cart lock held.
func (m *Manager) update(ctx context.Context, itemID uuid.UUID, next func(Item) int) error {
	it, ok := m.Snapshot().Item(itemID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	quantity := next(it)
	if quantity < 1 {
		return ErrQuantityBelowOne
	}
	if quantity > it.StockQuantity {
		return ErrExceedsStock
	}
	if quantity == it.Quantity {
		return nil
	}

	if err := m.api.UpdateCartItem(ctx, itemID, UpdateItemRequest{Quantity: quantity}); err != nil {
		return fmt.Errorf("cart: update %s: %w", itemID, err)
	}
	m.refreshAfterWrite(ctx)
	return nil
}

func (m *Manager) Remove(ctx context.Context, itemID uuid.UUID) error {
	if err := m.requireSignedIn(); err != nil {
		return err
	}
	unlock := m.locks.Lock(lockKey)
	defer unlock()

	if err := m.api.RemoveCartItem(ctx, itemID); err != nil {
		return fmt.Errorf("cart: remove %s: %w", itemID, err)
	}
	m.refreshAfterWrite(ctx)
	return nil
}

func (m *Manager) Clear(ctx context.Context) error {
	if err := m.requireSignedIn(); err != nil {
		return err
	}
	unlock := m.locks.Lock(lockKey)
	defer unlock()

	if err := m.api.ClearCart(ctx); err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	m.refreshAfterWrite(ctx)
	return nil
}

// refreshAfterWrite always starts a new fetch so the result reflects the
// write. Its failure leaves the cart absent but does not fail the write.
func (m *Manager) refreshAfterWrite(ctx context.Context) {
	if err := m.refresh(ctx, true); err != nil {
		log.Warn().Err(err).Msg("cart: refetch after write failed")
	}
}

func (m *Manager) requireSignedIn() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.signedIn {
		return ErrNotSignedIn
	}
	return nil
}

// Snapshot returns a copy of the cart, or nil when there is none.
func (m *Manager) Snapshot() *Cart {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cart.clone()
}

// Count is the number of units in the cart.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cart == nil {
		return 0
	}
	return m.cart.ItemCount
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch {
	case !m.signedIn:
		return StateAnonymous
	case m.loading:
		return StateLoading
	case m.cart.IsEmpty():
		return StateEmpty
	default:
		return StatePopulated
	}
}
