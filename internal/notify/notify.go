// Package notify keeps the short-lived messages shown to the user and maps
// errors to the text they should see.
package notify

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/api"
	"github.com/vasiliy-maslov/storefront/internal/validation"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 4 * time.Second

// GenericFailure is shown for failures the user cannot act on.
const GenericFailure = "Request failed. Please try again."

type Notification struct {
	ID        uint64    `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notifier is safe for concurrent use. Each notifier numbers its own
// notifications.
type Notifier struct {
	ttl      time.Duration
	now      func() time.Time
	warnings []error

	mu     sync.Mutex
	nextID uint64
	items  []Notification
}

type Option func(*Notifier)

func WithTTL(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.ttl = d
		}
	}
}

// WithWarnings makes Report show errors matching any of errs as warnings.
func WithWarnings(errs ...error) Option {
	return func(n *Notifier) { n.warnings = append(n.warnings, errs...) }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) { n.now = now }
}

func New(opts ...Option) *Notifier {
	n := &Notifier{ttl: DefaultTTL, now: time.Now}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Push adds a notification and returns it.
func (n *Notifier) Push(kind Kind, message string) Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	now := n.now()
	item := Notification{ID: n.nextID, Kind: kind, Message: message, CreatedAt: now, ExpiresAt: now.Add(n.ttl)}
	n.items = append(n.items, item)
	n.prune(now)
	return item
}

func (n *Notifier) Success(msg string) Notification { return n.Push(KindSuccess, msg) }
func (n *Notifier) Error(msg string) Notification   { return n.Push(KindError, msg) }
func (n *Notifier) Warning(msg string) Notification { return n.Push(KindWarning, msg) }
func (n *Notifier) Info(msg string) Notification    { return n.Push(KindInfo, msg) }

// Dismiss removes a notification before it expires.
func (n *Notifier) Dismiss(id uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, it := range n.items {
		if it.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return true
		}
	}
	return false
}

// Active returns the notifications that have not expired, oldest first.
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.prune(n.now())
	out := make([]Notification, len(n.items))
	copy(out, n.items)
	return out
}

func (n *Notifier) prune(now time.Time) {
	kept := n.items[:0]
	for _, it := range n.items {
		if now.Before(it.ExpiresAt) {
			kept = append(kept, it)
		}
	}
	n.items = kept
}

// Report turns err into an error notification. Nil errors are ignored.
func (n *Notifier) Report(err error) (Notification, bool) {
	if err == nil {
		return Notification{}, false
	}
	kind, msg := Classify(err)
	for _, w := range n.warnings {
		if errors.Is(err, w) {
			kind = KindWarning
			break
		}
	}
	log.Debug().Err(err).Str("kind", string(kind)).Msg("notify: reporting error")
	return n.Push(kind, msg), true
}

// Classify picks the kind and text for err. Server rejections keep the
// server's text; transport and decoding failures get a generic line.
func Classify(err error) (Kind, string) {
	var (
		reqErr       *api.RequestError
		transportErr *api.TransportError
		parseErr     *api.ParseError
		verr         *validation.Error
	)
	switch {
	case errors.As(err, &reqErr):
		return KindError, reqErr.Message
	case errors.As(err, &transportErr), errors.As(err, &parseErr):
		return KindError, GenericFailure
	case errors.As(err, &verr):
		return KindError, verr.Error()
	default:
		return KindError, rootMessage(err)
	}
}

// rootMessage strips the package prefixes added while wrapping.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
