package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// BreakerSettings configures the transport circuit breaker. The breaker
// never retries; it only fails fast while the API is down.
type BreakerSettings struct {
	Name        string
	MaxFailures uint32
	OpenTimeout time.Duration
}

var errUpstream = errors.New("upstream server error")

type breakerTransport struct {
	next http.RoundTripper
	cb   *gobreaker.CircuitBreaker[*http.Response]
}

func newBreakerTransport(next http.RoundTripper, s BreakerSettings) *breakerTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.Name == "" {
		s.Name = "storefront-api"
	}
	maxFailures := s.MaxFailures

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("api: circuit breaker state changed")
		},
	})
	return &breakerTransport{next: next, cb: cb}
}

// RoundTrip counts transport errors and 5xx answers as failures. A 5xx
// response is still handed back to the caller so the envelope can be read.
func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.cb.Execute(func() (*http.Response, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errUpstream
		}
		return resp, nil
	})
	if errors.Is(err, errUpstream) {
		return resp, nil
	}
	return resp, err
}
