// Package http serves the pages the hosted payment page redirects the buyer
// back to.
package http

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/checkout"
)

// PaymentReturns reconciles a redirect back from the payment page.
type PaymentReturns interface {
	Reconcile(ctx context.Context, query url.Values) checkout.Outcome
	Cancelled() checkout.Outcome
}

type PaymentHandler struct {
	payments PaymentReturns
	outcomes chan<- checkout.Outcome
}

// NewPaymentHandler creates the handler. Every outcome is also offered on
// outcomes, if non-nil, without blocking.
func NewPaymentHandler(payments PaymentReturns, outcomes chan<- checkout.Outcome) *PaymentHandler {
	return &PaymentHandler{payments: payments, outcomes: outcomes}
}

func (h *PaymentHandler) RegisterRoutes(router chi.Router) {
	router.Get(checkout.SuccessPath, h.handleSuccess)
	router.Get(checkout.CancelPath, h.handleCancel)
}

// handleSuccess always answers 200: an unverified session is an outcome
// for the buyer to see, not a server error.
func (h *PaymentHandler) handleSuccess(w http.ResponseWriter, r *http.Request) {
	out := h.payments.Reconcile(r.Context(), r.URL.Query())
	h.publish(out)
	respondWithJSON(w, http.StatusOK, out)
}

func (h *PaymentHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	out := h.payments.Cancelled()
	h.publish(out)
	respondWithJSON(w, http.StatusOK, out)
}

func (h *PaymentHandler) publish(out checkout.Outcome) {
	if h.outcomes == nil {
		return
	}
	select {
	case h.outcomes <- out:
	default:
		log.Warn().Str("kind", string(out.Kind)).Msg("handler: outcome dropped, nobody is waiting")
	}
}

// MethodNotAllowed answers with the JSON error body used by this package.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// NotFound answers with the JSON error body used by this package.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotFound, "not found")
}
