package checkout

import (
	"context"
	"net/url"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type OutcomeKind string

const (
	OutcomeConfirmed OutcomeKind = "confirmed"
	OutcomeUnknown   OutcomeKind = "unknown"
	OutcomeCancelled OutcomeKind = "cancelled"
)

const (
	SuccessPath = "/payment/success"
	CancelPath  = "/payment/cancel"

	unknownMessage   = "Don't worry, if your payment went through, your order will be updated automatically. Check your orders page for the latest status."
	cancelledMessage = "Your payment was not completed. No charges were made."
	confirmedMessage = "Payment successful! Your order has been placed."
)

// Outcome is what the payment return page shows. Links are the paths the
// buyer is offered next.
type Outcome struct {
	Kind          OutcomeKind `json:"kind"`
	Message       string      `json:"message"`
	OrderID       *uuid.UUID  `json:"order_id,omitempty"`
	OrderNumber   string      `json:"order_number,omitempty"`
	PaymentStatus string      `json:"payment_status,omitempty"`
	Links         []string    `json:"links"`
	Detail        string      `json:"detail,omitempty"`
}

// Verifier is the session lookup the reconciler needs.
type Verifier interface {
	VerifyCheckoutSession(ctx context.Context, sessionID string) (*SessionStatus, error)
}

// Reconciler handles the buyer's return from the hosted payment page. The
// payment webhook is the source of truth; the reconciler only reports what
// it can see and never fails.
type Reconciler struct {
	verifier Verifier
	cart     Cart
}

func NewReconciler(v Verifier, c Cart) *Reconciler {
	return &Reconciler{verifier: v, cart: c}
}

// Reconcile verifies the session named by the success redirect's query.
func (r *Reconciler) Reconcile(ctx context.Context, query url.Values) Outcome {
	sessionID := strings.TrimSpace(query.Get("session_id"))
	if sessionID == "" {
		log.Warn().Msg("checkout: payment return without session id")
		return unknown("No session ID found")
	}

	status, err := r.verifier.VerifyCheckoutSession(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("checkout: session verification failed")
		return unknown("Failed to verify payment status")
	}
	if status == nil {
		return unknown("Could not verify payment")
	}

	if r.cart != nil {
		if err := r.cart.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("checkout: cart refresh after payment failed")
		}
	}

	id := status.OrderID
	log.Info().Str("session_id", sessionID).Stringer("order_id", id).Str("payment_status", status.PaymentStatus).Msg("checkout: payment session verified")
	return Outcome{
		Kind:          OutcomeConfirmed,
		Message:       confirmedMessage,
		OrderID:       &id,
		OrderNumber:   status.OrderNumber,
		PaymentStatus: status.PaymentStatus,
		Links:         []string{"/orders/" + id.String(), "/products"},
	}
}

// Cancelled is the outcome of the cancel redirect.
func (r *Reconciler) Cancelled() Outcome {
	return Outcome{
		Kind:    OutcomeCancelled,
		Message: cancelledMessage,
		Links:   []string{"/checkout", "/cart"},
	}
}

func unknown(detail string) Outcome {
	return Outcome{
		Kind:    OutcomeUnknown,
		Message: unknownMessage,
		Links:   []string{"/orders"},
		Detail:  detail,
	}
}
