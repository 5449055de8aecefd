package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/storefront/internal/checkout"
	paymentHandler "github.com/vasiliy-maslov/storefront/internal/handler/http"
)

type MockPaymentReturns struct {
	mock.Mock
}

func (m *MockPaymentReturns) Reconcile(ctx context.Context, query url.Values) checkout.Outcome {
	args := m.Called(ctx, query)
	return args.Get(0).(checkout.Outcome)
}

func (m *MockPaymentReturns) Cancelled() checkout.Outcome {
	args := m.Called()
	return args.Get(0).(checkout.Outcome)
}

func TestPaymentHandler_Success(t *testing.T) {
	// Arrange
	id := uuid.Must(uuid.NewV4())
	want := checkout.Outcome{Kind: checkout.OutcomeConfirmed, OrderID: &id, OrderNumber: "ORD-1", Links: []string{"/orders/" + id.String()}}

	payments := new(MockPaymentReturns)
	payments.On("Reconcile", mock.Anything, url.Values{"session_id": {"cs_test_1"}}).Return(want).Once()

	outcomes := make(chan checkout.Outcome, 1)
	router := chi.NewRouter()
	paymentHandler.NewPaymentHandler(payments, outcomes).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/payment/success?session_id=cs_test_1", nil)
	rr := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rr, req)

	// Assert
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got checkout.Outcome
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, checkout.OutcomeConfirmed, got.Kind)
	require.NotNil(t, got.OrderID)
	assert.Equal(t, id, *got.OrderID)

	select {
	case published := <-outcomes:
		assert.Equal(t, "ORD-1", published.OrderNumber)
	default:
		t.Fatal("outcome was not published")
	}
	payments.AssertExpectations(t)
}

func TestPaymentHandler_CancelDoesNotBlockWithoutReader(t *testing.T) {
	payments := new(MockPaymentReturns)
	payments.On("Cancelled").Return(checkout.Outcome{Kind: checkout.OutcomeCancelled, Message: "Your payment was not completed. No charges were made."}).Twice()

	outcomes := make(chan checkout.Outcome)
	router := chi.NewRouter()
	paymentHandler.NewPaymentHandler(payments, outcomes).RegisterRoutes(router)

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/payment/cancel", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "No charges were made")
	}
	payments.AssertExpectations(t)
}
