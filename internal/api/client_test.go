package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/storefront/internal/address"
	"github.com/vasiliy-maslov/storefront/internal/api"
	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/catalog"
	"github.com/vasiliy-maslov/storefront/internal/checkout"
	"github.com/vasiliy-maslov/storefront/internal/order"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(data any) map[string]any {
	return map[string]any{"success": true, "message": "ok", "data": data}
}

func newServer(t *testing.T, routes func(r chi.Router)) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestCall_Headers(t *testing.T) {
	var got http.Header
	srv := newServer(t, func(r chi.Router) {
		r.Get("/api/v1/cart", func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			writeJSON(w, http.StatusOK, ok(map[string]any{"id": uuid.Must(uuid.NewV4()), "items": []any{}}))
		})
	})

	t.Run("with_token", func(t *testing.T) {
		c := api.New(srv.URL, api.WithTokenProvider(staticToken("tok-123")))
		_, err := c.GetCart(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "Bearer tok-123", got.Get("Authorization"))
		assert.Equal(t, "application/json", got.Get("Content-Type"))
		_, err = uuid.FromString(got.Get("X-Request-ID"))
		assert.NoError(t, err)
	})

	t.Run("without_token", func(t *testing.T) {
		c := api.New(srv.URL, api.WithTokenProvider(staticToken("")))
		_, err := c.GetCart(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got.Get("Authorization"))
	})
}

func TestCall_FailureMessages(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "error_field", status: http.StatusBadRequest, body: `{"success":false,"message":"bad","error":"insufficient stock"}`, wantStatus: 400, wantMsg: "insufficient stock"},
		{name: "message_field", status: http.StatusForbidden, body: `{"success":false,"message":"only vendors can create a shop"}`, wantStatus: 403, wantMsg: "only vendors can create a shop"},
		{name: "empty_envelope", status: http.StatusInternalServerError, body: `{}`, wantStatus: 500, wantMsg: api.DefaultFailureMessage},
		{name: "not_json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, wantStatus: 502, wantMsg: api.DefaultFailureMessage},
		{name: "success_flag_ignored_on_error_status", status: http.StatusConflict, body: `{"success":true,"message":"already exists"}`, wantStatus: 409, wantMsg: "already exists"},
		{name: "ok_status_success_false", status: http.StatusOK, body: `{"success":false,"message":"nope"}`, wantStatus: 200, wantMsg: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(r chi.Router) {
				r.Delete("/api/v1/cart", func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(tt.body))
				})
			})

			err := api.New(srv.URL).ClearCart(context.Background())

			var reqErr *api.RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.wantStatus, reqErr.Status)
			assert.Equal(t, tt.wantMsg, reqErr.Message)
			assert.True(t, api.IsRemote(err))
		})
	}
}

func TestCall_ParseAndTransportErrors(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Get("/api/v1/cart", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":tru`))
		})
		r.Get("/api/v1/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "ok"})
		})
	})
	c := api.New(srv.URL)

	_, err := c.GetCart(context.Background())
	var parseErr *api.ParseError
	assert.ErrorAs(t, err, &parseErr)

	_, err = c.GetOrder(context.Background(), uuid.Must(uuid.NewV4()))
	assert.ErrorAs(t, err, &parseErr, "accepted envelope without data")

	dead := api.New("http://127.0.0.1:1", api.WithTimeout(time.Second))
	_, err = dead.ListOrders(context.Background())
	var transportErr *api.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestGetDefaultAddress_Absent(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "empty_envelope", handler: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "no default address found"})
		}},
		{name: "not_found", handler: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "address not found"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(r chi.Router) { r.Get("/api/v1/addresses/default", tt.handler) })
			a, err := api.New(srv.URL).GetDefaultAddress(context.Background())
			require.NoError(t, err)
			assert.Nil(t, a)
		})
	}
}

func TestEndpoints_PathsAndBodies(t *testing.T) {
	itemID := uuid.Must(uuid.NewV4())
	orderID := uuid.Must(uuid.NewV4())
	addrID := uuid.Must(uuid.NewV4())

	type seen struct {
		method, path, query string
		body                map[string]any
	}
	var calls []seen
	record := func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, seen{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: body})
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "ok"})
	}
	srv := newServer(t, func(r chi.Router) {
		r.HandleFunc("/*", record)
	})
	c := api.New(srv.URL)
	ctx := context.Background()

	require.NoError(t, c.AddCartItem(ctx, cart.AddItemRequest{ProductID: itemID, Quantity: 2}))
	require.NoError(t, c.UpdateCartItem(ctx, itemID, cart.UpdateItemRequest{Quantity: 3}))
	require.NoError(t, c.RemoveCartItem(ctx, itemID))
	require.NoError(t, c.CancelOrder(ctx, orderID))
	require.NoError(t, c.UpdateOrderStatus(ctx, orderID, order.StatusShipped))
	require.NoError(t, c.SetDefaultAddress(ctx, addrID))
	require.NoError(t, c.MarkReviewHelpful(ctx, itemID))
	_, err := c.ListProducts(ctx, catalog.Query{Search: "mug", Sort: catalog.SortPriceAsc}.Values())
	require.NoError(t, err)

	want := []seen{
		{method: "POST", path: "/api/v1/cart/items", body: map[string]any{"product_id": itemID.String(), "quantity": float64(2)}},
		{method: "PUT", path: "/api/v1/cart/items/" + itemID.String(), body: map[string]any{"quantity": float64(3)}},
		{method: "DELETE", path: "/api/v1/cart/items/" + itemID.String()},
		{method: "POST", path: "/api/v1/orders/" + orderID.String() + "/cancel"},
		{method: "PATCH", path: "/api/v1/vendor/orders/" + orderID.String() + "/status", body: map[string]any{"status": "shipped"}},
		{method: "PATCH", path: "/api/v1/addresses/" + addrID.String() + "/default"},
		{method: "POST", path: "/api/v1/reviews/" + itemID.String() + "/helpful"},
		{method: "GET", path: "/api/v1/products", query: "search=mug&sort=price_asc"},
	}
	if diff := cmp.Diff(want, calls, cmp.AllowUnexported(seen{})); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckoutEndpoints(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())
	addrID := uuid.Must(uuid.NewV4())

	srv := newServer(t, func(r chi.Router) {
		r.Post("/api/v1/orders/checkout/card", func(w http.ResponseWriter, r *http.Request) {
			var req checkout.OrderRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, checkout.MethodCard, req.PaymentMethod)
			assert.Equal(t, &addrID, req.ShippingAddressID)
			assert.Nil(t, req.ShippingAddress)
			writeJSON(w, http.StatusCreated, ok(map[string]any{
				"order":        map[string]any{"id": orderID, "status": "pending", "total": "1500.00"},
				"checkout_url": "https://pay.example.com/c/cs_test",
			}))
		})
		r.Get("/api/v1/orders/checkout/verify", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "cs_test", r.URL.Query().Get("session_id"))
			writeJSON(w, http.StatusOK, ok(map[string]any{
				"session_id": "cs_test", "payment_status": "paid", "order_id": orderID, "order_number": "ORD-20250101-1",
			}))
		})
	})
	c := api.New(srv.URL)

	sess, err := c.CreateCardCheckout(context.Background(), checkout.OrderRequest{
		ShippingAddressID: &addrID,
		PaymentMethod:     checkout.MethodCard,
		UseSameAddress:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/c/cs_test", sess.CheckoutURL)
	assert.True(t, decimal.RequireFromString("1500").Equal(sess.Order.Total))

	status, err := c.VerifyCheckoutSession(context.Background(), "cs_test")
	require.NoError(t, err)
	assert.Equal(t, orderID, status.OrderID)
	assert.Equal(t, "paid", status.PaymentStatus)
}

func TestListAddresses_NullData(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Get("/api/v1/addresses", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "addresses retrieved", "data": nil})
		})
		r.Post("/api/v1/addresses", func(w http.ResponseWriter, r *http.Request) {
			var in address.Input
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			writeJSON(w, http.StatusCreated, ok(address.Address{ID: uuid.Must(uuid.NewV4()), FullName: in.FullName, IsDefault: in.IsDefault}))
		})
	})
	c := api.New(srv.URL)

	list, err := c.ListAddresses(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	a, err := c.CreateAddress(context.Background(), address.Input{FullName: "Ada", IsDefault: true})
	require.NoError(t, err)
	assert.True(t, a.IsDefault)
}

func TestBreaker_OpensAfterFailures(t *testing.T) {
	hits := 0
	srv := newServer(t, func(r chi.Router) {
		r.Get("/api/v1/orders", func(w http.ResponseWriter, r *http.Request) {
			hits++
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "error": "database unavailable"})
		})
	})
	c := api.New(srv.URL, api.WithBreaker(api.BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute}))

	for i := 0; i < 2; i++ {
		_, err := c.ListOrders(context.Background())
		assert.Equal(t, http.StatusServiceUnavailable, api.StatusOf(err))
	}

	_, err := c.ListOrders(context.Background())
	var transportErr *api.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, 2, hits, "open breaker must not reach the server")
}

func TestHealth(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})
	assert.NoError(t, api.New(srv.URL).Health(context.Background()))
}
