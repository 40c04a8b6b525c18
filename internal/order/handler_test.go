// AngelaMos | 2026
// handler_test.go

package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/storefront/internal/access"
	"github.com/carterperez-dev/storefront/internal/middleware"
)

const (
	aliceID  = "11111111-1111-1111-1111-111111111111"
	bobID    = "22222222-2222-2222-2222-222222222222"
	adminID  = "33333333-3333-3333-3333-333333333333"
	lampID   = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	kettleID = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
)

type harness struct {
	store  *memStore
	router chi.Router
	svc    *Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := newMemStore()
	store.addUser(aliceID)
	store.addUser(bobID)
	store.addUser(adminID)
	store.addProduct(lampID, "10.00", stockOf(5))
	store.addProduct(kettleID, "5.50", nil)

	svc := NewService(store, NewEngine(store, ClampPolicy{}, quietLogger()))
	h := NewHandler(svc)

	authenticate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Caller")
			role := access.RoleUser
			if id == adminID {
				role = access.RoleAdmin
			}
			ctx := middleware.WithCaller(r.Context(), access.Caller{ID: id, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	r := chi.NewRouter()
	h.RegisterRoutes(r, authenticate, nil)

	return &harness{store: store, router: r, svc: svc}
}

func (h *harness) do(callerID, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Caller", callerID)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestPlaceOrderHandler(t *testing.T) {
	h := newHarness(t)

	body := `{"items":[{"product_id":"` + lampID + `","quantity":2},{"product_id":"` + kettleID + `","quantity":3}]}`
	rec := h.do(aliceID, http.MethodPost, "/orders", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp OrderResponse
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &resp); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if resp.UserID != aliceID {
		t.Errorf("expected owner %s, got %s", aliceID, resp.UserID)
	}
	if !resp.TotalAmount.Equal(decimal.RequireFromString("36.50")) {
		t.Errorf("expected 36.50, got %s", resp.TotalAmount)
	}
}

func TestPlaceOrderForSomeoneElse(t *testing.T) {
	h := newHarness(t)
	body := `{"user_id":"` + bobID + `","items":[{"product_id":"` + lampID + `"}]}`

	rec := h.do(aliceID, http.MethodPost, "/orders", body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user placing for another, got %d", rec.Code)
	}
	if h.store.orderCount() != 0 {
		t.Error("denied placement wrote an order")
	}

	rec = h.do(adminID, http.MethodPost, "/orders", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPlaceOrderHandlerErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			name:   "empty items",
			body:   `{"items":[]}`,
			status: http.StatusBadRequest,
			code:   "INVALID_REQUEST",
		},
		{
			name:   "zero quantity",
			body:   `{"items":[{"product_id":"` + lampID + `","quantity":0}]}`,
			status: http.StatusBadRequest,
			code:   "INVALID_REQUEST",
		},
		{
			name:   "quantity above limit",
			body:   `{"items":[{"product_id":"` + lampID + `","quantity":100000000}]}`,
			status: http.StatusBadRequest,
			code:   "INVALID_REQUEST",
		},
		{
			name:   "unknown product",
			body:   `{"items":[{"product_id":"cccccccc-cccc-cccc-cccc-cccccccccccc"}]}`,
			status: http.StatusUnprocessableEntity,
			code:   "INVALID_REFERENCE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			rec := h.do(aliceID, http.MethodPost, "/orders", tt.body)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			env := decodeEnvelope(t, rec)
			if env.Error == nil || env.Error.Code != tt.code {
				t.Errorf("expected code %s, got %+v", tt.code, env.Error)
			}
		})
	}
}

func TestGetOrderHidesOtherUsersOrders(t *testing.T) {
	h := newHarness(t)

	o, err := h.svc.Place(context.Background(), bobID, []LineRequest{{ProductID: lampID}})
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	other := h.do(aliceID, http.MethodGet, "/orders/"+o.ID, "")
	missing := h.do(aliceID, http.MethodGet, "/orders/does-not-exist", "")
	if other.Code != http.StatusNotFound || missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for both, got %d and %d", other.Code, missing.Code)
	}
	if other.Body.String() != missing.Body.String() {
		t.Errorf("responses differ:\n%s\n%s", other.Body.String(), missing.Body.String())
	}

	if rec := h.do(bobID, http.MethodGet, "/orders/"+o.ID, ""); rec.Code != http.StatusOK {
		t.Errorf("owner expected 200, got %d", rec.Code)
	}
	if rec := h.do(adminID, http.MethodGet, "/orders/"+o.ID, ""); rec.Code != http.StatusOK {
		t.Errorf("admin expected 200, got %d", rec.Code)
	}
}

func TestListOrdersScopedToCaller(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, uid := range []string{aliceID, bobID, bobID} {
		if _, err := h.svc.Place(ctx, uid, []LineRequest{{ProductID: kettleID}}); err != nil {
			t.Fatalf("place: %v", err)
		}
	}

	var alice []OrderResponse
	rec := h.do(aliceID, http.MethodGet, "/orders?user_id="+bobID, "")
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &alice); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(alice) != 1 || alice[0].UserID != aliceID {
		t.Errorf("user saw orders outside their scope: %+v", alice)
	}

	var all []OrderResponse
	rec = h.do(adminID, http.MethodGet, "/orders", "")
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("admin expected 3 orders, got %d", len(all))
	}
}

func TestListFiltersRejectMalformedValues(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{
		"/orders?user_id=not-a-uuid",
		"/orders?status=lost",
		"/order-lines?order_id=42",
		"/order-lines?product_id=lamp",
	} {
		rec := h.do(adminID, http.MethodGet, path, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d: %s", path, rec.Code, rec.Body.String())
			continue
		}
		if env := decodeEnvelope(t, rec); env.Error == nil || env.Error.Code != "INVALID_REQUEST" {
			t.Errorf("%s: expected INVALID_REQUEST, got %+v", path, env.Error)
		}
	}
}

func TestAdminOnlyOrderRoutes(t *testing.T) {
	h := newHarness(t)

	o, err := h.svc.Place(context.Background(), aliceID, []LineRequest{{ProductID: lampID}})
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	routes := []struct {
		method, path, body string
	}{
		{http.MethodPatch, "/orders/" + o.ID + "/status", `{"status":"paid"}`},
		{http.MethodDelete, "/orders/" + o.ID, ""},
		{http.MethodGet, "/order-lines", ""},
	}

	for _, rt := range routes {
		if rec := h.do(aliceID, rt.method, rt.path, rt.body); rec.Code != http.StatusForbidden {
			t.Errorf("%s %s: expected 403 for user, got %d", rt.method, rt.path, rec.Code)
		}
	}

	rec := h.do(adminID, http.MethodPatch, "/orders/"+o.ID+"/status", `{"status":"paid"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status update: expected 200, got %d", rec.Code)
	}
	if h.store.committed.orders[o.ID].Status != StatusPaid {
		t.Error("status not updated")
	}

	if rec := h.do(adminID, http.MethodDelete, "/orders/"+o.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete: expected 204, got %d", rec.Code)
	}
	if h.store.lineCount() != 0 {
		t.Error("lines survived order delete")
	}
}

func TestSummary(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, qty := range []int{1, 2, 3} {
		if _, err := h.svc.Place(ctx, aliceID, []LineRequest{{ProductID: kettleID, Quantity: qty}}); err != nil {
			t.Fatalf("place: %v", err)
		}
	}

	s, err := h.svc.Summary(ctx, aliceID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if s.TotalOrders != 3 {
		t.Errorf("expected 3 orders, got %d", s.TotalOrders)
	}
	if !s.TotalSpent.Equal(decimal.RequireFromString("33.00")) {
		t.Errorf("expected 33.00 spent, got %s", s.TotalSpent)
	}
	if !s.AverageOrderValue.Equal(decimal.RequireFromString("11.00")) {
		t.Errorf("expected 11.00 average, got %s", s.AverageOrderValue)
	}
	if len(s.RecentOrders) != 3 {
		t.Errorf("expected 3 recent orders, got %d", len(s.RecentOrders))
	}
}
