package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/baankrua-pos/api/internal/database"
	"github.com/baankrua-pos/api/internal/enum"
	"github.com/baankrua-pos/api/internal/handler"
	"github.com/baankrua-pos/api/internal/service"
	"github.com/baankrua-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Shared test helpers ---

func testNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var resp []interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

// mockHub records broadcast events.
type mockHub struct {
	branchIDs []int64
	events    []ws.Event
}

func (m *mockHub) BroadcastToBranch(branchID int64, event ws.Event) {
	m.branchIDs = append(m.branchIDs, branchID)
	m.events = append(m.events, event)
}

// --- Mock OrderServicer ---

type mockOrderService struct {
	createFn func(ctx context.Context, req service.CreateOrderRequest) (database.Order, error)
	cancelFn func(ctx context.Context, orderID int64) (database.Order, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (database.Order, error) {
	return m.createFn(ctx, req)
}

func (m *mockOrderService) CancelOrder(ctx context.Context, orderID int64) (database.Order, error) {
	return m.cancelFn(ctx, orderID)
}

// --- Mock OrderReadStore ---

type mockOrderReadStore struct {
	getOrderFn              func(ctx context.Context, orderID int64) (database.Order, error)
	listOrdersFn            func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	listOrderItemsByOrderFn func(ctx context.Context, orderID int64) ([]database.OrderItem, error)
	getPaymentByOrderFn     func(ctx context.Context, orderID int64) (database.Payment, error)
}

func (m *mockOrderReadStore) GetOrder(ctx context.Context, orderID int64) (database.Order, error) {
	if m.getOrderFn != nil {
		return m.getOrderFn(ctx, orderID)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderReadStore) ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	if m.listOrdersFn != nil {
		return m.listOrdersFn(ctx, arg)
	}
	return []database.Order{}, nil
}

func (m *mockOrderReadStore) ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]database.OrderItem, error) {
	if m.listOrderItemsByOrderFn != nil {
		return m.listOrderItemsByOrderFn(ctx, orderID)
	}
	return []database.OrderItem{}, nil
}

func (m *mockOrderReadStore) GetPaymentByOrder(ctx context.Context, orderID int64) (database.Payment, error) {
	if m.getPaymentByOrderFn != nil {
		return m.getPaymentByOrderFn(ctx, orderID)
	}
	return database.Payment{}, pgx.ErrNoRows
}

func setupOrderRouter(svc *mockOrderService, store *mockOrderReadStore, hub handler.Broadcaster) *chi.Mux {
	h := handler.NewOrderHandler(svc, store, hub)
	r := chi.NewRouter()
	r.Route("/orders", h.RegisterRoutes)
	return r
}

func testOrder(orderID int64) database.Order {
	return database.Order{
		OrderID:        orderID,
		BranchID:       1,
		EmployeeID:     10,
		OrderType:      enum.OrderTypeDineIn,
		Status:         enum.OrderStatusUnpaid,
		TotalPrice:     testNumeric("0.00"),
		OrderTimestamp: time.Now(),
	}
}

// --- Tests ---

func TestOrderCreate_HappyPath(t *testing.T) {
	hub := &mockHub{}
	svc := &mockOrderService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (database.Order, error) {
			if req.BranchID != 1 || req.EmployeeID != 10 {
				t.Errorf("request refs: got branch %d employee %d, want 1/10", req.BranchID, req.EmployeeID)
			}
			if req.MembershipID == nil || *req.MembershipID != 100 {
				t.Errorf("membership_id: got %v, want 100", req.MembershipID)
			}
			order := testOrder(500)
			order.MembershipID = pgtype.Int8{Int64: 100, Valid: true}
			return order, nil
		},
	}

	router := setupOrderRouter(svc, &mockOrderReadStore{}, hub)
	rr := doRequest(t, router, "POST", "/orders", map[string]interface{}{
		"branch_id":     1,
		"employee_id":   10,
		"membership_id": 100,
		"order_type":    "DINE_IN",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeBody(t, rr)
	if resp["order_id"] != float64(500) {
		t.Errorf("order_id: got %v, want 500", resp["order_id"])
	}
	if resp["status"] != "UNPAID" {
		t.Errorf("status: got %v, want UNPAID", resp["status"])
	}
	if resp["total_price"] != "0.00" {
		t.Errorf("total_price: got %v, want 0.00", resp["total_price"])
	}
	if resp["membership_id"] != float64(100) {
		t.Errorf("membership_id: got %v, want 100", resp["membership_id"])
	}

	if len(hub.events) != 1 || hub.events[0].Type != ws.EventOrderCreated {
		t.Fatalf("expected one order.created broadcast, got %+v", hub.events)
	}
	if hub.branchIDs[0] != 1 {
		t.Errorf("broadcast branch: got %d, want 1", hub.branchIDs[0])
	}
}

func TestOrderCreate_MissingRefs(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderReadStore{}, nil)
	rr := doRequest(t, router, "POST", "/orders", map[string]interface{}{
		"order_type": "DINE_IN",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestOrderCreate_InvalidOrderType(t *testing.T) {
	svc := &mockOrderService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (database.Order, error) {
			return database.Order{}, service.ErrInvalidOrderType
		},
	}

	router := setupOrderRouter(svc, &mockOrderReadStore{}, nil)
	rr := doRequest(t, router, "POST", "/orders", map[string]interface{}{
		"branch_id": 1, "employee_id": 10, "order_type": "DRIVE_THRU",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestOrderCreate_BranchNotFound(t *testing.T) {
	svc := &mockOrderService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (database.Order, error) {
			return database.Order{}, service.ErrBranchNotFound
		},
	}

	router := setupOrderRouter(svc, &mockOrderReadStore{}, nil)
	rr := doRequest(t, router, "POST", "/orders", map[string]interface{}{
		"branch_id": 99, "employee_id": 10, "order_type": "DINE_IN",
	})

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestOrderGet_WithItemsAndPayment(t *testing.T) {
	store := &mockOrderReadStore{
		getOrderFn: func(ctx context.Context, orderID int64) (database.Order, error) {
			order := testOrder(orderID)
			order.Status = enum.OrderStatusPaid
			order.TotalPrice = testNumeric("170.00")
			return order, nil
		},
		listOrderItemsByOrderFn: func(ctx context.Context, orderID int64) ([]database.OrderItem, error) {
			return []database.OrderItem{
				{
					OrderItemID: 900, OrderID: orderID, MenuItemID: 7, Quantity: 2,
					UnitPrice: testNumeric("85.00"), LineTotal: testNumeric("170.00"),
					Status: enum.OrderItemStatusDone,
				},
			}, nil
		},
		getPaymentByOrderFn: func(ctx context.Context, orderID int64) (database.Payment, error) {
			return database.Payment{
				OrderID: orderID, PaidPrice: testNumeric("170.00"),
				PaymentMethod: enum.PaymentMethodCash, PaidTimestamp: time.Now(),
			}, nil
		},
	}

	router := setupOrderRouter(&mockOrderService{}, store, nil)
	rr := doRequest(t, router, "GET", "/orders/500", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeBody(t, rr)
	items, ok := resp["items"].([]interface{})
	if !ok || len(items) != 1 {
		t.Fatalf("items: got %v, want 1 item", resp["items"])
	}
	item := items[0].(map[string]interface{})
	if item["line_total"] != "170.00" {
		t.Errorf("item line_total: got %v, want 170.00", item["line_total"])
	}
	payment, ok := resp["payment"].(map[string]interface{})
	if !ok {
		t.Fatalf("payment: got %v, want object", resp["payment"])
	}
	if payment["paid_price"] != "170.00" {
		t.Errorf("paid_price: got %v, want 170.00", payment["paid_price"])
	}
}

func TestOrderGet_UnsettledHasNullPayment(t *testing.T) {
	store := &mockOrderReadStore{
		getOrderFn: func(ctx context.Context, orderID int64) (database.Order, error) {
			return testOrder(orderID), nil
		},
	}

	router := setupOrderRouter(&mockOrderService{}, store, nil)
	rr := doRequest(t, router, "GET", "/orders/500", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeBody(t, rr)
	if resp["payment"] != nil {
		t.Errorf("payment: got %v, want null", resp["payment"])
	}
}

func TestOrderGet_NotFound(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderReadStore{}, nil)
	rr := doRequest(t, router, "GET", "/orders/999", nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestOrderGet_InvalidID(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderReadStore{}, nil)
	rr := doRequest(t, router, "GET", "/orders/abc", nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestOrderList_Filters(t *testing.T) {
	var captured database.ListOrdersParams
	store := &mockOrderReadStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			captured = arg
			return []database.Order{testOrder(500)}, nil
		},
	}

	router := setupOrderRouter(&mockOrderService{}, store, nil)
	rr := doRequest(t, router, "GET", "/orders?branch_id=1&status=UNPAID&limit=5", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if !captured.BranchID.Valid || captured.BranchID.Int64 != 1 {
		t.Errorf("branch filter: got %+v, want 1", captured.BranchID)
	}
	if !captured.Status.Valid || captured.Status.String != "UNPAID" {
		t.Errorf("status filter: got %+v, want UNPAID", captured.Status)
	}
	if captured.Limit != 5 {
		t.Errorf("limit: got %d, want 5", captured.Limit)
	}
	if got := decodeList(t, rr); len(got) != 1 {
		t.Errorf("response length: got %d, want 1", len(got))
	}
}

func TestOrderCancel_HappyPath(t *testing.T) {
	hub := &mockHub{}
	svc := &mockOrderService{
		cancelFn: func(ctx context.Context, orderID int64) (database.Order, error) {
			order := testOrder(orderID)
			order.Status = enum.OrderStatusCancelled
			return order, nil
		},
	}

	router := setupOrderRouter(svc, &mockOrderReadStore{}, hub)
	rr := doRequest(t, router, "PUT", "/orders/500/cancel", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if resp["status"] != "CANCELLED" {
		t.Errorf("status: got %v, want CANCELLED", resp["status"])
	}
	if len(hub.events) != 1 || hub.events[0].Type != ws.EventOrderCancelled {
		t.Fatalf("expected one order.cancelled broadcast, got %+v", hub.events)
	}
}

func TestOrderCancel_Conflict(t *testing.T) {
	svc := &mockOrderService{
		cancelFn: func(ctx context.Context, orderID int64) (database.Order, error) {
			return database.Order{}, service.ErrOrderNotOpen
		},
	}

	router := setupOrderRouter(svc, &mockOrderReadStore{}, nil)
	rr := doRequest(t, router, "PUT", "/orders/500/cancel", nil)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestOrderCancel_NotFound(t *testing.T) {
	svc := &mockOrderService{
		cancelFn: func(ctx context.Context, orderID int64) (database.Order, error) {
			return database.Order{}, service.ErrOrderNotFound
		},
	}

	router := setupOrderRouter(svc, &mockOrderReadStore{}, nil)
	rr := doRequest(t, router, "PUT", "/orders/999/cancel", nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
