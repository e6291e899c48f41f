package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/baankrua-pos/api/internal/database"
	"github.com/baankrua-pos/api/internal/enum"
	"github.com/baankrua-pos/api/internal/handler"
	"github.com/baankrua-pos/api/internal/service"
	"github.com/baankrua-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

type mockPaymentService struct {
	settleFn func(ctx context.Context, req service.SettleRequest) (*service.SettleResult, error)
}

func (m *mockPaymentService) Settle(ctx context.Context, req service.SettleRequest) (*service.SettleResult, error) {
	return m.settleFn(ctx, req)
}

type mockPaymentReadStore struct {
	getPaymentByOrderFn func(ctx context.Context, orderID int64) (database.Payment, error)
	listPaymentsFn      func(ctx context.Context, arg database.ListPaymentsParams) ([]database.Payment, error)
}

func (m *mockPaymentReadStore) GetPaymentByOrder(ctx context.Context, orderID int64) (database.Payment, error) {
	if m.getPaymentByOrderFn != nil {
		return m.getPaymentByOrderFn(ctx, orderID)
	}
	return database.Payment{}, pgx.ErrNoRows
}

func (m *mockPaymentReadStore) ListPayments(ctx context.Context, arg database.ListPaymentsParams) ([]database.Payment, error) {
	if m.listPaymentsFn != nil {
		return m.listPaymentsFn(ctx, arg)
	}
	return []database.Payment{}, nil
}

func setupPaymentRouter(svc *mockPaymentService, store *mockPaymentReadStore, hub handler.Broadcaster) *chi.Mux {
	h := handler.NewPaymentHandler(svc, store, hub)
	r := chi.NewRouter()
	r.Route("/payments", h.RegisterRoutes)
	return r
}

func testPayment(orderID int64) database.Payment {
	return database.Payment{
		OrderID:       orderID,
		PaidPrice:     testNumeric("150.00"),
		PointsUsed:    50,
		PaymentMethod: enum.PaymentMethodCash,
		PaidTimestamp: time.Now(),
	}
}

func TestPaymentCreate_HappyPath(t *testing.T) {
	hub := &mockHub{}
	svc := &mockPaymentService{
		settleFn: func(ctx context.Context, req service.SettleRequest) (*service.SettleResult, error) {
			if req.OrderID != 500 || req.PaymentMethod != "CASH" || req.PointsUsed != 50 {
				t.Errorf("request: got %+v, want order 500 CASH 50 points", req)
			}
			order := testOrder(500)
			order.Status = enum.OrderStatusPaid
			return &service.SettleResult{
				Payment:      testPayment(500),
				Order:        order,
				PointsEarned: 15,
			}, nil
		},
	}

	router := setupPaymentRouter(svc, &mockPaymentReadStore{}, hub)
	rr := doRequest(t, router, "POST", "/payments", map[string]interface{}{
		"order_id": 500, "payment_method": "CASH", "points_used": 50,
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeBody(t, rr)
	payment, ok := resp["payment"].(map[string]interface{})
	if !ok {
		t.Fatalf("payment: got %v, want object", resp["payment"])
	}
	if payment["paid_price"] != "150.00" {
		t.Errorf("paid_price: got %v, want 150.00", payment["paid_price"])
	}
	if payment["points_used"] != float64(50) {
		t.Errorf("points_used: got %v, want 50", payment["points_used"])
	}
	if resp["order_status"] != "PAID" {
		t.Errorf("order_status: got %v, want PAID", resp["order_status"])
	}
	if resp["points_earned"] != float64(15) {
		t.Errorf("points_earned: got %v, want 15", resp["points_earned"])
	}
	if len(hub.events) != 1 || hub.events[0].Type != ws.EventOrderPaid {
		t.Fatalf("expected one order.paid broadcast, got %+v", hub.events)
	}
}

func TestPaymentCreate_MissingOrderID(t *testing.T) {
	router := setupPaymentRouter(&mockPaymentService{}, &mockPaymentReadStore{}, nil)
	rr := doRequest(t, router, "POST", "/payments", map[string]interface{}{
		"payment_method": "CASH",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestPaymentCreate_InvalidMethod(t *testing.T) {
	svc := &mockPaymentService{
		settleFn: func(ctx context.Context, req service.SettleRequest) (*service.SettleResult, error) {
			return nil, service.ErrInvalidPaymentMethod
		},
	}

	router := setupPaymentRouter(svc, &mockPaymentReadStore{}, nil)
	rr := doRequest(t, router, "POST", "/payments", map[string]interface{}{
		"order_id": 500, "payment_method": "CHEQUE",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestPaymentCreate_NotPayable(t *testing.T) {
	svc := &mockPaymentService{
		settleFn: func(ctx context.Context, req service.SettleRequest) (*service.SettleResult, error) {
			return nil, &service.NotPayableError{PreparingItemIDs: []int64{901, 902}}
		},
	}

	router := setupPaymentRouter(svc, &mockPaymentReadStore{}, nil)
	rr := doRequest(t, router, "POST", "/payments", map[string]interface{}{
		"order_id": 500, "payment_method": "CASH",
	})

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}

	resp := decodeBody(t, rr)
	ids, ok := resp["preparing_item_ids"].([]interface{})
	if !ok || len(ids) != 2 {
		t.Fatalf("preparing_item_ids: got %v, want [901 902]", resp["preparing_item_ids"])
	}
	if ids[0] != float64(901) || ids[1] != float64(902) {
		t.Errorf("preparing_item_ids: got %v, want [901 902]", ids)
	}
}

func TestPaymentCreate_AlreadySettled(t *testing.T) {
	svc := &mockPaymentService{
		settleFn: func(ctx context.Context, req service.SettleRequest) (*service.SettleResult, error) {
			return nil, service.ErrAlreadySettled
		},
	}

	router := setupPaymentRouter(svc, &mockPaymentReadStore{}, nil)
	rr := doRequest(t, router, "POST", "/payments", map[string]interface{}{
		"order_id": 500, "payment_method": "CASH",
	})

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestPaymentCreate_InsufficientPoints(t *testing.T) {
	svc := &mockPaymentService{
		settleFn: func(ctx context.Context, req service.SettleRequest) (*service.SettleResult, error) {
			return nil, service.ErrInsufficientPoints
		},
	}

	router := setupPaymentRouter(svc, &mockPaymentReadStore{}, nil)
	rr := doRequest(t, router, "POST", "/payments", map[string]interface{}{
		"order_id": 500, "payment_method": "POINTS", "points_used": 9999,
	})

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestPaymentCreate_OrderNotFound(t *testing.T) {
	svc := &mockPaymentService{
		settleFn: func(ctx context.Context, req service.SettleRequest) (*service.SettleResult, error) {
			return nil, service.ErrOrderNotFound
		},
	}

	router := setupPaymentRouter(svc, &mockPaymentReadStore{}, nil)
	rr := doRequest(t, router, "POST", "/payments", map[string]interface{}{
		"order_id": 999, "payment_method": "CASH",
	})

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestPaymentGetByOrder_HappyPath(t *testing.T) {
	store := &mockPaymentReadStore{
		getPaymentByOrderFn: func(ctx context.Context, orderID int64) (database.Payment, error) {
			return testPayment(orderID), nil
		},
	}

	router := setupPaymentRouter(&mockPaymentService{}, store, nil)
	rr := doRequest(t, router, "GET", "/payments/500", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeBody(t, rr)
	if resp["order_id"] != float64(500) {
		t.Errorf("order_id: got %v, want 500", resp["order_id"])
	}
	if resp["payment_method"] != "CASH" {
		t.Errorf("payment_method: got %v, want CASH", resp["payment_method"])
	}
}

func TestPaymentGetByOrder_NotFound(t *testing.T) {
	router := setupPaymentRouter(&mockPaymentService{}, &mockPaymentReadStore{}, nil)
	rr := doRequest(t, router, "GET", "/payments/999", nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestPaymentList_HappyPath(t *testing.T) {
	store := &mockPaymentReadStore{
		listPaymentsFn: func(ctx context.Context, arg database.ListPaymentsParams) ([]database.Payment, error) {
			return []database.Payment{testPayment(500), testPayment(501)}, nil
		},
	}

	router := setupPaymentRouter(&mockPaymentService{}, store, nil)
	rr := doRequest(t, router, "GET", "/payments", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if got := decodeList(t, rr); len(got) != 2 {
		t.Errorf("response length: got %d, want 2", len(got))
	}
}
