package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/baankrua-pos/api/internal/database"
	"github.com/baankrua-pos/api/internal/enum"
	"github.com/baankrua-pos/api/internal/handler"
	"github.com/baankrua-pos/api/internal/service"
	"github.com/baankrua-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

type mockOrderItemService struct {
	addItemFn       func(ctx context.Context, req service.AddItemRequest) (*service.AddItemResult, error)
	setItemStatusFn func(ctx context.Context, orderItemID int64, newStatus string) (*service.ItemStatusResult, error)
}

func (m *mockOrderItemService) AddItem(ctx context.Context, req service.AddItemRequest) (*service.AddItemResult, error) {
	return m.addItemFn(ctx, req)
}

func (m *mockOrderItemService) SetItemStatus(ctx context.Context, orderItemID int64, newStatus string) (*service.ItemStatusResult, error) {
	return m.setItemStatusFn(ctx, orderItemID, newStatus)
}

type mockOrderItemReadStore struct {
	getOrderItemFn func(ctx context.Context, orderItemID int64) (database.OrderItem, error)
}

func (m *mockOrderItemReadStore) GetOrderItem(ctx context.Context, orderItemID int64) (database.OrderItem, error) {
	if m.getOrderItemFn != nil {
		return m.getOrderItemFn(ctx, orderItemID)
	}
	return database.OrderItem{}, pgx.ErrNoRows
}

func setupOrderItemRouter(svc *mockOrderItemService, store *mockOrderItemReadStore, hub handler.Broadcaster) *chi.Mux {
	h := handler.NewOrderItemHandler(svc, store, hub)
	r := chi.NewRouter()
	r.Route("/order-items", h.RegisterRoutes)
	return r
}

func testOrderItem(itemID int64, status string) database.OrderItem {
	return database.OrderItem{
		OrderItemID: itemID,
		OrderID:     500,
		MenuItemID:  7,
		Quantity:    2,
		UnitPrice:   testNumeric("85.00"),
		LineTotal:   testNumeric("170.00"),
		Status:      status,
	}
}

func TestOrderItemCreate_HappyPath(t *testing.T) {
	hub := &mockHub{}
	svc := &mockOrderItemService{
		addItemFn: func(ctx context.Context, req service.AddItemRequest) (*service.AddItemResult, error) {
			if req.OrderID != 500 || req.MenuItemID != 7 || req.Quantity != 2 {
				t.Errorf("request: got %+v, want order 500 menu 7 qty 2", req)
			}
			order := testOrder(500)
			order.TotalPrice = testNumeric("170.00")
			return &service.AddItemResult{
				Item:  testOrderItem(900, enum.OrderItemStatusPreparing),
				Order: order,
			}, nil
		},
	}

	router := setupOrderItemRouter(svc, &mockOrderItemReadStore{}, hub)
	rr := doRequest(t, router, "POST", "/order-items", map[string]interface{}{
		"order_id": 500, "menu_item_id": 7, "quantity": 2,
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeBody(t, rr)
	item, ok := resp["item"].(map[string]interface{})
	if !ok {
		t.Fatalf("item: got %v, want object", resp["item"])
	}
	if item["unit_price"] != "85.00" {
		t.Errorf("unit_price: got %v, want 85.00", item["unit_price"])
	}
	if item["status"] != "PREPARING" {
		t.Errorf("status: got %v, want PREPARING", item["status"])
	}
	if resp["order_total"] != "170.00" {
		t.Errorf("order_total: got %v, want 170.00", resp["order_total"])
	}
	if len(hub.events) != 1 || hub.events[0].Type != ws.EventOrderItemUpdated {
		t.Fatalf("expected one order_item.updated broadcast, got %+v", hub.events)
	}
}

func TestOrderItemCreate_MissingRefs(t *testing.T) {
	router := setupOrderItemRouter(&mockOrderItemService{}, &mockOrderItemReadStore{}, nil)
	rr := doRequest(t, router, "POST", "/order-items", map[string]interface{}{"quantity": 1})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestOrderItemCreate_InvalidQuantity(t *testing.T) {
	svc := &mockOrderItemService{
		addItemFn: func(ctx context.Context, req service.AddItemRequest) (*service.AddItemResult, error) {
			return nil, service.ErrInvalidQuantity
		},
	}

	router := setupOrderItemRouter(svc, &mockOrderItemReadStore{}, nil)
	rr := doRequest(t, router, "POST", "/order-items", map[string]interface{}{
		"order_id": 500, "menu_item_id": 7, "quantity": 0,
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestOrderItemCreate_OrderNotOpen(t *testing.T) {
	svc := &mockOrderItemService{
		addItemFn: func(ctx context.Context, req service.AddItemRequest) (*service.AddItemResult, error) {
			return nil, service.ErrOrderNotOpen
		},
	}

	router := setupOrderItemRouter(svc, &mockOrderItemReadStore{}, nil)
	rr := doRequest(t, router, "POST", "/order-items", map[string]interface{}{
		"order_id": 500, "menu_item_id": 7, "quantity": 1,
	})

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestOrderItemCreate_MenuItemNotFound(t *testing.T) {
	svc := &mockOrderItemService{
		addItemFn: func(ctx context.Context, req service.AddItemRequest) (*service.AddItemResult, error) {
			return nil, service.ErrMenuItemNotFound
		},
	}

	router := setupOrderItemRouter(svc, &mockOrderItemReadStore{}, nil)
	rr := doRequest(t, router, "POST", "/order-items", map[string]interface{}{
		"order_id": 500, "menu_item_id": 99, "quantity": 1,
	})

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestOrderItemGet_HappyPath(t *testing.T) {
	store := &mockOrderItemReadStore{
		getOrderItemFn: func(ctx context.Context, orderItemID int64) (database.OrderItem, error) {
			return testOrderItem(orderItemID, enum.OrderItemStatusDone), nil
		},
	}

	router := setupOrderItemRouter(&mockOrderItemService{}, store, nil)
	rr := doRequest(t, router, "GET", "/order-items/900", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeBody(t, rr)
	if resp["order_item_id"] != float64(900) {
		t.Errorf("order_item_id: got %v, want 900", resp["order_item_id"])
	}
	if resp["status"] != "DONE" {
		t.Errorf("status: got %v, want DONE", resp["status"])
	}
}

func TestOrderItemGet_NotFound(t *testing.T) {
	router := setupOrderItemRouter(&mockOrderItemService{}, &mockOrderItemReadStore{}, nil)
	rr := doRequest(t, router, "GET", "/order-items/999", nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestOrderItemUpdateStatus_Done(t *testing.T) {
	hub := &mockHub{}
	svc := &mockOrderItemService{
		setItemStatusFn: func(ctx context.Context, orderItemID int64, newStatus string) (*service.ItemStatusResult, error) {
			if orderItemID != 900 || newStatus != enum.OrderItemStatusDone {
				t.Errorf("transition: got item %d to %s, want 900 to DONE", orderItemID, newStatus)
			}
			order := testOrder(500)
			order.TotalPrice = testNumeric("170.00")
			return &service.ItemStatusResult{
				Item:  testOrderItem(orderItemID, enum.OrderItemStatusDone),
				Order: order,
			}, nil
		},
	}

	router := setupOrderItemRouter(svc, &mockOrderItemReadStore{}, hub)
	rr := doRequest(t, router, "PUT", "/order-items/900/status", map[string]interface{}{
		"status": "DONE",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	item := resp["item"].(map[string]interface{})
	if item["status"] != "DONE" {
		t.Errorf("item status: got %v, want DONE", item["status"])
	}
	if len(hub.events) != 1 || hub.events[0].Type != ws.EventOrderItemUpdated {
		t.Fatalf("expected one order_item.updated broadcast, got %+v", hub.events)
	}
}

func TestOrderItemUpdateStatus_InvalidTarget(t *testing.T) {
	svc := &mockOrderItemService{
		setItemStatusFn: func(ctx context.Context, orderItemID int64, newStatus string) (*service.ItemStatusResult, error) {
			return nil, service.ErrInvalidItemStatus
		},
	}

	router := setupOrderItemRouter(svc, &mockOrderItemReadStore{}, nil)
	rr := doRequest(t, router, "PUT", "/order-items/900/status", map[string]interface{}{
		"status": "PREPARING",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestOrderItemUpdateStatus_NotPreparing(t *testing.T) {
	svc := &mockOrderItemService{
		setItemStatusFn: func(ctx context.Context, orderItemID int64, newStatus string) (*service.ItemStatusResult, error) {
			return nil, service.ErrItemNotPreparing
		},
	}

	router := setupOrderItemRouter(svc, &mockOrderItemReadStore{}, nil)
	rr := doRequest(t, router, "PUT", "/order-items/900/status", map[string]interface{}{
		"status": "CANCELLED",
	})

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestOrderItemUpdateStatus_ItemNotFound(t *testing.T) {
	svc := &mockOrderItemService{
		setItemStatusFn: func(ctx context.Context, orderItemID int64, newStatus string) (*service.ItemStatusResult, error) {
			return nil, service.ErrOrderItemNotFound
		},
	}

	router := setupOrderItemRouter(svc, &mockOrderItemReadStore{}, nil)
	rr := doRequest(t, router, "PUT", "/order-items/999/status", map[string]interface{}{
		"status": "DONE",
	})

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
