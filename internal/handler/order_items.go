package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/baankrua-pos/api/internal/database"
	"github.com/baankrua-pos/api/internal/service"
	"github.com/baankrua-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

// OrderItemServicer defines the service methods needed by item handlers.
type OrderItemServicer interface {
	AddItem(ctx context.Context, req service.AddItemRequest) (*service.AddItemResult, error)
	SetItemStatus(ctx context.Context, orderItemID int64, newStatus string) (*service.ItemStatusResult, error)
}

// OrderItemReadStore defines the read methods needed by item handlers.
type OrderItemReadStore interface {
	GetOrderItem(ctx context.Context, orderItemID int64) (database.OrderItem, error)
}

// OrderItemHandler handles order line endpoints.
type OrderItemHandler struct {
	svc   OrderItemServicer
	store OrderItemReadStore
	hub   Broadcaster
}

// NewOrderItemHandler creates a new OrderItemHandler. hub may be nil in tests.
func NewOrderItemHandler(svc OrderItemServicer, store OrderItemReadStore, hub Broadcaster) *OrderItemHandler {
	return &OrderItemHandler{svc: svc, store: store, hub: hub}
}

func (h *OrderItemHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/status", h.UpdateStatus)
	})
}

type addItemRequest struct {
	OrderID    int64 `json:"order_id"`
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int32 `json:"quantity"`
}

type updateItemStatusRequest struct {
	Status string `json:"status"`
}

type orderItemResponse struct {
	OrderItemID int64  `json:"order_item_id"`
	OrderID     int64  `json:"order_id"`
	MenuItemID  int64  `json:"menu_item_id"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
	Status      string `json:"status"`
}

type orderItemDetailResponse struct {
	Item       orderItemResponse `json:"item"`
	OrderTotal string            `json:"order_total"`
}

func toOrderItemResponse(i database.OrderItem) orderItemResponse {
	return orderItemResponse{
		OrderItemID: i.OrderItemID,
		OrderID:     i.OrderID,
		MenuItemID:  i.MenuItemID,
		Quantity:    i.Quantity,
		UnitPrice:   numericToString(i.UnitPrice),
		LineTotal:   numericToString(i.LineTotal),
		Status:      i.Status,
	}
}

// Create adds quantity of a menu item to an order; same-menu-item lines are
// merged server-side.
func (h *OrderItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.OrderID < 1 || req.MenuItemID < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order_id and menu_item_id are required"})
		return
	}

	result, err := h.svc.AddItem(r.Context(), service.AddItemRequest{
		OrderID:    req.OrderID,
		MenuItemID: req.MenuItemID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuantity),
			errors.Is(err, service.ErrMenuItemUnavailable):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrOrderNotFound),
			errors.Is(err, service.ErrMenuItemNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrOrderNotOpen):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: add order item: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := orderItemDetailResponse{
		Item:       toOrderItemResponse(result.Item),
		OrderTotal: numericToString(result.Order.TotalPrice),
	}
	broadcastEvent(h.hub, result.Order.BranchID, ws.EventOrderItemUpdated, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// Get returns a single order item.
func (h *OrderItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order item ID"})
		return
	}

	item, err := h.store.GetOrderItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order item not found"})
			return
		}
		log.Printf("ERROR: get order item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderItemResponse(item))
}

// UpdateStatus transitions an item from PREPARING to DONE or CANCELLED.
func (h *OrderItemHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order item ID"})
		return
	}

	var req updateItemStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.SetItemStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidItemStatus):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrOrderItemNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrOrderNotOpen),
			errors.Is(err, service.ErrItemNotPreparing):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: update order item status: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := orderItemDetailResponse{
		Item:       toOrderItemResponse(result.Item),
		OrderTotal: numericToString(result.Order.TotalPrice),
	}
	broadcastEvent(h.hub, result.Order.BranchID, ws.EventOrderItemUpdated, resp)
	writeJSON(w, http.StatusOK, resp)
}
