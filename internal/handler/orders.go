package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/baankrua-pos/api/internal/database"
	"github.com/baankrua-pos/api/internal/service"
	"github.com/baankrua-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// OrderServicer defines the service methods needed by order handlers.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (database.Order, error)
	CancelOrder(ctx context.Context, orderID int64) (database.Order, error)
}

// OrderReadStore defines the read methods needed by order handlers.
type OrderReadStore interface {
	GetOrder(ctx context.Context, orderID int64) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]database.OrderItem, error)
	GetPaymentByOrder(ctx context.Context, orderID int64) (database.Payment, error)
}

// Broadcaster pushes events to branch websocket rooms. Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToBranch(branchID int64, event ws.Event)
}

// OrderHandler handles the order aggregate endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderReadStore
	hub   Broadcaster
}

// NewOrderHandler creates a new OrderHandler. hub may be nil in tests.
func NewOrderHandler(svc OrderServicer, store OrderReadStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/cancel", h.Cancel)
	})
}

type createOrderRequest struct {
	BranchID     int64  `json:"branch_id"`
	EmployeeID   int64  `json:"employee_id"`
	MembershipID *int64 `json:"membership_id"`
	OrderType    string `json:"order_type"`
}

type orderResponse struct {
	OrderID        int64     `json:"order_id"`
	BranchID       int64     `json:"branch_id"`
	EmployeeID     int64     `json:"employee_id"`
	MembershipID   *int64    `json:"membership_id"`
	OrderType      string    `json:"order_type"`
	Status         string    `json:"status"`
	TotalPrice     string    `json:"total_price"`
	OrderTimestamp time.Time `json:"order_timestamp"`
}

type orderDetailResponse struct {
	orderResponse
	Items   []orderItemResponse `json:"items"`
	Payment *paymentResponse    `json:"payment"`
}

func toOrderResponse(o database.Order) orderResponse {
	resp := orderResponse{
		OrderID:        o.OrderID,
		BranchID:       o.BranchID,
		EmployeeID:     o.EmployeeID,
		OrderType:      o.OrderType,
		Status:         o.Status,
		TotalPrice:     numericToString(o.TotalPrice),
		OrderTimestamp: o.OrderTimestamp,
	}
	if o.MembershipID.Valid {
		resp.MembershipID = &o.MembershipID.Int64
	}
	return resp
}

// broadcast publishes an order event to the branch room.
func (h *OrderHandler) broadcast(branchID int64, eventType string, payload interface{}) {
	broadcastEvent(h.hub, branchID, eventType, payload)
}

func broadcastEvent(hub Broadcaster, branchID int64, eventType string, payload interface{}) {
	if hub == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal %s event: %v", eventType, err)
		return
	}
	hub.BroadcastToBranch(branchID, ws.Event{
		ID:      uuid.NewString(),
		Type:    eventType,
		Payload: body,
	})
}

// Create opens a new empty UNPAID order.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.BranchID < 1 || req.EmployeeID < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "branch_id and employee_id are required"})
		return
	}

	order, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		BranchID:     req.BranchID,
		EmployeeID:   req.EmployeeID,
		MembershipID: req.MembershipID,
		OrderType:    req.OrderType,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrderType):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrBranchNotFound),
			errors.Is(err, service.ErrEmployeeNotFound),
			errors.Is(err, service.ErrMembershipNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: create order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := toOrderResponse(order)
	h.broadcast(order.BranchID, ws.EventOrderCreated, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// List returns orders, filterable by branch_id and status.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var branchID pgtype.Int8
	if s := r.URL.Query().Get("branch_id"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid branch_id"})
			return
		}
		branchID = pgtype.Int8{Int64: v, Valid: true}
	}

	var status pgtype.Text
	if s := r.URL.Query().Get("status"); s != "" {
		status = pgtype.Text{String: s, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), database.ListOrdersParams{
		BranchID: branchID,
		Status:   status,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single order with its items and payment, if settled.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := orderDetailResponse{
		orderResponse: toOrderResponse(order),
		Items:         make([]orderItemResponse, len(items)),
	}
	for i, item := range items {
		resp.Items[i] = toOrderItemResponse(item)
	}

	payment, err := h.store.GetPaymentByOrder(r.Context(), id)
	switch {
	case err == nil:
		p := toPaymentResponse(payment)
		resp.Payment = &p
	case errors.Is(err, pgx.ErrNoRows):
		// unsettled order
	default:
		log.Printf("ERROR: get payment: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Cancel transitions an UNPAID order to CANCELLED, reversing its stock usage.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.svc.CancelOrder(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrOrderNotOpen):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: cancel order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := toOrderResponse(order)
	h.broadcast(order.BranchID, ws.EventOrderCancelled, resp)
	writeJSON(w, http.StatusOK, resp)
}
