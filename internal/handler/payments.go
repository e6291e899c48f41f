package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/baankrua-pos/api/internal/database"
	"github.com/baankrua-pos/api/internal/service"
	"github.com/baankrua-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

// PaymentServicer defines the service methods needed by payment handlers.
type PaymentServicer interface {
	Settle(ctx context.Context, req service.SettleRequest) (*service.SettleResult, error)
}

// PaymentReadStore defines the read methods for settled payments.
type PaymentReadStore interface {
	GetPaymentByOrder(ctx context.Context, orderID int64) (database.Payment, error)
	ListPayments(ctx context.Context, arg database.ListPaymentsParams) ([]database.Payment, error)
}

// PaymentHandler handles settlement endpoints.
type PaymentHandler struct {
	svc   PaymentServicer
	store PaymentReadStore
	hub   Broadcaster
}

// NewPaymentHandler creates a new PaymentHandler. hub may be nil in tests.
func NewPaymentHandler(svc PaymentServicer, store PaymentReadStore, hub Broadcaster) *PaymentHandler {
	return &PaymentHandler{svc: svc, store: store, hub: hub}
}

func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{order_id}", h.GetByOrder)
}

type settleRequest struct {
	OrderID       int64  `json:"order_id"`
	PaymentMethod string `json:"payment_method"`
	PointsUsed    int32  `json:"points_used"`
	PaymentRef    string `json:"payment_ref"`
}

type paymentResponse struct {
	OrderID       int64     `json:"order_id"`
	PaidPrice     string    `json:"paid_price"`
	PointsUsed    int32     `json:"points_used"`
	PaymentMethod string    `json:"payment_method"`
	PaymentRef    *string   `json:"payment_ref"`
	PaidTimestamp time.Time `json:"paid_timestamp"`
}

type settleResponse struct {
	Payment      paymentResponse `json:"payment"`
	OrderStatus  string          `json:"order_status"`
	PointsEarned int32           `json:"points_earned"`
}

func toPaymentResponse(p database.Payment) paymentResponse {
	resp := paymentResponse{
		OrderID:       p.OrderID,
		PaidPrice:     numericToString(p.PaidPrice),
		PointsUsed:    p.PointsUsed,
		PaymentMethod: p.PaymentMethod,
		PaidTimestamp: p.PaidTimestamp,
	}
	if p.PaymentRef.Valid {
		resp.PaymentRef = &p.PaymentRef.String
	}
	return resp
}

// Create settles an order: the only write endpoint for payments.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.OrderID < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order_id is required"})
		return
	}

	result, err := h.svc.Settle(r.Context(), service.SettleRequest{
		OrderID:       req.OrderID,
		PaymentMethod: req.PaymentMethod,
		PointsUsed:    req.PointsUsed,
		PaymentRef:    req.PaymentRef,
	})
	if err != nil {
		var notPayable *service.NotPayableError
		switch {
		case errors.Is(err, service.ErrInvalidPaymentMethod),
			errors.Is(err, service.ErrInvalidPointsUsed):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.As(err, &notPayable):
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"error":              notPayable.Error(),
				"preparing_item_ids": notPayable.PreparingItemIDs,
			})
		case errors.Is(err, service.ErrAlreadySettled),
			errors.Is(err, service.ErrOrderNotOpen),
			errors.Is(err, service.ErrEmptyOrder),
			errors.Is(err, service.ErrPointsWithoutMembership),
			errors.Is(err, service.ErrInsufficientPoints):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: settle order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := settleResponse{
		Payment:      toPaymentResponse(result.Payment),
		OrderStatus:  result.Order.Status,
		PointsEarned: result.PointsEarned,
	}
	broadcastEvent(h.hub, result.Order.BranchID, ws.EventOrderPaid, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// GetByOrder returns the settlement record of an order.
func (h *PaymentHandler) GetByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(r, "order_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	payment, err := h.store.GetPaymentByOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "payment not found"})
			return
		}
		log.Printf("ERROR: get payment: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toPaymentResponse(payment))
}

// List returns settled payments, newest first.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	payments, err := h.store.ListPayments(r.Context(), database.ListPaymentsParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		log.Printf("ERROR: list payments: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]paymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = toPaymentResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}
