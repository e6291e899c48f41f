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
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// StockMovementServicer defines the service methods needed by movement handlers.
type StockMovementServicer interface {
	RecordMovement(ctx context.Context, req service.RecordMovementRequest) (*service.RecordMovementResult, error)
}

// StockMovementStore defines the read methods for the ledger.
type StockMovementStore interface {
	ListStockMovements(ctx context.Context, arg database.ListStockMovementsParams) ([]database.StockMovement, error)
}

// StockMovementHandler handles the append-only movement ledger endpoints.
type StockMovementHandler struct {
	svc   StockMovementServicer
	store StockMovementStore
}

// NewStockMovementHandler creates a new StockMovementHandler.
func NewStockMovementHandler(svc StockMovementServicer, store StockMovementStore) *StockMovementHandler {
	return &StockMovementHandler{svc: svc, store: store}
}

func (h *StockMovementHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
}

type createMovementRequest struct {
	StockID    int64  `json:"stock_id"`
	EmployeeID *int64 `json:"employee_id"`
	OrderID    *int64 `json:"order_id"`
	QtyChange  string `json:"qty_change"`
	Reason     string `json:"reason"`
	Note       string `json:"note"`
}

type movementResponse struct {
	MovementID int64     `json:"movement_id"`
	StockID    int64     `json:"stock_id"`
	EmployeeID *int64    `json:"employee_id"`
	OrderID    *int64    `json:"order_id"`
	QtyChange  string    `json:"qty_change"`
	Reason     string    `json:"reason"`
	Note       *string   `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

type createMovementResponse struct {
	Movement        movementResponse `json:"movement"`
	AmountRemaining string           `json:"amount_remaining"`
}

func toMovementResponse(m database.StockMovement) movementResponse {
	resp := movementResponse{
		MovementID: m.MovementID,
		StockID:    m.StockID,
		QtyChange:  numericToString(m.QtyChange),
		Reason:     m.Reason,
		CreatedAt:  m.CreatedAt,
	}
	if m.EmployeeID.Valid {
		resp.EmployeeID = &m.EmployeeID.Int64
	}
	if m.OrderID.Valid {
		resp.OrderID = &m.OrderID.Int64
	}
	if m.Note.Valid {
		resp.Note = &m.Note.String
	}
	return resp
}

// Create appends a ledger entry.
func (h *StockMovementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.StockID < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "stock_id is required"})
		return
	}

	qty, err := decimal.NewFromString(req.QtyChange)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "qty_change must be a number"})
		return
	}

	result, err := h.svc.RecordMovement(r.Context(), service.RecordMovementRequest{
		StockID:    req.StockID,
		EmployeeID: req.EmployeeID,
		OrderID:    req.OrderID,
		QtyChange:  qty,
		Reason:     req.Reason,
		Note:       req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidReason),
			errors.Is(err, service.ErrZeroQuantity),
			errors.Is(err, service.ErrNegativeRestock):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrStockNotFound),
			errors.Is(err, service.ErrEmployeeNotFound),
			errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: record stock movement: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, createMovementResponse{
		Movement:        toMovementResponse(result.Movement),
		AmountRemaining: numericToString(result.Stock.AmountRemaining),
	})
}

// List returns ledger entries, filterable by stock_id, order_id and reason.
func (h *StockMovementHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var stockID, orderID pgtype.Int8
	if s := r.URL.Query().Get("stock_id"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stock_id"})
			return
		}
		stockID = pgtype.Int8{Int64: v, Valid: true}
	}
	if s := r.URL.Query().Get("order_id"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order_id"})
			return
		}
		orderID = pgtype.Int8{Int64: v, Valid: true}
	}

	var reason pgtype.Text
	if s := r.URL.Query().Get("reason"); s != "" {
		reason = pgtype.Text{String: s, Valid: true}
	}

	movements, err := h.store.ListStockMovements(r.Context(), database.ListStockMovementsParams{
		StockID: stockID,
		OrderID: orderID,
		Reason:  reason,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		log.Printf("ERROR: list stock movements: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]movementResponse, len(movements))
	for i, m := range movements {
		resp[i] = toMovementResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}
