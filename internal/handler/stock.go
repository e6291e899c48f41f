package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/baankrua-pos/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// StockRowStore defines the database methods needed by stock row handlers.
type StockRowStore interface {
	ListStock(ctx context.Context, arg database.ListStockParams) ([]database.Stock, error)
	GetStock(ctx context.Context, stockID int64) (database.Stock, error)
	CreateStock(ctx context.Context, arg database.CreateStockParams) (database.Stock, error)
	SoftDeleteStock(ctx context.Context, stockID int64) (int64, error)
}

// StockHandler handles stock row endpoints. Balances are never set directly
// after creation; they change only through the movement ledger.
type StockHandler struct {
	store StockRowStore
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(store StockRowStore) *StockHandler {
	return &StockHandler{store: store}
}

func (h *StockHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
	})
}

type createStockRequest struct {
	BranchID        int64  `json:"branch_id"`
	IngredientID    int64  `json:"ingredient_id"`
	AmountRemaining string `json:"amount_remaining"`
}

type stockResponse struct {
	StockID         int64  `json:"stock_id"`
	BranchID        int64  `json:"branch_id"`
	IngredientID    int64  `json:"ingredient_id"`
	AmountRemaining string `json:"amount_remaining"`
}

func toStockResponse(s database.Stock) stockResponse {
	return stockResponse{
		StockID:         s.StockID,
		BranchID:        s.BranchID,
		IngredientID:    s.IngredientID,
		AmountRemaining: numericToString(s.AmountRemaining),
	}
}

func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
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

	stocks, err := h.store.ListStock(r.Context(), database.ListStockParams{
		BranchID: branchID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		log.Printf("ERROR: list stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]stockResponse, len(stocks))
	for i, s := range stocks {
		resp[i] = toStockResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stock ID"})
		return
	}

	stock, err := h.store.GetStock(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "stock not found"})
			return
		}
		log.Printf("ERROR: get stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toStockResponse(stock))
}

func (h *StockHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.BranchID < 1 || req.IngredientID < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "branch_id and ingredient_id are required"})
		return
	}

	amount := decimal.Zero
	if req.AmountRemaining != "" {
		var err error
		amount, err = decimal.NewFromString(req.AmountRemaining)
		if err != nil || amount.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount_remaining must be a non-negative number"})
			return
		}
	}
	var amountNum pgtype.Numeric
	_ = amountNum.Scan(amount.StringFixed(2))

	stock, err := h.store.CreateStock(r.Context(), database.CreateStockParams{
		BranchID:        req.BranchID,
		IngredientID:    req.IngredientID,
		AmountRemaining: amountNum,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				writeJSON(w, http.StatusConflict, map[string]string{"error": "stock already exists for this branch and ingredient"})
				return
			case "23503":
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "branch or ingredient not found"})
				return
			}
		}
		log.Printf("ERROR: create stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toStockResponse(stock))
}

func (h *StockHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stock ID"})
		return
	}

	if _, err := h.store.SoftDeleteStock(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "stock not found"})
			return
		}
		log.Printf("ERROR: delete stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
