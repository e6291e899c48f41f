package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/baankrua-pos/api/internal/database"
	"github.com/baankrua-pos/api/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// MenuItemStore defines the database methods needed by menu handlers.
type MenuItemStore interface {
	ListMenuItems(ctx context.Context, arg database.ListMenuItemsParams) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, menuItemID int64) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, menuItemID int64) (int64, error)
}

// MenuItemHandler handles menu CRUD endpoints.
type MenuItemHandler struct {
	store MenuItemStore
}

// NewMenuItemHandler creates a new MenuItemHandler.
func NewMenuItemHandler(store MenuItemStore) *MenuItemHandler {
	return &MenuItemHandler{store: store}
}

func (h *MenuItemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

type menuItemRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	IsAvailable *bool  `json:"is_available"`
}

type menuItemResponse struct {
	MenuItemID  int64   `json:"menu_item_id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description *string `json:"description"`
	Price       string  `json:"price"`
	Category    *string `json:"category"`
	IsAvailable bool    `json:"is_available"`
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	resp := menuItemResponse{
		MenuItemID:  m.MenuItemID,
		Name:        m.Name,
		Type:        m.Type,
		Price:       numericToString(m.Price),
		IsAvailable: m.IsAvailable,
	}
	if m.Description.Valid {
		resp.Description = &m.Description.String
	}
	if m.Category.Valid {
		resp.Category = &m.Category.String
	}
	return resp
}

// parseMenuItemRequest validates and converts the body into insert params.
// "Set" menus are always sold as available regardless of the flag sent.
func parseMenuItemRequest(req menuItemRequest) (database.CreateMenuItemParams, string) {
	if req.Name == "" || len(req.Name) > 100 {
		return database.CreateMenuItemParams{}, "name is required and must be at most 100 characters"
	}
	if req.Type == "" || len(req.Type) > 50 {
		return database.CreateMenuItemParams{}, "type is required and must be at most 50 characters"
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return database.CreateMenuItemParams{}, "price must be a non-negative number"
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	if req.Type == enum.MenuTypeSet {
		available = true
	}

	var description pgtype.Text
	if req.Description != "" {
		description = pgtype.Text{String: req.Description, Valid: true}
	}
	var category pgtype.Text
	if req.Category != "" {
		category = pgtype.Text{String: req.Category, Valid: true}
	}

	var priceNum pgtype.Numeric
	_ = priceNum.Scan(price.StringFixed(2))

	return database.CreateMenuItemParams{
		Name:        req.Name,
		Type:        req.Type,
		Description: description,
		Price:       priceNum,
		Category:    category,
		IsAvailable: available,
	}, ""
}

func (h *MenuItemHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var available pgtype.Bool
	if s := r.URL.Query().Get("available"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid available filter"})
			return
		}
		available = pgtype.Bool{Bool: v, Valid: true}
	}

	items, err := h.store.ListMenuItems(r.Context(), database.ListMenuItemsParams{
		Available: available,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toMenuItemResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *MenuItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: get menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

func (h *MenuItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, msg := parseMenuItemRequest(req)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

func (h *MenuItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, msg := parseMenuItemRequest(req)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		MenuItemID:  id,
		Name:        params.Name,
		Type:        params.Type,
		Description: params.Description,
		Price:       params.Price,
		Category:    params.Category,
		IsAvailable: params.IsAvailable,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

func (h *MenuItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	if _, err := h.store.DeleteMenuItem(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "menu item is referenced by orders or recipes"})
			return
		}
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
