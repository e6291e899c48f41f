package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/baankrua-pos/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// RecipeStore defines the database methods needed by recipe handlers.
type RecipeStore interface {
	ListRecipesByMenuItem(ctx context.Context, menuItemID int64) ([]database.Recipe, error)
	GetRecipe(ctx context.Context, recipeID int64) (database.Recipe, error)
	CreateRecipe(ctx context.Context, arg database.CreateRecipeParams) (database.Recipe, error)
	UpdateRecipe(ctx context.Context, arg database.UpdateRecipeParams) (database.Recipe, error)
	DeleteRecipe(ctx context.Context, recipeID int64) (int64, error)
}

// RecipeHandler handles recipe line endpoints. Recipes link a menu item to
// the ingredient quantities the kitchen consumes per unit sold.
type RecipeHandler struct {
	store RecipeStore
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(store RecipeStore) *RecipeHandler {
	return &RecipeHandler{store: store}
}

func (h *RecipeHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

type createRecipeRequest struct {
	MenuItemID   int64  `json:"menu_item_id"`
	IngredientID int64  `json:"ingredient_id"`
	QtyPerUnit   string `json:"qty_per_unit"`
}

type updateRecipeRequest struct {
	QtyPerUnit string `json:"qty_per_unit"`
}

type recipeResponse struct {
	RecipeID     int64  `json:"recipe_id"`
	MenuItemID   int64  `json:"menu_item_id"`
	IngredientID int64  `json:"ingredient_id"`
	QtyPerUnit   string `json:"qty_per_unit"`
}

func toRecipeResponse(r database.Recipe) recipeResponse {
	return recipeResponse{
		RecipeID:     r.RecipeID,
		MenuItemID:   r.MenuItemID,
		IngredientID: r.IngredientID,
		QtyPerUnit:   numericToString(r.QtyPerUnit),
	}
}

func parseQtyPerUnit(s string) (pgtype.Numeric, string) {
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return pgtype.Numeric{}, "qty_per_unit must be a positive number"
	}
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n, ""
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid recipe ID"})
		return
	}

	recipe, err := h.store.GetRecipe(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "recipe not found"})
			return
		}
		log.Printf("ERROR: get recipe: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toRecipeResponse(recipe))
}

// ListForMenuItem returns the recipe lines of a menu item.
// Mounted as GET /menu-items/{id}/recipes.
func (h *RecipeHandler) ListForMenuItem(w http.ResponseWriter, r *http.Request) {
	menuItemID, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	recipes, err := h.store.ListRecipesByMenuItem(r.Context(), menuItemID)
	if err != nil {
		log.Printf("ERROR: list recipes: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]recipeResponse, len(recipes))
	for i, rec := range recipes {
		resp[i] = toRecipeResponse(rec)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.MenuItemID < 1 || req.IngredientID < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "menu_item_id and ingredient_id are required"})
		return
	}

	qty, msg := parseQtyPerUnit(req.QtyPerUnit)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	recipe, err := h.store.CreateRecipe(r.Context(), database.CreateRecipeParams{
		MenuItemID:   req.MenuItemID,
		IngredientID: req.IngredientID,
		QtyPerUnit:   qty,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				writeJSON(w, http.StatusConflict, map[string]string{"error": "recipe already exists for this menu item and ingredient"})
				return
			case "23503":
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item or ingredient not found"})
				return
			}
		}
		log.Printf("ERROR: create recipe: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toRecipeResponse(recipe))
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid recipe ID"})
		return
	}

	var req updateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	qty, msg := parseQtyPerUnit(req.QtyPerUnit)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	recipe, err := h.store.UpdateRecipe(r.Context(), database.UpdateRecipeParams{
		RecipeID:   id,
		QtyPerUnit: qty,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "recipe not found"})
			return
		}
		log.Printf("ERROR: update recipe: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toRecipeResponse(recipe))
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid recipe ID"})
		return
	}

	if _, err := h.store.DeleteRecipe(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "recipe not found"})
			return
		}
		log.Printf("ERROR: delete recipe: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
