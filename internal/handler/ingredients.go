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
)

// IngredientStore defines the database methods needed by ingredient handlers.
type IngredientStore interface {
	ListIngredients(ctx context.Context, arg database.ListIngredientsParams) ([]database.Ingredient, error)
	GetIngredient(ctx context.Context, ingredientID int64) (database.Ingredient, error)
	CreateIngredient(ctx context.Context, arg database.CreateIngredientParams) (database.Ingredient, error)
	UpdateIngredient(ctx context.Context, arg database.UpdateIngredientParams) (database.Ingredient, error)
	SoftDeleteIngredient(ctx context.Context, ingredientID int64) (int64, error)
}

// IngredientHandler handles ingredient CRUD endpoints.
type IngredientHandler struct {
	store IngredientStore
}

// NewIngredientHandler creates a new IngredientHandler.
func NewIngredientHandler(store IngredientStore) *IngredientHandler {
	return &IngredientHandler{store: store}
}

func (h *IngredientHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

type ingredientRequest struct {
	Name     string `json:"name"`
	BaseUnit string `json:"base_unit"`
}

type ingredientResponse struct {
	IngredientID int64  `json:"ingredient_id"`
	Name         string `json:"name"`
	BaseUnit     string `json:"base_unit"`
}

func toIngredientResponse(i database.Ingredient) ingredientResponse {
	return ingredientResponse{IngredientID: i.IngredientID, Name: i.Name, BaseUnit: i.BaseUnit}
}

func (req *ingredientRequest) validate() string {
	if req.Name == "" || len(req.Name) > 100 {
		return "name is required and must be at most 100 characters"
	}
	if req.BaseUnit == "" || len(req.BaseUnit) > 20 {
		return "base_unit is required and must be at most 20 characters"
	}
	return ""
}

func (h *IngredientHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	ingredients, err := h.store.ListIngredients(r.Context(), database.ListIngredientsParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		log.Printf("ERROR: list ingredients: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]ingredientResponse, len(ingredients))
	for i, ing := range ingredients {
		resp[i] = toIngredientResponse(ing)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *IngredientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ingredient ID"})
		return
	}

	ingredient, err := h.store.GetIngredient(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "ingredient not found"})
			return
		}
		log.Printf("ERROR: get ingredient: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toIngredientResponse(ingredient))
}

func (h *IngredientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	ingredient, err := h.store.CreateIngredient(r.Context(), database.CreateIngredientParams{
		Name:     req.Name,
		BaseUnit: req.BaseUnit,
	})
	if err != nil {
		log.Printf("ERROR: create ingredient: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toIngredientResponse(ingredient))
}

func (h *IngredientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ingredient ID"})
		return
	}

	var req ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	ingredient, err := h.store.UpdateIngredient(r.Context(), database.UpdateIngredientParams{
		IngredientID: id,
		Name:         req.Name,
		BaseUnit:     req.BaseUnit,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "ingredient not found"})
			return
		}
		log.Printf("ERROR: update ingredient: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toIngredientResponse(ingredient))
}

func (h *IngredientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ingredient ID"})
		return
	}

	if _, err := h.store.SoftDeleteIngredient(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "ingredient not found"})
			return
		}
		log.Printf("ERROR: delete ingredient: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
