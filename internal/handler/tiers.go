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
)

// TierStore defines the database methods needed by tier handlers.
type TierStore interface {
	ListTiers(ctx context.Context) ([]database.Tier, error)
	GetTier(ctx context.Context, tierID int64) (database.Tier, error)
	CreateTier(ctx context.Context, arg database.CreateTierParams) (database.Tier, error)
	UpdateTier(ctx context.Context, arg database.UpdateTierParams) (database.Tier, error)
	DeleteTier(ctx context.Context, tierID int64) (int64, error)
}

// TierHandler handles membership tier CRUD endpoints.
type TierHandler struct {
	store TierStore
}

// NewTierHandler creates a new TierHandler.
func NewTierHandler(store TierStore) *TierHandler {
	return &TierHandler{store: store}
}

func (h *TierHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

type tierRequest struct {
	TierName  string `json:"tier_name"`
	TierLevel int32  `json:"tier_level"`
}

type tierResponse struct {
	TierID    int64  `json:"tier_id"`
	TierName  string `json:"tier_name"`
	TierLevel int32  `json:"tier_level"`
}

func toTierResponse(t database.Tier) tierResponse {
	return tierResponse{TierID: t.TierID, TierName: t.TierName, TierLevel: t.TierLevel}
}

func (h *TierHandler) List(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.store.ListTiers(r.Context())
	if err != nil {
		log.Printf("ERROR: list tiers: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]tierResponse, len(tiers))
	for i, t := range tiers {
		resp[i] = toTierResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *TierHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tier ID"})
		return
	}

	tier, err := h.store.GetTier(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "tier not found"})
			return
		}
		log.Printf("ERROR: get tier: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toTierResponse(tier))
}

func (h *TierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.TierName == "" || len(req.TierName) > 50 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tier_name is required and must be at most 50 characters"})
		return
	}

	tier, err := h.store.CreateTier(r.Context(), database.CreateTierParams{
		TierName:  req.TierName,
		TierLevel: req.TierLevel,
	})
	if err != nil {
		log.Printf("ERROR: create tier: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toTierResponse(tier))
}

func (h *TierHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tier ID"})
		return
	}

	var req tierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.TierName == "" || len(req.TierName) > 50 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tier_name is required and must be at most 50 characters"})
		return
	}

	tier, err := h.store.UpdateTier(r.Context(), database.UpdateTierParams{
		TierID:    id,
		TierName:  req.TierName,
		TierLevel: req.TierLevel,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "tier not found"})
			return
		}
		log.Printf("ERROR: update tier: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toTierResponse(tier))
}

func (h *TierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tier ID"})
		return
	}

	if _, err := h.store.DeleteTier(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "tier not found"})
			return
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "tier is still assigned to memberships"})
			return
		}
		log.Printf("ERROR: delete tier: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
