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

// RoleStore defines the database methods needed by role handlers.
type RoleStore interface {
	ListRoles(ctx context.Context) ([]database.Role, error)
	GetRole(ctx context.Context, roleID int64) (database.Role, error)
	CreateRole(ctx context.Context, arg database.CreateRoleParams) (database.Role, error)
	UpdateRole(ctx context.Context, arg database.UpdateRoleParams) (database.Role, error)
	DeleteRole(ctx context.Context, roleID int64) (int64, error)
}

// RoleHandler handles role CRUD endpoints.
type RoleHandler struct {
	store RoleStore
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(store RoleStore) *RoleHandler {
	return &RoleHandler{store: store}
}

func (h *RoleHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

type roleRequest struct {
	RoleName  string `json:"role_name"`
	Seniority int32  `json:"seniority"`
}

type roleResponse struct {
	RoleID    int64  `json:"role_id"`
	RoleName  string `json:"role_name"`
	Seniority int32  `json:"seniority"`
}

func toRoleResponse(r database.Role) roleResponse {
	return roleResponse{RoleID: r.RoleID, RoleName: r.RoleName, Seniority: r.Seniority}
}

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.store.ListRoles(r.Context())
	if err != nil {
		log.Printf("ERROR: list roles: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]roleResponse, len(roles))
	for i, role := range roles {
		resp[i] = toRoleResponse(role)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role ID"})
		return
	}

	role, err := h.store.GetRole(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "role not found"})
			return
		}
		log.Printf("ERROR: get role: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toRoleResponse(role))
}

func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.RoleName == "" || len(req.RoleName) > 50 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role_name is required and must be at most 50 characters"})
		return
	}

	role, err := h.store.CreateRole(r.Context(), database.CreateRoleParams{
		RoleName:  req.RoleName,
		Seniority: req.Seniority,
	})
	if err != nil {
		log.Printf("ERROR: create role: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toRoleResponse(role))
}

func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role ID"})
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.RoleName == "" || len(req.RoleName) > 50 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role_name is required and must be at most 50 characters"})
		return
	}

	role, err := h.store.UpdateRole(r.Context(), database.UpdateRoleParams{
		RoleID:    id,
		RoleName:  req.RoleName,
		Seniority: req.Seniority,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "role not found"})
			return
		}
		log.Printf("ERROR: update role: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toRoleResponse(role))
}

func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role ID"})
		return
	}

	if _, err := h.store.DeleteRole(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "role not found"})
			return
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "role is still assigned to employees"})
			return
		}
		log.Printf("ERROR: delete role: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
