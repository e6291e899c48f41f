package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/baankrua-pos/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

// BranchStore defines the database methods needed by branch handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type BranchStore interface {
	ListBranches(ctx context.Context, arg database.ListBranchesParams) ([]database.Branch, error)
	GetBranch(ctx context.Context, branchID int64) (database.Branch, error)
	CreateBranch(ctx context.Context, arg database.CreateBranchParams) (database.Branch, error)
	UpdateBranch(ctx context.Context, arg database.UpdateBranchParams) (database.Branch, error)
	SoftDeleteBranch(ctx context.Context, branchID int64) (int64, error)
}

// BranchHandler handles branch CRUD endpoints.
type BranchHandler struct {
	store BranchStore
}

// NewBranchHandler creates a new BranchHandler.
func NewBranchHandler(store BranchStore) *BranchHandler {
	return &BranchHandler{store: store}
}

// RegisterRoutes registers branch CRUD endpoints on the given Chi router.
func (h *BranchHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

type branchRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type branchResponse struct {
	BranchID  int64     `json:"branch_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func toBranchResponse(b database.Branch) branchResponse {
	return branchResponse{
		BranchID:  b.BranchID,
		Name:      b.Name,
		Address:   b.Address,
		Phone:     b.Phone,
		CreatedAt: b.CreatedAt,
	}
}

func (req *branchRequest) validate() string {
	if req.Name == "" || len(req.Name) > 50 {
		return "name is required and must be at most 50 characters"
	}
	if req.Address == "" || len(req.Address) > 200 {
		return "address is required and must be at most 200 characters"
	}
	if !isValidPhone(req.Phone) {
		return "phone must be 9 or 10 digits"
	}
	return ""
}

// List returns all active branches.
func (h *BranchHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	branches, err := h.store.ListBranches(r.Context(), database.ListBranchesParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		log.Printf("ERROR: list branches: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]branchResponse, len(branches))
	for i, b := range branches {
		resp[i] = toBranchResponse(b)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single branch by ID.
func (h *BranchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid branch ID"})
		return
	}

	branch, err := h.store.GetBranch(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "branch not found"})
			return
		}
		log.Printf("ERROR: get branch: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toBranchResponse(branch))
}

// Create adds a new branch.
func (h *BranchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	branch, err := h.store.CreateBranch(r.Context(), database.CreateBranchParams{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		log.Printf("ERROR: create branch: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toBranchResponse(branch))
}

// Update modifies an existing branch.
func (h *BranchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid branch ID"})
		return
	}

	var req branchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	branch, err := h.store.UpdateBranch(r.Context(), database.UpdateBranchParams{
		BranchID: id,
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "branch not found"})
			return
		}
		log.Printf("ERROR: update branch: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toBranchResponse(branch))
}

// Delete soft-deletes a branch.
func (h *BranchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid branch ID"})
		return
	}

	if _, err := h.store.SoftDeleteBranch(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "branch not found"})
			return
		}
		log.Printf("ERROR: delete branch: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
