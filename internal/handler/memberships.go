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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// MembershipStore defines the database methods needed by membership handlers.
type MembershipStore interface {
	ListMemberships(ctx context.Context, arg database.ListMembershipsParams) ([]database.Membership, error)
	GetMembership(ctx context.Context, membershipID int64) (database.Membership, error)
	CreateMembership(ctx context.Context, arg database.CreateMembershipParams) (database.Membership, error)
	UpdateMembership(ctx context.Context, arg database.UpdateMembershipParams) (database.Membership, error)
	DeleteMembership(ctx context.Context, membershipID int64) (int64, error)
}

// MembershipHandler handles loyalty membership CRUD endpoints.
type MembershipHandler struct {
	store MembershipStore
}

// NewMembershipHandler creates a new MembershipHandler.
func NewMembershipHandler(store MembershipStore) *MembershipHandler {
	return &MembershipHandler{store: store}
}

func (h *MembershipHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

type membershipRequest struct {
	TierID int64  `json:"tier_id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
}

type membershipResponse struct {
	MembershipID  int64     `json:"membership_id"`
	TierID        int64     `json:"tier_id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Email         *string   `json:"email"`
	PointsBalance int32     `json:"points_balance"`
	JoinedAt      time.Time `json:"joined_at"`
}

func toMembershipResponse(m database.Membership) membershipResponse {
	resp := membershipResponse{
		MembershipID:  m.MembershipID,
		TierID:        m.TierID,
		Name:          m.Name,
		Phone:         m.Phone,
		PointsBalance: m.PointsBalance,
		JoinedAt:      m.JoinedAt,
	}
	if m.Email.Valid {
		resp.Email = &m.Email.String
	}
	return resp
}

func (req *membershipRequest) validate() string {
	if req.TierID < 1 {
		return "tier_id is required"
	}
	if req.Name == "" || len(req.Name) > 100 {
		return "name is required and must be at most 100 characters"
	}
	if !isValidPhone(req.Phone) {
		return "phone must be 9 or 10 digits"
	}
	if req.Email != "" && !isValidEmail(req.Email) {
		return "email is invalid"
	}
	return ""
}

func (h *MembershipHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	memberships, err := h.store.ListMemberships(r.Context(), database.ListMembershipsParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		log.Printf("ERROR: list memberships: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]membershipResponse, len(memberships))
	for i, m := range memberships {
		resp[i] = toMembershipResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *MembershipHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid membership ID"})
		return
	}

	membership, err := h.store.GetMembership(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "membership not found"})
			return
		}
		log.Printf("ERROR: get membership: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMembershipResponse(membership))
}

func (h *MembershipHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req membershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	var email pgtype.Text
	if req.Email != "" {
		email = pgtype.Text{String: req.Email, Valid: true}
	}

	membership, err := h.store.CreateMembership(r.Context(), database.CreateMembershipParams{
		TierID: req.TierID,
		Name:   req.Name,
		Phone:  req.Phone,
		Email:  email,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				writeJSON(w, http.StatusConflict, map[string]string{"error": "phone or email already registered"})
				return
			case "23503":
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "tier not found"})
				return
			}
		}
		log.Printf("ERROR: create membership: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toMembershipResponse(membership))
}

func (h *MembershipHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid membership ID"})
		return
	}

	var req membershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	var email pgtype.Text
	if req.Email != "" {
		email = pgtype.Text{String: req.Email, Valid: true}
	}

	membership, err := h.store.UpdateMembership(r.Context(), database.UpdateMembershipParams{
		MembershipID: id,
		TierID:       req.TierID,
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        email,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "membership not found"})
			return
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				writeJSON(w, http.StatusConflict, map[string]string{"error": "phone or email already registered"})
				return
			case "23503":
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "tier not found"})
				return
			}
		}
		log.Printf("ERROR: update membership: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMembershipResponse(membership))
}

func (h *MembershipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid membership ID"})
		return
	}

	if _, err := h.store.DeleteMembership(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "membership not found"})
			return
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "membership is referenced by orders"})
			return
		}
		log.Printf("ERROR: delete membership: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
