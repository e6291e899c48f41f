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
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// EmployeeStore defines the database methods needed by employee handlers.
type EmployeeStore interface {
	ListEmployees(ctx context.Context, arg database.ListEmployeesParams) ([]database.Employee, error)
	GetEmployee(ctx context.Context, employeeID int64) (database.Employee, error)
	CreateEmployee(ctx context.Context, arg database.CreateEmployeeParams) (database.Employee, error)
	UpdateEmployee(ctx context.Context, arg database.UpdateEmployeeParams) (database.Employee, error)
	SoftDeleteEmployee(ctx context.Context, employeeID int64) (int64, error)
}

// EmployeeHandler handles employee CRUD endpoints.
type EmployeeHandler struct {
	store EmployeeStore
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(store EmployeeStore) *EmployeeHandler {
	return &EmployeeHandler{store: store}
}

func (h *EmployeeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

type employeeRequest struct {
	BranchID   int64  `json:"branch_id"`
	RoleID     int64  `json:"role_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Salary     string `json:"salary"`
	JoinedDate string `json:"joined_date"` // YYYY-MM-DD, create only
}

type employeeResponse struct {
	EmployeeID int64  `json:"employee_id"`
	BranchID   int64  `json:"branch_id"`
	RoleID     int64  `json:"role_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Salary     string `json:"salary"`
	JoinedDate string `json:"joined_date"`
}

func toEmployeeResponse(e database.Employee) employeeResponse {
	resp := employeeResponse{
		EmployeeID: e.EmployeeID,
		BranchID:   e.BranchID,
		RoleID:     e.RoleID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Salary:     numericToString(e.Salary),
	}
	if e.JoinedDate.Valid {
		resp.JoinedDate = e.JoinedDate.Time.Format("2006-01-02")
	}
	return resp
}

// parseSalary accepts an empty salary as zero.
func parseSalary(s string) (pgtype.Numeric, string) {
	if s == "" {
		s = "0"
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return pgtype.Numeric{}, "salary must be a non-negative number"
	}
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n, ""
}

func (req *employeeRequest) validate() string {
	if req.BranchID < 1 {
		return "branch_id is required"
	}
	if req.RoleID < 1 {
		return "role_id is required"
	}
	if req.FirstName == "" || len(req.FirstName) > 50 {
		return "first_name is required and must be at most 50 characters"
	}
	if req.LastName == "" || len(req.LastName) > 50 {
		return "last_name is required and must be at most 50 characters"
	}
	return ""
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
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

	employees, err := h.store.ListEmployees(r.Context(), database.ListEmployeesParams{
		BranchID: branchID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		log.Printf("ERROR: list employees: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]employeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = toEmployeeResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid employee ID"})
		return
	}

	employee, err := h.store.GetEmployee(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "employee not found"})
			return
		}
		log.Printf("ERROR: get employee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeResponse(employee))
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	salary, msg := parseSalary(req.Salary)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	joined := pgtype.Date{Time: time.Now(), Valid: true}
	if req.JoinedDate != "" {
		t, err := time.Parse("2006-01-02", req.JoinedDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "joined_date must be YYYY-MM-DD"})
			return
		}
		joined = pgtype.Date{Time: t, Valid: true}
	}

	employee, err := h.store.CreateEmployee(r.Context(), database.CreateEmployeeParams{
		BranchID:   req.BranchID,
		RoleID:     req.RoleID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Salary:     salary,
		JoinedDate: joined,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "branch or role not found"})
			return
		}
		log.Printf("ERROR: create employee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeResponse(employee))
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid employee ID"})
		return
	}

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	salary, msg := parseSalary(req.Salary)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	employee, err := h.store.UpdateEmployee(r.Context(), database.UpdateEmployeeParams{
		EmployeeID: id,
		BranchID:   req.BranchID,
		RoleID:     req.RoleID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Salary:     salary,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "employee not found"})
			return
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "branch or role not found"})
			return
		}
		log.Printf("ERROR: update employee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeResponse(employee))
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid employee ID"})
		return
	}

	if _, err := h.store.SoftDeleteEmployee(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "employee not found"})
			return
		}
		log.Printf("ERROR: delete employee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
