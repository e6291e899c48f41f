package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// --- Branches ---

const createBranch = `
INSERT INTO branches (name, address, phone)
VALUES ($1, $2, $3)
RETURNING branch_id, name, address, phone, is_deleted, created_at
`

type CreateBranchParams struct {
	Name    string
	Address string
	Phone   string
}

func (q *Queries) CreateBranch(ctx context.Context, arg CreateBranchParams) (Branch, error) {
	row := q.db.QueryRow(ctx, createBranch, arg.Name, arg.Address, arg.Phone)
	var b Branch
	err := row.Scan(&b.BranchID, &b.Name, &b.Address, &b.Phone, &b.IsDeleted, &b.CreatedAt)
	return b, err
}

const getBranch = `
SELECT branch_id, name, address, phone, is_deleted, created_at
FROM branches
WHERE branch_id = $1 AND is_deleted = FALSE
`

func (q *Queries) GetBranch(ctx context.Context, branchID int64) (Branch, error) {
	row := q.db.QueryRow(ctx, getBranch, branchID)
	var b Branch
	err := row.Scan(&b.BranchID, &b.Name, &b.Address, &b.Phone, &b.IsDeleted, &b.CreatedAt)
	return b, err
}

const listBranches = `
SELECT branch_id, name, address, phone, is_deleted, created_at
FROM branches
WHERE is_deleted = FALSE
ORDER BY branch_id
LIMIT $1 OFFSET $2
`

type ListBranchesParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListBranches(ctx context.Context, arg ListBranchesParams) ([]Branch, error) {
	rows, err := q.db.Query(ctx, listBranches, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.BranchID, &b.Name, &b.Address, &b.Phone, &b.IsDeleted, &b.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

const updateBranch = `
UPDATE branches
SET name = $2, address = $3, phone = $4
WHERE branch_id = $1 AND is_deleted = FALSE
RETURNING branch_id, name, address, phone, is_deleted, created_at
`

type UpdateBranchParams struct {
	BranchID int64
	Name     string
	Address  string
	Phone    string
}

func (q *Queries) UpdateBranch(ctx context.Context, arg UpdateBranchParams) (Branch, error) {
	row := q.db.QueryRow(ctx, updateBranch, arg.BranchID, arg.Name, arg.Address, arg.Phone)
	var b Branch
	err := row.Scan(&b.BranchID, &b.Name, &b.Address, &b.Phone, &b.IsDeleted, &b.CreatedAt)
	return b, err
}

const softDeleteBranch = `
UPDATE branches
SET is_deleted = TRUE
WHERE branch_id = $1 AND is_deleted = FALSE
RETURNING branch_id
`

func (q *Queries) SoftDeleteBranch(ctx context.Context, branchID int64) (int64, error) {
	row := q.db.QueryRow(ctx, softDeleteBranch, branchID)
	var id int64
	err := row.Scan(&id)
	return id, err
}

// --- Roles ---

const createRole = `
INSERT INTO roles (role_name, seniority)
VALUES ($1, $2)
RETURNING role_id, role_name, seniority
`

type CreateRoleParams struct {
	RoleName  string
	Seniority int32
}

func (q *Queries) CreateRole(ctx context.Context, arg CreateRoleParams) (Role, error) {
	row := q.db.QueryRow(ctx, createRole, arg.RoleName, arg.Seniority)
	var r Role
	err := row.Scan(&r.RoleID, &r.RoleName, &r.Seniority)
	return r, err
}

const getRole = `
SELECT role_id, role_name, seniority
FROM roles
WHERE role_id = $1
`

func (q *Queries) GetRole(ctx context.Context, roleID int64) (Role, error) {
	row := q.db.QueryRow(ctx, getRole, roleID)
	var r Role
	err := row.Scan(&r.RoleID, &r.RoleName, &r.Seniority)
	return r, err
}

const listRoles = `
SELECT role_id, role_name, seniority
FROM roles
ORDER BY seniority DESC, role_id
`

func (q *Queries) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := q.db.Query(ctx, listRoles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.RoleID, &r.RoleName, &r.Seniority); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const updateRole = `
UPDATE roles
SET role_name = $2, seniority = $3
WHERE role_id = $1
RETURNING role_id, role_name, seniority
`

type UpdateRoleParams struct {
	RoleID    int64
	RoleName  string
	Seniority int32
}

func (q *Queries) UpdateRole(ctx context.Context, arg UpdateRoleParams) (Role, error) {
	row := q.db.QueryRow(ctx, updateRole, arg.RoleID, arg.RoleName, arg.Seniority)
	var r Role
	err := row.Scan(&r.RoleID, &r.RoleName, &r.Seniority)
	return r, err
}

const deleteRole = `
DELETE FROM roles
WHERE role_id = $1
RETURNING role_id
`

func (q *Queries) DeleteRole(ctx context.Context, roleID int64) (int64, error) {
	row := q.db.QueryRow(ctx, deleteRole, roleID)
	var id int64
	err := row.Scan(&id)
	return id, err
}

// --- Employees ---

const createEmployee = `
INSERT INTO employees (branch_id, role_id, first_name, last_name, salary, joined_date)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING employee_id, branch_id, role_id, first_name, last_name, salary, joined_date, is_deleted
`

type CreateEmployeeParams struct {
	BranchID   int64
	RoleID     int64
	FirstName  string
	LastName   string
	Salary     pgtype.Numeric
	JoinedDate pgtype.Date
}

func (q *Queries) CreateEmployee(ctx context.Context, arg CreateEmployeeParams) (Employee, error) {
	row := q.db.QueryRow(ctx, createEmployee,
		arg.BranchID, arg.RoleID, arg.FirstName, arg.LastName, arg.Salary, arg.JoinedDate)
	var e Employee
	err := row.Scan(&e.EmployeeID, &e.BranchID, &e.RoleID, &e.FirstName, &e.LastName,
		&e.Salary, &e.JoinedDate, &e.IsDeleted)
	return e, err
}

const getEmployee = `
SELECT employee_id, branch_id, role_id, first_name, last_name, salary, joined_date, is_deleted
FROM employees
WHERE employee_id = $1 AND is_deleted = FALSE
`

func (q *Queries) GetEmployee(ctx context.Context, employeeID int64) (Employee, error) {
	row := q.db.QueryRow(ctx, getEmployee, employeeID)
	var e Employee
	err := row.Scan(&e.EmployeeID, &e.BranchID, &e.RoleID, &e.FirstName, &e.LastName,
		&e.Salary, &e.JoinedDate, &e.IsDeleted)
	return e, err
}

const listEmployees = `
SELECT employee_id, branch_id, role_id, first_name, last_name, salary, joined_date, is_deleted
FROM employees
WHERE is_deleted = FALSE
  AND ($1::bigint IS NULL OR branch_id = $1)
ORDER BY employee_id
LIMIT $2 OFFSET $3
`

type ListEmployeesParams struct {
	BranchID pgtype.Int8
	Limit    int32
	Offset   int32
}

func (q *Queries) ListEmployees(ctx context.Context, arg ListEmployeesParams) ([]Employee, error) {
	rows, err := q.db.Query(ctx, listEmployees, arg.BranchID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.EmployeeID, &e.BranchID, &e.RoleID, &e.FirstName, &e.LastName,
			&e.Salary, &e.JoinedDate, &e.IsDeleted); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const updateEmployee = `
UPDATE employees
SET branch_id = $2, role_id = $3, first_name = $4, last_name = $5, salary = $6
WHERE employee_id = $1 AND is_deleted = FALSE
RETURNING employee_id, branch_id, role_id, first_name, last_name, salary, joined_date, is_deleted
`

type UpdateEmployeeParams struct {
	EmployeeID int64
	BranchID   int64
	RoleID     int64
	FirstName  string
	LastName   string
	Salary     pgtype.Numeric
}

func (q *Queries) UpdateEmployee(ctx context.Context, arg UpdateEmployeeParams) (Employee, error) {
	row := q.db.QueryRow(ctx, updateEmployee,
		arg.EmployeeID, arg.BranchID, arg.RoleID, arg.FirstName, arg.LastName, arg.Salary)
	var e Employee
	err := row.Scan(&e.EmployeeID, &e.BranchID, &e.RoleID, &e.FirstName, &e.LastName,
		&e.Salary, &e.JoinedDate, &e.IsDeleted)
	return e, err
}

const softDeleteEmployee = `
UPDATE employees
SET is_deleted = TRUE
WHERE employee_id = $1 AND is_deleted = FALSE
RETURNING employee_id
`

func (q *Queries) SoftDeleteEmployee(ctx context.Context, employeeID int64) (int64, error) {
	row := q.db.QueryRow(ctx, softDeleteEmployee, employeeID)
	var id int64
	err := row.Scan(&id)
	return id, err
}
