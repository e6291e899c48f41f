package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createOrder = `
INSERT INTO orders (branch_id, employee_id, membership_id, order_type)
VALUES ($1, $2, $3, $4)
RETURNING order_id, branch_id, employee_id, membership_id, order_type, status, total_price, order_timestamp
`

type CreateOrderParams struct {
	BranchID     int64
	EmployeeID   int64
	MembershipID pgtype.Int8
	OrderType    string
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.BranchID, arg.EmployeeID, arg.MembershipID, arg.OrderType)
	var o Order
	err := row.Scan(&o.OrderID, &o.BranchID, &o.EmployeeID, &o.MembershipID,
		&o.OrderType, &o.Status, &o.TotalPrice, &o.OrderTimestamp)
	return o, err
}

const getOrder = `
SELECT order_id, branch_id, employee_id, membership_id, order_type, status, total_price, order_timestamp
FROM orders
WHERE order_id = $1
`

func (q *Queries) GetOrder(ctx context.Context, orderID int64) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, orderID)
	var o Order
	err := row.Scan(&o.OrderID, &o.BranchID, &o.EmployeeID, &o.MembershipID,
		&o.OrderType, &o.Status, &o.TotalPrice, &o.OrderTimestamp)
	return o, err
}

const getOrderForUpdate = `
SELECT order_id, branch_id, employee_id, membership_id, order_type, status, total_price, order_timestamp
FROM orders
WHERE order_id = $1
FOR NO KEY UPDATE
`

// GetOrderForUpdate locks the order row for the rest of the transaction.
// Item additions, item transitions, cancellation and settlement all take this
// lock first, so per-order workflow steps are serialized.
func (q *Queries) GetOrderForUpdate(ctx context.Context, orderID int64) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderForUpdate, orderID)
	var o Order
	err := row.Scan(&o.OrderID, &o.BranchID, &o.EmployeeID, &o.MembershipID,
		&o.OrderType, &o.Status, &o.TotalPrice, &o.OrderTimestamp)
	return o, err
}

const listOrders = `
SELECT order_id, branch_id, employee_id, membership_id, order_type, status, total_price, order_timestamp
FROM orders
WHERE ($1::bigint IS NULL OR branch_id = $1)
  AND ($2::text IS NULL OR status = $2)
ORDER BY order_id DESC
LIMIT $3 OFFSET $4
`

type ListOrdersParams struct {
	BranchID pgtype.Int8
	Status   pgtype.Text
	Limit    int32
	Offset   int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders, arg.BranchID, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.OrderID, &o.BranchID, &o.EmployeeID, &o.MembershipID,
			&o.OrderType, &o.Status, &o.TotalPrice, &o.OrderTimestamp); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const updateOrderStatus = `
UPDATE orders
SET status = $3
WHERE order_id = $1 AND status = $2
RETURNING order_id, branch_id, employee_id, membership_id, order_type, status, total_price, order_timestamp
`

type UpdateOrderStatusParams struct {
	OrderID    int64
	FromStatus string
	ToStatus   string
}

// UpdateOrderStatus is a conditional transition: it only fires when the order
// is still in FromStatus, returning pgx.ErrNoRows otherwise.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.OrderID, arg.FromStatus, arg.ToStatus)
	var o Order
	err := row.Scan(&o.OrderID, &o.BranchID, &o.EmployeeID, &o.MembershipID,
		&o.OrderType, &o.Status, &o.TotalPrice, &o.OrderTimestamp)
	return o, err
}

const updateOrderTotal = `
UPDATE orders
SET total_price = $2
WHERE order_id = $1
RETURNING order_id, branch_id, employee_id, membership_id, order_type, status, total_price, order_timestamp
`

type UpdateOrderTotalParams struct {
	OrderID    int64
	TotalPrice pgtype.Numeric
}

func (q *Queries) UpdateOrderTotal(ctx context.Context, arg UpdateOrderTotalParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderTotal, arg.OrderID, arg.TotalPrice)
	var o Order
	err := row.Scan(&o.OrderID, &o.BranchID, &o.EmployeeID, &o.MembershipID,
		&o.OrderType, &o.Status, &o.TotalPrice, &o.OrderTimestamp)
	return o, err
}
