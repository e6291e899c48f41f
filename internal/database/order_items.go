package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createOrderItem = `
INSERT INTO order_items (order_id, menu_item_id, quantity, unit_price, line_total)
VALUES ($1, $2, $3, $4, $5)
RETURNING order_item_id, order_id, menu_item_id, quantity, unit_price, line_total, status
`

type CreateOrderItemParams struct {
	OrderID    int64
	MenuItemID int64
	Quantity   int32
	UnitPrice  pgtype.Numeric
	LineTotal  pgtype.Numeric
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.MenuItemID, arg.Quantity, arg.UnitPrice, arg.LineTotal)
	var i OrderItem
	err := row.Scan(&i.OrderItemID, &i.OrderID, &i.MenuItemID, &i.Quantity,
		&i.UnitPrice, &i.LineTotal, &i.Status)
	return i, err
}

const getOrderItem = `
SELECT order_item_id, order_id, menu_item_id, quantity, unit_price, line_total, status
FROM order_items
WHERE order_item_id = $1
`

func (q *Queries) GetOrderItem(ctx context.Context, orderItemID int64) (OrderItem, error) {
	row := q.db.QueryRow(ctx, getOrderItem, orderItemID)
	var i OrderItem
	err := row.Scan(&i.OrderItemID, &i.OrderID, &i.MenuItemID, &i.Quantity,
		&i.UnitPrice, &i.LineTotal, &i.Status)
	return i, err
}

const getActiveItemForMenuItem = `
SELECT order_item_id, order_id, menu_item_id, quantity, unit_price, line_total, status
FROM order_items
WHERE order_id = $1 AND menu_item_id = $2 AND status <> 'CANCELLED'
ORDER BY order_item_id
LIMIT 1
FOR NO KEY UPDATE
`

type GetActiveItemForMenuItemParams struct {
	OrderID    int64
	MenuItemID int64
}

// GetActiveItemForMenuItem finds the non-cancelled line for a menu item on an
// order, locked for the merge update.
func (q *Queries) GetActiveItemForMenuItem(ctx context.Context, arg GetActiveItemForMenuItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, getActiveItemForMenuItem, arg.OrderID, arg.MenuItemID)
	var i OrderItem
	err := row.Scan(&i.OrderItemID, &i.OrderID, &i.MenuItemID, &i.Quantity,
		&i.UnitPrice, &i.LineTotal, &i.Status)
	return i, err
}

const addOrderItemQuantity = `
UPDATE order_items
SET quantity = quantity + $2,
    line_total = unit_price * (quantity + $2)
WHERE order_item_id = $1
RETURNING order_item_id, order_id, menu_item_id, quantity, unit_price, line_total, status
`

type AddOrderItemQuantityParams struct {
	OrderItemID int64
	Quantity    int32
}

// AddOrderItemQuantity merges quantity into an existing line and recomputes
// line_total from the snapshotted unit price.
func (q *Queries) AddOrderItemQuantity(ctx context.Context, arg AddOrderItemQuantityParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, addOrderItemQuantity, arg.OrderItemID, arg.Quantity)
	var i OrderItem
	err := row.Scan(&i.OrderItemID, &i.OrderID, &i.MenuItemID, &i.Quantity,
		&i.UnitPrice, &i.LineTotal, &i.Status)
	return i, err
}

const updateOrderItemStatus = `
UPDATE order_items
SET status = $3
WHERE order_item_id = $1 AND status = $2
RETURNING order_item_id, order_id, menu_item_id, quantity, unit_price, line_total, status
`

type UpdateOrderItemStatusParams struct {
	OrderItemID int64
	FromStatus  string
	ToStatus    string
}

// UpdateOrderItemStatus is a conditional transition; pgx.ErrNoRows means the
// item was not in FromStatus anymore.
func (q *Queries) UpdateOrderItemStatus(ctx context.Context, arg UpdateOrderItemStatusParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, updateOrderItemStatus, arg.OrderItemID, arg.FromStatus, arg.ToStatus)
	var i OrderItem
	err := row.Scan(&i.OrderItemID, &i.OrderID, &i.MenuItemID, &i.Quantity,
		&i.UnitPrice, &i.LineTotal, &i.Status)
	return i, err
}

const listOrderItemsByOrder = `
SELECT order_item_id, order_id, menu_item_id, quantity, unit_price, line_total, status
FROM order_items
WHERE order_id = $1
ORDER BY order_item_id
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(&i.OrderItemID, &i.OrderID, &i.MenuItemID, &i.Quantity,
			&i.UnitPrice, &i.LineTotal, &i.Status); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const sumOrderItemTotals = `
SELECT COALESCE(SUM(line_total), 0)
FROM order_items
WHERE order_id = $1 AND status <> 'CANCELLED'
`

// SumOrderItemTotals is the order total: line totals of every non-cancelled item.
func (q *Queries) SumOrderItemTotals(ctx context.Context, orderID int64) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumOrderItemTotals, orderID)
	var sum pgtype.Numeric
	err := row.Scan(&sum)
	return sum, err
}
