package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// --- Stock rows ---

const createStock = `
INSERT INTO stock (branch_id, ingredient_id, amount_remaining)
VALUES ($1, $2, $3)
RETURNING stock_id, branch_id, ingredient_id, amount_remaining, is_deleted
`

type CreateStockParams struct {
	BranchID        int64
	IngredientID    int64
	AmountRemaining pgtype.Numeric
}

func (q *Queries) CreateStock(ctx context.Context, arg CreateStockParams) (Stock, error) {
	row := q.db.QueryRow(ctx, createStock, arg.BranchID, arg.IngredientID, arg.AmountRemaining)
	var s Stock
	err := row.Scan(&s.StockID, &s.BranchID, &s.IngredientID, &s.AmountRemaining, &s.IsDeleted)
	return s, err
}

const getStock = `
SELECT stock_id, branch_id, ingredient_id, amount_remaining, is_deleted
FROM stock
WHERE stock_id = $1 AND is_deleted = FALSE
`

func (q *Queries) GetStock(ctx context.Context, stockID int64) (Stock, error) {
	row := q.db.QueryRow(ctx, getStock, stockID)
	var s Stock
	err := row.Scan(&s.StockID, &s.BranchID, &s.IngredientID, &s.AmountRemaining, &s.IsDeleted)
	return s, err
}

const getStockForUpdate = `
SELECT stock_id, branch_id, ingredient_id, amount_remaining, is_deleted
FROM stock
WHERE stock_id = $1 AND is_deleted = FALSE
FOR NO KEY UPDATE
`

// GetStockForUpdate locks the stock row so the ledger append and balance
// adjustment stay consistent under concurrent movements.
func (q *Queries) GetStockForUpdate(ctx context.Context, stockID int64) (Stock, error) {
	row := q.db.QueryRow(ctx, getStockForUpdate, stockID)
	var s Stock
	err := row.Scan(&s.StockID, &s.BranchID, &s.IngredientID, &s.AmountRemaining, &s.IsDeleted)
	return s, err
}

const getStockForIngredient = `
SELECT stock_id, branch_id, ingredient_id, amount_remaining, is_deleted
FROM stock
WHERE branch_id = $1 AND ingredient_id = $2 AND is_deleted = FALSE
FOR NO KEY UPDATE
`

type GetStockForIngredientParams struct {
	BranchID     int64
	IngredientID int64
}

func (q *Queries) GetStockForIngredient(ctx context.Context, arg GetStockForIngredientParams) (Stock, error) {
	row := q.db.QueryRow(ctx, getStockForIngredient, arg.BranchID, arg.IngredientID)
	var s Stock
	err := row.Scan(&s.StockID, &s.BranchID, &s.IngredientID, &s.AmountRemaining, &s.IsDeleted)
	return s, err
}

const listStock = `
SELECT stock_id, branch_id, ingredient_id, amount_remaining, is_deleted
FROM stock
WHERE is_deleted = FALSE
  AND ($1::bigint IS NULL OR branch_id = $1)
ORDER BY stock_id
LIMIT $2 OFFSET $3
`

type ListStockParams struct {
	BranchID pgtype.Int8
	Limit    int32
	Offset   int32
}

func (q *Queries) ListStock(ctx context.Context, arg ListStockParams) ([]Stock, error) {
	rows, err := q.db.Query(ctx, listStock, arg.BranchID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Stock
	for rows.Next() {
		var s Stock
		if err := rows.Scan(&s.StockID, &s.BranchID, &s.IngredientID, &s.AmountRemaining, &s.IsDeleted); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const adjustStockAmount = `
UPDATE stock
SET amount_remaining = amount_remaining + $2
WHERE stock_id = $1 AND is_deleted = FALSE
RETURNING stock_id, branch_id, ingredient_id, amount_remaining, is_deleted
`

type AdjustStockAmountParams struct {
	StockID int64
	Delta   pgtype.Numeric
}

// AdjustStockAmount applies a relative balance change. Balances may go
// negative; the ledger is the source of truth and corrections arrive as
// ADJUST movements.
func (q *Queries) AdjustStockAmount(ctx context.Context, arg AdjustStockAmountParams) (Stock, error) {
	row := q.db.QueryRow(ctx, adjustStockAmount, arg.StockID, arg.Delta)
	var s Stock
	err := row.Scan(&s.StockID, &s.BranchID, &s.IngredientID, &s.AmountRemaining, &s.IsDeleted)
	return s, err
}

const softDeleteStock = `
UPDATE stock
SET is_deleted = TRUE
WHERE stock_id = $1 AND is_deleted = FALSE
RETURNING stock_id
`

func (q *Queries) SoftDeleteStock(ctx context.Context, stockID int64) (int64, error) {
	row := q.db.QueryRow(ctx, softDeleteStock, stockID)
	var id int64
	err := row.Scan(&id)
	return id, err
}

// --- Stock movements (append-only) ---

const createStockMovement = `
INSERT INTO stock_movements (stock_id, employee_id, order_id, qty_change, reason, note)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING movement_id, stock_id, employee_id, order_id, qty_change, reason, note, created_at
`

type CreateStockMovementParams struct {
	StockID    int64
	EmployeeID pgtype.Int8
	OrderID    pgtype.Int8
	QtyChange  pgtype.Numeric
	Reason     string
	Note       pgtype.Text
}

func (q *Queries) CreateStockMovement(ctx context.Context, arg CreateStockMovementParams) (StockMovement, error) {
	row := q.db.QueryRow(ctx, createStockMovement,
		arg.StockID, arg.EmployeeID, arg.OrderID, arg.QtyChange, arg.Reason, arg.Note)
	var m StockMovement
	err := row.Scan(&m.MovementID, &m.StockID, &m.EmployeeID, &m.OrderID,
		&m.QtyChange, &m.Reason, &m.Note, &m.CreatedAt)
	return m, err
}

const listStockMovements = `
SELECT movement_id, stock_id, employee_id, order_id, qty_change, reason, note, created_at
FROM stock_movements
WHERE ($1::bigint IS NULL OR stock_id = $1)
  AND ($2::bigint IS NULL OR order_id = $2)
  AND ($3::text IS NULL OR reason = $3)
ORDER BY movement_id
LIMIT $4 OFFSET $5
`

type ListStockMovementsParams struct {
	StockID pgtype.Int8
	OrderID pgtype.Int8
	Reason  pgtype.Text
	Limit   int32
	Offset  int32
}

func (q *Queries) ListStockMovements(ctx context.Context, arg ListStockMovementsParams) ([]StockMovement, error) {
	rows, err := q.db.Query(ctx, listStockMovements,
		arg.StockID, arg.OrderID, arg.Reason, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []StockMovement
	for rows.Next() {
		var m StockMovement
		if err := rows.Scan(&m.MovementID, &m.StockID, &m.EmployeeID, &m.OrderID,
			&m.QtyChange, &m.Reason, &m.Note, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const listSaleMovementsByOrder = `
SELECT movement_id, stock_id, employee_id, order_id, qty_change, reason, note, created_at
FROM stock_movements
WHERE order_id = $1 AND reason = 'SALE'
ORDER BY movement_id
`

func (q *Queries) ListSaleMovementsByOrder(ctx context.Context, orderID int64) ([]StockMovement, error) {
	rows, err := q.db.Query(ctx, listSaleMovementsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []StockMovement
	for rows.Next() {
		var m StockMovement
		if err := rows.Scan(&m.MovementID, &m.StockID, &m.EmployeeID, &m.OrderID,
			&m.QtyChange, &m.Reason, &m.Note, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
