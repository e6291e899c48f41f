package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/baankrua-pos/api/internal/database"
	"github.com/baankrua-pos/api/internal/enum"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the stock service.
var (
	ErrStockNotFound   = errors.New("stock not found")
	ErrInvalidReason   = errors.New("invalid movement reason")
	ErrZeroQuantity    = errors.New("qty_change must be non-zero")
	ErrNegativeRestock = errors.New("RESTOCK qty_change must be positive")
)

// StockStore defines the DB methods needed by the movement ledger.
type StockStore interface {
	GetStockForUpdate(ctx context.Context, stockID int64) (database.Stock, error)
	GetEmployee(ctx context.Context, employeeID int64) (database.Employee, error)
	GetOrder(ctx context.Context, orderID int64) (database.Order, error)
	CreateStockMovement(ctx context.Context, arg database.CreateStockMovementParams) (database.StockMovement, error)
	AdjustStockAmount(ctx context.Context, arg database.AdjustStockAmountParams) (database.Stock, error)
}

// NewStockStore creates a StockStore from a DBTX (pool or tx).
type NewStockStore func(db database.DBTX) StockStore

// RecordMovementRequest is the validated input for a ledger append.
type RecordMovementRequest struct {
	StockID    int64
	EmployeeID *int64
	OrderID    *int64
	QtyChange  decimal.Decimal
	Reason     string
	Note       string
}

// RecordMovementResult is the appended entry plus the adjusted balance.
type RecordMovementResult struct {
	Movement database.StockMovement
	Stock    database.Stock
}

// StockService appends to the movement ledger. Entries are never updated or
// deleted; corrections are new ADJUST entries.
type StockService struct {
	pool     TxBeginner
	newStore NewStockStore
}

// NewStockService creates a new StockService.
func NewStockService(pool TxBeginner, newStore NewStockStore) *StockService {
	return &StockService{pool: pool, newStore: newStore}
}

// RecordMovement appends a ledger entry and adjusts the stock balance in one
// transaction. WASTE quantities are normalized to negative regardless of the
// sign the caller supplied; RESTOCK must be positive.
func (s *StockService) RecordMovement(ctx context.Context, req RecordMovementRequest) (*RecordMovementResult, error) {
	if !isValidMovementReason(req.Reason) {
		return nil, ErrInvalidReason
	}
	if req.QtyChange.IsZero() {
		return nil, ErrZeroQuantity
	}

	qty := req.QtyChange
	switch req.Reason {
	case enum.MovementReasonWaste:
		qty = qty.Abs().Neg()
	case enum.MovementReasonRestock:
		if qty.IsNegative() {
			return nil, ErrNegativeRestock
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetStockForUpdate(ctx, req.StockID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStockNotFound
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}

	employeeID := pgtype.Int8{}
	if req.EmployeeID != nil {
		if _, err := store.GetEmployee(ctx, *req.EmployeeID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrEmployeeNotFound
			}
			return nil, fmt.Errorf("get employee: %w", err)
		}
		employeeID = pgtype.Int8{Int64: *req.EmployeeID, Valid: true}
	}

	orderID := pgtype.Int8{}
	if req.OrderID != nil {
		if _, err := store.GetOrder(ctx, *req.OrderID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrOrderNotFound
			}
			return nil, fmt.Errorf("get order: %w", err)
		}
		orderID = pgtype.Int8{Int64: *req.OrderID, Valid: true}
	}

	note := pgtype.Text{}
	if req.Note != "" {
		note = pgtype.Text{String: req.Note, Valid: true}
	}

	movement, err := store.CreateStockMovement(ctx, database.CreateStockMovementParams{
		StockID:    req.StockID,
		EmployeeID: employeeID,
		OrderID:    orderID,
		QtyChange:  decimalToNumeric(qty),
		Reason:     req.Reason,
		Note:       note,
	})
	if err != nil {
		return nil, fmt.Errorf("create movement: %w", err)
	}

	stock, err := store.AdjustStockAmount(ctx, database.AdjustStockAmountParams{
		StockID: req.StockID,
		Delta:   decimalToNumeric(qty),
	})
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &RecordMovementResult{Movement: movement, Stock: stock}, nil
}

func isValidMovementReason(s string) bool {
	switch s {
	case enum.MovementReasonRestock, enum.MovementReasonSale,
		enum.MovementReasonWaste, enum.MovementReasonAdjust:
		return true
	}
	return false
}
