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

// Errors returned by the order service.
var (
	ErrInvalidOrderType    = errors.New("invalid order_type")
	ErrInvalidQuantity     = errors.New("quantity must be >= 1")
	ErrBranchNotFound      = errors.New("branch not found")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrMembershipNotFound  = errors.New("membership not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderItemNotFound   = errors.New("order item not found")
	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrMenuItemUnavailable = errors.New("menu item is not available")
	ErrOrderNotOpen        = errors.New("order is not open for changes")
	ErrInvalidItemStatus   = errors.New("invalid item status")
	ErrItemNotPreparing    = errors.New("item is not in PREPARING status")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order workflow.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetBranch(ctx context.Context, branchID int64) (database.Branch, error)
	GetEmployee(ctx context.Context, employeeID int64) (database.Employee, error)
	GetMembership(ctx context.Context, membershipID int64) (database.Membership, error)
	GetMenuItem(ctx context.Context, menuItemID int64) (database.MenuItem, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, orderID int64) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	UpdateOrderTotal(ctx context.Context, arg database.UpdateOrderTotalParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrderItem(ctx context.Context, orderItemID int64) (database.OrderItem, error)
	GetActiveItemForMenuItem(ctx context.Context, arg database.GetActiveItemForMenuItemParams) (database.OrderItem, error)
	AddOrderItemQuantity(ctx context.Context, arg database.AddOrderItemQuantityParams) (database.OrderItem, error)
	UpdateOrderItemStatus(ctx context.Context, arg database.UpdateOrderItemStatusParams) (database.OrderItem, error)
	SumOrderItemTotals(ctx context.Context, orderID int64) (pgtype.Numeric, error)
	ListRecipesByMenuItem(ctx context.Context, menuItemID int64) ([]database.Recipe, error)
	GetStockForIngredient(ctx context.Context, arg database.GetStockForIngredientParams) (database.Stock, error)
	AdjustStockAmount(ctx context.Context, arg database.AdjustStockAmountParams) (database.Stock, error)
	CreateStockMovement(ctx context.Context, arg database.CreateStockMovementParams) (database.StockMovement, error)
	ListSaleMovementsByOrder(ctx context.Context, orderID int64) ([]database.StockMovement, error)
	GetStockForUpdate(ctx context.Context, stockID int64) (database.Stock, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for opening an order.
type CreateOrderRequest struct {
	BranchID     int64
	EmployeeID   int64
	MembershipID *int64
	OrderType    string
}

// AddItemRequest adds quantity of a menu item to an open order.
type AddItemRequest struct {
	OrderID    int64
	MenuItemID int64
	Quantity   int32
}

// AddItemResult is the touched line plus the order with its new total.
type AddItemResult struct {
	Item  database.OrderItem
	Order database.Order
}

// ItemStatusResult is the transitioned line plus its order.
type ItemStatusResult struct {
	Item  database.OrderItem
	Order database.Order
}

// OrderService handles the order aggregate: opening orders, item lines, the
// item state machine, and cancellation.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// CreateOrder opens an empty UNPAID order after validating its references.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (database.Order, error) {
	if err := validateOrderType(req.OrderType); err != nil {
		return database.Order{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetBranch(ctx, req.BranchID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrBranchNotFound
		}
		return database.Order{}, fmt.Errorf("get branch: %w", err)
	}

	if _, err := store.GetEmployee(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrEmployeeNotFound
		}
		return database.Order{}, fmt.Errorf("get employee: %w", err)
	}

	membershipID := pgtype.Int8{}
	if req.MembershipID != nil {
		if _, err := store.GetMembership(ctx, *req.MembershipID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return database.Order{}, ErrMembershipNotFound
			}
			return database.Order{}, fmt.Errorf("get membership: %w", err)
		}
		membershipID = pgtype.Int8{Int64: *req.MembershipID, Valid: true}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		BranchID:     req.BranchID,
		EmployeeID:   req.EmployeeID,
		MembershipID: membershipID,
		OrderType:    req.OrderType,
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("create order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

// AddItem adds quantity of a menu item to an UNPAID order. If the order
// already carries a non-cancelled line for the same menu item, the quantity
// is merged into it; otherwise a new PREPARING line is created with the
// current menu price snapshotted. The order total is recomputed in the same
// transaction.
func (s *OrderService) AddItem(ctx context.Context, req AddItemRequest) (*AddItemResult, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// Lock the order first; all workflow steps on one order serialize here.
	order, err := store.GetOrderForUpdate(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.Status != enum.OrderStatusUnpaid {
		return nil, ErrOrderNotOpen
	}

	menuItem, err := store.GetMenuItem(ctx, req.MenuItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	if !menuItem.IsAvailable {
		return nil, ErrMenuItemUnavailable
	}

	var item database.OrderItem
	existing, err := store.GetActiveItemForMenuItem(ctx, database.GetActiveItemForMenuItemParams{
		OrderID:    req.OrderID,
		MenuItemID: req.MenuItemID,
	})
	switch {
	case err == nil:
		item, err = store.AddOrderItemQuantity(ctx, database.AddOrderItemQuantityParams{
			OrderItemID: existing.OrderItemID,
			Quantity:    req.Quantity,
		})
		if err != nil {
			return nil, fmt.Errorf("merge item quantity: %w", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		unitPrice := numericToDecimal(menuItem.Price)
		lineTotal := unitPrice.Mul(decimal.NewFromInt32(req.Quantity))
		item, err = store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:    req.OrderID,
			MenuItemID: req.MenuItemID,
			Quantity:   req.Quantity,
			UnitPrice:  decimalToNumeric(unitPrice),
			LineTotal:  decimalToNumeric(lineTotal),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
	default:
		return nil, fmt.Errorf("find existing item: %w", err)
	}

	order, err = s.recomputeTotal(ctx, store, req.OrderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &AddItemResult{Item: item, Order: order}, nil
}

// SetItemStatus transitions an item out of PREPARING. DONE consumes the
// item's recipe ingredients from the order's branch stock (SALE movements);
// CANCELLED removes the line from the order total. Items of PAID or
// CANCELLED orders are immutable.
func (s *OrderService) SetItemStatus(ctx context.Context, orderItemID int64, newStatus string) (*ItemStatusResult, error) {
	if newStatus != enum.OrderItemStatusDone && newStatus != enum.OrderItemStatusCancelled {
		return nil, ErrInvalidItemStatus
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetOrderItem(ctx, orderItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderItemNotFound
		}
		return nil, fmt.Errorf("get order item: %w", err)
	}

	order, err := store.GetOrderForUpdate(ctx, current.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.Status != enum.OrderStatusUnpaid {
		return nil, ErrOrderNotOpen
	}

	item, err := store.UpdateOrderItemStatus(ctx, database.UpdateOrderItemStatusParams{
		OrderItemID: orderItemID,
		FromStatus:  enum.OrderItemStatusPreparing,
		ToStatus:    newStatus,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotPreparing
		}
		return nil, fmt.Errorf("update item status: %w", err)
	}

	switch newStatus {
	case enum.OrderItemStatusDone:
		if err := s.consumeStock(ctx, store, order, item); err != nil {
			return nil, err
		}
	case enum.OrderItemStatusCancelled:
		order, err = s.recomputeTotal(ctx, store, order.OrderID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &ItemStatusResult{Item: item, Order: order}, nil
}

// CancelOrder cancels an UNPAID order and reverses every SALE movement it
// produced with a compensating ADJUST movement, all in one transaction.
func (s *OrderService) CancelOrder(ctx context.Context, orderID int64) (database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if order.Status != enum.OrderStatusUnpaid {
		return database.Order{}, ErrOrderNotOpen
	}

	order, err = store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		OrderID:    orderID,
		FromStatus: enum.OrderStatusUnpaid,
		ToStatus:   enum.OrderStatusCancelled,
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("cancel order: %w", err)
	}

	sales, err := store.ListSaleMovementsByOrder(ctx, orderID)
	if err != nil {
		return database.Order{}, fmt.Errorf("list sale movements: %w", err)
	}
	for _, mv := range sales {
		if _, err := store.GetStockForUpdate(ctx, mv.StockID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Stock row soft-deleted since the sale; the ledger entry
				// still documents the reversal attempt target.
				continue
			}
			return database.Order{}, fmt.Errorf("lock stock %d: %w", mv.StockID, err)
		}
		reversal := numericToDecimal(mv.QtyChange).Neg()
		orderRef := pgtype.Int8{Int64: orderID, Valid: true}
		if _, err := store.CreateStockMovement(ctx, database.CreateStockMovementParams{
			StockID:   mv.StockID,
			OrderID:   orderRef,
			QtyChange: decimalToNumeric(reversal),
			Reason:    enum.MovementReasonAdjust,
			Note:      pgtype.Text{String: fmt.Sprintf("reversal of movement %d", mv.MovementID), Valid: true},
		}); err != nil {
			return database.Order{}, fmt.Errorf("create reversal movement: %w", err)
		}
		if _, err := store.AdjustStockAmount(ctx, database.AdjustStockAmountParams{
			StockID: mv.StockID,
			Delta:   decimalToNumeric(reversal),
		}); err != nil {
			return database.Order{}, fmt.Errorf("adjust stock %d: %w", mv.StockID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

// consumeStock writes SALE movements for every recipe ingredient of a
// completed line, scoped to the order's branch. Ingredients without a stock
// row at that branch are skipped.
func (s *OrderService) consumeStock(ctx context.Context, store OrderStore, order database.Order, item database.OrderItem) error {
	recipes, err := store.ListRecipesByMenuItem(ctx, item.MenuItemID)
	if err != nil {
		return fmt.Errorf("list recipes: %w", err)
	}

	qty := decimal.NewFromInt32(item.Quantity)
	orderRef := pgtype.Int8{Int64: order.OrderID, Valid: true}
	for _, rec := range recipes {
		stock, err := store.GetStockForIngredient(ctx, database.GetStockForIngredientParams{
			BranchID:     order.BranchID,
			IngredientID: rec.IngredientID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return fmt.Errorf("get stock for ingredient %d: %w", rec.IngredientID, err)
		}

		used := numericToDecimal(rec.QtyPerUnit).Mul(qty)
		delta := used.Neg()
		if _, err := store.CreateStockMovement(ctx, database.CreateStockMovementParams{
			StockID:   stock.StockID,
			OrderID:   orderRef,
			QtyChange: decimalToNumeric(delta),
			Reason:    enum.MovementReasonSale,
		}); err != nil {
			return fmt.Errorf("create sale movement: %w", err)
		}
		if _, err := store.AdjustStockAmount(ctx, database.AdjustStockAmountParams{
			StockID: stock.StockID,
			Delta:   decimalToNumeric(delta),
		}); err != nil {
			return fmt.Errorf("adjust stock %d: %w", stock.StockID, err)
		}
	}
	return nil
}

// recomputeTotal rewrites the order total from its non-cancelled lines.
func (s *OrderService) recomputeTotal(ctx context.Context, store OrderStore, orderID int64) (database.Order, error) {
	sum, err := store.SumOrderItemTotals(ctx, orderID)
	if err != nil {
		return database.Order{}, fmt.Errorf("sum item totals: %w", err)
	}
	order, err := store.UpdateOrderTotal(ctx, database.UpdateOrderTotalParams{
		OrderID:    orderID,
		TotalPrice: decimalToNumeric(numericToDecimal(sum)),
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("update order total: %w", err)
	}
	return order, nil
}

// --- Helpers ---

func validateOrderType(s string) error {
	switch s {
	case enum.OrderTypeDineIn, enum.OrderTypeTakeaway, enum.OrderTypeDelivery:
		return nil
	}
	return ErrInvalidOrderType
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
