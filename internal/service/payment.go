package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/baankrua-pos/api/internal/database"
	"github.com/baankrua-pos/api/internal/enum"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the payment service.
var (
	ErrAlreadySettled          = errors.New("order is already settled")
	ErrEmptyOrder              = errors.New("order has no items to settle")
	ErrInvalidPaymentMethod    = errors.New("invalid payment_method")
	ErrInvalidPointsUsed       = errors.New("points_used must be >= 0")
	ErrPointsWithoutMembership = errors.New("points require a membership on the order")
	ErrInsufficientPoints      = errors.New("insufficient points balance")
)

// NotPayableError reports a settlement attempt while items are still in the
// kitchen. It carries the offending item ids for the response body.
type NotPayableError struct {
	PreparingItemIDs []int64
}

func (e *NotPayableError) Error() string {
	return fmt.Sprintf("order not payable: %d item(s) still preparing", len(e.PreparingItemIDs))
}

// PaymentStore defines the DB methods needed to settle an order.
type PaymentStore interface {
	GetOrderForUpdate(ctx context.Context, orderID int64) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]database.OrderItem, error)
	GetMembershipForUpdate(ctx context.Context, membershipID int64) (database.Membership, error)
	AddMembershipPoints(ctx context.Context, arg database.AddMembershipPointsParams) (database.Membership, error)
	CreatePayment(ctx context.Context, arg database.CreatePaymentParams) (database.Payment, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

// NewPaymentStore creates a PaymentStore from a DBTX (pool or tx).
type NewPaymentStore func(db database.DBTX) PaymentStore

// Policy is the settlement arithmetic configuration.
type Policy struct {
	// TaxRate multiplies the amount due (1.00 = no tax).
	TaxRate decimal.Decimal
	// PointValue is the currency value redeemed per loyalty point.
	PointValue decimal.Decimal
	// PointsEarnDivisor: one point earned per this many currency units of
	// paid price. Zero disables earning.
	PointsEarnDivisor decimal.Decimal
}

// SettleRequest is the validated input for settling an order.
type SettleRequest struct {
	OrderID       int64
	PaymentMethod string
	PointsUsed    int32
	PaymentRef    string
}

// SettleResult is the recorded payment plus the PAID order.
type SettleResult struct {
	Payment      database.Payment
	Order        database.Order
	PointsEarned int32
}

// PaymentService settles orders: exactly one payment per order, computed and
// committed atomically with the points ledger and the status flip.
type PaymentService struct {
	pool     TxBeginner
	newStore NewPaymentStore
	policy   Policy
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(pool TxBeginner, newStore NewPaymentStore, policy Policy) *PaymentService {
	return &PaymentService{pool: pool, newStore: newStore, policy: policy}
}

// Settle records the one-time payment for an UNPAID order.
//
// The order row is locked before any validation so a concurrent settlement
// or cancellation cannot slip between the check and the insert. The paid
// price is always computed server-side:
//
//	paid = max(0, (total - points_used*point_value) * tax_rate)
func (s *PaymentService) Settle(ctx context.Context, req SettleRequest) (*SettleResult, error) {
	if !isValidPaymentMethod(req.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}
	if req.PointsUsed < 0 {
		return nil, ErrInvalidPointsUsed
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	switch order.Status {
	case enum.OrderStatusPaid:
		return nil, ErrAlreadySettled
	case enum.OrderStatusCancelled:
		return nil, ErrOrderNotOpen
	}

	items, err := store.ListOrderItemsByOrder(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	// An order whose lines are all cancelled is still settleable; its total
	// has been recomputed to zero and the payment clamps to 0.00.
	var preparing []int64
	for _, item := range items {
		if item.Status == enum.OrderItemStatusPreparing {
			preparing = append(preparing, item.OrderItemID)
		}
	}
	if len(preparing) > 0 {
		return nil, &NotPayableError{PreparingItemIDs: preparing}
	}

	if req.PointsUsed > 0 && !order.MembershipID.Valid {
		return nil, ErrPointsWithoutMembership
	}

	var membership database.Membership
	if order.MembershipID.Valid {
		membership, err = store.GetMembershipForUpdate(ctx, order.MembershipID.Int64)
		if err != nil {
			return nil, fmt.Errorf("get membership: %w", err)
		}
		if req.PointsUsed > membership.PointsBalance {
			return nil, ErrInsufficientPoints
		}
	}

	total := numericToDecimal(order.TotalPrice)
	redeemed := decimal.NewFromInt32(req.PointsUsed).Mul(s.policy.PointValue)
	paid := total.Sub(redeemed).Mul(s.policy.TaxRate).Round(2)
	if paid.IsNegative() {
		paid = decimal.Zero
	}

	paymentRef := pgtype.Text{}
	if req.PaymentRef != "" {
		paymentRef = pgtype.Text{String: req.PaymentRef, Valid: true}
	}

	payment, err := store.CreatePayment(ctx, database.CreatePaymentParams{
		OrderID:       req.OrderID,
		PaidPrice:     decimalToNumeric(paid),
		PointsUsed:    req.PointsUsed,
		PaymentMethod: req.PaymentMethod,
		PaymentRef:    paymentRef,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadySettled
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}

	var earned int32
	if order.MembershipID.Valid {
		if s.policy.PointsEarnDivisor.IsPositive() {
			earned = int32(paid.Div(s.policy.PointsEarnDivisor).Floor().IntPart())
		}
		if delta := earned - req.PointsUsed; delta != 0 {
			if _, err := store.AddMembershipPoints(ctx, database.AddMembershipPointsParams{
				MembershipID: membership.MembershipID,
				Delta:        delta,
			}); err != nil {
				return nil, fmt.Errorf("adjust membership points: %w", err)
			}
		}
	}

	order, err = store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		OrderID:    req.OrderID,
		FromStatus: enum.OrderStatusUnpaid,
		ToStatus:   enum.OrderStatusPaid,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadySettled
		}
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &SettleResult{Payment: payment, Order: order, PointsEarned: earned}, nil
}

func isValidPaymentMethod(s string) bool {
	switch s {
	case enum.PaymentMethodCash, enum.PaymentMethodCard,
		enum.PaymentMethodQR, enum.PaymentMethodPoints:
		return true
	}
	return false
}
