package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createPayment = `
INSERT INTO payments (order_id, paid_price, points_used, payment_method, payment_ref)
VALUES ($1, $2, $3, $4, $5)
RETURNING order_id, paid_price, points_used, payment_method, payment_ref, paid_timestamp
`

type CreatePaymentParams struct {
	OrderID       int64
	PaidPrice     pgtype.Numeric
	PointsUsed    int32
	PaymentMethod string
	PaymentRef    pgtype.Text
}

// CreatePayment inserts the one settlement record an order can ever have.
// A duplicate insert fails on the primary key (pgconn code 23505).
func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	row := q.db.QueryRow(ctx, createPayment,
		arg.OrderID, arg.PaidPrice, arg.PointsUsed, arg.PaymentMethod, arg.PaymentRef)
	var p Payment
	err := row.Scan(&p.OrderID, &p.PaidPrice, &p.PointsUsed, &p.PaymentMethod,
		&p.PaymentRef, &p.PaidTimestamp)
	return p, err
}

const getPaymentByOrder = `
SELECT order_id, paid_price, points_used, payment_method, payment_ref, paid_timestamp
FROM payments
WHERE order_id = $1
`

func (q *Queries) GetPaymentByOrder(ctx context.Context, orderID int64) (Payment, error) {
	row := q.db.QueryRow(ctx, getPaymentByOrder, orderID)
	var p Payment
	err := row.Scan(&p.OrderID, &p.PaidPrice, &p.PointsUsed, &p.PaymentMethod,
		&p.PaymentRef, &p.PaidTimestamp)
	return p, err
}

const listPayments = `
SELECT order_id, paid_price, points_used, payment_method, payment_ref, paid_timestamp
FROM payments
ORDER BY paid_timestamp DESC
LIMIT $1 OFFSET $2
`

type ListPaymentsParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListPayments(ctx context.Context, arg ListPaymentsParams) ([]Payment, error) {
	rows, err := q.db.Query(ctx, listPayments, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.OrderID, &p.PaidPrice, &p.PointsUsed, &p.PaymentMethod,
			&p.PaymentRef, &p.PaidTimestamp); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
