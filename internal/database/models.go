package database

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type Branch struct {
	BranchID  int64
	Name      string
	Address   string
	Phone     string
	IsDeleted bool
	CreatedAt time.Time
}

type Role struct {
	RoleID    int64
	RoleName  string
	Seniority int32
}

type Employee struct {
	EmployeeID int64
	BranchID   int64
	RoleID     int64
	FirstName  string
	LastName   string
	Salary     pgtype.Numeric
	JoinedDate pgtype.Date
	IsDeleted  bool
}

type Tier struct {
	TierID    int64
	TierName  string
	TierLevel int32
}

type Membership struct {
	MembershipID  int64
	TierID        int64
	Name          string
	Phone         string
	Email         pgtype.Text
	PointsBalance int32
	JoinedAt      time.Time
}

type Ingredient struct {
	IngredientID int64
	Name         string
	BaseUnit     string
	IsDeleted    bool
}

type MenuItem struct {
	MenuItemID  int64
	Name        string
	Type        string
	Description pgtype.Text
	Price       pgtype.Numeric
	Category    pgtype.Text
	IsAvailable bool
}

type Recipe struct {
	RecipeID     int64
	MenuItemID   int64
	IngredientID int64
	QtyPerUnit   pgtype.Numeric
}

type Stock struct {
	StockID         int64
	BranchID        int64
	IngredientID    int64
	AmountRemaining pgtype.Numeric
	IsDeleted       bool
}

type Order struct {
	OrderID        int64
	BranchID       int64
	EmployeeID     int64
	MembershipID   pgtype.Int8
	OrderType      string
	Status         string
	TotalPrice     pgtype.Numeric
	OrderTimestamp time.Time
}

type OrderItem struct {
	OrderItemID int64
	OrderID     int64
	MenuItemID  int64
	Quantity    int32
	UnitPrice   pgtype.Numeric
	LineTotal   pgtype.Numeric
	Status      string
}

type Payment struct {
	OrderID       int64
	PaidPrice     pgtype.Numeric
	PointsUsed    int32
	PaymentMethod string
	PaymentRef    pgtype.Text
	PaidTimestamp time.Time
}

type StockMovement struct {
	MovementID int64
	StockID    int64
	EmployeeID pgtype.Int8
	OrderID    pgtype.Int8
	QtyChange  pgtype.Numeric
	Reason     string
	Note       pgtype.Text
	CreatedAt  time.Time
}
