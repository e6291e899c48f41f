package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusUnpaid    = "UNPAID"
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "CANCELLED"
)

const (
	OrderItemStatusPreparing = "PREPARING"
	OrderItemStatusDone      = "DONE"
	OrderItemStatusCancelled = "CANCELLED"
)

// ── Group B: Domain enums (CHECK constrained in DB) ──

const (
	OrderTypeDineIn   = "DINE_IN"
	OrderTypeTakeaway = "TAKEAWAY"
	OrderTypeDelivery = "DELIVERY"
)

const (
	PaymentMethodCash   = "CASH"
	PaymentMethodCard   = "CARD"
	PaymentMethodQR     = "QR"
	PaymentMethodPoints = "POINTS"
)

const (
	MovementReasonRestock = "RESTOCK"
	MovementReasonSale    = "SALE"
	MovementReasonWaste   = "WASTE"
	MovementReasonAdjust  = "ADJUST"
)

// ── Group C: Configurable labels (no DB constraint) ──

// MenuTypeSet items are always sold as available; the menu handlers force
// is_available=true for this type.
const (
	MenuTypeSet      = "Set"
	MenuTypeALaCarte = "A La Carte"
	MenuTypeDrink    = "Drink"
	MenuTypeDessert  = "Dessert"
)
