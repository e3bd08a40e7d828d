package models

type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableOccupied  TableStatus = "OCCUPIED"
	TableReserved  TableStatus = "RESERVED"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved:
		return true
	}
	return false
}

type TabStatus string

const (
	TabOpen      TabStatus = "OPEN"
	TabClosed    TabStatus = "CLOSED"
	TabCancelled TabStatus = "CANCELLED"
)

func (s TabStatus) Valid() bool {
	switch s {
	case TabOpen, TabClosed, TabCancelled:
		return true
	}
	return false
}

// OrderStatus is shared by orders and their items.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPreparing OrderStatus = "PREPARING"
	OrderReady     OrderStatus = "READY"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReady, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentPix    PaymentMethod = "PIX"
	PaymentDebit  PaymentMethod = "DEBIT"
	PaymentCredit PaymentMethod = "CREDIT"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentPix, PaymentDebit, PaymentCredit:
		return true
	}
	return false
}

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleWaiter  Role = "WAITER"
	RoleKitchen Role = "KITCHEN"
)

// DiscountType selects how a closing discount value is read.
type DiscountType string

const (
	DiscountValue      DiscountType = "value"
	DiscountPercentage DiscountType = "percentage"
)

func (d DiscountType) Valid() bool {
	return d == DiscountValue || d == DiscountPercentage
}
