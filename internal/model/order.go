package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the closed set of order states. The UI may move an order
// between any two states, so no transition table is enforced here.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in-progress"
	OrderStatusCompleted  OrderStatus = "completed"
)

// Valid reports whether s is one of the known statuses
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted:
		return true
	}
	return false
}

// Order is a production order. TotalCost is a snapshot taken by the pricing
// resolver when the order is created or edited; later Material price changes
// do not rewrite it. OrderNumber is free text and carries no uniqueness.
type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber string          `gorm:"type:varchar(100);not null;index" json:"order_number"`
	Products    []OrderProduct  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"products"`
	Status      OrderStatus     `gorm:"type:varchar(50);not null;default:'pending'" json:"status"`
	TotalCost   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_cost"`
	Leftovers   []OrderLeftover `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"leftovers"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// OrderProduct is one order line. ProductID is by-reference like
// ProductMaterial.MaterialID: dangling ids contribute zero cost.
type OrderProduct struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int       `gorm:"type:int;not null" json:"quantity"`
	Position  int       `gorm:"type:int;not null;default:0" json:"-"`
}

// OrderLeftover records material left over after fulfilling an order,
// as reported by the user. No arithmetic is derived from it.
type OrderLeftover struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	MaterialID uuid.UUID       `gorm:"type:uuid;not null;index" json:"material_id"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Position   int             `gorm:"type:int;not null;default:0" json:"-"`
}
