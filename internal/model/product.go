package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a manufactured item defined by its bill of materials.
type Product struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string            `gorm:"type:varchar(255);not null" json:"name"`
	Materials []ProductMaterial `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"materials"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProductMaterial is one bill-of-materials line. MaterialID is held by
// reference with no foreign-key constraint: a Material may be deleted out
// from under it, and the pricing resolver skips such dangling lines.
type ProductMaterial struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	MaterialID uuid.UUID       `gorm:"type:uuid;not null;index" json:"material_id"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Position   int             `gorm:"type:int;not null;default:0" json:"-"` // keeps the line order stable
}
