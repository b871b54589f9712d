package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Material is a raw input to production: price per unit plus the quantity on hand.
// Unit is a free-text label (kg, m, pcs) chosen by the user.
type Material struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Cost      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"cost"`
	Unit      string          `gorm:"type:varchar(50);not null" json:"unit"`
	Stock     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"stock"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}
