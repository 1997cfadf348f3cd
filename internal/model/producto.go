package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a sellable item. Stock counts units not yet committed to a
// non-voided sale and never drops below zero.
type Producto struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string          `gorm:"type:varchar(120);index;not null"`
	SKU       string          `gorm:"column:sku;type:varchar(50);uniqueIndex;not null"`
	Precio    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock     int             `gorm:"not null;default:0"`
	Activo    bool            `gorm:"not null"` // no gorm default: an explicit false must reach the INSERT
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PuedeVender reports whether cantidad units can be sold right now.
func (p *Producto) PuedeVender(cantidad int) bool {
	return p.Activo && p.Stock >= cantidad
}
