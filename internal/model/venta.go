package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta estados, derived from the Anulada flag.
const (
	EstadoAbierta = "abierta"
	EstadoAnulada = "anulada"
)

// Venta is a sale owned by a Cliente. Fecha is written once on insert.
// Anulada is terminal: there is no way back to an open sale.
type Venta struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteID     uuid.UUID `gorm:"type:uuid;index;not null"`
	Fecha         time.Time `gorm:"<-:create;autoCreateTime;index;not null"`
	Anulada       bool      `gorm:"not null;default:false;index"`
	Observaciones *string   `gorm:"type:text"`

	Cliente  *Cliente       `gorm:"foreignKey:ClienteID;constraint:OnDelete:RESTRICT"`
	Detalles []DetalleVenta `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`
}

// Estado returns "abierta" or "anulada".
func (v *Venta) Estado() string {
	if v.Anulada {
		return EstadoAnulada
	}
	return EstadoAbierta
}

// Total is the sum of the subtotals of the loaded detalles.
func (v *Venta) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range v.Detalles {
		total = total.Add(v.Detalles[i].Subtotal())
	}
	return total
}

// CantidadItems is the sum of the quantities of the loaded detalles.
func (v *Venta) CantidadItems() int {
	n := 0
	for i := range v.Detalles {
		n += v.Detalles[i].Cantidad
	}
	return n
}

// DetalleVenta is one line of a Venta. PrecioUnitario is the price captured
// when the line was written; later changes to Producto.Precio do not touch it.
type DetalleVenta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:RESTRICT"`
}

// TableName overrides GORM's default pluralization (detalle_venta → detalles_venta).
func (DetalleVenta) TableName() string { return "detalles_venta" }

// Subtotal is Cantidad × PrecioUnitario.
func (d *DetalleVenta) Subtotal() decimal.Decimal {
	return d.PrecioUnitario.Mul(decimal.NewFromInt(int64(d.Cantidad)))
}
