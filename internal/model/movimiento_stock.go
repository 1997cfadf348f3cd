package model

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de MovimientoStock.
const (
	MovimientoVenta            = "venta"             // line item created
	MovimientoAjusteDetalle    = "ajuste_detalle"    // line item quantity changed
	MovimientoDevolucion       = "devolucion"        // line item deleted
	MovimientoRestoreAnulacion = "restore_anulacion" // sale voided
	MovimientoEliminacionVenta = "eliminacion_venta" // open sale deleted
	MovimientoAjusteManual     = "ajuste_manual"     // stock edited on the product
)

// MovimientoStock registra cada cambio de stock en un producto.
// Rows are append-only; every ledger adjustment writes exactly one.
type MovimientoStock struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo          string    `gorm:"type:varchar(30);not null"`
	Cantidad      int       `gorm:"not null"` // positive = entrada, negative = salida
	StockAnterior int       `gorm:"not null"`
	StockNuevo    int       `gorm:"not null"`
	Motivo        string
	ReferenciaID  *uuid.UUID `gorm:"type:uuid;index"` // venta_id when applicable
	CreatedAt     time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
