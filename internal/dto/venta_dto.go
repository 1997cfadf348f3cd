package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter narrows ListarVentas. Nil pointers mean "no filter".
type VentaFilter struct {
	ClienteID *uuid.UUID `json:"cliente_id"`
	Anulada   *bool      `json:"anulada"`
	Desde     *time.Time `json:"desde"`
	Hasta     *time.Time `json:"hasta"`
	Page      int        `json:"page"  validate:"min=0"`
	Limit     int        `json:"limit" validate:"min=0,max=200"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemVentaRequest is one line of a CrearVentaRequest. A nil PrecioUnitario
// captures the product's current price.
type ItemVentaRequest struct {
	ProductoID     uuid.UUID        `json:"producto_id"     validate:"uuid_required"`
	Cantidad       int              `json:"cantidad"        validate:"min=1"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario" validate:"omitempty,min=0"`
}

type CrearVentaRequest struct {
	ClienteID     uuid.UUID          `json:"cliente_id"    validate:"uuid_required"`
	Observaciones *string            `json:"observaciones"`
	Items         []ItemVentaRequest `json:"items"         validate:"dive"`
}

// CrearDetalleRequest adds a line item to an existing sale.
type CrearDetalleRequest struct {
	VentaID        uuid.UUID       `json:"venta_id"        validate:"uuid_required"`
	ProductoID     uuid.UUID       `json:"producto_id"     validate:"uuid_required"`
	Cantidad       int             `json:"cantidad"        validate:"min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
}

type ActualizarDetalleRequest struct {
	Cantidad       int             `json:"cantidad"        validate:"min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleVentaResponse struct {
	ID             string          `json:"id"`
	VentaID        string          `json:"venta_id"`
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID            string                 `json:"id"`
	ClienteID     string                 `json:"cliente_id"`
	Cliente       string                 `json:"cliente"`
	Fecha         time.Time              `json:"fecha"`
	Estado        string                 `json:"estado"`
	Anulada       bool                   `json:"anulada"`
	Observaciones *string                `json:"observaciones"`
	Detalles      []DetalleVentaResponse `json:"detalles"`
	Total         decimal.Decimal        `json:"total"`
	CantidadItems int                    `json:"cantidad_items"`
}
