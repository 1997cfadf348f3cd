package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre string          `json:"nombre" validate:"required,min=2,max=120"`
	SKU    string          `json:"sku"    validate:"required,max=50"`
	Precio decimal.Decimal `json:"precio" validate:"min=0"`
	Stock  int             `json:"stock"  validate:"min=0"`
	// Activo defaults to true when nil
	Activo *bool `json:"activo"`
}

// ActualizarProductoRequest mirrors the editable columns of the product list:
// precio, stock and activo. A stock change is journaled as ajuste_manual.
type ActualizarProductoRequest struct {
	Nombre *string          `json:"nombre" validate:"omitempty,min=2,max=120"`
	Precio *decimal.Decimal `json:"precio" validate:"omitempty,min=0"`
	Stock  *int             `json:"stock"  validate:"omitempty,min=0"`
	Activo *bool            `json:"activo"`
	Motivo string           `json:"motivo" validate:"max=200"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

// ProductoFilter searches by nombre or SKU. Activo: "false" = inactivos,
// "all" = todos, anything else = activos.
type ProductoFilter struct {
	Busqueda string `json:"busqueda"`
	Activo   string `json:"activo"`
	Page     int    `json:"page"  validate:"min=0"`
	Limit    int    `json:"limit" validate:"min=0,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID          string          `json:"id"`
	Nombre      string          `json:"nombre"`
	SKU         string          `json:"sku"`
	Precio      decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
	Activo      bool            `json:"activo"`
	Creado      time.Time       `json:"creado"`
	Actualizado time.Time       `json:"actualizado"`
}

type ProductoListResponse struct {
	Data       []ProductoResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
