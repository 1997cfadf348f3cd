package dto

import "time"

type MovimientoStockFilter struct {
	Tipo  string `json:"tipo"`
	Page  int    `json:"page"  validate:"min=0"`
	Limit int    `json:"limit" validate:"min=0,max=500"`
}

type MovimientoStockResponse struct {
	ID            string    `json:"id"`
	ProductoID    string    `json:"producto_id"`
	Tipo          string    `json:"tipo"`
	Cantidad      int       `json:"cantidad"`
	StockAnterior int       `json:"stock_anterior"`
	StockNuevo    int       `json:"stock_nuevo"`
	Motivo        string    `json:"motivo"`
	ReferenciaID  *string   `json:"referencia_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type MovimientoStockListResponse struct {
	Data  []MovimientoStockResponse `json:"data"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}
