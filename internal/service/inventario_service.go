package service

import (
	"context"

	"ventas/internal/apperror"
	"ventas/internal/dto"
	"ventas/internal/repository"

	"github.com/google/uuid"
)

// InventarioService exposes the stock movement journal written by the ledger.
type InventarioService interface {
	HistorialStock(ctx context.Context, productoID uuid.UUID, filter dto.MovimientoStockFilter) (*dto.MovimientoStockListResponse, error)
}

type inventarioService struct {
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
}

func NewInventarioService(productos repository.ProductoRepository, movimientos repository.MovimientoStockRepository) InventarioService {
	return &inventarioService{productos: productos, movimientos: movimientos}
}

// HistorialStock lists a product's movements, newest first.
func (s *inventarioService) HistorialStock(ctx context.Context, productoID uuid.UUID, filter dto.MovimientoStockFilter) (*dto.MovimientoStockListResponse, error) {
	if err := validar(filter); err != nil {
		return nil, err
	}
	if _, err := s.productos.FindByID(ctx, productoID); err != nil {
		return nil, fromLookup(err, "producto", productoID)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}

	movs, total, err := s.movimientos.List(ctx, repository.MovimientoStockFilter{
		ProductoID: &productoID,
		Tipo:       filter.Tipo,
		Page:       filter.Page,
		Limit:      filter.Limit,
	})
	if err != nil {
		return nil, apperror.FromStore(err)
	}

	data := make([]dto.MovimientoStockResponse, 0, len(movs))
	for _, m := range movs {
		var ref *string
		if m.ReferenciaID != nil {
			r := m.ReferenciaID.String()
			ref = &r
		}
		data = append(data, dto.MovimientoStockResponse{
			ID:            m.ID.String(),
			ProductoID:    m.ProductoID.String(),
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
			ReferenciaID:  ref,
			CreatedAt:     m.CreatedAt,
		})
	}
	return &dto.MovimientoStockListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}
