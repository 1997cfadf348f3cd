package service

import (
	"context"
	"fmt"

	"ventas/internal/apperror"
	"ventas/internal/dto"
	"ventas/internal/model"
	"ventas/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	// Eliminar fails with ErrReferentialIntegrity while any detalle references the product.
	Eliminar(ctx context.Context, id uuid.UUID) error
	PuedeVender(ctx context.Context, id uuid.UUID, cantidad int) (bool, error)
}

type productoService struct {
	tx          repository.TxRunner
	repo        repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
	cache       *ProductoCache
}

func NewProductoService(
	tx repository.TxRunner,
	repo repository.ProductoRepository,
	movimientos repository.MovimientoStockRepository,
	cache *ProductoCache,
) ProductoService {
	return &productoService{tx: tx, repo: repo, movimientos: movimientos, cache: cache}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if err := validar(req); err != nil {
		return nil, err
	}
	activo := true
	if req.Activo != nil {
		activo = *req.Activo
	}
	p := &model.Producto{
		Nombre: req.Nombre,
		SKU:    req.SKU,
		Precio: req.Precio,
		Stock:  req.Stock,
		Activo: activo,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperror.FromStore(err)
	}
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	if p, ok := s.cache.Get(ctx, id); ok {
		return productoToResponse(p), nil
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fromLookup(err, "producto", id)
	}
	s.cache.Set(ctx, p)
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if err := validar(filter); err != nil {
		return nil, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.FromStore(err)
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, *productoToResponse(&productos[i]))
	}
	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &dto.ProductoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// Actualizar edits nombre, precio, stock and activo. Existing detalles keep
// the price they captured. A stock edit is journaled as ajuste_manual.
func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	if err := validar(req); err != nil {
		return nil, err
	}

	var actualizado *model.Producto
	err := runTx(ctx, s.tx, func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return lookupErr(err, "producto", id)
		}
		if req.Nombre != nil {
			p.Nombre = *req.Nombre
		}
		if req.Precio != nil {
			p.Precio = *req.Precio
		}
		if req.Activo != nil {
			p.Activo = *req.Activo
		}
		if req.Stock != nil && *req.Stock != p.Stock {
			motivo := req.Motivo
			if motivo == "" {
				motivo = fmt.Sprintf("Ajuste manual %d → %d", p.Stock, *req.Stock)
			}
			mov := &model.MovimientoStock{
				ProductoID:    p.ID,
				Tipo:          model.MovimientoAjusteManual,
				Cantidad:      *req.Stock - p.Stock,
				StockAnterior: p.Stock,
				StockNuevo:    *req.Stock,
				Motivo:        motivo,
			}
			if err := s.movimientos.CreateTx(tx, mov); err != nil {
				return err
			}
			p.Stock = *req.Stock
		}
		if err := s.repo.UpdateTx(tx, p); err != nil {
			return err
		}
		actualizado = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidar(ctx, id)
	return productoToResponse(actualizado), nil
}

func (s *productoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fromLookup(err, "producto", id)
	}
	s.cache.Invalidar(ctx, id)
	return nil
}

// PuedeVender reads the product fresh from the store, bypassing the cache.
func (s *productoService) PuedeVender(ctx context.Context, id uuid.UUID, cantidad int) (bool, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, fromLookup(err, "producto", id)
	}
	return p.PuedeVender(cantidad), nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:          p.ID.String(),
		Nombre:      p.Nombre,
		SKU:         p.SKU,
		Precio:      p.Precio,
		Stock:       p.Stock,
		Activo:      p.Activo,
		Creado:      p.CreatedAt,
		Actualizado: p.UpdatedAt,
	}
}
