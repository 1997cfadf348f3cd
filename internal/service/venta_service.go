package service

import (
	"bytes"
	"context"
	"sort"

	"ventas/internal/apperror"
	"ventas/internal/dto"
	"ventas/internal/model"
	"ventas/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaService interface {
	CrearVenta(ctx context.Context, req dto.CrearVentaRequest) (*dto.VentaResponse, error)
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	tx       repository.TxRunner
	repo     repository.VentaRepository
	clientes repository.ClienteRepository
	ledger   StockLedger
	cache    *ProductoCache
}

func NewVentaService(
	tx repository.TxRunner,
	repo repository.VentaRepository,
	clientes repository.ClienteRepository,
	ledger StockLedger,
	cache *ProductoCache,
) VentaService {
	return &ventaService{tx: tx, repo: repo, clientes: clientes, ledger: ledger, cache: cache}
}

// ── CrearVenta ────────────────────────────────────────────────────────────────
// Order entry in one transaction:
//   1. Check the cliente exists
//   2. Insert the venta header (Fecha set here, never again)
//   3. For each item, in producto_id order: lock product, take stock, insert detalle
// Any failing item rolls back the whole venta.

func (s *ventaService) CrearVenta(ctx context.Context, req dto.CrearVentaRequest) (*dto.VentaResponse, error) {
	if err := validar(req); err != nil {
		return nil, err
	}

	var venta model.Venta
	err := runTx(ctx, s.tx, func(tx *gorm.DB) error {
		if _, err := s.clientes.FindByIDTx(tx, req.ClienteID); err != nil {
			return lookupErr(err, "cliente", req.ClienteID)
		}

		venta = model.Venta{
			ClienteID:     req.ClienteID,
			Observaciones: req.Observaciones,
		}
		if err := s.repo.CreateTx(tx, &venta); err != nil {
			return err
		}

		for _, item := range itemsPorProducto(req.Items) {
			if _, err := s.ledger.CrearDetalleTx(tx, &venta, item.ProductoID, item.Cantidad, item.PrecioUnitario); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductoID)
	}
	s.cache.Invalidar(ctx, ids...)

	return s.ObtenerVenta(ctx, venta.ID)
}

// itemsPorProducto returns the items sorted by producto_id, the order in which
// product rows are locked.
func itemsPorProducto(items []dto.ItemVentaRequest) []dto.ItemVentaRequest {
	out := append([]dto.ItemVentaRequest(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return bytes.Compare(out[i].ProductoID[:], out[j].ProductoID[:]) < 0
	})
	return out
}

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fromLookup(err, "venta", id)
	}
	return ventaToResponse(v), nil
}

// ListarVentas returns a page of sales, newest first.
func (s *ventaService) ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if err := validar(filter); err != nil {
		return nil, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.FromStore(err)
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	detalles := make([]dto.DetalleVentaResponse, 0, len(v.Detalles))
	for i := range v.Detalles {
		detalles = append(detalles, *detalleToResponse(&v.Detalles[i]))
	}
	cliente := ""
	if v.Cliente != nil {
		cliente = v.Cliente.Nombre
	}
	return &dto.VentaResponse{
		ID:            v.ID.String(),
		ClienteID:     v.ClienteID.String(),
		Cliente:       cliente,
		Fecha:         v.Fecha,
		Estado:        v.Estado(),
		Anulada:       v.Anulada,
		Observaciones: v.Observaciones,
		Detalles:      detalles,
		Total:         v.Total(),
		CantidadItems: v.CantidadItems(),
	}
}

func detalleToResponse(d *model.DetalleVenta) *dto.DetalleVentaResponse {
	nombre := ""
	if d.Producto != nil {
		nombre = d.Producto.Nombre
	}
	return &dto.DetalleVentaResponse{
		ID:             d.ID.String(),
		VentaID:        d.VentaID.String(),
		ProductoID:     d.ProductoID.String(),
		Producto:       nombre,
		Cantidad:       d.Cantidad,
		PrecioUnitario: d.PrecioUnitario,
		Subtotal:       d.Subtotal(),
	}
}
