package service

import (
	"context"
	"errors"
	"fmt"

	"ventas/internal/apperror"
	"ventas/internal/dto"
	"ventas/internal/model"
	"ventas/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockLedger keeps Producto.Stock equal to the units not yet committed to a
// non-voided sale. Each operation runs in a single transaction and applies
// exactly one stock adjustment per line item it touches.
//
// Lock order is venta row first, then product rows in producto_id order.
type StockLedger interface {
	CrearDetalle(ctx context.Context, req dto.CrearDetalleRequest) (*model.DetalleVenta, error)
	ActualizarDetalle(ctx context.Context, id uuid.UUID, req dto.ActualizarDetalleRequest) (*model.DetalleVenta, error)
	EliminarDetalle(ctx context.Context, id uuid.UUID) error
	AnularVenta(ctx context.Context, ventaID uuid.UUID) error
	EliminarVenta(ctx context.Context, ventaID uuid.UUID) error
	PuedeVender(p *model.Producto, cantidad int) bool

	// CrearDetalleTx is called within a sale transaction. venta must already be
	// locked by tx. A nil precio captures the product's current price.
	CrearDetalleTx(tx *gorm.DB, venta *model.Venta, productoID uuid.UUID, cantidad int, precio *decimal.Decimal) (*model.DetalleVenta, error)
}

type stockLedger struct {
	tx          repository.TxRunner
	productos   repository.ProductoRepository
	ventas      repository.VentaRepository
	detalles    repository.DetalleVentaRepository
	movimientos repository.MovimientoStockRepository
	cache       *ProductoCache
}

func NewStockLedger(
	tx repository.TxRunner,
	productos repository.ProductoRepository,
	ventas repository.VentaRepository,
	detalles repository.DetalleVentaRepository,
	movimientos repository.MovimientoStockRepository,
	cache *ProductoCache,
) StockLedger {
	return &stockLedger{
		tx:          tx,
		productos:   productos,
		ventas:      ventas,
		detalles:    detalles,
		movimientos: movimientos,
		cache:       cache,
	}
}

// runTx executes fn in one transaction and classifies whatever comes out of
// it, so store errors reach the caller as apperror kinds.
func runTx(ctx context.Context, runner repository.TxRunner, fn func(tx *gorm.DB) error) error {
	return apperror.FromStore(runner.RunTx(ctx, fn))
}

// lookupErr names the entity when a lookup misses and leaves other store
// errors for FromStore.
func lookupErr(err error, entidad string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(entidad, id)
	}
	return err
}

// fromLookup is lookupErr for reads outside a transaction.
func fromLookup(err error, entidad string, id uuid.UUID) error {
	return apperror.FromStore(lookupErr(err, entidad, id))
}

func ventaAnulada(id uuid.UUID) error {
	return fmt.Errorf("venta %s: %w", id, apperror.ErrVentaAnulada)
}

// ── Stock adjustment ─────────────────────────────────────────────────────────

type ajuste struct {
	tipo    string
	delta   int // positive returns stock, negative takes it
	motivo  string
	ventaID uuid.UUID
}

// ajustarStockTx applies a.delta to p, whose row tx already holds locked, and
// journals the change. Stock never goes below zero.
func (s *stockLedger) ajustarStockTx(tx *gorm.DB, p *model.Producto, a ajuste) error {
	nuevo := p.Stock + a.delta
	if nuevo < 0 {
		return &apperror.InsufficientStockError{ProductoID: p.ID, Disponible: p.Stock, Requerido: -a.delta}
	}
	if err := s.productos.UpdateStockTx(tx, p.ID, a.delta); err != nil {
		return err
	}
	ref := a.ventaID
	mov := &model.MovimientoStock{
		ProductoID:    p.ID,
		Tipo:          a.tipo,
		Cantidad:      a.delta,
		StockAnterior: p.Stock,
		StockNuevo:    nuevo,
		Motivo:        a.motivo,
		ReferenciaID:  &ref,
	}
	if err := s.movimientos.CreateTx(tx, mov); err != nil {
		return err
	}
	log.Debug().
		Str("producto_id", p.ID.String()).
		Str("venta_id", a.ventaID.String()).
		Str("tipo", a.tipo).
		Int("delta", a.delta).
		Int("stock", nuevo).
		Msg("stock ajustado")
	p.Stock = nuevo
	return nil
}

// devolverStockTx returns the stock of every detalle of venta. Products are
// locked in producto_id order; several lines of one product share one row.
func (s *stockLedger) devolverStockTx(tx *gorm.DB, venta *model.Venta, tipo, motivo string) ([]uuid.UUID, error) {
	detalles, err := s.detalles.ListByVentaTx(tx, venta.ID)
	if err != nil {
		return nil, err
	}
	bloqueados := make(map[uuid.UUID]*model.Producto, len(detalles))
	ids := make([]uuid.UUID, 0, len(detalles))
	for _, d := range detalles {
		p, ok := bloqueados[d.ProductoID]
		if !ok {
			p, err = s.productos.FindByIDForUpdateTx(tx, d.ProductoID)
			if err != nil {
				return nil, lookupErr(err, "producto", d.ProductoID)
			}
			bloqueados[d.ProductoID] = p
			ids = append(ids, d.ProductoID)
		}
		if err := s.ajustarStockTx(tx, p, ajuste{tipo: tipo, delta: d.Cantidad, motivo: motivo, ventaID: venta.ID}); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// ── CrearDetalle ─────────────────────────────────────────────────────────────

func (s *stockLedger) CrearDetalle(ctx context.Context, req dto.CrearDetalleRequest) (*model.DetalleVenta, error) {
	if err := validar(req); err != nil {
		return nil, err
	}

	var detalle *model.DetalleVenta
	err := runTx(ctx, s.tx, func(tx *gorm.DB) error {
		venta, err := s.ventas.FindByIDForUpdateTx(tx, req.VentaID)
		if err != nil {
			return lookupErr(err, "venta", req.VentaID)
		}
		precio := req.PrecioUnitario
		detalle, err = s.CrearDetalleTx(tx, venta, req.ProductoID, req.Cantidad, &precio)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidar(ctx, req.ProductoID)
	return detalle, nil
}

func (s *stockLedger) CrearDetalleTx(tx *gorm.DB, venta *model.Venta, productoID uuid.UUID, cantidad int, precio *decimal.Decimal) (*model.DetalleVenta, error) {
	if venta.Anulada {
		return nil, ventaAnulada(venta.ID)
	}
	p, err := s.productos.FindByIDForUpdateTx(tx, productoID)
	if err != nil {
		return nil, lookupErr(err, "producto", productoID)
	}

	precioUnitario := p.Precio
	if precio != nil {
		precioUnitario = *precio
	}

	if err := s.ajustarStockTx(tx, p, ajuste{
		tipo:    model.MovimientoVenta,
		delta:   -cantidad,
		motivo:  fmt.Sprintf("Venta %s", venta.ID),
		ventaID: venta.ID,
	}); err != nil {
		return nil, err
	}

	d := &model.DetalleVenta{
		VentaID:        venta.ID,
		ProductoID:     productoID,
		Cantidad:       cantidad,
		PrecioUnitario: precioUnitario,
	}
	if err := s.detalles.CreateTx(tx, d); err != nil {
		return nil, err
	}
	d.Producto = p
	return d, nil
}

// ── ActualizarDetalle ────────────────────────────────────────────────────────

func (s *stockLedger) ActualizarDetalle(ctx context.Context, id uuid.UUID, req dto.ActualizarDetalleRequest) (*model.DetalleVenta, error) {
	if err := validar(req); err != nil {
		return nil, err
	}

	var detalle *model.DetalleVenta
	err := runTx(ctx, s.tx, func(tx *gorm.DB) error {
		d, err := s.lockDetalleTx(tx, id)
		if err != nil {
			return err
		}
		p, err := s.productos.FindByIDForUpdateTx(tx, d.ProductoID)
		if err != nil {
			return lookupErr(err, "producto", d.ProductoID)
		}

		if delta := req.Cantidad - d.Cantidad; delta != 0 {
			if err := s.ajustarStockTx(tx, p, ajuste{
				tipo:    model.MovimientoAjusteDetalle,
				delta:   -delta,
				motivo:  fmt.Sprintf("Ajuste detalle %s: %d → %d", d.ID, d.Cantidad, req.Cantidad),
				ventaID: d.VentaID,
			}); err != nil {
				return err
			}
		}

		d.Cantidad = req.Cantidad
		d.PrecioUnitario = req.PrecioUnitario
		if err := s.detalles.UpdateTx(tx, d); err != nil {
			return err
		}
		d.Producto = p
		detalle = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidar(ctx, detalle.ProductoID)
	return detalle, nil
}

// lockDetalleTx locks the owning venta, then the detalle, and refuses
// detalles of a voided venta: their stock has already been returned.
func (s *stockLedger) lockDetalleTx(tx *gorm.DB, id uuid.UUID) (*model.DetalleVenta, error) {
	actual, err := s.detalles.FindByIDTx(tx, id)
	if err != nil {
		return nil, lookupErr(err, "detalle de venta", id)
	}
	venta, err := s.ventas.FindByIDForUpdateTx(tx, actual.VentaID)
	if err != nil {
		return nil, lookupErr(err, "venta", actual.VentaID)
	}
	if venta.Anulada {
		return nil, ventaAnulada(venta.ID)
	}
	d, err := s.detalles.FindByIDForUpdateTx(tx, id)
	if err != nil {
		return nil, lookupErr(err, "detalle de venta", id)
	}
	return d, nil
}

// ── EliminarDetalle ──────────────────────────────────────────────────────────

func (s *stockLedger) EliminarDetalle(ctx context.Context, id uuid.UUID) error {
	var productoID uuid.UUID
	err := runTx(ctx, s.tx, func(tx *gorm.DB) error {
		d, err := s.lockDetalleTx(tx, id)
		if err != nil {
			return err
		}
		p, err := s.productos.FindByIDForUpdateTx(tx, d.ProductoID)
		if err != nil {
			return lookupErr(err, "producto", d.ProductoID)
		}
		if err := s.ajustarStockTx(tx, p, ajuste{
			tipo:    model.MovimientoDevolucion,
			delta:   d.Cantidad,
			motivo:  fmt.Sprintf("Eliminación detalle %s", d.ID),
			ventaID: d.VentaID,
		}); err != nil {
			return err
		}
		productoID = d.ProductoID
		return s.detalles.DeleteTx(tx, d.ID)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidar(ctx, productoID)
	return nil
}

// ── AnularVenta ──────────────────────────────────────────────────────────────

// AnularVenta returns the stock of every line and marks the venta voided.
// Detalles are kept as the historical record. Voiding a voided venta is a no-op.
func (s *stockLedger) AnularVenta(ctx context.Context, ventaID uuid.UUID) error {
	var tocados []uuid.UUID
	anulada := false
	err := runTx(ctx, s.tx, func(tx *gorm.DB) error {
		venta, err := s.ventas.FindByIDForUpdateTx(tx, ventaID)
		if err != nil {
			return lookupErr(err, "venta", ventaID)
		}
		if venta.Anulada {
			return nil
		}
		tocados, err = s.devolverStockTx(tx, venta, model.MovimientoRestoreAnulacion,
			fmt.Sprintf("Anulación venta %s", venta.ID))
		if err != nil {
			return err
		}
		if err := s.ventas.MarcarAnuladaTx(tx, ventaID); err != nil {
			return err
		}
		anulada = true
		return nil
	})
	if err != nil {
		return err
	}
	if anulada {
		log.Info().Str("venta_id", ventaID.String()).Int("productos", len(tocados)).Msg("venta anulada")
		s.cache.Invalidar(ctx, tocados...)
	}
	return nil
}

// ── EliminarVenta ────────────────────────────────────────────────────────────

// EliminarVenta deletes a venta and, through the FK cascade, its detalles.
// An open venta gives its stock back first; a voided one already did.
func (s *stockLedger) EliminarVenta(ctx context.Context, ventaID uuid.UUID) error {
	var tocados []uuid.UUID
	err := runTx(ctx, s.tx, func(tx *gorm.DB) error {
		venta, err := s.ventas.FindByIDForUpdateTx(tx, ventaID)
		if err != nil {
			return lookupErr(err, "venta", ventaID)
		}
		if !venta.Anulada {
			tocados, err = s.devolverStockTx(tx, venta, model.MovimientoEliminacionVenta,
				fmt.Sprintf("Eliminación venta %s", venta.ID))
			if err != nil {
				return err
			}
		}
		return s.ventas.DeleteTx(tx, ventaID)
	})
	if err != nil {
		return err
	}
	log.Info().Str("venta_id", ventaID.String()).Msg("venta eliminada")
	s.cache.Invalidar(ctx, tocados...)
	return nil
}

// PuedeVender is the pre-sale check callers run before CrearDetalle.
func (s *stockLedger) PuedeVender(p *model.Producto, cantidad int) bool {
	return p.PuedeVender(cantidad)
}
