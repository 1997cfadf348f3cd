package service_test

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"ventas/internal/dto"
	"ventas/internal/model"
	"ventas/internal/repository"
	"ventas/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store ───────────────────────────────────────────────────────────
// Rows are stored by value and handed out as copies, so a service can only
// change the store through repository calls. stubTx snapshots the store and
// restores it when the transaction function fails.

type memStore struct {
	productos   map[uuid.UUID]model.Producto
	clientes    map[uuid.UUID]model.Cliente
	ventas      map[uuid.UUID]model.Venta
	detalles    map[uuid.UUID]model.DetalleVenta
	movimientos []model.MovimientoStock

	// UpdateStockTx fails for these products, simulating a lost connection.
	fallarStock map[uuid.UUID]bool
	// bloqueos records every product row locked, in order.
	bloqueos []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		productos:   make(map[uuid.UUID]model.Producto),
		clientes:    make(map[uuid.UUID]model.Cliente),
		ventas:      make(map[uuid.UUID]model.Venta),
		detalles:    make(map[uuid.UUID]model.DetalleVenta),
		fallarStock: make(map[uuid.UUID]bool),
	}
}

type snapshot struct {
	productos   map[uuid.UUID]model.Producto
	clientes    map[uuid.UUID]model.Cliente
	ventas      map[uuid.UUID]model.Venta
	detalles    map[uuid.UUID]model.DetalleVenta
	movimientos []model.MovimientoStock
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() snapshot {
	return snapshot{
		productos:   copyMap(s.productos),
		clientes:    copyMap(s.clientes),
		ventas:      copyMap(s.ventas),
		detalles:    copyMap(s.detalles),
		movimientos: append([]model.MovimientoStock(nil), s.movimientos...),
	}
}

func (s *memStore) restore(snap snapshot) {
	s.productos = snap.productos
	s.clientes = snap.clientes
	s.ventas = snap.ventas
	s.detalles = snap.detalles
	s.movimientos = snap.movimientos
}

func (s *memStore) stock(id uuid.UUID) int { return s.productos[id].Stock }

// detallesDe returns the lines of a venta ordered the way ListByVentaTx does.
func (s *memStore) detallesDe(ventaID uuid.UUID) []model.DetalleVenta {
	var out []model.DetalleVenta
	for _, d := range s.detalles {
		if d.VentaID == ventaID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := bytes.Compare(out[i].ProductoID[:], out[j].ProductoID[:]); c != 0 {
			return c < 0
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out
}

func (s *memStore) movimientosDe(productoID uuid.UUID) []model.MovimientoStock {
	var out []model.MovimientoStock
	for _, m := range s.movimientos {
		if m.ProductoID == productoID {
			out = append(out, m)
		}
	}
	return out
}

type stubTx struct{ s *memStore }

func (t *stubTx) RunTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	snap := t.s.snapshot()
	if err := fn(nil); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// ── Producto ──────────────────────────────────────────────────────────────────

type stubProductoRepo struct{ s *memStore }

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	for _, o := range r.s.productos {
		if o.SKU == p.SKU {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.productos[p.ID] = *p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.s.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *stubProductoRepo) List(_ context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.s.productos {
		switch filter.Activo {
		case "false":
			if p.Activo {
				continue
			}
		case "all":
		default:
			if !p.Activo {
				continue
			}
		}
		if b := strings.ToLower(filter.Busqueda); b != "" &&
			!strings.Contains(strings.ToLower(p.Nombre), b) && !strings.Contains(strings.ToLower(p.SKU), b) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return paginar(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func (r *stubProductoRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.s.productos[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, d := range r.s.detalles {
		if d.ProductoID == id {
			return gorm.ErrForeignKeyViolated
		}
	}
	delete(r.s.productos, id)
	kept := r.s.movimientos[:0]
	for _, m := range r.s.movimientos {
		if m.ProductoID != id {
			kept = append(kept, m)
		}
	}
	r.s.movimientos = kept
	return nil
}

func (r *stubProductoRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	r.s.bloqueos = append(r.s.bloqueos, id)
	return r.FindByID(context.Background(), id)
}

func (r *stubProductoRepo) UpdateTx(_ *gorm.DB, p *model.Producto) error {
	if _, ok := r.s.productos[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	p.UpdatedAt = time.Now()
	r.s.productos[p.ID] = *p
	return nil
}

func (r *stubProductoRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	if r.s.fallarStock[id] {
		return errors.New("conexión perdida")
	}
	p, ok := r.s.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if p.Stock+delta < 0 {
		return gorm.ErrCheckConstraintViolated
	}
	p.Stock += delta
	r.s.productos[id] = p
	return nil
}

// ── Cliente ───────────────────────────────────────────────────────────────────

type stubClienteRepo struct{ s *memStore }

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	r.s.clientes[c.ID] = *c
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.s.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *stubClienteRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Cliente, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubClienteRepo) List(_ context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error) {
	var out []model.Cliente
	for _, c := range r.s.clientes {
		if filter.Nombre != "" && !strings.Contains(strings.ToLower(c.Nombre), strings.ToLower(filter.Nombre)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return paginar(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func (r *stubClienteRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.s.clientes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, v := range r.s.ventas {
		if v.ClienteID == id {
			return gorm.ErrForeignKeyViolated
		}
	}
	delete(r.s.clientes, id)
	return nil
}

// ── Venta ─────────────────────────────────────────────────────────────────────

type stubVentaRepo struct{ s *memStore }

// cargar mimics Preload("Cliente").Preload("Detalles.Producto").
func (r *stubVentaRepo) cargar(v model.Venta) model.Venta {
	if c, ok := r.s.clientes[v.ClienteID]; ok {
		v.Cliente = &c
	}
	v.Detalles = r.s.detallesDe(v.ID)
	for i := range v.Detalles {
		if p, ok := r.s.productos[v.Detalles[i].ProductoID]; ok {
			v.Detalles[i].Producto = &p
		}
	}
	return v
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.s.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	v = r.cargar(v)
	return &v, nil
}

func (r *stubVentaRepo) List(_ context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range r.s.ventas {
		if filter.ClienteID != nil && v.ClienteID != *filter.ClienteID {
			continue
		}
		if filter.Anulada != nil && v.Anulada != *filter.Anulada {
			continue
		}
		if filter.Desde != nil && v.Fecha.Before(*filter.Desde) {
			continue
		}
		if filter.Hasta != nil && !v.Fecha.Before(*filter.Hasta) {
			continue
		}
		out = append(out, r.cargar(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha.After(out[j].Fecha) })
	return paginar(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func (r *stubVentaRepo) CreateTx(_ *gorm.DB, v *model.Venta) error {
	if _, ok := r.s.clientes[v.ClienteID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Fecha.IsZero() {
		v.Fecha = time.Now()
	}
	row := *v
	row.Cliente, row.Detalles = nil, nil
	r.s.ventas[v.ID] = row
	return nil
}

func (r *stubVentaRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.s.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func (r *stubVentaRepo) MarcarAnuladaTx(_ *gorm.DB, id uuid.UUID) error {
	v, ok := r.s.ventas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Anulada = true
	r.s.ventas[id] = v
	return nil
}

func (r *stubVentaRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.s.ventas, id)
	for did, d := range r.s.detalles {
		if d.VentaID == id {
			delete(r.s.detalles, did)
		}
	}
	return nil
}

// ── DetalleVenta ──────────────────────────────────────────────────────────────

type stubDetalleRepo struct{ s *memStore }

func (r *stubDetalleRepo) CreateTx(_ *gorm.DB, d *model.DetalleVenta) error {
	if _, ok := r.s.ventas[d.VentaID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if _, ok := r.s.productos[d.ProductoID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	row := *d
	row.Producto = nil
	r.s.detalles[d.ID] = row
	return nil
}

func (r *stubDetalleRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.DetalleVenta, error) {
	d, ok := r.s.detalles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (r *stubDetalleRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.DetalleVenta, error) {
	return r.FindByIDTx(tx, id)
}

func (r *stubDetalleRepo) ListByVentaTx(_ *gorm.DB, ventaID uuid.UUID) ([]model.DetalleVenta, error) {
	return r.s.detallesDe(ventaID), nil
}

func (r *stubDetalleRepo) UpdateTx(_ *gorm.DB, d *model.DetalleVenta) error {
	row, ok := r.s.detalles[d.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.Cantidad = d.Cantidad
	row.PrecioUnitario = d.PrecioUnitario
	r.s.detalles[d.ID] = row
	return nil
}

func (r *stubDetalleRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.s.detalles, id)
	return nil
}

// ── MovimientoStock ───────────────────────────────────────────────────────────

type stubMovimientoRepo struct{ s *memStore }

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.s.movimientos = append(r.s.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, filter repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	var out []model.MovimientoStock
	for i := len(r.s.movimientos) - 1; i >= 0; i-- {
		m := r.s.movimientos[i]
		if filter.ProductoID != nil && m.ProductoID != *filter.ProductoID {
			continue
		}
		if filter.Tipo != "" && m.Tipo != filter.Tipo {
			continue
		}
		out = append(out, m)
	}
	return paginar(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func paginar[T any](rows []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return rows
	}
	start := (page - 1) * limit
	if start >= len(rows) {
		return nil
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// ── Fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	store      *memStore
	ledger     service.StockLedger
	ventas     service.VentaService
	productos  service.ProductoService
	clientes   service.ClienteService
	inventario service.InventarioService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newMemStore()
	tx := &stubTx{s: s}
	productoRepo := &stubProductoRepo{s: s}
	clienteRepo := &stubClienteRepo{s: s}
	ventaRepo := &stubVentaRepo{s: s}
	movRepo := &stubMovimientoRepo{s: s}

	// No Redis in unit tests: a nil cache is a no-op.
	cache := service.NewProductoCache(nil, time.Minute)
	ledger := service.NewStockLedger(tx, productoRepo, ventaRepo, &stubDetalleRepo{s: s}, movRepo, cache)
	return &fixture{
		store:      s,
		ledger:     ledger,
		ventas:     service.NewVentaService(tx, ventaRepo, clienteRepo, ledger, cache),
		productos:  service.NewProductoService(tx, productoRepo, movRepo, cache),
		clientes:   service.NewClienteService(clienteRepo),
		inventario: service.NewInventarioService(productoRepo, movRepo),
	}
}

func (f *fixture) producto(t *testing.T, nombre, precio string, stock int) model.Producto {
	t.Helper()
	p := model.Producto{
		ID:     uuid.New(),
		Nombre: nombre,
		SKU:    "SKU-" + nombre,
		Precio: decimal.RequireFromString(precio),
		Stock:  stock,
		Activo: true,
	}
	f.store.productos[p.ID] = p
	return p
}

func (f *fixture) cliente(t *testing.T, nombre string) model.Cliente {
	t.Helper()
	c := model.Cliente{ID: uuid.New(), Nombre: nombre, Activo: true, CreatedAt: time.Now()}
	f.store.clientes[c.ID] = c
	return c
}

// venta inserts an empty open sale for a fresh cliente.
func (f *fixture) venta(t *testing.T) model.Venta {
	t.Helper()
	c := f.cliente(t, "Cliente "+uuid.NewString()[:8])
	v := model.Venta{ID: uuid.New(), ClienteID: c.ID, Fecha: time.Now()}
	f.store.ventas[v.ID] = v
	return v
}

func (f *fixture) detalle(t *testing.T, ventaID, productoID uuid.UUID, cantidad int, precio string) *model.DetalleVenta {
	t.Helper()
	d, err := f.ledger.CrearDetalle(context.Background(), dto.CrearDetalleRequest{
		VentaID:        ventaID,
		ProductoID:     productoID,
		Cantidad:       cantidad,
		PrecioUnitario: decimal.RequireFromString(precio),
	})
	if err != nil {
		t.Fatalf("CrearDetalle: %v", err)
	}
	return d
}
