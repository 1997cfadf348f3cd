package repository

import (
	"ventas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DetalleVentaRepository only works inside a transaction: every line-item
// write goes together with a stock adjustment.
type DetalleVentaRepository interface {
	CreateTx(tx *gorm.DB, d *model.DetalleVenta) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.DetalleVenta, error)
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.DetalleVenta, error)
	ListByVentaTx(tx *gorm.DB, ventaID uuid.UUID) ([]model.DetalleVenta, error)
	UpdateTx(tx *gorm.DB, d *model.DetalleVenta) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
}

type detalleVentaRepo struct{}

func NewDetalleVentaRepository() DetalleVentaRepository { return &detalleVentaRepo{} }

func (r *detalleVentaRepo) CreateTx(tx *gorm.DB, d *model.DetalleVenta) error {
	return tx.Omit(clause.Associations).Create(d).Error
}

func (r *detalleVentaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.DetalleVenta, error) {
	var d model.DetalleVenta
	err := tx.First(&d, "id = ?", id).Error
	return &d, err
}

func (r *detalleVentaRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.DetalleVenta, error) {
	var d model.DetalleVenta
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&d, "id = ?", id).Error
	return &d, err
}

// ListByVentaTx returns the detalles ordered by producto_id, the order in
// which callers lock product rows.
func (r *detalleVentaRepo) ListByVentaTx(tx *gorm.DB, ventaID uuid.UUID) ([]model.DetalleVenta, error) {
	var detalles []model.DetalleVenta
	err := tx.Where("venta_id = ?", ventaID).Order("producto_id, id").Find(&detalles).Error
	return detalles, err
}

func (r *detalleVentaRepo) UpdateTx(tx *gorm.DB, d *model.DetalleVenta) error {
	return tx.Model(d).Select("cantidad", "precio_unitario").Updates(map[string]interface{}{
		"cantidad":        d.Cantidad,
		"precio_unitario": d.PrecioUnitario,
	}).Error
}

func (r *detalleVentaRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.DetalleVenta{}, "id = ?", id).Error
}
