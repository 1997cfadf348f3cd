package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente is the buyer a Venta belongs to. It cannot be deleted while any
// venta references it.
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"type:varchar(120);not null"`
	Email     *string   `gorm:"type:varchar(254)"`
	Telefono  *string   `gorm:"type:varchar(20)"`
	Activo    bool      `gorm:"not null"`
	CreatedAt time.Time
}
