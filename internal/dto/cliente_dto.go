package dto

import "time"

type CrearClienteRequest struct {
	Nombre   string  `json:"nombre"   validate:"required,min=2,max=120"`
	Email    *string `json:"email"    validate:"omitempty,email,max=254"`
	Telefono *string `json:"telefono" validate:"omitempty,max=20"`
}

type ClienteFilter struct {
	Nombre string `json:"nombre"`
	Page   int    `json:"page"  validate:"min=0"`
	Limit  int    `json:"limit" validate:"min=0,max=100"`
}

type ClienteResponse struct {
	ID       string    `json:"id"`
	Nombre   string    `json:"nombre"`
	Email    *string   `json:"email"`
	Telefono *string   `json:"telefono"`
	Activo   bool      `json:"activo"`
	Creado   time.Time `json:"creado"`
}
