// Package apperror defines the error kinds the stock ledger reports to its
// callers. Every error leaving a service is either one of the sentinels below
// or wraps one, so callers branch with errors.Is and never inspect store errors.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidInput         = errors.New("datos inválidos")
	ErrInvalidQuantity      = errors.New("cantidad inválida")
	ErrInvalidPrice         = errors.New("precio inválido")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrReferentialIntegrity = errors.New("el registro está referenciado por otros registros")
	ErrNotFound             = errors.New("registro no encontrado")
	ErrTransactionFailure   = errors.New("la transacción falló")
	ErrVentaAnulada         = errors.New("la venta está anulada")
	ErrDuplicado            = errors.New("registro duplicado")
)

// kinds lists the sentinels FromStore passes through untouched.
var kinds = []error{
	ErrInvalidInput,
	ErrInvalidQuantity,
	ErrInvalidPrice,
	ErrInsufficientStock,
	ErrReferentialIntegrity,
	ErrNotFound,
	ErrTransactionFailure,
	ErrVentaAnulada,
	ErrDuplicado,
}

// InsufficientStockError carries the numbers behind an ErrInsufficientStock.
type InsufficientStockError struct {
	ProductoID uuid.UUID
	Disponible int
	Requerido  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s: disponible %d, requerido %d",
		e.ProductoID, e.Disponible, e.Requerido)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ValidationError wraps multiple field errors. Kind is the sentinel it
// matches under errors.Is.
type ValidationError struct {
	Detail string
	Fields map[string]string
	Kind   error
}

func NewValidation(kind error, fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields, Kind: kind}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, f := range names {
		parts = append(parts, f+"="+e.Fields[f])
	}
	return fmt.Sprintf("%s: %s (%s)", e.Detail, e.Kind, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// NotFound builds an ErrNotFound naming the missing entity.
func NotFound(entidad string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", entidad, id, ErrNotFound)
}

// IsKind reports whether err already carries one of the ledger error kinds.
func IsKind(err error) bool {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

// FromStore classifies an error returned by gorm. The DB must be opened with
// TranslateError so constraint violations arrive as gorm sentinels.
func FromStore(err error) error {
	switch {
	case err == nil:
		return nil
	case IsKind(err):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrReferentialIntegrity, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicado, err)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: %v", ErrTransactionFailure, err)
	}
}
