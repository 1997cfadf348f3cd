package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFromStore(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"wrapped not found", fmt.Errorf("venta: %w", gorm.ErrRecordNotFound), ErrNotFound},
		{"fk violation", gorm.ErrForeignKeyViolated, ErrReferentialIntegrity},
		{"duplicated key", gorm.ErrDuplicatedKey, ErrDuplicado},
		{"check violation", gorm.ErrCheckConstraintViolated, ErrInvalidInput},
		{"driver error", errors.New("conn reset by peer"), ErrTransactionFailure},
		{"already classified", ErrVentaAnulada, ErrVentaAnulada},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, FromStore(tc.in), tc.want)
		})
	}
	assert.NoError(t, FromStore(nil))
}

func TestInsufficientStockError(t *testing.T) {
	id := uuid.New()
	var err error = &InsufficientStockError{ProductoID: id, Disponible: 2, Requerido: 5}

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.True(t, IsKind(err))
	assert.Contains(t, err.Error(), "disponible 2, requerido 5")

	var detail *InsufficientStockError
	assert.True(t, errors.As(FromStore(err), &detail))
	assert.Equal(t, id, detail.ProductoID)
}

func TestValidationError(t *testing.T) {
	err := NewValidation(ErrInvalidQuantity, map[string]string{"Cantidad": "min", "VentaID": "uuid_required"})

	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.NotErrorIs(t, err, ErrInvalidPrice)
	assert.Equal(t, "Error de validacion: cantidad inválida (Cantidad=min, VentaID=uuid_required)", err.Error())
}

func TestNotFound(t *testing.T) {
	id := uuid.New()
	err := NotFound("venta", id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), id.String())
}
