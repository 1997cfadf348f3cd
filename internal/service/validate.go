package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"ventas/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0 work without panicking ("Bad field type decimal.Decimal").
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		id, ok := fl.Field().Interface().(uuid.UUID)
		return ok && id != uuid.Nil
	})
	return v
}

// validar runs the dto validator tags. A failing Cantidad reports
// ErrInvalidQuantity, a failing price ErrInvalidPrice, anything else
// ErrInvalidInput; the first failing field decides the kind.
func validar(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", apperror.ErrInvalidInput, err)
	}

	var kind error
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		fields[ns] = fe.Tag()
		if kind != nil {
			continue
		}
		switch fe.Field() {
		case "Cantidad":
			kind = apperror.ErrInvalidQuantity
		case "PrecioUnitario", "Precio":
			kind = apperror.ErrInvalidPrice
		}
	}
	if kind == nil {
		kind = apperror.ErrInvalidInput
	}
	return apperror.NewValidation(kind, fields)
}
