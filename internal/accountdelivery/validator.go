package accountdelivery

import (
	"errors"
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/go-petr/account-service/internal/domain"
)

// ValidMoney validates whether the field is a positive decimal amount that fits into a balance.
var ValidMoney validator.Func = func(fl validator.FieldLevel) bool {
	d, ok := parseDecimal(fl)
	return ok && domain.ValidateAmount(d) == nil
}

// ValidBalance validates whether the field is a non-negative balance.
var ValidBalance validator.Func = func(fl validator.FieldLevel) bool {
	d, ok := parseDecimal(fl)
	return ok && domain.ValidateBalance(d) == nil
}

func parseDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	if fl.Field().Kind() != reflect.String {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return decimal.Decimal{}, false
	}

	return d, true
}

// ErrUnsupportedValidator indicates that gin's binding engine is not go-playground/validator.
var ErrUnsupportedValidator = errors.New("binding validator does not support custom tags")

// RegisterValidations adds the money and balance tags to gin's binding validator.
func RegisterValidations() error {
	return registerValidations(binding.Validator.Engine())
}

func registerValidations(engine any) error {
	v, ok := engine.(*validator.Validate)
	if !ok {
		return ErrUnsupportedValidator
	}

	if err := v.RegisterValidation("money", ValidMoney); err != nil {
		return err
	}

	return v.RegisterValidation("balance", ValidBalance)
}
