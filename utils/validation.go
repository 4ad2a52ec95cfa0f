package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"spooky-styles/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerOnce sync.Once

// RegisterValidators adds the custom tags used by request DTOs to gin's
// validator engine. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("money", validateMoney)
		_ = v.RegisterValidation("order_status", validateOrderStatus)
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}

// money accepts a non-negative decimal with at most two fraction digits.
func validateMoney(fl validator.FieldLevel) bool {
	d, err := ParseMoney(fl.Field().String())
	return err == nil && !d.IsNegative()
}

func validateOrderStatus(fl validator.FieldLevel) bool {
	return models.IsOrderStatus(fl.Field().String())
}

func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return decimal.Zero, fmt.Errorf("amount %q has more than two decimals", s)
	}
	return d.Round(2), nil
}

// BindingError converts a gin binding failure into a Validation AppError with
// one message per offending field.
func BindingError(err error) *AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return BadRequest("Invalid request body")
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = fieldMessage(fe)
	}
	return Validation("Validation failed", fields)
}

// fieldPath names a field by its JSON path below the request struct, so a
// nested field reads "shipping.city".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "hexcolor":
		return "must be a hex color like #1a1a1a"
	case "money":
		return "must be a non-negative amount with at most two decimals"
	case "order_status":
		return "is not a valid order status"
	default:
		return "is invalid"
	}
}
