// Package validation checks request structs against their `validate` tags
// and turns the first failure into an apperr.ErrValidation message.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"noteful/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// trimmed rejects values with leading or trailing whitespace.
	_ = v.RegisterValidation("trimmed", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				return true
			}
			field = field.Elem()
		}
		s := field.String()
		return s == strings.TrimSpace(s)
	})
	return v
}

// Struct validates s. The returned error wraps apperr.ErrValidation.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	return fmt.Errorf("%w: %s", apperr.ErrValidation, message(errs[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("missing %s in request body", field)
	case "trimmed":
		return fmt.Sprintf("%s cannot start or end with whitespace", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed the %s rule", field, fe.Tag())
	}
}
