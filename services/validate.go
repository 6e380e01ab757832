package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so messages match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs the validate tags of s and turns the first failure
// into an ErrValidation.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return validationError("%s", err.Error())
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return validationError("%s is required", fe.Field())
	case "email":
		return validationError("%s is not valid", fe.Field())
	case "gt":
		return validationError("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return validationError("%s must be at least %s", fe.Field(), fe.Param())
	case "min":
		return validationError("%s must be at least %s characters", fe.Field(), fe.Param())
	default:
		return validationError("%s failed %s", fe.Field(), fe.Tag())
	}
}
