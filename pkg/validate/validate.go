// Package validate checks request structs against their `validate` tags.
//
// Rules are go-playground/validator tags. Failures are reported per field,
// keyed by the field's JSON name, one message per field:
//
//	type SignupInput struct {
//	    Name  string `json:"name"  validate:"required,max=100"`
//	    Email string `json:"email" validate:"required,email"`
//	    Role  string `json:"role"  validate:"omitempty,oneof=admin wholesaler retailer"`
//	}
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.ToLower(fld.Name)
			}
			return name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return v
}

// Struct validates s and returns a map of field name to error message.
// An empty map means s is valid. Non-struct values are never invalid.
func Struct(s any) map[string]string {
	errs := make(map[string]string)

	err := engine().Struct(s)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs
	}
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := errs[name]; seen {
			continue // first failing rule per field
		}
		errs[name] = message(fe)
	}
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func message(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "url", "http_url":
		return fmt.Sprintf("The %s must be a valid URL.", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("The %s must be a valid UUID.", field)
	case "mongodb":
		return fmt.Sprintf("The %s must be a valid id.", field)
	case "numeric":
		return fmt.Sprintf("The %s field must be a number.", field)
	case "alpha":
		return fmt.Sprintf("The %s field must contain only letters.", field)
	case "alphanum":
		return fmt.Sprintf("The %s field must contain only letters and numbers.", field)
	case "e164":
		return fmt.Sprintf("The %s must be a valid phone number.", field)
	case "min":
		if isString {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
		return fmt.Sprintf("The %s must be at least %s.", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}
		return fmt.Sprintf("The %s must not be greater than %s.", field, param)
	case "len":
		return fmt.Sprintf("The %s must be exactly %s characters.", field, param)
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, param)
	case "gte":
		return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
	case "lt":
		return fmt.Sprintf("The %s must be less than %s.", field, param)
	case "lte":
		return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", field)
	case "nefield":
		return fmt.Sprintf("The %s must be different from %s.", field, strings.ToLower(param))
	default:
		return fmt.Sprintf("The %s format is invalid.", field)
	}
}
