package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/restpipe/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()

		// Error messages name fields by their label tag, falling back to the
		// mapstructure key and then to a snake_case field name.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if label := fld.Tag.Get("label"); label != "" {
				return label
			}
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})
	})
	return validate
}

// Validate validates a struct using struct tags and returns the first failure
// in field declaration order. A failed `required` rule becomes a
// MISSING_FIELD error; any other rule becomes INVALID_CONFIG.
//
//	type settings struct {
//	    BaseURL string        `validate:"required" label:"base URL"`
//	    Timeout time.Duration `validate:"gte=0" label:"read timeout"`
//	}
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return errors.InvalidConfig("configuration", err.Error())
	}

	first := validationErrors[0]
	appErr := toAppError(first)
	if len(validationErrors) > 1 {
		fields := make([]FieldError, 0, len(validationErrors))
		for _, e := range validationErrors {
			fields = append(fields, FieldError{Field: e.Field(), Message: formatValidationError(e)})
		}
		appErr.WithDetail("fields", fields)
	}
	return appErr
}

func toAppError(e validator.FieldError) *errors.AppError {
	if e.Tag() == "required" {
		return errors.MissingField(e.Field())
	}
	return errors.InvalidConfig(e.Field(), formatValidationError(e))
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return fmt.Sprintf("failed %q rule", e.Tag())
	}
}

// toSnakeCase converts a field name to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32) // lowercase
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
