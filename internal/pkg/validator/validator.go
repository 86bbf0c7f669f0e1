// Package validator wraps go-playground/validator for request DTOs. The
// returned field-to-tag map plugs straight into response.ErrorWithDetails.
package validator

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Validate checks a struct's validate tags. Returns nil when valid.
func Validate(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	for _, fe := range err.(validator.ValidationErrors) {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
