package utils

import (
	"sync"

	apperrors "showcase-platform/internal/shared/errors"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates s against its `validate` tags and returns
// *apperrors.ValidationErrors on failure.
func ValidateStruct(s interface{}) error {
	if err := Validator().Struct(s); err != nil {
		return apperrors.FromValidator(err)
	}
	return nil
}
