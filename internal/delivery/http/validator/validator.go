// Package validator plugs go-playground/validator into echo's Context.Validate.
package validator

import (
	domainerrors "campus/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

// RequestValidator validates bound request DTOs
type RequestValidator struct {
	validate *validator.Validate
}

// New creates a validator that understands `validate` struct tags
func New() *RequestValidator {
	return &RequestValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate reports the first failing field as a VALIDATION_FAILED error
func (v *RequestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			first := fieldErrs[0]

			return domainerrors.ErrValidationFailed.Wrapf("%s failed on %s", first.Field(), first.Tag())
		}

		return domainerrors.ErrValidationFailed.WrapMessage(err.Error())
	}

	return nil
}
