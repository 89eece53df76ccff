package validator

import (
	"errors"
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"
)

var Validate *validatorv10.Validate

func InitValidator() {
	Validate = validatorv10.New(validatorv10.WithRequiredStructEnabled())
}

// ValidateStruct validates a struct using validator tags
func ValidateStruct(req interface{}) error {
	if Validate == nil {
		InitValidator()
	}

	if err := Validate.Struct(req); err != nil {
		var validationErrors validatorv10.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, validationErr := range validationErrors {
				return fmt.Errorf("field '%s' failed validation on the '%s' tag", validationErr.Field(), validationErr.Tag())
			}
		}
		return err
	}

	return nil
}
