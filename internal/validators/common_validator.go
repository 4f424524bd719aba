package validators

import (
	"storefront/internal/utils"
)

// ValidationError carries the first failed rule as a client-facing message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks a bound request against its validate tags.
func Validate(request interface{}) error {
	if err := utils.ValidateStruct(request); err != nil {
		return &ValidationError{Message: utils.ValidationMessage(err)}
	}
	return nil
}
