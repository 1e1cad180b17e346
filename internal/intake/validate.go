package intake

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkField devuelve "" si el valor cumple las reglas, o un mensaje legible.
func checkField(f Field, value string) string {
	if strings.TrimSpace(f.Rules) == "" {
		return ""
	}
	err := validate.Var(value, f.Rules)
	if err == nil {
		return ""
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "Invalid value"
	}
	return message(ve[0])
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "oneof":
		return "Choose one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "numeric":
		return "Must be a number"
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	default:
		return "Invalid value"
	}
}
