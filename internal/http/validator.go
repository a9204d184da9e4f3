package http

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"lodgeportal/internal/httpx"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("grau", validateGrau)
}

// validateGrau accepts only the three degree labels, case-insensitively.
// Uploads must name a real degree; the fail-closed default is for data
// already in the catalog, not for new input.
func validateGrau(fl validator.FieldLevel) bool {
	switch strings.ToLower(strings.TrimSpace(fl.Field().String())) {
	case "aprendiz", "companheiro", "mestre":
		return true
	}
	return false
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func ValidateStruct(s interface{}) []ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var errors []ValidationError
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		tag := err.Tag()
		param := err.Param()

		var message string
		switch tag {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, param)
		case "grau":
			message = fmt.Sprintf("%s must be one of Aprendiz, Companheiro, Mestre", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		fieldName := strings.ToLower(field[:1]) + field[1:]
		errors = append(errors, ValidationError{
			Field:   fieldName,
			Message: message,
		})
	}

	return errors
}

func validationDetails(errs []ValidationError) []httpx.ErrorDetail {
	details := make([]httpx.ErrorDetail, 0, len(errs))
	for _, e := range errs {
		details = append(details, httpx.ErrorDetail{Field: e.Field, Message: e.Message})
	}
	return details
}
