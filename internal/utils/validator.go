// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	transferCodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	clientIDPattern     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{2,63}$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("transfer_code", validateTransferCode)
	validate.RegisterValidation("client_id", validateClientID)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// IsTransferCode reports whether code is a six digit transfer code.
func IsTransferCode(code string) bool {
	return transferCodePattern.MatchString(code)
}

func validateTransferCode(fl validator.FieldLevel) bool {
	return IsTransferCode(fl.Field().String())
}

func validateClientID(fl validator.FieldLevel) bool {
	return clientIDPattern.MatchString(fl.Field().String())
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "transfer_code":
		return "Transfer code must be 6 digits"
	case "client_id":
		return "Client ID must be 3-64 letters, digits, dashes or underscores"
	default:
		return e.Field() + " is invalid"
	}
}
