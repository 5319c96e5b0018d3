package server

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single failed field constraint.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidateStruct validates a struct and returns formatted errors.
func ValidateStruct(s interface{}) []ValidationError {
	validate := validator.New()
	var errs []ValidationError

	err := validate.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			errs = append(errs, ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Message: getErrorMessage(err),
			})
		}
	}

	return errs
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return err.Field() + " must be a valid email address"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	case "gte":
		return err.Field() + " must be greater than or equal to " + err.Param()
	case "lte":
		return err.Field() + " must be less than or equal to " + err.Param()
	default:
		return err.Field() + " is invalid"
	}
}

// RespondWithValidationErrors sends validation errors as a JSON response.
func RespondWithValidationErrors(c *gin.Context, errs []ValidationError) {
	c.JSON(400, gin.H{
		"error":   "validation failed",
		"details": errs,
	})
}
