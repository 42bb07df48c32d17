package utils

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/phillip/campus-services-go/apperrors"
)

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a structured error response. Validation errors also list the rejected fields.
func JSONError(c *gin.Context, status int, err error, message string) {
	body := gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
		"kind":    apperrors.Kind(err),
	}
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		body["fields"] = ve.Fields
	}
	c.JSON(status, body)
}
