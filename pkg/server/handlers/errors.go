package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/relato/pkg/server/dto"
	"github.com/soundprediction/relato/pkg/types"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, types.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrCorruptSnapshot):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error, label string) {
	code := statusFor(err)
	c.JSON(code, dto.ErrorResponse{
		Error:   label,
		Message: err.Error(),
		Code:    code,
	})
}

func writeBadRequest(c *gin.Context, label, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   label,
		Message: message,
		Code:    http.StatusBadRequest,
	})
}
