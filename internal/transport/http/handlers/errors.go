package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/example/blog-records/internal/models"
	"github.com/example/blog-records/internal/service"
)

type fieldErrorBody struct {
	Field   string `json:"field"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeError maps service errors onto status codes.
func writeError(c *gin.Context, err error) {
	if fes := models.FieldErrors(err); len(fes) > 0 {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, models.ErrDuplicateValue) {
			status = http.StatusConflict
		}
		body := make([]fieldErrorBody, 0, len(fes))
		for _, fe := range fes {
			body = append(body, fieldErrorBody{Field: fe.Field, Kind: fe.KindName(), Message: fe.Message})
		}
		c.JSON(status, gin.H{"error": "validation failed", "fields": body})
		return
	}
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSearchDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
