package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CodingKingM/relay/internal/service"
)

// writeError translates a service error kind to an HTTP status and a
// JSON error body. The translation lives only here; the services know
// nothing about HTTP.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrSelfReference):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrStorage):
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
