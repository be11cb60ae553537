package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// respondError maps typed service errors onto HTTP statuses. Anything
// untyped is a 500 with a generic message; internals never leak to clients.
func respondError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *errors.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": e.Error()})
	case *errors.ErrValidation:
		body := gin.H{"error": e.Error()}
		if len(e.Fields) > 0 {
			body["fields"] = e.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case *errors.ErrUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": e.Error()})
	case *errors.ErrConflict:
		c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
	case *errors.ErrInvalidStateTransition:
		c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
	case *errors.ErrNotConfigured:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": e.Error()})
	case *errors.ErrProvider:
		c.JSON(http.StatusBadGateway, gin.H{"error": e.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
