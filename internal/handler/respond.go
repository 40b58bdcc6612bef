package handler

import (
	"errors"
	"log"
	"net/http"

	"taskflow/internal/domain"
	"taskflow/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// writeError maps workflow error kinds onto HTTP statuses. Anything outside
// the taxonomy is a 500 and never leaks its message to the client.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidDependencySet),
		errors.Is(err, domain.ErrSelfDependency),
		errors.Is(err, domain.ErrDependencyNotSatisfied),
		errors.Is(err, domain.ErrInvalidTeamMember):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("handler: internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// currentPrincipal pulls the authenticated principal or aborts with 401.
func currentPrincipal(c *gin.Context) (domain.Principal, bool) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	}
	return principal, ok
}

// pathID parses a uuid path parameter or aborts with 400.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " format"})
		return uuid.Nil, false
	}
	return id, true
}
