package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"aginventory/pkg/inventory"
	"aginventory/pkg/reservation"
	"aginventory/pkg/token"
)

const currentBrotherKey = "currentBrother"

// authRequired verifies the bearer token and stores the caller's
// identity in the request context.
func authRequired(c *gin.Context) {
	header := c.GetHeader("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
		return
	}
	claims, err := tokens.ParseSession(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
		return
	}
	c.Set(currentBrotherKey, claims)
	c.Next()
}

// requireAdmin gates the admin capability tree.
func requireAdmin(c *gin.Context) {
	if !currentBrother(c).IsAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}
	c.Next()
}

func currentBrother(c *gin.Context) token.SessionClaims {
	claims, _ := c.Get(currentBrotherKey)
	sc, _ := claims.(token.SessionClaims)
	return sc
}

// renderError maps domain errors to HTTP statuses so a duplicate name
// is distinguishable from a missing row or a store failure.
func renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, inventory.ErrNotFound) || errors.Is(err, reservation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrNoUnit) || errors.Is(err, inventory.ErrNoCandidates):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrNoContainer):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Errorf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// idParam parses the :id route segment.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

const dateLayout = "2006-01-02"

func parseDate(c *gin.Context, value, field string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format for " + field})
		return time.Time{}, false
	}
	return t, true
}
