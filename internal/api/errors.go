package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"roomy-backend/internal/auth"
	"roomy-backend/internal/booking"
	"roomy-backend/internal/slot"
)

// statusOf maps a known error to its HTTP status, or 0.
func statusOf(err error) int {
	var verr *slot.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, booking.ErrSubmissionInFlight):
		return http.StatusTooManyRequests
	case errors.Is(err, booking.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, booking.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrPastReservation):
		return http.StatusForbidden
	case errors.Is(err, booking.ErrUpstream):
		return http.StatusBadGateway
	}
	return 0
}

// writeError answers with the status matching err. op names the failed
// operation ("create", "delete" or "load") and picks the generic message
// used for upstream failures.
func writeError(c *gin.Context, op string, err error) {
	switch status := statusOf(err); status {
	case 0:
		log.Printf("Unhandled error during %s: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	case http.StatusUnauthorized:
		c.JSON(status, gin.H{"error": "No autenticado"})
	default:
		c.JSON(status, gin.H{"error": booking.FailureMessage(op, err)})
	}
}
