package reservas

import (
	"errors"
	"fmt"
	"net/http"

	"roomy-backend/internal/model"
)

var (
	ErrConflict     = errors.New("reservation conflicts with an existing booking")
	ErrNotFound     = errors.New("reservation not found")
	ErrUnauthorized = errors.New("reservation service rejected the caller")
)

// AvailabilityResponse models GET /api/reservas/disponibilidad.
type AvailabilityResponse struct {
	Room      model.Room `json:"sala"`
	Date      string     `json:"fecha"`
	Available []string   `json:"horariosDisponibles"`
}

// errorBody is the error envelope the service uses for non-2xx replies.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// StatusError is returned for any non-2xx reply. It unwraps to one of the
// sentinel errors when the status has a dedicated meaning.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("reservation service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("reservation service returned status %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusConflict:
		return ErrConflict
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	}
	return nil
}
