package slot

import (
	"time"

	"roomy-backend/internal/datefmt"
	"roomy-backend/internal/model"
)

const (
	msgRequired = "Todos los campos son obligatorios"
	msgDuration = "La duración debe ser entre 30 minutos y 3 horas, en intervalos de 30 minutos"
	msgHours    = "El horario debe estar entre las 09:00 y las 18:00, en intervalos de 30 minutos"
	msgPastDate = "La fecha no puede ser anterior a hoy"
)

// ValidationError reports a form field that failed a booking rule.
// Message is meant to be shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidateDuration checks that start and end are "HH:MM" values spanning
// between MinDuration and MaxDuration minutes, in whole steps.
func ValidateDuration(start, end string) error {
	if start == "" || end == "" {
		return &ValidationError{Field: "horaFin", Message: msgRequired}
	}
	s, err := ParseClock(start)
	if err != nil {
		return &ValidationError{Field: "horaInicio", Message: msgDuration}
	}
	e, err := ParseClock(end)
	if err != nil {
		return &ValidationError{Field: "horaFin", Message: msgDuration}
	}
	d := e - s
	if d <= 0 || d < MinDuration || d > MaxDuration || d%Step != 0 {
		return &ValidationError{Field: "horaFin", Message: msgDuration}
	}
	return nil
}

// ValidDuration is the boolean form of ValidateDuration.
func ValidDuration(start, end string) bool {
	return ValidateDuration(start, end) == nil
}

// ValidateRequest is the last gate before a booking leaves the process.
// today is the current calendar day as YYYY-MM-DD.
func ValidateRequest(req model.ReservationRequest, today string) error {
	if req.Room == "" || req.Date == "" || req.StartTime == "" || req.EndTime == "" {
		return &ValidationError{Message: msgRequired}
	}
	if !req.Room.Valid() {
		return &ValidationError{Field: "sala", Message: "Sala desconocida"}
	}
	if !datefmt.ValidISO(req.Date) {
		return &ValidationError{Field: "fecha", Message: "Fecha inválida"}
	}
	if req.Date < today {
		return &ValidationError{Field: "fecha", Message: msgPastDate}
	}
	if err := ValidateDuration(req.StartTime, req.EndTime); err != nil {
		return err
	}
	// Both parse after ValidateDuration.
	s, _ := ParseClock(req.StartTime)
	e, _ := ParseClock(req.EndTime)
	if s < OpenMinute || e > CloseMinute || (s-OpenMinute)%Step != 0 {
		return &ValidationError{Field: "horaInicio", Message: msgHours}
	}
	return nil
}

// Deletable reports whether a reservation dated date may still be cancelled
// at now: its day must not be before today in loc.
func Deletable(date string, now time.Time, loc *time.Location) bool {
	day, ok := datefmt.ISO(date)
	if !ok {
		return false
	}
	return day >= datefmt.Today(now, loc)
}
