package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roomy-backend/internal/booking"
	"roomy-backend/internal/model"
	"roomy-backend/internal/mw"
	"roomy-backend/internal/slot"
)

// GetRooms lists the bookable rooms.
func GetRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"salas": model.Rooms()})
}

// GetSlots lists the start times of a business day.
func GetSlots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"horarios": slot.Generate()})
}

// GetAvailability returns the free start times of a room on a day.
// Query: sala, fecha (YYYY-MM-DD).
func (h *Handler) GetAvailability(c *gin.Context) {
	room := model.Room(c.Query("sala"))
	date := c.Query("fecha")

	free, err := h.planner.Availability(c.Request.Context(), mw.CurrentUser(c), room, date)
	if err != nil {
		writeError(c, "load", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sala": room, "fecha": date, "horariosDisponibles": free})
}

// GetEndTimes returns the end times allowed after a start time.
// Query: sala, fecha (YYYY-MM-DD), inicio (HH:MM).
func (h *Handler) GetEndTimes(c *gin.Context) {
	room := model.Room(c.Query("sala"))
	date := c.Query("fecha")
	start := c.Query("inicio")

	ends, err := h.planner.EndTimes(c.Request.Context(), mw.CurrentUser(c), room, date, start)
	if err != nil {
		writeError(c, "load", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"horaInicio": start, "horasFin": ends})
}

// ListReservations returns the caller's dashboard with its summary figures.
func (h *Handler) ListReservations(c *gin.Context) {
	entries, err := h.planner.Dashboard(c.Request.Context(), mw.CurrentUser(c))
	if err != nil {
		writeError(c, "load", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservas": entries, "resumen": booking.Summarize(entries)})
}

// CreateReservation books a room. The body's fecha is YYYY-MM-DD.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req model.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.planner.Submit(c.Request.Context(), mw.CurrentUser(c), req)
	if err != nil {
		writeError(c, "create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": booking.MsgCreated, "reserva": res})
}

// DeleteReservation cancels one of the caller's reservations.
func (h *Handler) DeleteReservation(c *gin.Context) {
	if err := h.planner.Cancel(c.Request.Context(), mw.CurrentUser(c), c.Param("id")); err != nil {
		writeError(c, "delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": booking.MsgDeleted})
}
