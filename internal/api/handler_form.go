package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"roomy-backend/internal/booking"
	"roomy-backend/internal/mw"
)

type formActionRequest struct {
	Form   booking.Form `json:"form"`
	Action string       `json:"action" binding:"required"`
	Value  string       `json:"value"`
}

// ApplyFormAction applies one field edit to a booking form and returns the
// resulting form, with availability reloaded when room or day changed.
func (h *Handler) ApplyFormAction(c *gin.Context) {
	var req formActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	action, err := booking.ParseAction(req.Action, req.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form := h.planner.Apply(c.Request.Context(), mw.CurrentUser(c), req.Form, action)
	c.JSON(http.StatusOK, gin.H{"form": form})
}

type formSubmitRequest struct {
	Form booking.Form `json:"form"`
}

// SubmitForm books the reservation a form describes. The returned form
// carries the outcome message in either case.
func (h *Handler) SubmitForm(c *gin.Context) {
	var req formSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	form, res, err := h.planner.SubmitForm(c.Request.Context(), mw.CurrentUser(c), req.Form)
	if err != nil {
		status := statusOf(err)
		if status == 0 {
			log.Printf("Unhandled error submitting form: %v", err)
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"form": form, "error": form.Error})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"form": form, "reserva": res})
}
