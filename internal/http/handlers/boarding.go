package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/boarding/trips?location=
func (h Handler) UpcomingTrips(c *gin.Context) {
	trips, err := h.Boarding.UpcomingTrips(c.Request.Context(), c.Query("location"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// GET /api/boarding/passengers?location=
func (h Handler) Passengers(c *gin.Context) {
	pax, err := h.Boarding.Passengers(c.Request.Context(), c.Query("location"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"passengers": pax})
}

// PUT /api/boarding/passengers/:id/toggle
func (h Handler) ToggleBoarded(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	boarded, err := h.Boarding.ToggleBoarded(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingDetailId": id, "boarded": boarded})
}
