package handlers

import (
	"net/http"

	"travelwizards/internal/domain/models"

	"github.com/gin-gonic/gin"
)

type reserveRequest struct {
	Itinerary     models.Itinerary `json:"itinerary"`
	PassengerName string           `json:"passengerName"`
}

type cancelRequest struct {
	Itinerary models.Itinerary `json:"itinerary"`
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
}

// POST /api/reservations
func (h Handler) Reserve(c *gin.Context) {
	var req reserveRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	ref, err := h.Reservations.Reserve(c.Request.Context(), req.Itinerary, req.PassengerName)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ref)
}

// POST /api/reservations/cancel
func (h Handler) CancelReservation(c *gin.Context) {
	var req cancelRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.Reservations.Cancel(c.Request.Context(), req.Itinerary, req.FirstName, req.LastName)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/reservations?first_name=&last_name=
func (h Handler) ListReservations(c *gin.Context) {
	first, last := c.Query("first_name"), c.Query("last_name")
	legs, err := h.Reservations.ListReservations(c.Request.Context(), first, last)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": legs})
}
