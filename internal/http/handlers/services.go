package handlers

import (
	"net/http"
	"strings"
	"time"

	"travelwizards/internal/domain/models"
	"travelwizards/internal/utils"

	"github.com/gin-gonic/gin"
)

type serviceRequest struct {
	DepartureName    string `json:"departureName"`
	ArrivalName      string `json:"arrivalName"`
	Mode             string `json:"mode"`
	DepartureTime    string `json:"departureTime"`
	ArrivalTime      string `json:"arrivalTime"`
	Price            int64  `json:"price"`
	FrequencyMinutes int64  `json:"frequencyMinutes"`
	ValidFrom        string `json:"validFrom"`
	ValidUntil       string `json:"validUntil"`
}

type priceRequest struct {
	Price *int64 `json:"price"`
}

type deleteRequest struct {
	IDs []int64 `json:"ids"`
}

func (r serviceRequest) toModel() (models.NewService, string, error) {
	out := models.NewService{
		DepartureName: r.DepartureName,
		ArrivalName:   r.ArrivalName,
		Mode:          r.Mode,
		Price:         r.Price,
		Frequency:     time.Duration(r.FrequencyMinutes) * time.Minute,
	}
	var err error
	if out.DepartureTime, err = utils.ParseDateTime(r.DepartureTime); err != nil {
		return out, "departureTime", err
	}
	if out.ArrivalTime, err = utils.ParseDateTime(r.ArrivalTime); err != nil {
		return out, "arrivalTime", err
	}
	if strings.TrimSpace(r.ValidFrom) != "" {
		if out.ValidFrom, err = utils.ParseDate(r.ValidFrom); err != nil {
			return out, "validFrom", err
		}
	}
	if strings.TrimSpace(r.ValidUntil) != "" {
		if out.ValidUntil, err = utils.ParseDate(r.ValidUntil); err != nil {
			return out, "validUntil", err
		}
	}
	return out, "", nil
}

// GET /api/services?location=
func (h Handler) ListServices(c *gin.Context) {
	list, err := h.Catalog.ListServices(c.Request.Context(), c.Query("location"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": list})
}

// POST /api/services
func (h Handler) AddService(c *gin.Context) {
	var req serviceRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	in, field, err := req.toModel()
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid "+field, err.Error())
		return
	}
	edge, err := h.Catalog.AddService(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, edge)
}

// PUT /api/services/:id/price
func (h Handler) UpdatePrice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req priceRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Price == nil {
		respondError(c, http.StatusBadRequest, "validation_error", "price is required", nil)
		return
	}
	sched, err := h.Catalog.UpdatePrice(c.Request.Context(), id, *req.Price)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

// DELETE /api/services/:id
func (h Handler) DeleteService(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteSchedule(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": 1})
}

// POST /api/services/delete
func (h Handler) DeleteServices(c *gin.Context) {
	var req deleteRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	n, err := h.Catalog.DeleteSchedules(c.Request.Context(), req.IDs)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
