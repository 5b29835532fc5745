package handlers

import (
	"net/http"
	"strings"

	"travelwizards/internal/pathfinder"

	"github.com/gin-gonic/gin"
)

// GET /api/itineraries?from=&to=&sort=
func (h Handler) FindItineraries(c *gin.Context) {
	from, to := strings.TrimSpace(c.Query("from")), strings.TrimSpace(c.Query("to"))
	if from == "" || to == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "from and to are required", nil)
		return
	}
	if h.Search == nil {
		respondError(c, http.StatusServiceUnavailable, "search_unavailable", "route search not configured", nil)
		return
	}
	search := h.Search
	if sort := strings.TrimSpace(c.Query("sort")); sort != "" {
		search = search.WithRanker(pathfinder.RankerByName(sort))
	}
	paths, err := search.FindPaths(c.Request.Context(), from, to)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "count": len(paths), "itineraries": paths})
}

// GET /api/locations
func (h Handler) ListLocations(c *gin.Context) {
	locs, err := h.Catalog.ListLocations(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locs})
}
