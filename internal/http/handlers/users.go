package handlers

import (
	"net/http"

	"travelwizards/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GET /api/me returns the acting session and its company name.
func (h Handler) Me(c *gin.Context) {
	s, ok := middleware.GetSession(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "sign in required", nil)
		return
	}
	out := gin.H{"userId": s.UserID, "companyId": s.CompanyID, "role": s.Role}
	if h.Accounts != nil && s.CompanyID > 0 {
		name, err := h.Accounts.CompanyName(c.Request.Context(), int64(s.CompanyID))
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		out["companyName"] = name
	}
	c.JSON(http.StatusOK, out)
}
