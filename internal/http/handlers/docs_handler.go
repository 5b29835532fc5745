package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/bookings/:id/e-ticket
func (h Handler) GetETicketPDF(c *gin.Context) {
	h.servePDF(c, h.Documents.GenerateETicket)
}

// GET /api/bookings/:id/invoice
func (h Handler) GetInvoicePDF(c *gin.Context) {
	h.servePDF(c, h.Documents.GenerateInvoice)
}

func (h Handler) servePDF(c *gin.Context, render func(context.Context, int64) ([]byte, string, error)) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pdfBytes, filename, err := render(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
