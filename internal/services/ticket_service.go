package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"travelwizards/internal/domain"
	"travelwizards/internal/domain/models"
	"travelwizards/internal/repositories"
	"travelwizards/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// TicketService renders booking documents as PDF.
type TicketService struct {
	Bookings repositories.BookingRepository
	Loader   func(ctx context.Context, bookingID int64) (models.BookingTicket, error)
}

// GenerateETicket renders every leg of a booking. The filename is derived
// from the booking reference.
func (s TicketService) GenerateETicket(ctx context.Context, bookingID int64) ([]byte, string, error) {
	t, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(domain.RequestIDFromContext(ctx), "docs", "generate_eticket", fmt.Sprintf("booking_id=%d legs=%d", bookingID, len(t.Legs)))
	return buildETicketPDF(t)
}

// GenerateInvoice renders the priced legs with their total.
func (s TicketService) GenerateInvoice(ctx context.Context, bookingID int64) ([]byte, string, error) {
	t, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(domain.RequestIDFromContext(ctx), "docs", "generate_invoice", fmt.Sprintf("booking_id=%d", bookingID))
	return buildInvoicePDF(t)
}

func (s TicketService) load(ctx context.Context, bookingID int64) (models.BookingTicket, error) {
	if bookingID <= 0 {
		return models.BookingTicket{}, domain.ValidationError{Field: "booking_id", Msg: "booking id is required"}
	}
	if s.Loader != nil {
		return s.Loader(ctx, bookingID)
	}
	return s.Bookings.GetTicket(ctx, bookingID)
}

func passengerName(b models.Booking) string {
	return strings.TrimSpace(b.FirstName + " " + b.LastName)
}

func buildETicketPDF(t models.BookingTicket) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TRAVEL WIZARDS E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	header := []string{
		fmt.Sprintf("Passenger : %s", safe(passengerName(t.Booking), "-")),
		fmt.Sprintf("Reference : %s", safe(t.Booking.Reference, "-")),
		fmt.Sprintf("Booking   : #%d", t.Booking.ID),
		fmt.Sprintf("Issued    : %s", safe(formatStamp(t.Booking.CreatedAt), "-")),
	}
	for _, line := range header {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Journey")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	if len(t.Legs) == 0 {
		pdf.Cell(0, 6, "No legs remain on this booking.")
		pdf.Ln(6)
	}
	for i, leg := range t.Legs {
		pdf.MultiCell(0, 6, fmt.Sprintf("%d) %s -> %s", i+1, safe(leg.DepartureName, "-"), safe(leg.ArrivalName, "-")), "", "", false)
		pdf.Cell(0, 6, fmt.Sprintf("   Departs %s  Arrives %s  (%.2f h)", utils.FormatDateTime(leg.DepartureTime), utils.FormatDateTime(leg.ArrivalTime), leg.Hours))
		pdf.Ln(6)
		pdf.Cell(0, 6, fmt.Sprintf("   Ticket TCK-%d-%d  %s", t.Booking.ID, leg.ScheduleID, boardedLabel(leg.Boarded)))
		pdf.Ln(8)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Show this ticket to the boarding agent at every departure.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("ETICKET_%d_%s.pdf", t.Booking.ID, safeFilenamePart(t.Booking.Reference))
	return buf.Bytes(), filename, nil
}

func buildInvoicePDF(t models.BookingTicket) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Invoice   : INV-%d", t.Booking.ID))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Reference : "+safe(t.Booking.Reference, "-"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Billed to : "+safe(passengerName(t.Booking), "-"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Items:")
	pdf.Ln(8)

	var total int64
	pdf.SetFont("Helvetica", "", 11)
	for i, leg := range t.Legs {
		desc := fmt.Sprintf("%d) %s -> %s (%s)", i+1, safe(leg.DepartureName, "-"), safe(leg.ArrivalName, "-"), utils.FormatDateTime(leg.DepartureTime))
		pdf.MultiCell(0, 6, desc, "", "", false)
		pdf.Cell(0, 6, "   Fare: "+formatPrice(leg.Price))
		pdf.Ln(8)
		total += leg.Price
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+formatPrice(total))
	pdf.Ln(12)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("INVOICE_%d_%s.pdf", t.Booking.ID, safeFilenamePart(t.Booking.Reference))
	return buf.Bytes(), filename, nil
}

func boardedLabel(b bool) string {
	if b {
		return "BOARDED"
	}
	return "not boarded"
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return utils.FormatDateTime(t)
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}

// formatPrice groups thousands: 1234567 -> "1,234,567".
func formatPrice(v int64) string {
	if v <= 0 {
		return "0"
	}
	s := fmt.Sprintf("%d", v)
	var out []byte
	n := len(s)
	for i := 0; i < n; i++ {
		out = append(out, s[i])
		pos := n - i - 1
		if pos > 0 && pos%3 == 0 {
			out = append(out, ',')
		}
	}
	return string(out)
}
