package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	intconfig "travelwizards/internal/config"
	"travelwizards/internal/domain"
	"travelwizards/internal/domain/models"
	h "travelwizards/internal/http/handlers"
	"travelwizards/internal/http/middleware"
	"travelwizards/internal/pathfinder"

	"github.com/gin-gonic/gin"
)

var secret = []byte("test-secret")

type fakeReservations struct {
	session   domain.Session
	err       error
	lastName  string
	cancelErr error
}

func (f *fakeReservations) Reserve(ctx context.Context, it models.Itinerary, name string) (models.BookingReference, error) {
	f.session, _ = domain.SessionFromContext(ctx)
	f.lastName = name
	if f.err != nil {
		return models.BookingReference{}, f.err
	}
	return models.BookingReference{BookingID: 7, Reference: "ref-1", ScheduleIDs: []int64{100}}, nil
}

func (f *fakeReservations) Cancel(context.Context, models.Itinerary, string, string) (models.CancelResult, error) {
	if f.cancelErr != nil {
		return models.CancelResult{}, f.cancelErr
	}
	return models.CancelResult{BookingID: 7, DetailsRemoved: 1, BookingDeleted: true}, nil
}

func (f *fakeReservations) ListReservations(context.Context, string, string) ([]models.Reservation, error) {
	return []models.Reservation{}, nil
}

type fakeCatalog struct {
	price int64
}

func (f *fakeCatalog) ListLocations(context.Context) ([]models.Location, error) {
	return []models.Location{{ID: 1, FullName: "Iasi", Abbreviation: "IAS"}}, nil
}

func (f *fakeCatalog) AddService(_ context.Context, in models.NewService) (models.RouteEdge, error) {
	return models.RouteEdge{ID: 1, Mode: models.TransportMode(in.Mode), Schedules: []models.Schedule{{DepartureTime: in.DepartureTime, ArrivalTime: in.ArrivalTime}}}, nil
}

func (f *fakeCatalog) ListServices(context.Context, string) ([]models.ServiceListing, error) {
	return nil, nil
}

func (f *fakeCatalog) UpdatePrice(_ context.Context, id, price int64) (models.Schedule, error) {
	f.price = price
	return models.Schedule{ID: id, Price: price}, nil
}

func (f *fakeCatalog) DeleteSchedule(context.Context, int64) error {
	return domain.ConflictError{Resource: "schedule", Msg: "still booked"}
}

func (f *fakeCatalog) DeleteSchedules(_ context.Context, ids []int64) (int, error) {
	return len(ids), nil
}

type fakeDocs struct{}

func (fakeDocs) GenerateETicket(_ context.Context, id int64) ([]byte, string, error) {
	if id == 404 {
		return nil, "", domain.NotFoundError{Resource: "booking"}
	}
	return []byte("%PDF-1.3"), "ETICKET_1.pdf", nil
}

func (fakeDocs) GenerateInvoice(context.Context, int64) ([]byte, string, error) {
	return []byte("%PDF-1.3"), "INVOICE_1.pdf", nil
}

func newTestRouter(t *testing.T, res *fakeReservations, cat *fakeCatalog) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	a := models.Location{ID: 1, FullName: "Iasi"}
	b := models.Location{ID: 2, FullName: "Bucuresti"}
	graph := pathfinder.Load([]models.RouteEdge{{
		ID: 10, Departure: a, Arrival: b, Mode: models.ModeBus,
		Schedules: []models.Schedule{{ID: 100, RouteID: 10, DepartureTime: day.Add(6 * time.Hour), ArrivalTime: day.Add(10 * time.Hour), Price: 45}},
	}})

	env := intconfig.Env{JWTSecret: string(secret), CORSAllowedOrigins: []string{"http://localhost:5173"}}
	return NewRouter(env, h.Handler{
		Search:       pathfinder.NewEnumerator(graph, pathfinder.Options{}),
		Reservations: res,
		Catalog:      cat,
		Documents:    fakeDocs{},
	})
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := middleware.IssueToken(secret, domain.Session{UserID: 3, CompanyID: 9, Role: role}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + tok
}

func do(r *gin.Engine, method, path, auth string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.RequestIDHeader, "req-1")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestItinerarySearch(t *testing.T) {
	r := newTestRouter(t, &fakeReservations{}, &fakeCatalog{})

	w := do(r, http.MethodGet, "/api/itineraries?from=Iasi&to=Bucuresti", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["count"]; got != float64(1) {
		t.Fatalf("expected one itinerary, got %v", got)
	}

	w = do(r, http.MethodGet, "/api/itineraries?from=Iasi&to=Nowhere", "", nil)
	if w.Code != http.StatusOK || decode(t, w)["count"] != float64(0) {
		t.Fatalf("unknown destination must be an empty 200, got %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/api/itineraries?from=Iasi", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestReserveRequiresTravelAgent(t *testing.T) {
	res := &fakeReservations{}
	r := newTestRouter(t, res, &fakeCatalog{})
	body := map[string]any{"passengerName": "Jane Doe", "itinerary": map[string]any{"departureName": "Iasi"}}

	if w := do(r, http.MethodPost, "/api/reservations", "", body); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/reservations", "Bearer nope", body); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/reservations", token(t, domain.RoleCompany), body); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for company role, got %d", w.Code)
	}

	w := do(r, http.MethodPost, "/api/reservations", token(t, domain.RoleTravelAgent), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if res.session.UserID != 3 || res.session.CompanyID != 9 || res.lastName != "Jane Doe" {
		t.Fatalf("session not forwarded: %+v %q", res.session, res.lastName)
	}
	if w.Header().Get(middleware.RequestIDHeader) != "req-1" {
		t.Fatalf("request id not echoed")
	}
}

func TestDomainErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.NotFoundError{Resource: "reservation", Err: domain.ErrNoMatchingReservation}, http.StatusNotFound, "not_found"},
		{domain.ValidationError{Field: "first_name", Msg: "required"}, http.StatusBadRequest, "validation_error"},
		{domain.TransactionError{Op: "cancel", Err: errors.New("connection reset by peer")}, http.StatusServiceUnavailable, "transaction_failed"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		r := newTestRouter(t, &fakeReservations{cancelErr: tc.err}, &fakeCatalog{})
		w := do(r, http.MethodPost, "/api/reservations/cancel", token(t, domain.RoleTravelAgent),
			map[string]any{"firstName": "Jane", "itinerary": map[string]any{}})
		if w.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, w.Code)
		}
		body := decode(t, w)
		if body["code"] != tc.code || body["request_id"] != "req-1" {
			t.Fatalf("%v: unexpected body %v", tc.err, body)
		}
	}
}

func TestCatalogRoutes(t *testing.T) {
	cat := &fakeCatalog{}
	r := newTestRouter(t, &fakeReservations{}, cat)
	company := token(t, domain.RoleCompany)

	if w := do(r, http.MethodGet, "/api/services", token(t, domain.RoleBoardingAgent), nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if w := do(r, http.MethodPut, "/api/services/5/price", company, map[string]any{}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing price must be 400, got %d", w.Code)
	}
	if w := do(r, http.MethodPut, "/api/services/5/price", company, map[string]any{"price": 0}); w.Code != http.StatusOK || cat.price != 0 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/api/services/5", company, nil); w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/services/delete", company, map[string]any{"ids": []int64{1, 2}}); w.Code != http.StatusOK || decode(t, w)["deleted"] != float64(2) {
		t.Fatalf("unexpected batch delete response %d", w.Code)
	}

	w := do(r, http.MethodPost, "/api/services", company, map[string]any{
		"departureName": "Iasi", "arrivalName": "Bucuresti", "mode": "bus",
		"departureTime": "2025-06-01 06:00:00", "arrivalTime": "2025-06-01T10:00:00Z", "price": 45,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	w = do(r, http.MethodPost, "/api/services", company, map[string]any{"departureTime": "yesterday"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad time must be 400, got %d", w.Code)
	}
}

func TestETicketDownload(t *testing.T) {
	r := newTestRouter(t, &fakeReservations{}, &fakeCatalog{})
	auth := token(t, domain.RoleTravelAgent)

	w := do(r, http.MethodGet, "/api/bookings/1/e-ticket", auth, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("unexpected response %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if w := do(r, http.MethodGet, "/api/bookings/404/e-ticket", auth, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/bookings/abc/e-ticket", auth, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t, &fakeReservations{}, &fakeCatalog{})
	req := httptest.NewRequest(http.MethodOptions, "/api/reservations", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
