package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dineflow/table-reservation/internal/engine"
	"github.com/dineflow/table-reservation/internal/model"
)

// Handlers run on the system clock, so the test date has to stay in the
// future relative to whenever the suite runs.
var testDate = time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02")

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	return engine.New(model.DefaultTables, nil, nil, nil, nil)
}

// do runs one request through a fresh Echo context and returns the
// recorder.  pathParam binds the :id parameter for routes that use it.
func do(method, target, body string, h echo.HandlerFunc, pathParam string) *httptest.ResponseRecorder {
	ec := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := ec.NewContext(req, rec)
	if pathParam != "" {
		c.SetParamNames("id")
		c.SetParamValues(pathParam)
	}
	_ = h(c)
	return rec
}

func bookingBody(guests int) string {
	return fmt.Sprintf(`{"date":%q,"time_slot":"19:00-20:00","guest_count":%d,`+
		`"location":"Any","segment":"Any","customer_name":"Dana","customer_contact":"dana@example.com"}`,
		testDate, guests)
}

func TestBookEndpoint(t *testing.T) {
	eng := newTestEngine(t)
	h := NewReservationHandler(eng)

	rec := do(http.MethodPost, "/v1/reservations", bookingBody(2), h.Book, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var res model.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, uint64(1), res.TableID)
	assert.Equal(t, model.ReservationConfirmed, res.Status)
	assert.Equal(t, "guest", res.UserID)
}

func TestBookEndpointValidationAndConflict(t *testing.T) {
	eng := newTestEngine(t)
	h := NewReservationHandler(eng)

	rec := do(http.MethodPost, "/v1/reservations", bookingBody(0), h.Book, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Fill the pool, then expect the waiting-queue hint on 409.
	for i := 0; i < 12; i++ {
		rec = do(http.MethodPost, "/v1/reservations", bookingBody(2), h.Book, "")
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec = do(http.MethodPost, "/v1/reservations", bookingBody(2), h.Book, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "no_table_available", payload["error"])
	assert.Equal(t, true, payload["waiting_queue"])
}

func TestCancelEndpointStatusCodes(t *testing.T) {
	eng := newTestEngine(t)
	h := NewReservationHandler(eng)

	rec := do(http.MethodDelete, "/v1/reservations/missing", "", h.Cancel, "missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	booked := do(http.MethodPost, "/v1/reservations", bookingBody(2), h.Book, "")
	require.Equal(t, http.StatusCreated, booked.Code)
	var res model.Reservation
	require.NoError(t, json.Unmarshal(booked.Body.Bytes(), &res))

	for i := 0; i < 2; i++ {
		rec = do(http.MethodDelete, "/v1/reservations/"+res.ID, "", h.Cancel, res.ID)
		assert.Equal(t, http.StatusOK, rec.Code, "cancel attempt %d", i+1)
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	eng := newTestEngine(t)
	h := NewAvailabilityHandler(eng)

	target := fmt.Sprintf("/v1/availability?date=%s&time_slot=19:00-20:00&guests=2", testDate)
	rec := do(http.MethodGet, target, "", h.Check, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report engine.AvailabilityReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Len(t, report.Tables, 12)
	assert.False(t, report.AllBooked)

	rec = do(http.MethodGet, "/v1/availability?date="+testDate+"&time_slot=19:00-20:00&guests=abc", "", h.Check, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWalkInJoinAndList(t *testing.T) {
	eng := newTestEngine(t)
	h := NewWalkInHandler(eng)

	body := fmt.Sprintf(`{"customer_name":"Sam","guest_count":4,"notification_method":"sms",`+
		`"contact":"+1555000111","hall_preference":"Main Hall","queue_date":%q}`, testDate)
	rec := do(http.MethodPost, "/v1/queue/join", body, h.Join, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry model.WalkInQueueEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, 1, entry.Position)
	assert.Equal(t, model.AnyPreference, entry.SegmentPreference, "empty preference defaults to Any")

	target := fmt.Sprintf("/v1/queue?date=%s&guests=4&hall=Main+Hall", testDate)
	rec = do(http.MethodGet, target, "", h.List, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Entries []model.WalkInQueueEntry `json:"entries"`
		Version uint64                   `json:"version"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Entries, 1)
	assert.Equal(t, entry.ID, listing.Entries[0].ID)
	assert.NotZero(t, listing.Version)

	// Whole-day view without guests.
	rec = do(http.MethodGet, "/v1/queue?date="+testDate, "", h.List, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSlotQueueEndpoints(t *testing.T) {
	eng := newTestEngine(t)
	h := NewSlotQueueHandler(eng)

	body := fmt.Sprintf(`{"date":%q,"time_slot":"19:00-20:00","guest_count":2}`, testDate)
	rec := do(http.MethodPost, "/v1/slot-queue/join", body, h.Join, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry model.SlotQueueEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, "0-60 minutes", entry.EstimatedWaitRange)

	rec = do(http.MethodGet, "/v1/slot-queue?date="+testDate+"&time_slot=19:00-20:00", "", h.List, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(http.MethodGet, "/v1/slot-queue?date="+testDate, "", h.List, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodDelete, "/v1/slot-queue/"+entry.ID, "", h.Leave, entry.ID)
	assert.Equal(t, http.StatusOK, rec.Code)
}
