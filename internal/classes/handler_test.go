package classes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitzonehq/fitzone/internal/auth"
	"github.com/fitzonehq/fitzone/internal/telemetry/metrics"
)

type bookingKey struct {
	userID          string
	classScheduleID int
	bookingDate     string
}

type fakeClassesRepo struct {
	schedule []ScheduleEntry
	bookings map[bookingKey]Booking
	nextID   int
}

func newFakeClassesRepo() *fakeClassesRepo {
	return &fakeClassesRepo{
		bookings: map[bookingKey]Booking{},
		nextID:   1,
	}
}

func (r *fakeClassesRepo) Schedule(_ context.Context) ([]ScheduleEntry, error) {
	return r.schedule, nil
}

func (r *fakeClassesRepo) ScheduleByDay(_ context.Context, day string) ([]ScheduleEntry, error) {
	entries := make([]ScheduleEntry, 0)
	for _, entry := range r.schedule {
		if entry.DayOfWeek == day {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (r *fakeClassesRepo) BookingsByUser(_ context.Context, userID string) ([]Booking, error) {
	bookings := make([]Booking, 0)
	for _, booking := range r.bookings {
		if booking.UserID == userID {
			bookings = append(bookings, booking)
		}
	}
	return bookings, nil
}

func (r *fakeClassesRepo) AddBooking(_ context.Context, booking Booking) (*Booking, error) {
	key := bookingKey{
		userID:          booking.UserID,
		classScheduleID: booking.ClassScheduleID,
		bookingDate:     booking.BookingDate.Format("2006-01-02"),
	}
	if _, exists := r.bookings[key]; exists {
		return nil, &pgconn.PgError{Code: "23505"}
	}
	booking.ID = r.nextID
	r.nextID++
	r.bookings[key] = booking
	return &booking, nil
}

func testRouter(repo classesRepo) *mux.Router {
	router := mux.NewRouter()
	NewHandler(repo, metrics.NewTestManager()).SetupRoutes(router.PathPrefix("/api").Subrouter())
	return router
}

func weeklySchedule() []ScheduleEntry {
	return []ScheduleEntry{
		{ID: 1, ClassTypeID: 1, TrainerID: 1, DayOfWeek: "Monday", StartTime: "19:00", EndTime: "20:00", Capacity: 15},
		{ID: 2, ClassTypeID: 2, TrainerID: 2, DayOfWeek: "Tuesday", StartTime: "19:00", EndTime: "20:00", Capacity: 15},
		{ID: 3, ClassTypeID: 1, TrainerID: 1, DayOfWeek: "Monday", StartTime: "08:00", EndTime: "09:00", Capacity: 15},
	}
}

func TestHandler_GetSchedule(t *testing.T) {
	repo := newFakeClassesRepo()
	repo.schedule = weeklySchedule()
	router := testRouter(repo)

	req := httptest.NewRequest("GET", "/api/class-schedule", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var schedule []ScheduleEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &schedule))
	assert.Len(t, schedule, 3)
}

func TestHandler_GetScheduleByDay(t *testing.T) {
	repo := newFakeClassesRepo()
	repo.schedule = weeklySchedule()
	router := testRouter(repo)

	req := httptest.NewRequest("GET", "/api/class-schedule/Monday", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var schedule []ScheduleEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &schedule))
	require.Len(t, schedule, 2)
	for _, entry := range schedule {
		assert.Equal(t, "Monday", entry.DayOfWeek)
	}
}

func TestHandler_GetScheduleByDay_CaseSensitive(t *testing.T) {
	repo := newFakeClassesRepo()
	repo.schedule = weeklySchedule()
	router := testRouter(repo)

	req := httptest.NewRequest("GET", "/api/class-schedule/monday", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestHandler_AddBooking(t *testing.T) {
	repo := newFakeClassesRepo()
	router := testRouter(repo)

	body, err := json.Marshal(map[string]interface{}{
		"classScheduleId": 1,
		"bookingDate":     "2025-06-09",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/class-bookings", bytes.NewReader(body))
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user1"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var booking Booking
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &booking))
	assert.Equal(t, "user1", booking.UserID)
	assert.Equal(t, 1, booking.ClassScheduleID)
	assert.False(t, booking.Attended)
}

func TestHandler_AddBooking_Duplicate(t *testing.T) {
	repo := newFakeClassesRepo()
	router := testRouter(repo)

	body, err := json.Marshal(map[string]interface{}{
		"classScheduleId": 1,
		"bookingDate":     "2025-06-09",
	})
	require.NoError(t, err)

	for i, wantStatus := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest("POST", "/api/class-bookings", bytes.NewReader(body))
		req = req.WithContext(auth.ContextWithUserID(req.Context(), "user1"))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, wantStatus, rr.Code, "attempt %d", i+1)
	}

	// same slot, different date: fine
	body, err = json.Marshal(map[string]interface{}{
		"classScheduleId": 1,
		"bookingDate":     "2025-06-16",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/class-bookings", bytes.NewReader(body))
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user1"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestHandler_AddBooking_MissingFields(t *testing.T) {
	router := testRouter(newFakeClassesRepo())

	body, err := json.Marshal(map[string]interface{}{"bookingDate": "2025-06-09"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/class-bookings", bytes.NewReader(body))
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user1"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_AddBooking_InvalidDate(t *testing.T) {
	router := testRouter(newFakeClassesRepo())

	body, err := json.Marshal(map[string]interface{}{
		"classScheduleId": 1,
		"bookingDate":     "ninth of june",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/class-bookings", bytes.NewReader(body))
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user1"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_GetBookings_OnlyOwn(t *testing.T) {
	repo := newFakeClassesRepo()
	date := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	repo.bookings[bookingKey{"user1", 1, "2025-06-09"}] = Booking{ID: 1, UserID: "user1", ClassScheduleID: 1, BookingDate: date}
	repo.bookings[bookingKey{"user2", 1, "2025-06-09"}] = Booking{ID: 2, UserID: "user2", ClassScheduleID: 1, BookingDate: date}
	router := testRouter(repo)

	req := httptest.NewRequest("GET", "/api/class-bookings", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user1"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var bookings []Booking
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &bookings))
	require.Len(t, bookings, 1)
	assert.Equal(t, "user1", bookings[0].UserID)
}
