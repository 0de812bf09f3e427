package classes

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/fitzonehq/fitzone/internal/auth"
	"github.com/fitzonehq/fitzone/internal/telemetry/metrics"
	"github.com/fitzonehq/fitzone/internal/telemetry/tracing"
	"github.com/fitzonehq/fitzone/pkg"
)

type classesRepo interface {
	Schedule(ctx context.Context) ([]ScheduleEntry, error)
	ScheduleByDay(ctx context.Context, day string) ([]ScheduleEntry, error)
	BookingsByUser(ctx context.Context, userID string) ([]Booking, error)
	AddBooking(ctx context.Context, booking Booking) (*Booking, error)
}

type Handler struct {
	repo    classesRepo
	metrics *metrics.Manager
}

func NewHandler(repo classesRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/class-schedule", h.handleGetSchedule).
		Methods("GET", "OPTIONS").Name("class-schedule")
	router.HandleFunc("/class-schedule/{day}", h.handleGetScheduleByDay).
		Methods("GET", "OPTIONS").Name("class-schedule-day")
	router.HandleFunc("/class-bookings", h.handleGetBookings).
		Methods("GET", "OPTIONS").Name("get-class-bookings")
	router.HandleFunc("/class-bookings", h.handleAddBooking).
		Methods("POST", "OPTIONS").Name("add-class-booking")
}

func (h *Handler) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.classes.schedule")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	schedule, err := h.repo.Schedule(ctx)
	if err != nil {
		log.Errorf("get class schedule: %s", err)
		http.Error(w, "failed to fetch class schedule", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, schedule)
}

func (h *Handler) handleGetScheduleByDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.classes.scheduleByDay")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	// day match is exact: "Monday" works, "monday" returns an empty list
	day := mux.Vars(r)["day"]

	schedule, err := h.repo.ScheduleByDay(ctx, day)
	if err != nil {
		log.Errorf("get class schedule for %s: %s", day, err)
		http.Error(w, "failed to fetch class schedule", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, schedule)
}

func (h *Handler) handleGetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.classes.getBookings")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	bookings, err := h.repo.BookingsByUser(ctx, userID)
	if err != nil {
		log.Errorf("get class bookings for user %s: %s", userID, err)
		http.Error(w, "failed to fetch class bookings", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, bookings)
}

func (h *Handler) handleAddBooking(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.classes.addBooking")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req struct {
		ClassScheduleID int    `json:"classScheduleId"`
		BookingDate     string `json:"bookingDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.ClassScheduleID <= 0 || req.BookingDate == "" {
		http.Error(w, "classScheduleId and bookingDate are required", http.StatusBadRequest)
		return
	}

	bookingDate, err := pkg.ParseDate(req.BookingDate)
	if err != nil {
		http.Error(w, "invalid booking date", http.StatusBadRequest)
		return
	}

	booking, err := h.repo.AddBooking(ctx, Booking{
		UserID:          userID,
		ClassScheduleID: req.ClassScheduleID,
		BookingDate:     bookingDate,
	})
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			http.Error(w, "already booked for this class and date", http.StatusConflict)
			return
		}
		if pkg.IsForeignKeyViolationError(err) {
			http.Error(w, "unknown class schedule", http.StatusBadRequest)
			return
		}
		log.Errorf("add class booking for user %s: %s", userID, err)
		http.Error(w, "failed to create class booking", http.StatusInternalServerError)
		return
	}

	h.metrics.CounterClassBookings.Inc()
	log.Tracef("user %s booked class slot %d for %s", userID, booking.ClassScheduleID, req.BookingDate)

	writeJSON(w, http.StatusCreated, booking)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, payloadJSON, statusCode)
}
