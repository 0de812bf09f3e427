package trainers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/fitzonehq/fitzone/internal/auth"
	"github.com/fitzonehq/fitzone/internal/telemetry/metrics"
	"github.com/fitzonehq/fitzone/internal/telemetry/tracing"
	"github.com/fitzonehq/fitzone/pkg"
)

type trainersRepo interface {
	Trainers(ctx context.Context) ([]Trainer, error)
	TrainerByID(ctx context.Context, id int) (*Trainer, error)
	BookingsByUser(ctx context.Context, userID string) ([]Booking, error)
	AddBooking(ctx context.Context, booking Booking) (*Booking, error)
}

type Handler struct {
	repo    trainersRepo
	metrics *metrics.Manager
}

func NewHandler(repo trainersRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/trainers", h.handleGetTrainers).
		Methods("GET", "OPTIONS").Name("trainers")
	router.HandleFunc("/trainers/{id}", h.handleGetTrainer).
		Methods("GET", "OPTIONS").Name("trainer")
	router.HandleFunc("/trainer-bookings", h.handleGetBookings).
		Methods("GET", "OPTIONS").Name("get-trainer-bookings")
	router.HandleFunc("/trainer-bookings", h.handleAddBooking).
		Methods("POST", "OPTIONS").Name("add-trainer-booking")
}

func (h *Handler) handleGetTrainers(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainers.all")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	trainers, err := h.repo.Trainers(ctx)
	if err != nil {
		log.Errorf("get trainers: %s", err)
		http.Error(w, "failed to fetch trainers", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, trainers)
}

func (h *Handler) handleGetTrainer(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainers.one")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid trainer id", http.StatusBadRequest)
		return
	}

	trainer, err := h.repo.TrainerByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTrainerNotFound) {
			http.Error(w, "trainer not found", http.StatusNotFound)
			return
		}
		log.Errorf("get trainer %d: %s", id, err)
		http.Error(w, "failed to fetch trainer", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, trainer)
}

func (h *Handler) handleGetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainers.getBookings")
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
		log.Errorf("get trainer bookings for user %s: %s", userID, err)
		http.Error(w, "failed to fetch trainer bookings", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, bookings)
}

func (h *Handler) handleAddBooking(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainers.addBooking")
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
		TrainerID   int    `json:"trainerId"`
		BookingDate string `json:"bookingDate"`
		StartTime   string `json:"startTime"`
		EndTime     string `json:"endTime"`
		Notes       string `json:"notes"`
		IsTrial     bool   `json:"isTrial"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.TrainerID <= 0 || req.BookingDate == "" || req.StartTime == "" || req.EndTime == "" {
		http.Error(w, "trainerId, bookingDate, startTime and endTime are required", http.StatusBadRequest)
		return
	}

	bookingDate, err := pkg.ParseDate(req.BookingDate)
	if err != nil {
		http.Error(w, "invalid booking date", http.StatusBadRequest)
		return
	}

	booking, err := h.repo.AddBooking(ctx, Booking{
		UserID:      userID,
		TrainerID:   req.TrainerID,
		BookingDate: bookingDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Notes:       req.Notes,
		IsTrial:     req.IsTrial,
	})
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			http.Error(w, "unknown trainer", http.StatusBadRequest)
			return
		}
		log.Errorf("add trainer booking for user %s: %s", userID, err)
		http.Error(w, "failed to create trainer booking", http.StatusInternalServerError)
		return
	}

	h.metrics.CounterTrainerBookings.Inc()
	log.Tracef("user %s booked trainer %d for %s", userID, booking.TrainerID, req.BookingDate)

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
