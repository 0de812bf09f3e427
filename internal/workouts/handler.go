package workouts

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/fitzonehq/fitzone/internal/auth"
	"github.com/fitzonehq/fitzone/internal/telemetry/tracing"
	"github.com/fitzonehq/fitzone/pkg"
)

type workoutsRepo interface {
	WorkoutTypes(ctx context.Context) ([]WorkoutType, error)
	ExercisesByWorkoutType(ctx context.Context, workoutTypeID int) ([]Exercise, error)
	UserWorkouts(ctx context.Context, userID string) ([]UserWorkout, error)
	AddUserWorkout(ctx context.Context, workout UserWorkout) (*UserWorkout, error)
	WorkoutExercises(ctx context.Context, userWorkoutID int) ([]UserWorkoutExercise, error)
	AddWorkoutExercise(ctx context.Context, we UserWorkoutExercise) (*UserWorkoutExercise, error)
}

type Handler struct {
	repo workoutsRepo
}

func NewHandler(repo workoutsRepo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/workout-types", h.handleGetWorkoutTypes).
		Methods("GET", "OPTIONS").Name("workout-types")
	router.HandleFunc("/exercises/{workoutTypeId}", h.handleGetExercises).
		Methods("GET", "OPTIONS").Name("exercises")
	router.HandleFunc("/workouts", h.handleGetWorkouts).
		Methods("GET", "OPTIONS").Name("get-workouts")
	router.HandleFunc("/workouts", h.handleAddWorkout).
		Methods("POST", "OPTIONS").Name("add-workout")
	router.HandleFunc("/workouts/{workoutId}/exercises", h.handleGetWorkoutExercises).
		Methods("GET", "OPTIONS").Name("get-workout-exercises")
	router.HandleFunc("/workouts/{workoutId}/exercises", h.handleAddWorkoutExercise).
		Methods("POST", "OPTIONS").Name("add-workout-exercise")
}

func (h *Handler) handleGetWorkoutTypes(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.types")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workoutTypes, err := h.repo.WorkoutTypes(ctx)
	if err != nil {
		log.Errorf("get workout types: %s", err)
		http.Error(w, "failed to fetch workout types", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, workoutTypes)
}

func (h *Handler) handleGetExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exercises")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workoutTypeID, err := strconv.Atoi(mux.Vars(r)["workoutTypeId"])
	if err != nil {
		http.Error(w, "invalid workout type id", http.StatusBadRequest)
		return
	}

	exercises, err := h.repo.ExercisesByWorkoutType(ctx, workoutTypeID)
	if err != nil {
		log.Errorf("get exercises for workout type %d: %s", workoutTypeID, err)
		http.Error(w, "failed to fetch exercises", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, exercises)
}

func (h *Handler) handleGetWorkouts(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	userWorkouts, err := h.repo.UserWorkouts(ctx, userID)
	if err != nil {
		log.Errorf("get workouts for user %s: %s", userID, err)
		http.Error(w, "failed to fetch workouts", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, userWorkouts)
}

func (h *Handler) handleAddWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.add")
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
		Date          string `json:"date"`
		Notes         string `json:"notes"`
		WorkoutTypeID int    `json:"workoutTypeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Date == "" || req.WorkoutTypeID <= 0 {
		http.Error(w, "date and workoutTypeId are required", http.StatusBadRequest)
		return
	}

	date, err := pkg.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	workout, err := h.repo.AddUserWorkout(ctx, UserWorkout{
		UserID:        userID,
		Date:          date,
		Notes:         req.Notes,
		WorkoutTypeID: req.WorkoutTypeID,
	})
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			http.Error(w, "unknown workout type", http.StatusBadRequest)
			return
		}
		log.Errorf("add workout for user %s: %s", userID, err)
		http.Error(w, "failed to create workout", http.StatusInternalServerError)
		return
	}

	log.Tracef("user %s logged workout %d", userID, workout.ID)

	writeJSON(w, http.StatusCreated, workout)
}

func (h *Handler) handleGetWorkoutExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.getExercises")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workoutID, err := strconv.Atoi(mux.Vars(r)["workoutId"])
	if err != nil {
		http.Error(w, "invalid workout id", http.StatusBadRequest)
		return
	}

	workoutExercises, err := h.repo.WorkoutExercises(ctx, workoutID)
	if err != nil {
		log.Errorf("get exercises for workout %d: %s", workoutID, err)
		http.Error(w, "failed to fetch workout exercises", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, workoutExercises)
}

func (h *Handler) handleAddWorkoutExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addExercise")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workoutID, err := strconv.Atoi(mux.Vars(r)["workoutId"])
	if err != nil {
		http.Error(w, "invalid workout id", http.StatusBadRequest)
		return
	}

	var req struct {
		ExerciseID int    `json:"exerciseId"`
		Sets       int    `json:"sets"`
		Reps       int    `json:"reps"`
		Weight     int    `json:"weight"`
		Notes      string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.ExerciseID <= 0 {
		http.Error(w, "exerciseId is required", http.StatusBadRequest)
		return
	}

	workoutExercise, err := h.repo.AddWorkoutExercise(ctx, UserWorkoutExercise{
		UserWorkoutID: workoutID,
		ExerciseID:    req.ExerciseID,
		Sets:          req.Sets,
		Reps:          req.Reps,
		Weight:        req.Weight,
		Notes:         req.Notes,
	})
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			http.Error(w, "unknown workout or exercise", http.StatusBadRequest)
			return
		}
		log.Errorf("add exercise to workout %d: %s", workoutID, err)
		http.Error(w, "failed to add exercise to workout", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, workoutExercise)
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
