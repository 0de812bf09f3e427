// Package seed fills the database with the initial gym data: workout
// splits, exercises, trainers, the weekly class schedule and the
// membership plans on offer.
package seed

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/fitzonehq/fitzone/internal/classes"
	"github.com/fitzonehq/fitzone/internal/memberships"
	"github.com/fitzonehq/fitzone/internal/telemetry/tracing"
	"github.com/fitzonehq/fitzone/internal/trainers"
	"github.com/fitzonehq/fitzone/internal/workouts"
	"github.com/fitzonehq/fitzone/pkg"
)

type workoutsStore interface {
	AddWorkoutType(ctx context.Context, workoutType workouts.WorkoutType) (*workouts.WorkoutType, error)
	AddExercise(ctx context.Context, exercise workouts.Exercise) (*workouts.Exercise, error)
}

type trainersStore interface {
	AddTrainer(ctx context.Context, trainer trainers.Trainer) (*trainers.Trainer, error)
}

type classesStore interface {
	AddClassType(ctx context.Context, classType classes.ClassType) (*classes.ClassType, error)
	AddScheduleEntry(ctx context.Context, entry classes.ScheduleEntry) (*classes.ScheduleEntry, error)
}

type membershipsStore interface {
	AddPlan(ctx context.Context, plan memberships.Plan) (*memberships.Plan, error)
}

type Handler struct {
	workouts    workoutsStore
	trainers    trainersStore
	classes     classesStore
	memberships membershipsStore
}

func NewHandler(
	workoutsStore workoutsStore,
	trainersStore trainersStore,
	classesStore classesStore,
	membershipsStore membershipsStore,
) *Handler {
	return &Handler{
		workouts:    workoutsStore,
		trainers:    trainersStore,
		classes:     classesStore,
		memberships: membershipsStore,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/init-data", h.handleInitData).Methods("POST", "OPTIONS").Name("init-data")
}

// handleInitData inserts the initial data set. It is not idempotent:
// calling it again inserts everything a second time.
func (h *Handler) handleInitData(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.seed.initData")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err = h.seedAll(ctx); err != nil {
		log.Errorf("init data: %s", err)
		http.Error(w, "failed to initialize data", http.StatusInternalServerError)
		return
	}

	log.Debugln("initial data seeded")

	pkg.WriteJSONResponseOK(w, `{"message":"Data initialized successfully"}`)
}

func (h *Handler) seedAll(ctx context.Context) error {
	pushType, err := h.workouts.AddWorkoutType(ctx, workouts.WorkoutType{
		Name: "Push", Description: "Chest, shoulders, and triceps",
	})
	if err != nil {
		return err
	}
	pullType, err := h.workouts.AddWorkoutType(ctx, workouts.WorkoutType{
		Name: "Pull", Description: "Back and biceps",
	})
	if err != nil {
		return err
	}
	legsType, err := h.workouts.AddWorkoutType(ctx, workouts.WorkoutType{
		Name: "Legs", Description: "Quadriceps, hamstrings, calves",
	})
	if err != nil {
		return err
	}

	exercises := []workouts.Exercise{
		{Name: "Bench Press", Description: "Barbell bench press for chest", WorkoutTypeID: pushType.ID},
		{Name: "Overhead Press", Description: "Barbell overhead press for shoulders", WorkoutTypeID: pushType.ID},
		{Name: "Tricep Pushdown", Description: "Cable tricep pushdown", WorkoutTypeID: pushType.ID},
		{Name: "Deadlift", Description: "Barbell deadlift for back", WorkoutTypeID: pullType.ID},
		{Name: "Pull-up", Description: "Body weight pull-ups", WorkoutTypeID: pullType.ID},
		{Name: "Bicep Curl", Description: "Dumbbell bicep curls", WorkoutTypeID: pullType.ID},
		{Name: "Squat", Description: "Barbell squat for quadriceps", WorkoutTypeID: legsType.ID},
		{Name: "Romanian Deadlift", Description: "Barbell Romanian deadlift for hamstrings", WorkoutTypeID: legsType.ID},
		{Name: "Calf Raise", Description: "Standing calf raises", WorkoutTypeID: legsType.ID},
	}
	for _, exercise := range exercises {
		if _, err := h.workouts.AddExercise(ctx, exercise); err != nil {
			return err
		}
	}

	gymTrainers := []trainers.Trainer{
		{
			Name:       "Rahul Singh",
			Expertise:  "Strength Training",
			Experience: 8,
			Bio:        "Certified personal trainer with expertise in strength and conditioning.",
			ImageURL:   "https://images.unsplash.com/photo-1531369201-4f7be267b1de?ixlib=rb-1.2.1&auto=format&fit=crop&w=500&q=60",
		},
		{
			Name:       "Priya Sharma",
			Expertise:  "Yoga & Flexibility",
			Experience: 6,
			Bio:        "Yoga instructor specialized in increasing flexibility and core strength.",
			ImageURL:   "https://images.unsplash.com/photo-1594381898411-846e7d193883?ixlib=rb-1.2.1&auto=format&fit=crop&w=500&q=60",
		},
		{
			Name:       "Vikram Patel",
			Expertise:  "Cardio & HIIT",
			Experience: 5,
			Bio:        "High-intensity interval training expert and cardio specialist.",
			ImageURL:   "https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?ixlib=rb-1.2.1&auto=format&fit=crop&w=500&q=60",
		},
	}
	trainerIDs := make([]int, 0, len(gymTrainers))
	for _, trainer := range gymTrainers {
		added, err := h.trainers.AddTrainer(ctx, trainer)
		if err != nil {
			return err
		}
		trainerIDs = append(trainerIDs, added.ID)
	}

	zumba, err := h.classes.AddClassType(ctx, classes.ClassType{Name: "Zumba", Description: "Dance fitness program"})
	if err != nil {
		return err
	}
	yoga, err := h.classes.AddClassType(ctx, classes.ClassType{Name: "Yoga", Description: "Mind-body practice"})
	if err != nil {
		return err
	}
	bhangra, err := h.classes.AddClassType(ctx, classes.ClassType{Name: "Bhangra", Description: "Punjabi folk dance"})
	if err != nil {
		return err
	}

	schedule := []classes.ScheduleEntry{
		{ClassTypeID: zumba.ID, TrainerID: trainerIDs[0], DayOfWeek: "Monday", StartTime: "19:00:00", EndTime: "20:00:00", Capacity: 15},
		{ClassTypeID: yoga.ID, TrainerID: trainerIDs[1], DayOfWeek: "Tuesday", StartTime: "19:00:00", EndTime: "20:00:00", Capacity: 15},
		{ClassTypeID: bhangra.ID, TrainerID: trainerIDs[2], DayOfWeek: "Wednesday", StartTime: "19:00:00", EndTime: "20:00:00", Capacity: 15},
		{ClassTypeID: zumba.ID, TrainerID: trainerIDs[0], DayOfWeek: "Thursday", StartTime: "08:00:00", EndTime: "09:00:00", Capacity: 15},
		{ClassTypeID: yoga.ID, TrainerID: trainerIDs[1], DayOfWeek: "Friday", StartTime: "08:00:00", EndTime: "09:00:00", Capacity: 15},
		{ClassTypeID: bhangra.ID, TrainerID: trainerIDs[2], DayOfWeek: "Saturday", StartTime: "08:00:00", EndTime: "09:00:00", Capacity: 15},
	}
	for _, entry := range schedule {
		if _, err := h.classes.AddScheduleEntry(ctx, entry); err != nil {
			return err
		}
	}

	plans := []memberships.Plan{
		{
			Name:           "1 Month",
			DurationMonths: 1,
			Price:          4000,
			Description:    "Basic membership for 1 month",
			Features:       []string{"Access to gym facilities", "Access to group classes", "Locker usage"},
		},
		{
			Name:           "3 Months",
			DurationMonths: 3,
			Price:          10000,
			Description:    "Standard membership for 3 months",
			Features:       []string{"Access to gym facilities", "Access to group classes", "Locker usage", "1 free personal training session"},
		},
		{
			Name:           "6 Months",
			DurationMonths: 6,
			Price:          15000,
			Description:    "Premium membership for 6 months",
			Features:       []string{"Access to gym facilities", "Access to group classes", "Locker usage", "2 free personal training sessions", "Nutrition consultation"},
		},
		{
			Name:           "12 Months",
			DurationMonths: 12,
			Price:          28000,
			Description:    "Ultimate membership for 12 months",
			Features:       []string{"Access to gym facilities", "Access to group classes", "Locker usage", "4 free personal training sessions", "Nutrition consultation", "Exclusive member events"},
		},
	}
	for _, plan := range plans {
		if _, err := h.memberships.AddPlan(ctx, plan); err != nil {
			return err
		}
	}

	return nil
}
