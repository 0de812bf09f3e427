package workouts

import "time"

// WorkoutType is a training split category, e.g. Push / Pull / Legs
type WorkoutType struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Exercise belongs to a workout type
type Exercise struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	WorkoutTypeID int    `json:"workoutTypeId"`
}

// UserWorkout is a single training session logged by a user
type UserWorkout struct {
	ID            int       `json:"id"`
	UserID        string    `json:"userId"`
	Date          time.Time `json:"date"`
	Notes         string    `json:"notes,omitempty"`
	WorkoutTypeID int       `json:"workoutTypeId"`
}

// UserWorkoutExercise is one exercise performed within a logged workout
type UserWorkoutExercise struct {
	ID            int    `json:"id"`
	UserWorkoutID int    `json:"userWorkoutId"`
	ExerciseID    int    `json:"exerciseId"`
	Sets          int    `json:"sets"`
	Reps          int    `json:"reps"`
	Weight        int    `json:"weight"`
	Notes         string `json:"notes,omitempty"`
}
