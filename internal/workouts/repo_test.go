//go:build integration_test || all_tests

package workouts

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitzonehq/fitzone/internal/db"
)

func newTestRepo(ctx context.Context, t *testing.T) (*Repo, *pgxpool.Pool) {
	t.Helper()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}

	pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost: host,
		DBPort: port,
		DBName: "fitzone_test",
	})
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	t.Cleanup(pool.Close)

	return NewRepo(pool), pool
}

func TestRepo_WorkoutTypesAndExercises(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, _ := newTestRepo(ctx, t)

	typeName := gofakeit.HipsterWord() + gofakeit.DigitN(6)
	workoutType, err := repo.AddWorkoutType(ctx, WorkoutType{
		Name:        typeName,
		Description: "test split",
	})
	require.NoError(t, err)
	require.NotZero(t, workoutType.ID)

	exercise, err := repo.AddExercise(ctx, Exercise{
		Name:          "Incline Press",
		Description:   "upper chest",
		WorkoutTypeID: workoutType.ID,
	})
	require.NoError(t, err)
	require.NotZero(t, exercise.ID)

	workoutTypes, err := repo.WorkoutTypes(ctx)
	require.NoError(t, err)

	var found bool
	for _, wt := range workoutTypes {
		if wt.ID == workoutType.ID {
			found = true
			assert.Equal(t, typeName, wt.Name)
		}
	}
	assert.True(t, found)

	exercises, err := repo.ExercisesByWorkoutType(ctx, workoutType.ID)
	require.NoError(t, err)
	require.Len(t, exercises, 1)
	assert.Equal(t, "Incline Press", exercises[0].Name)

	// unknown workout type: empty list, not an error
	exercises, err = repo.ExercisesByWorkoutType(ctx, -1)
	require.NoError(t, err)
	assert.Empty(t, exercises)
}

func TestRepo_UserWorkouts(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, pool := newTestRepo(ctx, t)

	userID := gofakeit.UUID()
	_, err := pool.Exec(ctx, `INSERT INTO users (id, email) VALUES ($1, $2)`, userID, gofakeit.Email())
	require.NoError(t, err)

	workoutType, err := repo.AddWorkoutType(ctx, WorkoutType{Name: gofakeit.HipsterWord() + gofakeit.DigitN(6)})
	require.NoError(t, err)

	workout, err := repo.AddUserWorkout(ctx, UserWorkout{
		UserID:        userID,
		Date:          time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Notes:         "heavy day",
		WorkoutTypeID: workoutType.ID,
	})
	require.NoError(t, err)
	require.NotZero(t, workout.ID)

	exercise, err := repo.AddExercise(ctx, Exercise{Name: "Front Squat", WorkoutTypeID: workoutType.ID})
	require.NoError(t, err)

	workoutExercise, err := repo.AddWorkoutExercise(ctx, UserWorkoutExercise{
		UserWorkoutID: workout.ID,
		ExerciseID:    exercise.ID,
		Sets:          5,
		Reps:          5,
		Weight:        100,
	})
	require.NoError(t, err)
	require.NotZero(t, workoutExercise.ID)

	workouts, err := repo.UserWorkouts(ctx, userID)
	require.NoError(t, err)
	require.Len(t, workouts, 1)
	assert.Equal(t, "heavy day", workouts[0].Notes)

	workoutExercises, err := repo.WorkoutExercises(ctx, workout.ID)
	require.NoError(t, err)
	require.Len(t, workoutExercises, 1)
	assert.Equal(t, 5, workoutExercises[0].Sets)
	assert.Equal(t, 100, workoutExercises[0].Weight)

	// other users see nothing
	workouts, err = repo.UserWorkouts(ctx, gofakeit.UUID())
	require.NoError(t, err)
	assert.Empty(t, workouts)
}
