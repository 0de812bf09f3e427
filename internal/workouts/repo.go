package workouts

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitzonehq/fitzone/internal/telemetry/tracing"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) WorkoutTypes(ctx context.Context) ([]WorkoutType, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsRepo.workoutTypes")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT id, name, COALESCE(description, '') FROM workout_types ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}

	return rows2WorkoutTypes(rows)
}

func (r *Repo) AddWorkoutType(ctx context.Context, workoutType WorkoutType) (*WorkoutType, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsRepo.addWorkoutType")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx,
		`INSERT INTO workout_types (name, description) VALUES ($1, $2) RETURNING id`,
		workoutType.Name, workoutType.Description,
	).Scan(&workoutType.ID)
	if err != nil {
		return nil, err
	}

	return &workoutType, nil
}

func (r *Repo) ExercisesByWorkoutType(ctx context.Context, workoutTypeID int) ([]Exercise, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsRepo.exercisesByWorkoutType")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT id, name, COALESCE(description, ''), workout_type_id
		FROM exercises WHERE workout_type_id = $1 ORDER BY id`,
		workoutTypeID,
	)
	if err != nil {
		return nil, err
	}

	return rows2Exercises(rows)
}

func (r *Repo) AddExercise(ctx context.Context, exercise Exercise) (*Exercise, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsRepo.addExercise")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx,
		`INSERT INTO exercises (name, description, workout_type_id)
		VALUES ($1, $2, $3) RETURNING id`,
		exercise.Name, exercise.Description, exercise.WorkoutTypeID,
	).Scan(&exercise.ID)
	if err != nil {
		return nil, err
	}

	return &exercise, nil
}

// UserWorkouts returns the workouts of one user, most recent first
func (r *Repo) UserWorkouts(ctx context.Context, userID string) ([]UserWorkout, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsRepo.userWorkouts")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, date, COALESCE(notes, ''), workout_type_id
		FROM user_workouts WHERE user_id = $1 ORDER BY date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	return rows2UserWorkouts(rows)
}

func (r *Repo) AddUserWorkout(ctx context.Context, workout UserWorkout) (*UserWorkout, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsRepo.addUserWorkout")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx,
		`INSERT INTO user_workouts (user_id, date, notes, workout_type_id)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		workout.UserID, workout.Date, workout.Notes, workout.WorkoutTypeID,
	).Scan(&workout.ID)
	if err != nil {
		return nil, err
	}

	return &workout, nil
}

func (r *Repo) WorkoutExercises(ctx context.Context, userWorkoutID int) ([]UserWorkoutExercise, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsRepo.workoutExercises")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT
			id, user_workout_id, exercise_id,
			COALESCE(sets, 0), COALESCE(reps, 0), COALESCE(weight, 0), COALESCE(notes, '')
		FROM user_workout_exercises WHERE user_workout_id = $1 ORDER BY id`,
		userWorkoutID,
	)
	if err != nil {
		return nil, err
	}

	return rows2UserWorkoutExercises(rows)
}

func (r *Repo) AddWorkoutExercise(ctx context.Context, we UserWorkoutExercise) (*UserWorkoutExercise, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsRepo.addWorkoutExercise")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx,
		`INSERT INTO user_workout_exercises
			(user_workout_id, exercise_id, sets, reps, weight, notes)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		we.UserWorkoutID, we.ExerciseID, we.Sets, we.Reps, we.Weight, we.Notes,
	).Scan(&we.ID)
	if err != nil {
		return nil, err
	}

	return &we, nil
}

func rows2WorkoutTypes(rows pgx.Rows) ([]WorkoutType, error) {
	defer rows.Close()
	workoutTypes := make([]WorkoutType, 0)
	for rows.Next() {
		var wt WorkoutType
		if err := rows.Scan(&wt.ID, &wt.Name, &wt.Description); err != nil {
			return nil, err
		}
		workoutTypes = append(workoutTypes, wt)
	}
	return workoutTypes, rows.Err()
}

func rows2Exercises(rows pgx.Rows) ([]Exercise, error) {
	defer rows.Close()
	exercises := make([]Exercise, 0)
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.WorkoutTypeID); err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}

func rows2UserWorkouts(rows pgx.Rows) ([]UserWorkout, error) {
	defer rows.Close()
	workouts := make([]UserWorkout, 0)
	for rows.Next() {
		var w UserWorkout
		if err := rows.Scan(&w.ID, &w.UserID, &w.Date, &w.Notes, &w.WorkoutTypeID); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

func rows2UserWorkoutExercises(rows pgx.Rows) ([]UserWorkoutExercise, error) {
	defer rows.Close()
	workoutExercises := make([]UserWorkoutExercise, 0)
	for rows.Next() {
		var we UserWorkoutExercise
		if err := rows.Scan(
			&we.ID, &we.UserWorkoutID, &we.ExerciseID,
			&we.Sets, &we.Reps, &we.Weight, &we.Notes,
		); err != nil {
			return nil, err
		}
		workoutExercises = append(workoutExercises, we)
	}
	return workoutExercises, rows.Err()
}
