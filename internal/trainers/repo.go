package trainers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitzonehq/fitzone/internal/telemetry/tracing"
)

var ErrTrainerNotFound = errors.New("trainer not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Trainers(ctx context.Context) ([]Trainer, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trainersRepo.trainers")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT
			id, name, expertise, experience,
			COALESCE(bio, ''), COALESCE(image_url, '')
		FROM trainers ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}

	return rows2Trainers(rows)
}

func (r *Repo) TrainerByID(ctx context.Context, id int) (*Trainer, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trainersRepo.trainerByID")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var trainer Trainer
	err = r.db.QueryRow(ctx,
		`SELECT
			id, name, expertise, experience,
			COALESCE(bio, ''), COALESCE(image_url, '')
		FROM trainers WHERE id = $1`,
		id,
	).Scan(
		&trainer.ID, &trainer.Name, &trainer.Expertise,
		&trainer.Experience, &trainer.Bio, &trainer.ImageURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = nil
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}

	return &trainer, nil
}

func (r *Repo) AddTrainer(ctx context.Context, trainer Trainer) (*Trainer, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trainersRepo.addTrainer")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx,
		`INSERT INTO trainers (name, expertise, experience, bio, image_url)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		trainer.Name, trainer.Expertise, trainer.Experience, trainer.Bio, trainer.ImageURL,
	).Scan(&trainer.ID)
	if err != nil {
		return nil, err
	}

	return &trainer, nil
}

// BookingsByUser returns the personal training sessions of one user
func (r *Repo) BookingsByUser(ctx context.Context, userID string) ([]Booking, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trainersRepo.bookingsByUser")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT
			id, user_id, trainer_id, booking_date, start_time, end_time,
			COALESCE(notes, ''), is_trial, status
		FROM trainer_bookings WHERE user_id = $1 ORDER BY booking_date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	return rows2Bookings(rows)
}

func (r *Repo) BookingsByTrainer(ctx context.Context, trainerID int) ([]Booking, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trainersRepo.bookingsByTrainer")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT
			id, user_id, trainer_id, booking_date, start_time, end_time,
			COALESCE(notes, ''), is_trial, status
		FROM trainer_bookings WHERE trainer_id = $1 ORDER BY booking_date DESC, id DESC`,
		trainerID,
	)
	if err != nil {
		return nil, err
	}

	return rows2Bookings(rows)
}

func (r *Repo) AddBooking(ctx context.Context, booking Booking) (*Booking, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trainersRepo.addBooking")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if booking.Status == "" {
		booking.Status = "confirmed"
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO trainer_bookings
			(user_id, trainer_id, booking_date, start_time, end_time, notes, is_trial, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		booking.UserID, booking.TrainerID, booking.BookingDate,
		booking.StartTime, booking.EndTime, booking.Notes,
		booking.IsTrial, booking.Status,
	).Scan(&booking.ID)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

func rows2Trainers(rows pgx.Rows) ([]Trainer, error) {
	defer rows.Close()
	trainers := make([]Trainer, 0)
	for rows.Next() {
		var trainer Trainer
		if err := rows.Scan(
			&trainer.ID, &trainer.Name, &trainer.Expertise,
			&trainer.Experience, &trainer.Bio, &trainer.ImageURL,
		); err != nil {
			return nil, err
		}
		trainers = append(trainers, trainer)
	}
	return trainers, rows.Err()
}

func rows2Bookings(rows pgx.Rows) ([]Booking, error) {
	defer rows.Close()
	bookings := make([]Booking, 0)
	for rows.Next() {
		var booking Booking
		if err := rows.Scan(
			&booking.ID, &booking.UserID, &booking.TrainerID,
			&booking.BookingDate, &booking.StartTime, &booking.EndTime,
			&booking.Notes, &booking.IsTrial, &booking.Status,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}
