package classes

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

func (r *Repo) ClassTypes(ctx context.Context) ([]ClassType, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "classesRepo.classTypes")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT id, name, COALESCE(description, '') FROM class_types ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}

	defer rows.Close()
	classTypes := make([]ClassType, 0)
	for rows.Next() {
		var ct ClassType
		if err = rows.Scan(&ct.ID, &ct.Name, &ct.Description); err != nil {
			return nil, err
		}
		classTypes = append(classTypes, ct)
	}
	return classTypes, rows.Err()
}

func (r *Repo) AddClassType(ctx context.Context, classType ClassType) (*ClassType, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "classesRepo.addClassType")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx,
		`INSERT INTO class_types (name, description) VALUES ($1, $2) RETURNING id`,
		classType.Name, classType.Description,
	).Scan(&classType.ID)
	if err != nil {
		return nil, err
	}

	return &classType, nil
}

// Schedule returns the full weekly class schedule
func (r *Repo) Schedule(ctx context.Context) ([]ScheduleEntry, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "classesRepo.schedule")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT id, class_type_id, trainer_id, day_of_week, start_time, end_time, capacity
		FROM class_schedule ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}

	return rows2ScheduleEntries(rows)
}

// ScheduleByDay filters the schedule by exact day name, case-sensitive
func (r *Repo) ScheduleByDay(ctx context.Context, day string) ([]ScheduleEntry, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "classesRepo.scheduleByDay")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT id, class_type_id, trainer_id, day_of_week, start_time, end_time, capacity
		FROM class_schedule WHERE day_of_week = $1 ORDER BY id`,
		day,
	)
	if err != nil {
		return nil, err
	}

	return rows2ScheduleEntries(rows)
}

func (r *Repo) AddScheduleEntry(ctx context.Context, entry ScheduleEntry) (*ScheduleEntry, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "classesRepo.addScheduleEntry")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx,
		`INSERT INTO class_schedule
			(class_type_id, trainer_id, day_of_week, start_time, end_time, capacity)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		entry.ClassTypeID, entry.TrainerID, entry.DayOfWeek,
		entry.StartTime, entry.EndTime, entry.Capacity,
	).Scan(&entry.ID)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *Repo) BookingsByUser(ctx context.Context, userID string) ([]Booking, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "classesRepo.bookingsByUser")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, class_schedule_id, booking_date, attended
		FROM class_bookings WHERE user_id = $1 ORDER BY booking_date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	defer rows.Close()
	bookings := make([]Booking, 0)
	for rows.Next() {
		var booking Booking
		if err = rows.Scan(
			&booking.ID, &booking.UserID, &booking.ClassScheduleID,
			&booking.BookingDate, &booking.Attended,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// AddBooking inserts a booking. Constraint violations (duplicate booking,
// unknown schedule entry) come back unchanged for the caller to classify.
func (r *Repo) AddBooking(ctx context.Context, booking Booking) (*Booking, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "classesRepo.addBooking")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx,
		`INSERT INTO class_bookings (user_id, class_schedule_id, booking_date)
		VALUES ($1, $2, $3) RETURNING id, attended`,
		booking.UserID, booking.ClassScheduleID, booking.BookingDate,
	).Scan(&booking.ID, &booking.Attended)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

func rows2ScheduleEntries(rows pgx.Rows) ([]ScheduleEntry, error) {
	defer rows.Close()
	entries := make([]ScheduleEntry, 0)
	for rows.Next() {
		var entry ScheduleEntry
		if err := rows.Scan(
			&entry.ID, &entry.ClassTypeID, &entry.TrainerID,
			&entry.DayOfWeek, &entry.StartTime, &entry.EndTime, &entry.Capacity,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
