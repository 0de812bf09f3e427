package classes

import "time"

// ClassType is a kind of group class, e.g. Zumba, Yoga, Bhangra
type ClassType struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ScheduleEntry is a weekly recurring class slot
type ScheduleEntry struct {
	ID          int    `json:"id"`
	ClassTypeID int    `json:"classTypeId"`
	TrainerID   int    `json:"trainerId"`
	// DayOfWeek: Monday, Tuesday, ...
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Capacity  int    `json:"capacity"`
}

// Booking is a user booking for one class slot on a concrete date.
// A user can book a given slot and date only once.
type Booking struct {
	ID              int       `json:"id"`
	UserID          string    `json:"userId"`
	ClassScheduleID int       `json:"classScheduleId"`
	BookingDate     time.Time `json:"bookingDate"`
	Attended        bool      `json:"attended"`
}
