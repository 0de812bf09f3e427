package trainers

import "time"

type Trainer struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Expertise string `json:"expertise"`
	// Experience in years
	Experience int    `json:"experience"`
	Bio        string `json:"bio,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

// Booking is a personal training session with a trainer
type Booking struct {
	ID          int       `json:"id"`
	UserID      string    `json:"userId"`
	TrainerID   int       `json:"trainerId"`
	BookingDate time.Time `json:"bookingDate"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Notes       string    `json:"notes,omitempty"`
	IsTrial     bool      `json:"isTrial"`
	// Status: confirmed, cancelled or completed
	Status string `json:"status"`
}
