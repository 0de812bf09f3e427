package memberships

import "time"

// Plan is a membership plan on offer
type Plan struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	DurationMonths int    `json:"durationMonths"`
	// Price in INR
	Price       int      `json:"price"`
	Description string   `json:"description,omitempty"`
	Features    []string `json:"features"`
}

// Membership is a purchased plan of one user
type Membership struct {
	ID               int       `json:"id"`
	UserID           string    `json:"userId"`
	MembershipPlanID int       `json:"membershipPlanId"`
	StartDate        time.Time `json:"startDate"`
	EndDate          time.Time `json:"endDate"`
	Active           bool      `json:"active"`
}
