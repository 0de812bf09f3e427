// Package client is a Go client for the FitZone API. GET responses are
// cached per endpoint, and mutations invalidate the affected endpoints,
// so readers after a write always observe fresh data.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fitzonehq/fitzone/internal/auth"
	"github.com/fitzonehq/fitzone/internal/classes"
	"github.com/fitzonehq/fitzone/internal/memberships"
	"github.com/fitzonehq/fitzone/internal/trainers"
	"github.com/fitzonehq/fitzone/internal/users"
	"github.com/fitzonehq/fitzone/internal/workouts"
)

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error [%d]: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
	token      string
}

// NewClient creates an API client. The cache is injected so callers
// control caching policy (use NewFreeCache for the default in-memory one).
func NewClient(baseURL string, httpClient *http.Client, cache Cache) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		cache:      cache,
	}
}

// SetToken sets the session token sent with every request
func (c *Client) SetToken(token string) {
	c.token = token
}

// Login performs a password login and stores the received session token
func (c *Client) Login(ctx context.Context, username, password string) error {
	reqBody, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := c.postJSON(ctx, "/api/login", reqBody, &resp); err != nil {
		return err
	}

	c.token = resp.Token
	return nil
}

func (c *Client) CurrentUser(ctx context.Context) (*users.User, error) {
	var user users.User
	if err := c.getJSON(ctx, "/api/auth/user", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) WorkoutTypes(ctx context.Context) ([]workouts.WorkoutType, error) {
	var workoutTypes []workouts.WorkoutType
	if err := c.getJSON(ctx, "/api/workout-types", &workoutTypes); err != nil {
		return nil, err
	}
	return workoutTypes, nil
}

func (c *Client) Exercises(ctx context.Context, workoutTypeID int) ([]workouts.Exercise, error) {
	var exercises []workouts.Exercise
	if err := c.getJSON(ctx, "/api/exercises/"+strconv.Itoa(workoutTypeID), &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

func (c *Client) Workouts(ctx context.Context) ([]workouts.UserWorkout, error) {
	var userWorkouts []workouts.UserWorkout
	if err := c.getJSON(ctx, "/api/workouts", &userWorkouts); err != nil {
		return nil, err
	}
	return userWorkouts, nil
}

type AddWorkoutRequest struct {
	Date          string `json:"date"`
	Notes         string `json:"notes,omitempty"`
	WorkoutTypeID int    `json:"workoutTypeId"`
}

func (c *Client) AddWorkout(ctx context.Context, req AddWorkoutRequest) (*workouts.UserWorkout, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var workout workouts.UserWorkout
	if err := c.postJSON(ctx, "/api/workouts", reqBody, &workout, "/api/workouts"); err != nil {
		return nil, err
	}
	return &workout, nil
}

func (c *Client) WorkoutExercises(ctx context.Context, workoutID int) ([]workouts.UserWorkoutExercise, error) {
	var workoutExercises []workouts.UserWorkoutExercise
	path := fmt.Sprintf("/api/workouts/%d/exercises", workoutID)
	if err := c.getJSON(ctx, path, &workoutExercises); err != nil {
		return nil, err
	}
	return workoutExercises, nil
}

type AddWorkoutExerciseRequest struct {
	ExerciseID int    `json:"exerciseId"`
	Sets       int    `json:"sets,omitempty"`
	Reps       int    `json:"reps,omitempty"`
	Weight     int    `json:"weight,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

func (c *Client) AddWorkoutExercise(
	ctx context.Context,
	workoutID int,
	req AddWorkoutExerciseRequest,
) (*workouts.UserWorkoutExercise, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/api/workouts/%d/exercises", workoutID)
	var workoutExercise workouts.UserWorkoutExercise
	if err := c.postJSON(ctx, path, reqBody, &workoutExercise, path); err != nil {
		return nil, err
	}
	return &workoutExercise, nil
}

func (c *Client) Trainers(ctx context.Context) ([]trainers.Trainer, error) {
	var gymTrainers []trainers.Trainer
	if err := c.getJSON(ctx, "/api/trainers", &gymTrainers); err != nil {
		return nil, err
	}
	return gymTrainers, nil
}

func (c *Client) Trainer(ctx context.Context, id int) (*trainers.Trainer, error) {
	var trainer trainers.Trainer
	if err := c.getJSON(ctx, "/api/trainers/"+strconv.Itoa(id), &trainer); err != nil {
		return nil, err
	}
	return &trainer, nil
}

func (c *Client) TrainerBookings(ctx context.Context) ([]trainers.Booking, error) {
	var bookings []trainers.Booking
	if err := c.getJSON(ctx, "/api/trainer-bookings", &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

type AddTrainerBookingRequest struct {
	TrainerID   int    `json:"trainerId"`
	BookingDate string `json:"bookingDate"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Notes       string `json:"notes,omitempty"`
	IsTrial     bool   `json:"isTrial,omitempty"`
}

func (c *Client) AddTrainerBooking(ctx context.Context, req AddTrainerBookingRequest) (*trainers.Booking, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var booking trainers.Booking
	if err := c.postJSON(ctx, "/api/trainer-bookings", reqBody, &booking, "/api/trainer-bookings"); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) ClassSchedule(ctx context.Context) ([]classes.ScheduleEntry, error) {
	var schedule []classes.ScheduleEntry
	if err := c.getJSON(ctx, "/api/class-schedule", &schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (c *Client) ClassScheduleByDay(ctx context.Context, day string) ([]classes.ScheduleEntry, error) {
	var schedule []classes.ScheduleEntry
	if err := c.getJSON(ctx, "/api/class-schedule/"+day, &schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (c *Client) ClassBookings(ctx context.Context) ([]classes.Booking, error) {
	var bookings []classes.Booking
	if err := c.getJSON(ctx, "/api/class-bookings", &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

type AddClassBookingRequest struct {
	ClassScheduleID int    `json:"classScheduleId"`
	BookingDate     string `json:"bookingDate"`
}

func (c *Client) AddClassBooking(ctx context.Context, req AddClassBookingRequest) (*classes.Booking, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var booking classes.Booking
	if err := c.postJSON(ctx, "/api/class-bookings", reqBody, &booking, "/api/class-bookings"); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) MembershipPlans(ctx context.Context) ([]memberships.Plan, error) {
	var plans []memberships.Plan
	if err := c.getJSON(ctx, "/api/membership-plans", &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Membership returns the active membership, or nil when there is none
func (c *Client) Membership(ctx context.Context) (*memberships.Membership, error) {
	var membership *memberships.Membership
	if err := c.getJSON(ctx, "/api/user-membership", &membership); err != nil {
		return nil, err
	}
	return membership, nil
}

type PurchaseMembershipRequest struct {
	MembershipPlanID int    `json:"membershipPlanId"`
	StartDate        string `json:"startDate,omitempty"`
}

func (c *Client) PurchaseMembership(ctx context.Context, req PurchaseMembershipRequest) (*memberships.Membership, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var membership memberships.Membership
	if err := c.postJSON(ctx, "/api/user-membership", reqBody, &membership, "/api/user-membership"); err != nil {
		return nil, err
	}
	return &membership, nil
}

// InitData seeds the initial data set on the server
func (c *Client) InitData(ctx context.Context) error {
	return c.postJSON(ctx, "/api/init-data", nil, nil,
		"/api/workout-types",
		"/api/trainers",
		"/api/class-schedule",
		"/api/membership-plans",
	)
}

// getJSON fetches path, serving from the cache when possible
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	if c.cache != nil {
		if cached, ok := c.cache.Get(path); ok {
			return json.Unmarshal(cached, out)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	body, err := c.do(req)
	if err != nil {
		return err
	}

	if c.cache != nil {
		c.cache.Set(path, body)
	}

	return json.Unmarshal(body, out)
}

// postJSON sends a mutation and invalidates the given cached endpoints
func (c *Client) postJSON(
	ctx context.Context,
	path string,
	reqBody []byte,
	out interface{},
	invalidate ...string,
) error {
	var bodyReader io.Reader
	if reqBody != nil {
		bodyReader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	body, err := c.do(req)
	if err != nil {
		return err
	}

	if c.cache != nil {
		c.cache.Invalidate(invalidate...)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set(auth.TokenHeader, c.token)
	}
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	return body, nil
}
