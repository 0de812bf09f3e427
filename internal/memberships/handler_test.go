package memberships

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitzonehq/fitzone/internal/auth"
	"github.com/fitzonehq/fitzone/internal/telemetry/metrics"
)

type fakeMembershipsRepo struct {
	plans       map[int]*Plan
	memberships map[string]*Membership
	nextID      int
}

func newFakeMembershipsRepo() *fakeMembershipsRepo {
	return &fakeMembershipsRepo{
		plans:       map[int]*Plan{},
		memberships: map[string]*Membership{},
		nextID:      1,
	}
}

func (r *fakeMembershipsRepo) Plans(_ context.Context) ([]Plan, error) {
	plans := make([]Plan, 0, len(r.plans))
	for i := 1; i <= len(r.plans); i++ {
		plans = append(plans, *r.plans[i])
	}
	return plans, nil
}

func (r *fakeMembershipsRepo) PlanByID(_ context.Context, id int) (*Plan, error) {
	plan, ok := r.plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

func (r *fakeMembershipsRepo) ActiveMembership(_ context.Context, userID string) (*Membership, error) {
	membership, ok := r.memberships[userID]
	if !ok || !membership.Active || membership.EndDate.Before(time.Now()) {
		return nil, ErrNoActiveMembership
	}
	return membership, nil
}

func (r *fakeMembershipsRepo) AddMembership(_ context.Context, membership Membership) (*Membership, error) {
	membership.ID = r.nextID
	r.nextID++
	r.memberships[membership.UserID] = &membership
	return &membership, nil
}

func testRouter(repo membershipsRepo) *mux.Router {
	router := mux.NewRouter()
	NewHandler(repo, metrics.NewTestManager()).SetupRoutes(router.PathPrefix("/api").Subrouter())
	return router
}

func TestHandler_GetPlans(t *testing.T) {
	repo := newFakeMembershipsRepo()
	repo.plans[1] = &Plan{ID: 1, Name: "1 Month Plan", DurationMonths: 1, Price: 4000, Features: []string{"Gym access"}}
	repo.plans[2] = &Plan{ID: 2, Name: "3 Month Plan", DurationMonths: 3, Price: 10000, Features: []string{"Gym access", "Group classes"}}
	router := testRouter(repo)

	req := httptest.NewRequest("GET", "/api/membership-plans", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var plans []Plan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &plans))
	require.Len(t, plans, 2)
	assert.Equal(t, 4000, plans[0].Price)
}

func TestHandler_GetMembership_NoneIsNull(t *testing.T) {
	router := testRouter(newFakeMembershipsRepo())

	req := httptest.NewRequest("GET", "/api/user-membership", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user1"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "null", rr.Body.String())
}

func TestHandler_GetMembership(t *testing.T) {
	repo := newFakeMembershipsRepo()
	repo.memberships["user1"] = &Membership{
		ID:               1,
		UserID:           "user1",
		MembershipPlanID: 2,
		StartDate:        time.Now().AddDate(0, 0, -10),
		EndDate:          time.Now().AddDate(0, 0, 80),
		Active:           true,
	}
	router := testRouter(repo)

	req := httptest.NewRequest("GET", "/api/user-membership", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user1"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var membership Membership
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &membership))
	assert.Equal(t, 2, membership.MembershipPlanID)
	assert.True(t, membership.Active)
}

func TestHandler_GetMembership_ExpiredIsNull(t *testing.T) {
	repo := newFakeMembershipsRepo()
	repo.memberships["user1"] = &Membership{
		ID:               1,
		UserID:           "user1",
		MembershipPlanID: 1,
		StartDate:        time.Now().AddDate(0, -3, 0),
		EndDate:          time.Now().AddDate(0, 0, -5),
		Active:           true,
	}
	router := testRouter(repo)

	req := httptest.NewRequest("GET", "/api/user-membership", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user1"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "null", rr.Body.String())
}

func TestHandler_PurchaseMembership(t *testing.T) {
	repo := newFakeMembershipsRepo()
	repo.plans[3] = &Plan{ID: 3, Name: "6 Month Plan", DurationMonths: 6, Price: 15000}
	router := testRouter(repo)

	body, err := json.Marshal(map[string]interface{}{
		"membershipPlanId": 3,
		"startDate":        "2025-06-01",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/user-membership", bytes.NewReader(body))
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user1"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var membership Membership
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &membership))
	assert.Equal(t, "user1", membership.UserID)
	assert.Equal(t, 3, membership.MembershipPlanID)
	assert.True(t, membership.Active)

	// a plan month is 30 days: 6 months = 180 days
	wantEnd := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Add(180 * 24 * time.Hour)
	assert.True(t, membership.EndDate.Equal(wantEnd),
		"end date %s, want %s", membership.EndDate, wantEnd)
}

func TestHandler_PurchaseMembership_DefaultStartIsNow(t *testing.T) {
	repo := newFakeMembershipsRepo()
	repo.plans[1] = &Plan{ID: 1, Name: "1 Month Plan", DurationMonths: 1, Price: 4000}

	handler := NewHandler(repo, metrics.NewTestManager())
	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)
	handler.now = func() time.Time { return now }

	router := mux.NewRouter()
	handler.SetupRoutes(router.PathPrefix("/api").Subrouter())

	body, err := json.Marshal(map[string]interface{}{"membershipPlanId": 1})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/user-membership", bytes.NewReader(body))
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user1"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var membership Membership
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &membership))
	assert.True(t, membership.StartDate.Equal(now))
	assert.True(t, membership.EndDate.Equal(now.Add(30*24*time.Hour)))
}

func TestHandler_PurchaseMembership_UnknownPlan(t *testing.T) {
	router := testRouter(newFakeMembershipsRepo())

	body, err := json.Marshal(map[string]interface{}{"membershipPlanId": 99})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/user-membership", bytes.NewReader(body))
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user1"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_PurchaseMembership_MissingPlan(t *testing.T) {
	router := testRouter(newFakeMembershipsRepo())

	req := httptest.NewRequest("POST", "/api/user-membership", bytes.NewReader([]byte(`{}`)))
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user1"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
