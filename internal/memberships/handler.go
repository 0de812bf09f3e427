package memberships

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/fitzonehq/fitzone/internal/auth"
	"github.com/fitzonehq/fitzone/internal/telemetry/metrics"
	"github.com/fitzonehq/fitzone/internal/telemetry/tracing"
	"github.com/fitzonehq/fitzone/pkg"
)

type membershipsRepo interface {
	Plans(ctx context.Context) ([]Plan, error)
	PlanByID(ctx context.Context, id int) (*Plan, error)
	ActiveMembership(ctx context.Context, userID string) (*Membership, error)
	AddMembership(ctx context.Context, membership Membership) (*Membership, error)
}

type Handler struct {
	repo    membershipsRepo
	metrics *metrics.Manager
	now     func() time.Time
}

func NewHandler(repo membershipsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
		now:     time.Now,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/membership-plans", h.handleGetPlans).
		Methods("GET", "OPTIONS").Name("membership-plans")
	router.HandleFunc("/user-membership", h.handleGetMembership).
		Methods("GET", "OPTIONS").Name("get-user-membership")
	router.HandleFunc("/user-membership", h.handlePurchaseMembership).
		Methods("POST", "OPTIONS").Name("purchase-membership")
}

func (h *Handler) handleGetPlans(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.memberships.plans")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	plans, err := h.repo.Plans(ctx)
	if err != nil {
		log.Errorf("get membership plans: %s", err)
		http.Error(w, "failed to fetch membership plans", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, plans)
}

// handleGetMembership returns the active membership of the logged in user,
// or a JSON null when there is none
func (h *Handler) handleGetMembership(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.memberships.get")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	membership, err := h.repo.ActiveMembership(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoActiveMembership) {
			pkg.WriteJSONResponseOK(w, "null")
			return
		}
		log.Errorf("get membership for user %s: %s", userID, err)
		http.Error(w, "failed to fetch membership", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, membership)
}

func (h *Handler) handlePurchaseMembership(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.memberships.purchase")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req struct {
		MembershipPlanID int    `json:"membershipPlanId"`
		StartDate        string `json:"startDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.MembershipPlanID <= 0 {
		http.Error(w, "membershipPlanId is required", http.StatusBadRequest)
		return
	}

	plan, err := h.repo.PlanByID(ctx, req.MembershipPlanID)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			http.Error(w, "membership plan not found", http.StatusNotFound)
			return
		}
		log.Errorf("get membership plan %d: %s", req.MembershipPlanID, err)
		http.Error(w, "failed to fetch membership plan", http.StatusInternalServerError)
		return
	}

	startDate := h.now()
	if req.StartDate != "" {
		startDate, err = pkg.ParseDate(req.StartDate)
		if err != nil {
			http.Error(w, "invalid start date", http.StatusBadRequest)
			return
		}
	}

	// a plan month counts as 30 days
	endDate := startDate.Add(time.Duration(plan.DurationMonths) * 30 * 24 * time.Hour)

	membership, err := h.repo.AddMembership(ctx, Membership{
		UserID:           userID,
		MembershipPlanID: plan.ID,
		StartDate:        startDate,
		EndDate:          endDate,
		Active:           true,
	})
	if err != nil {
		log.Errorf("purchase membership for user %s: %s", userID, err)
		http.Error(w, "failed to purchase membership", http.StatusInternalServerError)
		return
	}

	h.metrics.CounterMembershipsSold.Inc()
	log.Tracef("user %s purchased plan %d [%s]", userID, plan.ID, plan.Name)

	writeJSON(w, http.StatusCreated, membership)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, payloadJSON, statusCode)
}
