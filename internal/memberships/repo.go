package memberships

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitzonehq/fitzone/internal/telemetry/tracing"
)

var (
	ErrPlanNotFound       = errors.New("membership plan not found")
	ErrNoActiveMembership = errors.New("no active membership")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Plans(ctx context.Context) ([]Plan, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "membershipsRepo.plans")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT id, name, duration_months, price, COALESCE(description, ''), COALESCE(features, '{}')
		FROM membership_plans ORDER BY duration_months`,
	)
	if err != nil {
		return nil, err
	}

	defer rows.Close()
	plans := make([]Plan, 0)
	for rows.Next() {
		var plan Plan
		if err = rows.Scan(
			&plan.ID, &plan.Name, &plan.DurationMonths,
			&plan.Price, &plan.Description, &plan.Features,
		); err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

func (r *Repo) PlanByID(ctx context.Context, id int) (*Plan, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "membershipsRepo.planByID")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var plan Plan
	err = r.db.QueryRow(ctx,
		`SELECT id, name, duration_months, price, COALESCE(description, ''), COALESCE(features, '{}')
		FROM membership_plans WHERE id = $1`,
		id,
	).Scan(
		&plan.ID, &plan.Name, &plan.DurationMonths,
		&plan.Price, &plan.Description, &plan.Features,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = nil
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	return &plan, nil
}

func (r *Repo) AddPlan(ctx context.Context, plan Plan) (*Plan, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "membershipsRepo.addPlan")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx,
		`INSERT INTO membership_plans (name, duration_months, price, description, features)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		plan.Name, plan.DurationMonths, plan.Price, plan.Description, plan.Features,
	).Scan(&plan.ID)
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

// ActiveMembership returns the current membership of a user: marked active
// and not past its end date. Returns ErrNoActiveMembership when there is none.
func (r *Repo) ActiveMembership(ctx context.Context, userID string) (*Membership, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "membershipsRepo.activeMembership")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var membership Membership
	err = r.db.QueryRow(ctx,
		`SELECT id, user_id, membership_plan_id, start_date, end_date, active
		FROM user_memberships
		WHERE user_id = $1 AND active = true AND end_date >= CURRENT_DATE
		ORDER BY end_date DESC LIMIT 1`,
		userID,
	).Scan(
		&membership.ID, &membership.UserID, &membership.MembershipPlanID,
		&membership.StartDate, &membership.EndDate, &membership.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = nil
			return nil, ErrNoActiveMembership
		}
		return nil, err
	}

	return &membership, nil
}

func (r *Repo) AddMembership(ctx context.Context, membership Membership) (*Membership, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "membershipsRepo.addMembership")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx,
		`INSERT INTO user_memberships (user_id, membership_plan_id, start_date, end_date, active)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		membership.UserID, membership.MembershipPlanID,
		membership.StartDate, membership.EndDate, membership.Active,
	).Scan(&membership.ID)
	if err != nil {
		return nil, err
	}

	return &membership, nil
}
