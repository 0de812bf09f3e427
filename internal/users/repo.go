package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitzonehq/fitzone/internal/auth"
	"github.com/fitzonehq/fitzone/internal/telemetry/tracing"
)

var ErrUserNotFound = errors.New("user not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Get(ctx context.Context, id string) (*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.get")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var user User
	err = r.db.QueryRow(ctx,
		`SELECT
			id, COALESCE(email, ''), COALESCE(first_name, ''),
			COALESCE(last_name, ''), COALESCE(profile_image_url, ''),
			created_at, updated_at
		FROM users WHERE id = $1`,
		id,
	).Scan(
		&user.ID, &user.Email, &user.FirstName,
		&user.LastName, &user.ProfileImageURL,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = nil
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

// Upsert creates the user, or refreshes the profile fields if a user
// with the same ID already exists
func (r *Repo) Upsert(ctx context.Context, user User) (*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.upsert")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var upserted User
	err = r.db.QueryRow(ctx,
		`INSERT INTO users (id, email, first_name, last_name, profile_image_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			profile_image_url = EXCLUDED.profile_image_url,
			updated_at = now()
		RETURNING
			id, COALESCE(email, ''), COALESCE(first_name, ''),
			COALESCE(last_name, ''), COALESCE(profile_image_url, ''),
			created_at, updated_at`,
		user.ID, user.Email, user.FirstName, user.LastName, user.ProfileImageURL,
	).Scan(
		&upserted.ID, &upserted.Email, &upserted.FirstName,
		&upserted.LastName, &upserted.ProfileImageURL,
		&upserted.CreatedAt, &upserted.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &upserted, nil
}

// UpsertIdentity implements auth.UserStore
func (r *Repo) UpsertIdentity(ctx context.Context, identity auth.Identity) (string, error) {
	user, err := r.Upsert(ctx, User{
		ID:              identity.Subject,
		Email:           identity.Email,
		FirstName:       identity.FirstName,
		LastName:        identity.LastName,
		ProfileImageURL: identity.ImageURL,
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
