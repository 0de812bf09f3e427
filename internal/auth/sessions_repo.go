package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitzonehq/fitzone/internal/telemetry/tracing"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is a logged in user session. The token is handed to the client
// and sent back with every authenticated request.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionsRepo stores sessions in the sessions table: the session token is
// the primary key and the session payload is kept as jsonb.
type SessionsRepo struct {
	db *pgxpool.Pool
}

func NewSessionsRepo(db *pgxpool.Pool) *SessionsRepo {
	return &SessionsRepo{db: db}
}

func (r *SessionsRepo) Add(ctx context.Context, session Session) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionsRepo.add")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO sessions (sid, sess, expire) VALUES ($1, $2, $3)`,
		session.Token, sessJSON, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

func (r *SessionsRepo) Get(ctx context.Context, token string) (*Session, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionsRepo.get")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var sessJSON []byte
	err = r.db.QueryRow(ctx,
		`SELECT sess FROM sessions WHERE sid = $1 AND expire > now()`,
		token,
	).Scan(&sessJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = nil // not an error for the span
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var session Session
	if err = json.Unmarshal(sessJSON, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &session, nil
}

func (r *SessionsRepo) Delete(ctx context.Context, token string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionsRepo.delete")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE sid = $1`, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteExpired removes all sessions past their expiry and
// returns the number of removed rows
func (r *SessionsRepo) DeleteExpired(ctx context.Context) (int64, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionsRepo.deleteExpired")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expire <= now()`)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
