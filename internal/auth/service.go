package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/fitzonehq/fitzone/pkg"
)

const (
	// DefaultTTL is how long a session lives before the user
	// has to log in again
	DefaultTTL = 24 * 7 * time.Hour

	sessionKeyPrefix = "fitzone-session||"
)

type sessionsStore interface {
	Add(ctx context.Context, session Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// Service creates and destroys user sessions. Sessions are persisted in
// the sessions table and cached in redis for cheap auth checks.
type Service struct {
	sessions sessionsStore
	rdb      *redis.Client
	ttl      time.Duration
}

func NewService(sessions sessionsStore, rdb *redis.Client) *Service {
	return &Service{
		sessions: sessions,
		rdb:      rdb,
		ttl:      DefaultTTL,
	}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// Login creates a new session for the given user and returns the session token
func (s *Service) Login(ctx context.Context, userID string, createdAt time.Time) (string, error) {
	token, err := pkg.GenerateRandomString(35)
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	session := Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(s.ttl),
	}

	if err := s.sessions.Add(ctx, session); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	sessJSON, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(token), sessJSON, s.ttl).Err(); err != nil {
		// session is in the store, auth checks will fall back to it
		log.Errorf("login: failed to cache session: %s", err)
	}

	return token, nil
}

// Logout destroys the session with the given token
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("empty token")
	}

	if err := s.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		log.Errorf("logout: failed to remove cached session: %s", err)
	}

	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// ScanAndClean removes expired sessions from the store. Meant to be
// called periodically.
func (s *Service) ScanAndClean(ctx context.Context) {
	removed, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		log.Errorf("sessions scan and clean: %s", err)
		return
	}
	if removed > 0 {
		log.Debugf("sessions scan and clean: removed %d expired sessions", removed)
	}
}
