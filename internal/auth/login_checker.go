package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

// LoginChecker checks the redis session cache first, then falls back to
// the sessions store, re-caching whatever it finds there.
type LoginChecker struct {
	ttl      time.Duration
	rdb      *redis.Client
	sessions sessionsStore
}

func NewLoginChecker(ttl time.Duration, rdb *redis.Client, sessions sessionsStore) *LoginChecker {
	return &LoginChecker{
		ttl:      ttl,
		rdb:      rdb,
		sessions: sessions,
	}
}

func (c *LoginChecker) UserID(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNotLoggedIn
	}

	key := sessionKey(token)

	sessJSON, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var session Session
		if err := json.Unmarshal([]byte(sessJSON), &session); err == nil {
			if session.ExpiresAt.After(time.Now()) {
				return session.UserID, nil
			}
			return "", ErrNotLoggedIn
		}
		log.Errorf("login checker: corrupt cached session: %s", err)
	} else if !errors.Is(err, redis.Nil) {
		log.Errorf("login checker: redis get: %s", err)
	}

	session, err := c.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return "", ErrNotLoggedIn
		}
		return "", err
	}

	if cached, err := json.Marshal(session); err == nil {
		if ttl := time.Until(session.ExpiresAt); ttl > 0 {
			if err := c.rdb.Set(ctx, key, cached, ttl).Err(); err != nil {
				log.Errorf("login checker: failed to re-cache session: %s", err)
			}
		}
	}

	return session.UserID, nil
}
