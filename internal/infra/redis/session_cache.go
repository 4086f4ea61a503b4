package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"aura-studio/internal/domain"
	"aura-studio/internal/domain/model"
	"aura-studio/internal/infra/metrics"
)

// SessionCache mirrors studio session snapshots so a restarted instance
// can rehydrate recent sessions. The in-memory repository stays canonical;
// cache misses and redis failures are not fatal to any request.
type SessionCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewSessionCache(client RedisClient, ttl time.Duration) *SessionCache {
	return &SessionCache{client: client, ttl: ttl}
}

func key(sessionID string) string { return "studio_session:" + sessionID }

func (c *SessionCache) Store(ctx context.Context, session *model.StudioSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(session.ID), data, c.ttl)
}

func (c *SessionCache) Get(ctx context.Context, sessionID string) (*model.StudioSession, error) {
	data, err := c.client.Get(ctx, key(sessionID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			metrics.IncCacheRequest("session", "miss")
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	metrics.IncCacheRequest("session", "hit")

	var session model.StudioSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *SessionCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, key(sessionID))
}

func (c *SessionCache) Extend(ctx context.Context, sessionID string) error {
	return c.client.Expire(ctx, key(sessionID), c.ttl)
}
