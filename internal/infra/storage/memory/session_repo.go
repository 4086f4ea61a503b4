// Package memory holds the canonical in-process session store. Sessions
// are tab-scoped and short-lived, so process memory is the system of
// record; an optional redis mirror survives restarts.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"aura-studio/internal/domain"
	"aura-studio/internal/domain/model"
	"aura-studio/internal/domain/ports/repository"
	"aura-studio/internal/infra/redis"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

type entry struct {
	mu      sync.Mutex
	session *model.StudioSession
}

type SessionRepo struct {
	mu    sync.RWMutex
	store map[string]*entry

	// cache is optional; nil disables mirroring.
	cache *redis.SessionCache
	log   *zerolog.Logger
}

func NewSessionRepo(cache *redis.SessionCache, log *zerolog.Logger) *SessionRepo {
	return &SessionRepo{
		store: make(map[string]*entry),
		cache: cache,
		log:   log,
	}
}

func (r *SessionRepo) Create(ctx context.Context, s *model.StudioSession) error {
	r.mu.Lock()
	if _, exists := r.store[s.ID]; exists {
		r.mu.Unlock()
		return domain.ErrInvalidArgument
	}
	r.store[s.ID] = &entry{session: s.Clone()}
	r.mu.Unlock()

	r.mirror(ctx, s)
	return nil
}

func (r *SessionRepo) Find(ctx context.Context, id string) (*model.StudioSession, error) {
	r.mu.RLock()
	e, ok := r.store[id]
	r.mu.RUnlock()
	if !ok {
		// Restart recovery: rehydrate from the mirror when present.
		if r.cache != nil {
			if s, err := r.cache.Get(ctx, id); err == nil {
				r.mu.Lock()
				if _, exists := r.store[id]; !exists {
					r.store[id] = &entry{session: s}
				}
				e = r.store[id]
				r.mu.Unlock()
				ok = true
			}
		}
		if !ok {
			return nil, domain.ErrNotFound
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

func (r *SessionRepo) Update(ctx context.Context, id string, fn func(*model.StudioSession) error) (*model.StudioSession, error) {
	r.mu.RLock()
	e, ok := r.store[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}

	e.mu.Lock()
	// fn runs against a working copy; a failed mutation leaves the stored
	// session untouched.
	next := e.session.Clone()
	if err := fn(next); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	next.UpdatedAt = time.Now()
	e.session = next
	snap := next.Clone()
	e.mu.Unlock()

	r.mirror(ctx, snap)
	return snap, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	_, ok := r.store[id]
	delete(r.store, id)
	r.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}

	if r.cache != nil {
		if err := r.cache.Delete(ctx, id); err != nil && r.log != nil {
			r.log.Warn().Err(err).Str("session_id", id).Msg("session cache delete failed")
		}
	}
	return nil
}

// SweepIdle removes sessions whose last update predates the cutoff and
// returns how many were dropped. Mirrored snapshots are deleted too.
func (r *SessionRepo) SweepIdle(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	var stale []string
	for id, e := range r.store {
		e.mu.Lock()
		if e.session.UpdatedAt.Before(cutoff) {
			stale = append(stale, id)
		}
		e.mu.Unlock()
	}
	for _, id := range stale {
		delete(r.store, id)
	}
	r.mu.Unlock()

	if r.cache != nil {
		for _, id := range stale {
			if err := r.cache.Delete(ctx, id); err != nil && r.log != nil {
				r.log.Warn().Err(err).Str("session_id", id).Msg("session cache delete failed")
			}
		}
	}
	return len(stale), nil
}

// mirror writes the snapshot through to redis. Failures are logged and
// swallowed; the in-memory copy stays authoritative.
func (r *SessionRepo) mirror(ctx context.Context, s *model.StudioSession) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Store(ctx, s); err != nil && r.log != nil {
		r.log.Warn().Err(err).Str("session_id", s.ID).Msg("session cache store failed")
	}
}
