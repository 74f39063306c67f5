package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"marketpaline/internal/domain"
	"marketpaline/internal/session"
)

const maxTxRetries = 5

var ErrContention = errors.New("session update: too many concurrent writers")

// SessionStore keeps session state as JSON with a sliding TTL. Updates are
// optimistic WATCH/MULTI transactions.
type SessionStore struct {
	c   *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewSessionStore(c *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{c: c, ttl: ttl, now: time.Now}
}

func sessionKey(id uuid.UUID) string { return "session:" + id.String() }

func (s *SessionStore) Create(ctx context.Context, st *session.State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.c.Set(ctx, sessionKey(st.ID), b, s.ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (*session.State, error) {
	b, err := s.c.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var st session.State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &st, nil
}

func (s *SessionStore) Update(ctx context.Context, id uuid.UUID, fn func(*session.State) error) (*session.State, error) {
	key := sessionKey(id)
	var out *session.State
	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		var st session.State
		if err := json.Unmarshal(b, &st); err != nil {
			return fmt.Errorf("decode session %s: %w", id, err)
		}
		if err := fn(&st); err != nil {
			return err
		}
		st.UpdatedAt = s.now()
		nb, err := json.Marshal(&st)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, nb, s.ttl)
			return nil
		})
		if err == nil {
			out = &st
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.c.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, ErrContention
}

func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.c.Del(ctx, sessionKey(id)).Err()
}
