package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const DefaultTTL = 24 * time.Hour

// RedisStore keeps sessions as JSON under session:<id>. Every Put refreshes
// the key's TTL.
type RedisStore struct {
	redis  redis.UniversalClient
	ttl    time.Duration
	tracer trace.Tracer
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration, tracer trace.Tracer) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if tracer == nil {
		tracer = otel.Tracer("survey.internal.session")
	}
	return &RedisStore{redis: client, ttl: ttl, tracer: tracer}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "session.get")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to load %s: %w", id, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to decode %s: %w", id, err)
	}
	if sess.Answers == nil {
		sess.Answers = make(map[int]string)
	}
	return &sess, nil
}

func (s *RedisStore) Put(ctx context.Context, sess *Session) error {
	ctx, span := s.tracer.Start(ctx, "session.put")
	defer span.End()

	if sess == nil || sess.ID == "" {
		return errors.New("session: cannot store a session without an id")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to marshal %s: %w", sess.ID, err)
	}
	if err := s.redis.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist %s: %w", sess.ID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "session.delete")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(id)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to delete %s: %w", id, err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}
