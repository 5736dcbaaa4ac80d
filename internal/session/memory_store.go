package session

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const DefaultMaxEntries = 10000

// MemoryStore is a bounded in-process store. Entries expire after ttl and
// the least recently used session is evicted once size is reached.
type MemoryStore struct {
	cache *expirable.LRU[string, *Session]
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{cache: expirable.NewLRU[string, *Session](size, nil, ttl)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	sess, ok := m.cache.Get(id)
	if !ok {
		return nil, nil
	}
	return sess.Clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return errors.New("session: cannot store a session without an id")
	}
	m.cache.Add(sess.ID, sess.Clone())
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.cache.Remove(id)
	return nil
}

// Len reports the number of live sessions.
func (m *MemoryStore) Len() int {
	return m.cache.Len()
}
