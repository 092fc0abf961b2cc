package cache

import (
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid"
)

var ErrPendingNotFound = errors.New("pending login not found")

// PendingLoginStore holds the short-lived "awaiting second factor" slot
// between the password step and the code step of a login. Entries expire
// on their own; a successful verification deletes the slot explicitly.
type PendingLoginStore interface {
	Create(userID uuid.UUID) (string, error)
	Get(challengeID string) (uuid.UUID, error)
	Delete(challengeID string) error
}

type RedisPendingLoginStore struct {
	cache *RedisCache
	ttl   time.Duration
}

func NewRedisPendingLoginStore(cache *RedisCache, ttl time.Duration) *RedisPendingLoginStore {
	return &RedisPendingLoginStore{cache: cache, ttl: ttl}
}

func (s *RedisPendingLoginStore) key(challengeID string) string {
	return "pending_login:" + challengeID
}

func (s *RedisPendingLoginStore) Create(userID uuid.UUID) (string, error) {
	challengeID, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	if err := s.cache.Set(s.key(challengeID.String()), userID.String(), s.ttl); err != nil {
		return "", err
	}

	return challengeID.String(), nil
}

func (s *RedisPendingLoginStore) Get(challengeID string) (uuid.UUID, error) {
	var stored string
	err := s.cache.Get(s.key(challengeID), &stored)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return uuid.Nil, ErrPendingNotFound
		}
		return uuid.Nil, err
	}

	userID, err := uuid.FromString(stored)
	if err != nil {
		return uuid.Nil, ErrPendingNotFound
	}

	return userID, nil
}

func (s *RedisPendingLoginStore) Delete(challengeID string) error {
	return s.cache.Delete(s.key(challengeID))
}

// MemoryPendingLoginStore is an in-process fallback used when redis is not
// configured, and by tests.
type MemoryPendingLoginStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryPendingEntry
}

type memoryPendingEntry struct {
	userID    uuid.UUID
	expiresAt time.Time
}

func NewMemoryPendingLoginStore(ttl time.Duration) *MemoryPendingLoginStore {
	return &MemoryPendingLoginStore{
		ttl:     ttl,
		entries: make(map[string]memoryPendingEntry),
	}
}

func (s *MemoryPendingLoginStore) Create(userID uuid.UUID) (string, error) {
	challengeID, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[challengeID.String()] = memoryPendingEntry{
		userID:    userID,
		expiresAt: time.Now().Add(s.ttl),
	}

	return challengeID.String(), nil
}

func (s *MemoryPendingLoginStore) Get(challengeID string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[challengeID]
	if !ok {
		return uuid.Nil, ErrPendingNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, challengeID)
		return uuid.Nil, ErrPendingNotFound
	}

	return entry.userID, nil
}

func (s *MemoryPendingLoginStore) Delete(challengeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, challengeID)
	return nil
}
