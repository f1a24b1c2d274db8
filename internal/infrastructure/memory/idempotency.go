package memory

import (
	"context"
	"sync"
	"time"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/ports"
)

type idemEntry struct {
	value   string
	expires time.Time // cero = sin expiración
}

func (e idemEntry) alive(now time.Time) bool {
	return e.expires.IsZero() || now.Before(e.expires)
}

// IdempotencyStore claves de idempotencia en memoria, para un solo proceso.
// Igual que Redis, un ttl <= 0 deja la clave sin expiración.
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]idemEntry
	now  func() time.Time
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore crea el almacén vacío.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{keys: map[string]idemEntry{}, now: time.Now}
}

func (s *IdempotencyStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.keys[key]; ok && e.alive(s.now()) {
		return false, e.value, nil
	}
	s.keys[key] = idemEntry{expires: s.expiry(ttl)}
	return true, "", nil
}

func (s *IdempotencyStore) Complete(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = idemEntry{value: value, expires: s.expiry(ttl)}
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *IdempotencyStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}
