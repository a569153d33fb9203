// Package lock aynı kaydın (ör. bir siparişin) eşzamanlı işlenmesini engelleyen,
// süre sınırlı (TTL) anahtar bazlı kilitler sağlar.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyKey   = errors.New("lock key is empty")
	ErrInvalidTTL = errors.New("lock ttl must be positive")
	ErrNotHeld    = errors.New("lock is not held by this token")
)

// Locker TryLock başarılıysa Release için gereken token'ı döner.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

type memoryEntry struct {
	token   string
	expires time.Time
}

// Memory tek süreç içinde geçerli Locker.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	if ttl <= 0 {
		return "", false, ErrInvalidTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.entries[key]; ok && now.Before(e.expires) {
		return "", false, nil
	}

	token := uuid.NewString()
	m.entries[key] = memoryEntry{token: token, expires: now.Add(ttl)}
	m.sweep(now)
	return token, true, nil
}

func (m *Memory) Release(_ context.Context, key, token string) error {
	if key == "" || token == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// süresi dolup başkası tarafından alınmış kilidi bırakma
	e, ok := m.entries[key]
	if !ok || e.token != token || !m.now().Before(e.expires) {
		return ErrNotHeld
	}
	delete(m.entries, key)
	return nil
}

func (m *Memory) sweep(now time.Time) {
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
}
