package storage

import (
	"context"
	"sync"
	"time"

	"github.com/chlachla/chlachla-backend/internal/apperrors"
	"github.com/chlachla/chlachla-backend/internal/models"
)

// MemoryOTPStore keeps challenges in a map guarded by a RWMutex. Used
// in development and tests; production deployments point REDIS_ADDR at
// a Redis instance instead.
//
// Get does not filter by expiry: telling an expired challenge apart
// from a missing one is the OTP manager's call. Expired entries are
// bulk-removed by SweepExpired, which the background sweeper job calls
// periodically.
type MemoryOTPStore struct {
	mu         sync.RWMutex
	challenges map[string]*models.OTPChallenge
	now        func() time.Time
}

// NewMemoryOTPStore creates an empty in-memory OTP store.
func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{
		challenges: make(map[string]*models.OTPChallenge),
		now:        time.Now,
	}
}

// SetClock overrides the store's time source. Tests only.
func (m *MemoryOTPStore) SetClock(now func() time.Time) {
	m.now = now
}

func (m *MemoryOTPStore) Put(ctx context.Context, challenge *models.OTPChallenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *challenge
	m.challenges[challenge.Key] = &cp
	return nil
}

func (m *MemoryOTPStore) Get(ctx context.Context, key string) (*models.OTPChallenge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, exists := m.challenges[key]
	if !exists {
		return nil, apperrors.NotFound("not_found", "no verification code found")
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryOTPStore) Update(ctx context.Context, challenge *models.OTPChallenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.challenges[challenge.Key]; !exists {
		return apperrors.NotFound("not_found", "no verification code found")
	}
	cp := *challenge
	m.challenges[challenge.Key] = &cp
	return nil
}

func (m *MemoryOTPStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.challenges, key)
	return nil
}

func (m *MemoryOTPStore) SweepExpired(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, c := range m.challenges {
		if c.Expired(now) {
			delete(m.challenges, key)
			removed++
		}
	}
	return removed, nil
}
