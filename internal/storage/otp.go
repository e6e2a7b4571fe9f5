package storage

import (
	"context"

	"github.com/chlachla/chlachla-backend/internal/models"
)

// OTPStore is the volatile, TTL-evicting store for outstanding OTP
// challenges, keyed by phone number or email. Put overwrites any live
// challenge for the same key; that is how re-issuing invalidates a
// prior unconsumed challenge.
//
// The store only persists records; single-use consumption, attempt
// counting and per-key atomicity are the OTP manager's job.
type OTPStore interface {
	// Put stores or overwrites the challenge for its key with a TTL
	// equal to the time remaining until its expiry.
	Put(ctx context.Context, challenge *models.OTPChallenge) error

	// Get returns the live challenge for key, or a NotFound error.
	Get(ctx context.Context, key string) (*models.OTPChallenge, error)

	// Update persists a mutated challenge (attempt count) without
	// extending its TTL.
	Update(ctx context.Context, challenge *models.OTPChallenge) error

	// Delete removes the challenge for key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error

	// SweepExpired removes challenges past their expiry and returns
	// how many were removed. Stores with native TTL eviction may
	// return 0 without doing anything.
	SweepExpired(ctx context.Context) (int, error)
}
