package services

import (
	"context"
	"crypto/subtle"
	"log"
	"time"

	"github.com/chlachla/chlachla-backend/internal/apperrors"
	"github.com/chlachla/chlachla-backend/internal/models"
	"github.com/chlachla/chlachla-backend/internal/storage"
	"github.com/chlachla/chlachla-backend/internal/utils"
)

// OTPService owns the lifecycle of OTP challenges: issuance, bounded
// retry, single-use consumption and expiry. All mutation of a given
// key happens under that key's mutex, so two concurrent verifications
// of the same key cannot both succeed and attempt counting never
// races. Unrelated keys do not contend.
type OTPService struct {
	store  storage.OTPStore
	issuer TokenIssuer
	keys   *utils.KeyedMutex
	now    func() time.Time
}

// NewOTPService creates an OTP manager over the given challenge store
// and token issuer.
func NewOTPService(store storage.OTPStore, issuer TokenIssuer) *OTPService {
	return &OTPService{
		store:  store,
		issuer: issuer,
		keys:   utils.NewKeyedMutex(),
		now:    time.Now,
	}
}

// SetClock overrides the service's time source. Tests only.
func (s *OTPService) SetClock(now func() time.Time) {
	s.now = now
}

// Issue generates a fresh 6-digit challenge for key, replacing any
// prior unconsumed challenge, and returns its expiry. The generated
// code is handed back so the caller can pass it to a Notifier outside
// this call; delivery is not part of issuance semantics.
func (s *OTPService) Issue(ctx context.Context, key, purpose string) (*models.OTPChallenge, error) {
	if key == "" {
		return nil, apperrors.Validation("bad_request", "phone number or email is required")
	}
	if !models.ValidOTPPurpose(purpose) {
		return nil, apperrors.Validation("bad_request", "unknown OTP purpose")
	}

	code, err := utils.GenerateSecureOTP()
	if err != nil {
		return nil, apperrors.Internal("failed to generate OTP", err)
	}

	now := s.now()
	challenge := &models.OTPChallenge{
		Key:       key,
		Code:      code,
		Purpose:   purpose,
		IssuedAt:  now,
		ExpiresAt: now.Add(models.OTPExpiry),
		Attempts:  0,
	}

	s.keys.Lock(key)
	defer s.keys.Unlock(key)

	// Put overwrites, which is what invalidates the previous challenge
	if err := s.store.Put(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// Verify checks code against the live challenge for key. On success
// the challenge is consumed and a verification token is minted; it can
// never succeed twice for the same challenge.
func (s *OTPService) Verify(ctx context.Context, key, code, purpose string) (*models.VerificationToken, error) {
	if key == "" {
		return nil, apperrors.Validation("bad_request", "phone number or email is required")
	}
	if len(code) != 6 {
		return nil, apperrors.Validation("bad_request", "invalid OTP format")
	}

	s.keys.Lock(key)
	defer s.keys.Unlock(key)

	challenge, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if challenge.Expired(s.now()) {
		_ = s.store.Delete(ctx, key)
		return nil, apperrors.Expired("expired", "OTP has expired")
	}

	if challenge.Attempts >= models.OTPMaxAttempts {
		_ = s.store.Delete(ctx, key)
		return nil, apperrors.Conflict("too_many_attempts",
			"too many failed attempts, please request a new OTP")
	}

	if challenge.Purpose != purpose ||
		subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(code)) != 1 {
		challenge.Attempts++
		if err := s.store.Update(ctx, challenge); err != nil {
			return nil, err
		}
		return nil, apperrors.Validation("invalid_code", "invalid OTP")
	}

	// Single use: the challenge is gone before the token exists
	if err := s.store.Delete(ctx, key); err != nil {
		return nil, err
	}

	return s.issuer.Mint(key, challenge.Purpose, models.VerificationTokenTTL)
}

// SweepExpired removes challenges past their expiry. Idempotent; run
// from the background sweeper job.
func (s *OTPService) SweepExpired(ctx context.Context) {
	removed, err := s.store.SweepExpired(ctx)
	if err != nil {
		log.Printf("⚠️  OTP sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("🧹 OTP sweep removed %d expired challenges", removed)
	}
}
