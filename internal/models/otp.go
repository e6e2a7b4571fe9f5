package models

import "time"

// OTP purposes accepted by the auth endpoints
const (
	OTPPurposeLogin            = "login"
	OTPPurposeSignup           = "signup"
	OTPPurposeRideVerification = "ride-verification"
)

const (
	// OTPExpiry is how long a challenge stays valid after issuance.
	OTPExpiry = 10 * time.Minute
	// OTPMaxAttempts is the number of failed verifications allowed
	// before the challenge is destroyed.
	OTPMaxAttempts = 3
)

// OTPChallenge is one outstanding verification attempt for a phone
// number or email. At most one live challenge exists per key; issuing
// a new one replaces any prior unconsumed challenge. Challenges live
// in a volatile TTL store, not in Postgres; losing them on restart is
// acceptable because an OTP is re-issuable.
type OTPChallenge struct {
	Key       string    `json:"key"` // phone number or email
	Code      string    `json:"code"`
	Purpose   string    `json:"purpose"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

// Expired reports whether the challenge has passed its expiry at the
// given instant.
func (c *OTPChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// ValidOTPPurpose reports whether purpose is one the API accepts.
func ValidOTPPurpose(purpose string) bool {
	switch purpose {
	case OTPPurposeLogin, OTPPurposeSignup, OTPPurposeRideVerification:
		return true
	}
	return false
}
