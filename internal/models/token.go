package models

import "time"

// VerificationTokenTTL is the lifetime of a token minted on successful
// OTP verification.
const VerificationTokenTTL = time.Hour

// VerificationToken is the short-lived credential minted exactly once
// per consumed OTP challenge. Token holds the signed JWT string; the
// remaining fields mirror its claims for callers that need them
// without re-parsing.
type VerificationToken struct {
	Token      string    `json:"token"`
	SubjectKey string    `json:"subject_key"` // phone number or email
	Purpose    string    `json:"purpose"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// TokenClaims is the decoded claim set of a verification token.
type TokenClaims struct {
	SubjectKey string
	Purpose    string
	Verified   bool
	IssuedAt   time.Time
	ExpiresAt  time.Time
}
