package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chlachla/chlachla-backend/internal/apperrors"
	"github.com/chlachla/chlachla-backend/internal/models"
)

// TokenIssuer mints and validates the credential a client earns by
// completing OTP verification. Keeping this behind an interface
// decouples the credential format from the OTP and booking logic.
type TokenIssuer interface {
	Mint(subjectKey, purpose string, ttl time.Duration) (*models.VerificationToken, error)
	Validate(token string) (*models.TokenClaims, error)
}

// JWTIssuer signs HS256 JWTs with a shared secret.
type JWTIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewJWTIssuer creates an issuer with the given signing secret.
func NewJWTIssuer(secret string) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), now: time.Now}
}

// SetClock overrides the issuer's time source. Tests only.
func (j *JWTIssuer) SetClock(now func() time.Time) {
	j.now = now
}

// Mint signs a token proving subjectKey was verified for purpose.
func (j *JWTIssuer) Mint(subjectKey, purpose string, ttl time.Duration) (*models.VerificationToken, error) {
	issuedAt := j.now()
	expiresAt := issuedAt.Add(ttl)

	claims := jwt.MapClaims{
		"sub":      subjectKey,
		"purpose":  purpose,
		"verified": true,
		"iat":      issuedAt.Unix(),
		"exp":      expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return nil, apperrors.Internal("failed to sign token", err)
	}

	return &models.VerificationToken{
		Token:      signed,
		SubjectKey: subjectKey,
		Purpose:    purpose,
		IssuedAt:   issuedAt,
		ExpiresAt:  expiresAt,
	}, nil
}

// Validate parses and verifies a token, returning its claims.
func (j *JWTIssuer) Validate(token string) (*models.TokenClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return j.now() }))
	if err != nil || !parsed.Valid {
		return nil, apperrors.Unauthorized("invalid_token", "invalid or expired token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.Unauthorized("invalid_token", "invalid or expired token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, apperrors.Unauthorized("invalid_token", "token has no subject")
	}
	purpose, _ := claims["purpose"].(string)
	verified, _ := claims["verified"].(bool)

	out := &models.TokenClaims{
		SubjectKey: sub,
		Purpose:    purpose,
		Verified:   verified,
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
