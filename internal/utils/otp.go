package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateSecureOTP generates a cryptographically secure 6-digit OTP
// uniformly distributed over [100000, 999999].
func GenerateSecureOTP() (string, error) {
	// 900000 possible codes starting at 100000
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateSecureID generates a prefixed random ID for rides.
// Timestamp plus a random suffix keeps IDs unique without a counter.
func GenerateSecureID(prefix string) string {
	n, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("%s%d%06d", prefix, time.Now().Unix(), n.Int64())
}
