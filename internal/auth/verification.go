package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// VerificationTokenBytes is the entropy of an email verification token. The
// hex encoding doubles the length.
const VerificationTokenBytes = 32

const DefaultVerificationTTL = 24 * time.Hour

type VerificationTokenService struct {
	ttl time.Duration
	now func() time.Time
}

func NewVerificationTokenService(ttl time.Duration) *VerificationTokenService {
	if ttl <= 0 {
		ttl = DefaultVerificationTTL
	}
	return &VerificationTokenService{ttl: ttl, now: time.Now}
}

// Generate returns a fresh token and the instant it stops being accepted.
func (s *VerificationTokenService) Generate() (string, time.Time, error) {
	token, err := GenerateOpaqueToken(VerificationTokenBytes)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generating verification token: %w", err)
	}
	return token, s.now().Add(s.ttl).UTC(), nil
}

func (s *VerificationTokenService) TTL() time.Duration {
	return s.ttl
}

// GenerateOpaqueToken returns n crypto-random bytes, hex encoded.
func GenerateOpaqueToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
