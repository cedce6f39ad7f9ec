package service

import (
	"crypto/rand"
	"fmt"
)

const refCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const refCodeLength = 6

// GenerateRefCode returns a booking reference of the form UR-XXXXXX
// where each X is drawn uniformly from [A-Z0-9].  Uniqueness is not
// guaranteed here; the caller relies on the store's unique constraint
// and retries on collision.
func GenerateRefCode() (string, error) {
	buf := make([]byte, refCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = refCodeAlphabet[int(b)%len(refCodeAlphabet)]
	}
	return "UR-" + string(buf), nil
}
