package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"eventcalendar/internal/domain"
)

const resetTokenLen = 32

type resetTokens struct{}

// NewResetTokens returns a ResetTokens producing URL-safe nanoid tokens and
// storing them as SHA-256 hex digests.
func NewResetTokens() domain.ResetTokens {
	return resetTokens{}
}

func (resetTokens) New() (string, string, error) {
	token, err := gonanoid.New(resetTokenLen)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return token, resetTokens{}.Hash(token), nil
}

func (resetTokens) Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
