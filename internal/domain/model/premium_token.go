package model

import (
	"crypto/rand"
	"encoding/base32"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
)

// tokenEntropyBytes gives 160 bits of entropy, enough that the token string
// is an unguessable bearer capability on its own.
const tokenEntropyBytes = 20

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewTokenString mints an opaque token value. The DB unique constraint on
// the token column still backs uniqueness.
func NewTokenString() (string, error) {
	buf := make([]byte, tokenEntropyBytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}
	return tokenEncoding.EncodeToString(buf), nil
}

// PremiumToken is the capability handed to the client after a successful
// redemption. Immutable once written; liveness is computed from ExpiresAt
// against the server clock, never stored as a flag.
type PremiumToken struct {
	ID           string
	Token        string
	OwnerID      string
	SourceCodeID string // lookup back-reference to the originating code
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// NewPremiumToken issues a token for a winning redemption. ExpiresAt is
// computed once here from the duration the conditional update returned.
func NewPremiumToken(ownerID, sourceCodeID string, issuedAt time.Time, durationSeconds int64) (*PremiumToken, error) {
	tok, err := NewTokenString()
	if err != nil {
		return nil, err
	}
	return &PremiumToken{
		ID:           ulid.Make().String(),
		Token:        tok,
		OwnerID:      ownerID,
		SourceCodeID: sourceCodeID,
		IssuedAt:     issuedAt,
		ExpiresAt:    issuedAt.Add(time.Duration(durationSeconds) * time.Second),
	}, nil
}
