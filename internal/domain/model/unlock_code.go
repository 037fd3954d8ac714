package model

import (
	"crypto/rand"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"premium-unlock/internal/domain"
)

// DurationSpec names one of the fixed premium grants a code can carry.
// The mapping to seconds lives here and only here; the code string itself
// never encodes the duration.
type DurationSpec string

const (
	DurationTrial DurationSpec = "trial_30m"
	DurationDay   DurationSpec = "day"
	DurationWeek  DurationSpec = "week"
	DurationMonth DurationSpec = "month"
)

var durationSeconds = map[DurationSpec]int64{
	DurationTrial: 30 * 60,
	DurationDay:   24 * 60 * 60,
	DurationWeek:  7 * 24 * 60 * 60,
	DurationMonth: 30 * 24 * 60 * 60,
}

// Seconds resolves the spec to its fixed premium duration.
func (d DurationSpec) Seconds() (int64, error) {
	s, ok := durationSeconds[d]
	if !ok {
		return 0, domain.ErrInvalidDurationSpec
	}
	return s, nil
}

// CodeValidityWindow is how long an issued code stays redeemable,
// independent of the premium duration it grants.
const CodeValidityWindow = 30 * 24 * time.Hour

const (
	codePrefix = "PRM-"
	// Alphabet avoids ambiguous characters like O/0 and I/1.
	codeAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeBodyLength = 12
)

// Exactly one canonical format is accepted at a time; codes minted under
// retired formats do not validate.
var codePattern = regexp.MustCompile(`^PRM-[A-HJ-NP-Z2-9]{12}$`)

// ValidateCodeFormat is the pure format gate. It touches no storage and
// must be called before any repository lookup.
func ValidateCodeFormat(code string) error {
	if !codePattern.MatchString(code) {
		return domain.ErrMalformedCode
	}
	return nil
}

// NewCodeString mints a candidate code from crypto/rand. Uniqueness is the
// repository's unique constraint, not ours; callers retry on collision.
func NewCodeString() (string, error) {
	buf := make([]byte, codeBodyLength)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(codePrefix)
	for i := 0; i < codeBodyLength; i++ {
		b.WriteByte(codeAlphabet[int(buf[i])%len(codeAlphabet)])
	}
	return b.String(), nil
}

// UnlockCode is a single-use credential redeemable for a premium token.
// Used/RedeemedBy/RedeemedAt change together, exactly once, through the
// repository's conditional update; no other path mutates them.
type UnlockCode struct {
	ID                     string
	Code                   string
	CodeValidUntil         time.Time
	PremiumDurationSeconds int64
	Used                   bool
	RedeemedBy             *string    // nil until redeemed
	RedeemedAt             *time.Time // nil until redeemed
	CreatedAt              time.Time
}

// NewUnlockCode builds an unredeemed code for the given spec. The validity
// window and the granted duration are both fixed here, at creation.
func NewUnlockCode(spec DurationSpec, now time.Time) (*UnlockCode, error) {
	secs, err := spec.Seconds()
	if err != nil {
		return nil, err
	}
	code, err := NewCodeString()
	if err != nil {
		return nil, err
	}
	return &UnlockCode{
		ID:                     ulid.Make().String(),
		Code:                   code,
		CodeValidUntil:         now.Add(CodeValidityWindow),
		PremiumDurationSeconds: secs,
		Used:                   false,
		CreatedAt:              now,
	}, nil
}
