package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")

	// Redemption taxonomy. Each rejection path in the redeem flow maps to
	// exactly one of these; callers branch with errors.Is.
	ErrMalformedCode       = errors.New("unlock code is malformed")
	ErrCodeNotFound        = errors.New("unlock code not found")
	ErrCodeAlreadyUsed     = errors.New("unlock code already redeemed")
	ErrCodeExpired         = errors.New("unlock code validity window has passed")
	ErrInvalidDurationSpec = errors.New("unknown premium duration spec")
	ErrGenerationExhausted = errors.New("code generation attempts exhausted")

	// ErrIssuanceFailed means the code transition committed but the token
	// write did not: the code is burned and needs an operator re-issue,
	// never a client retry of the same code.
	ErrIssuanceFailed = errors.New("token issuance failed after redemption")

	ErrTokenNotFound = errors.New("premium token not found")

	// ErrStorageUnavailable wraps transient I/O and timeout failures; the
	// whole operation is safe to retry from scratch.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNoTransition is the repository-level outcome of the conditional
	// redeem update matching zero rows. Use cases classify it; it never
	// escapes to the API layer.
	ErrNoTransition = errors.New("conditional update affected no rows")
)
