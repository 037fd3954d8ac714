package repository

import (
	"context"
	"time"

	"premium-unlock/internal/domain/model"
)

// UnlockCodeRepository is the port for issued unlock codes.
//
// Redeem is the only operation allowed to flip a code to used. It must be a
// single conditional update: succeed only if the row still has used = FALSE
// and an unexpired validity window at the moment of the write, and report
// zero affected rows as domain.ErrNoTransition. The affected-row count is
// the authorization decision; a preceding read never is.
type UnlockCodeRepository interface {
	// Create persists a new code. A code-string collision surfaces as
	// domain.ErrAlreadyExists so the generator can retry.
	Create(ctx context.Context, tx Tx, code *model.UnlockCode) error

	// FindByCode returns the row regardless of redemption state. Used for
	// classifying a failed transition and for admin inspection only.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.UnlockCode, error)

	// Redeem atomically transitions code to used by ownerID at the given
	// instant, returning the row ID and the stored premium duration of the
	// winning row.
	Redeem(ctx context.Context, tx Tx, code, ownerID string, at time.Time) (codeID string, durationSeconds int64, err error)

	// Delete removes a code outright. Administrative; never part of the
	// redemption flow and has no effect on already-issued tokens.
	Delete(ctx context.Context, tx Tx, code string) error

	CountIssued(ctx context.Context, tx Tx) (int, error)
	CountRedeemed(ctx context.Context, tx Tx) (int, error)
	CountExpiredUnused(ctx context.Context, tx Tx, at time.Time) (int, error)
}
