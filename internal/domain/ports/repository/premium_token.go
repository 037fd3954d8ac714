package repository

import (
	"context"
	"time"

	"premium-unlock/internal/domain/model"
)

// PremiumTokenRepository is the port for issued premium tokens. Tokens are
// append-only; expiry is computed by readers, never written back.
type PremiumTokenRepository interface {
	// Create persists a freshly issued token. A token-string collision
	// surfaces as domain.ErrAlreadyExists.
	Create(ctx context.Context, tx Tx, token *model.PremiumToken) error

	FindByToken(ctx context.Context, tx Tx, token string) (*model.PremiumToken, error)

	CountActive(ctx context.Context, tx Tx, at time.Time) (int, error)
}
