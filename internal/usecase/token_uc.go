// File: internal/usecase/token_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"premium-unlock/internal/domain"
	"premium-unlock/internal/domain/ports/repository"
	"premium-unlock/internal/infra/metrics"
)

// TokenStatus answers the liveness query for one token.
type TokenStatus struct {
	Active           bool
	ExpiresAt        time.Time
	RemainingSeconds int64
}

// TokenUseCase answers "is this token still live" from the stored absolute
// expiry and the server clock only. It never accepts client-reported time
// and performs no writes; expiry is inferred, not recorded.
type TokenUseCase struct {
	tokens repository.PremiumTokenRepository
	log    *zerolog.Logger
	now    func() time.Time
}

func NewTokenUseCase(tokens repository.PremiumTokenRepository, logger *zerolog.Logger) *TokenUseCase {
	return &TokenUseCase{tokens: tokens, log: logger, now: time.Now}
}

// Check reports liveness for the given token string.
func (uc *TokenUseCase) Check(ctx context.Context, token string) (*TokenStatus, error) {
	if token == "" {
		return nil, domain.ErrTokenNotFound
	}
	t, err := uc.tokens.FindByToken(ctx, nil, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncTokenCheck("not_found")
			return nil, domain.ErrTokenNotFound
		}
		return nil, storageErr("find premium token", err)
	}

	remaining := t.ExpiresAt.Sub(uc.now().UTC())
	st := &TokenStatus{
		Active:    remaining > 0,
		ExpiresAt: t.ExpiresAt,
	}
	if remaining > 0 {
		st.RemainingSeconds = int64(remaining / time.Second)
		metrics.IncTokenCheck("active")
	} else {
		metrics.IncTokenCheck("expired")
	}
	return st, nil
}
