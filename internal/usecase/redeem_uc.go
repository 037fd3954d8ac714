// File: internal/usecase/redeem_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"premium-unlock/internal/domain"
	"premium-unlock/internal/domain/model"
	"premium-unlock/internal/domain/ports/repository"
	"premium-unlock/internal/infra/logging"
	"premium-unlock/internal/infra/metrics"
)

// maxTokenAttempts bounds retries on a token-string collision during
// issuance. Collisions here are astronomically unlikely; the bound exists
// so the loop provably terminates.
const maxTokenAttempts = 3

// RedeemUseCase is the redemption state machine. The repository's
// conditional update is the sole authority for the used transition; every
// read around it is for error classification only.
type RedeemUseCase struct {
	codes  repository.UnlockCodeRepository
	tokens repository.PremiumTokenRepository
	log    *zerolog.Logger
	now    func() time.Time
}

func NewRedeemUseCase(codes repository.UnlockCodeRepository, tokens repository.PremiumTokenRepository, logger *zerolog.Logger) *RedeemUseCase {
	return &RedeemUseCase{codes: codes, tokens: tokens, log: logger, now: time.Now}
}

// Redeem consumes code for ownerID and returns the issued token.
//
// Flow: pure format gate -> atomic conditional transition -> token
// issuance. Of any number of concurrent calls naming the same code, at
// most one passes the transition; the rest observe ErrCodeAlreadyUsed.
func (uc *RedeemUseCase) Redeem(ctx context.Context, ownerID, code string) (*model.PremiumToken, error) {
	if ownerID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if err := model.ValidateCodeFormat(code); err != nil {
		metrics.IncRedemption("malformed")
		return nil, err
	}

	now := uc.now().UTC()
	codeID, durationSec, err := uc.codes.Redeem(ctx, nil, code, ownerID, now)
	if err != nil {
		if errors.Is(err, domain.ErrNoTransition) {
			return nil, uc.classifyRejection(ctx, code, now)
		}
		metrics.IncRedemption("storage_error")
		return nil, storageErr("redeem unlock code", err)
	}

	tok, err := uc.issueToken(ctx, ownerID, codeID, now, durationSec)
	if err != nil {
		// The code is burned: marked used with no token behind it. Surface
		// this distinctly so operators know a re-issue is required, and
		// never re-attempt the code transition.
		logging.With(ctx, uc.log).Error().
			Str("code_id", codeID).
			Str("owner_id", ownerID).
			Err(err).
			Msg("code burned: token issuance failed after redemption")
		metrics.IncRedemption("issuance_failed")
		return nil, domain.ErrIssuanceFailed
	}

	logging.With(ctx, uc.log).Info().
		Str("code_id", codeID).
		Str("owner_id", ownerID).
		Time("expires_at", tok.ExpiresAt).
		Msg("unlock code redeemed")
	metrics.IncRedemption("success")
	return tok, nil
}

func (uc *RedeemUseCase) issueToken(ctx context.Context, ownerID, codeID string, now time.Time, durationSec int64) (*model.PremiumToken, error) {
	var lastErr error
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		tok, err := model.NewPremiumToken(ownerID, codeID, now, durationSec)
		if err != nil {
			return nil, err
		}
		err = uc.tokens.Create(ctx, nil, tok)
		if err == nil {
			return tok, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// classifyRejection turns a zero-row transition into the caller-facing
// error kind. The read here names the failure; it never authorizes
// anything. A row that still looks redeemable at read time lost a race a
// moment ago and is reported as AlreadyRedeemed.
func (uc *RedeemUseCase) classifyRejection(ctx context.Context, code string, now time.Time) error {
	row, err := uc.codes.FindByCode(ctx, nil, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncRedemption("not_found")
			return domain.ErrCodeNotFound
		}
		metrics.IncRedemption("storage_error")
		return storageErr("classify redemption failure", err)
	}
	if row.Used {
		metrics.IncRedemption("already_redeemed")
		return domain.ErrCodeAlreadyUsed
	}
	if now.After(row.CodeValidUntil) {
		metrics.IncRedemption("expired")
		return domain.ErrCodeExpired
	}
	metrics.IncRedemption("already_redeemed")
	return domain.ErrCodeAlreadyUsed
}
