// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"
	"time"

	"premium-unlock/internal/domain/ports/repository"
)

// StatsSummary carries the operator-facing counts behind the admin
// dashboard and the expiry gauges.
type StatsSummary struct {
	CodesIssued        int `json:"codes_issued"`
	CodesRedeemed      int `json:"codes_redeemed"`
	CodesExpiredUnused int `json:"codes_expired_unused"`
	TokensActive       int `json:"tokens_active"`
}

type StatsUseCase struct {
	codes  repository.UnlockCodeRepository
	tokens repository.PremiumTokenRepository
	now    func() time.Time
}

func NewStatsUseCase(codes repository.UnlockCodeRepository, tokens repository.PremiumTokenRepository) *StatsUseCase {
	return &StatsUseCase{codes: codes, tokens: tokens, now: time.Now}
}

func (uc *StatsUseCase) Summary(ctx context.Context) (*StatsSummary, error) {
	now := uc.now().UTC()
	issued, err := uc.codes.CountIssued(ctx, nil)
	if err != nil {
		return nil, storageErr("count issued codes", err)
	}
	redeemed, err := uc.codes.CountRedeemed(ctx, nil)
	if err != nil {
		return nil, storageErr("count redeemed codes", err)
	}
	expired, err := uc.codes.CountExpiredUnused(ctx, nil, now)
	if err != nil {
		return nil, storageErr("count expired codes", err)
	}
	active, err := uc.tokens.CountActive(ctx, nil, now)
	if err != nil {
		return nil, storageErr("count active tokens", err)
	}
	return &StatsSummary{
		CodesIssued:        issued,
		CodesRedeemed:      redeemed,
		CodesExpiredUnused: expired,
		TokensActive:       active,
	}, nil
}
