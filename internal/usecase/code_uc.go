// File: internal/usecase/code_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"premium-unlock/internal/domain"
	"premium-unlock/internal/domain/model"
	"premium-unlock/internal/domain/ports/repository"
	"premium-unlock/internal/infra/logging"
	"premium-unlock/internal/infra/metrics"
)

// maxGenerateAttempts bounds the uniqueness-retry loop. With a 32^12
// keyspace this is practically unreachable, but it is handled, not assumed
// impossible.
const maxGenerateAttempts = 5

// CodeUseCase issues unlock codes. Uniqueness is owned by the repository's
// unique constraint; this layer only retries on collision.
type CodeUseCase struct {
	codes repository.UnlockCodeRepository
	tm    repository.TransactionManager // optional; batch minting only
	log   *zerolog.Logger
	now   func() time.Time
}

func NewCodeUseCase(codes repository.UnlockCodeRepository, tm repository.TransactionManager, logger *zerolog.Logger) *CodeUseCase {
	return &CodeUseCase{codes: codes, tm: tm, log: logger, now: time.Now}
}

// Generate mints and persists one unredeemed code for the given spec,
// with code_valid_until fixed at now + the system-wide validity window.
func (uc *CodeUseCase) Generate(ctx context.Context, spec model.DurationSpec) (*model.UnlockCode, error) {
	return uc.generate(ctx, nil, spec)
}

func (uc *CodeUseCase) generate(ctx context.Context, tx repository.Tx, spec model.DurationSpec) (*model.UnlockCode, error) {
	now := uc.now().UTC()
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := model.NewUnlockCode(spec, now)
		if err != nil {
			return nil, err
		}
		err = uc.codes.Create(ctx, tx, code)
		if err == nil {
			logging.With(ctx, uc.log).Info().
				Str("code_id", code.ID).
				Str("duration_spec", string(spec)).
				Time("code_valid_until", code.CodeValidUntil).
				Msg("unlock code issued")
			metrics.IncCodeGenerated(string(spec))
			return code, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Lost the constraint race for this candidate; try a fresh one.
			continue
		}
		return nil, storageErr("create unlock code", err)
	}
	logging.With(ctx, uc.log).Error().
		Int("attempts", maxGenerateAttempts).
		Msg("code generation exhausted keyspace retries")
	return nil, domain.ErrGenerationExhausted
}

// GenerateBatch mints n codes of the same spec, all-or-nothing when a
// transaction manager is available.
func (uc *CodeUseCase) GenerateBatch(ctx context.Context, spec model.DurationSpec, n int) ([]*model.UnlockCode, error) {
	if n <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := spec.Seconds(); err != nil {
		return nil, err
	}

	out := make([]*model.UnlockCode, 0, n)
	mint := func(ctx context.Context, tx repository.Tx) error {
		for i := 0; i < n; i++ {
			c, err := uc.generate(ctx, tx, spec)
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return nil
	}

	if uc.tm == nil {
		if err := mint(ctx, nil); err != nil {
			return nil, err
		}
		return out, nil
	}
	if err := uc.tm.WithTx(ctx, pgx.TxOptions{}, mint); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a code by its external string. Administrative only.
func (uc *CodeUseCase) Delete(ctx context.Context, code string) error {
	if err := model.ValidateCodeFormat(code); err != nil {
		return err
	}
	if err := uc.codes.Delete(ctx, nil, code); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCodeNotFound
		}
		return storageErr("delete unlock code", err)
	}
	return nil
}

// storageErr keeps the transient-failure sentinel matchable with errors.Is
// while preserving the cause in the message.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorageUnavailable, err)
}
