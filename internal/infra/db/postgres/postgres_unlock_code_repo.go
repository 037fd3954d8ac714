package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"premium-unlock/internal/domain"
	"premium-unlock/internal/domain/model"
	"premium-unlock/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.UnlockCodeRepository = (*unlockCodeRepo)(nil)

type unlockCodeRepo struct {
	pool *pgxpool.Pool
}

func NewUnlockCodeRepo(pool *pgxpool.Pool) repository.UnlockCodeRepository {
	return &unlockCodeRepo{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Create inserts a fresh, unredeemed code. The unique constraint on the
// code column is the source of truth for collisions; two concurrent
// generations of the same candidate cannot both land.
func (r *unlockCodeRepo) Create(ctx context.Context, tx repository.Tx, code *model.UnlockCode) error {
	const q = `
INSERT INTO unlock_codes (id, code, code_valid_until, premium_duration_seconds, used, redeemed_by, redeemed_at, created_at)
VALUES ($1, $2, $3, $4, FALSE, NULL, NULL, $5);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		code.ID, code.Code, code.CodeValidUntil, code.PremiumDurationSeconds, code.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByCode returns the row whatever its redemption state. Used for
// classifying a lost transition and by admin tooling; never to authorize one.
func (r *unlockCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.UnlockCode, error) {
	const q = `
SELECT id, code, code_valid_until, premium_duration_seconds, used, redeemed_by, redeemed_at, created_at
  FROM unlock_codes
 WHERE code = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}

	var c model.UnlockCode
	err = row.Scan(
		&c.ID, &c.Code, &c.CodeValidUntil, &c.PremiumDurationSeconds, &c.Used, &c.RedeemedBy, &c.RedeemedAt, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Redeem is the single conditional update that authorizes a redemption.
// The WHERE clause re-checks used and the validity window at write time, so
// of any number of concurrent calls at most one row transition commits; the
// rest see zero rows (ErrNoTransition). The winner's stored duration comes
// back via RETURNING and is the only duration the caller may trust.
func (r *unlockCodeRepo) Redeem(ctx context.Context, tx repository.Tx, code, ownerID string, at time.Time) (string, int64, error) {
	const q = `
UPDATE unlock_codes
   SET used = TRUE, redeemed_by = $2, redeemed_at = $3
 WHERE code = $1 AND used = FALSE AND code_valid_until >= $3
RETURNING id, premium_duration_seconds;
`
	row, err := pickRow(ctx, r.pool, tx, q, code, ownerID, at)
	if err != nil {
		return "", 0, err
	}

	var id string
	var durationSec int64
	if err := row.Scan(&id, &durationSec); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", 0, domain.ErrNoTransition
		}
		return "", 0, err
	}
	return id, durationSec, nil
}

func (r *unlockCodeRepo) Delete(ctx context.Context, tx repository.Tx, code string) error {
	const q = `DELETE FROM unlock_codes WHERE code = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *unlockCodeRepo) CountIssued(ctx context.Context, tx repository.Tx) (int, error) {
	return r.countWhere(ctx, tx, `SELECT COUNT(*) FROM unlock_codes;`)
}

func (r *unlockCodeRepo) CountRedeemed(ctx context.Context, tx repository.Tx) (int, error) {
	return r.countWhere(ctx, tx, `SELECT COUNT(*) FROM unlock_codes WHERE used = TRUE;`)
}

func (r *unlockCodeRepo) CountExpiredUnused(ctx context.Context, tx repository.Tx, at time.Time) (int, error) {
	return r.countWhere(ctx, tx, `SELECT COUNT(*) FROM unlock_codes WHERE used = FALSE AND code_valid_until < $1;`, at)
}

func (r *unlockCodeRepo) countWhere(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
