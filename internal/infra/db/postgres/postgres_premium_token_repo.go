package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"premium-unlock/internal/domain"
	"premium-unlock/internal/domain/model"
	"premium-unlock/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.PremiumTokenRepository = (*premiumTokenRepo)(nil)

type premiumTokenRepo struct {
	pool *pgxpool.Pool
}

func NewPremiumTokenRepo(pool *pgxpool.Pool) repository.PremiumTokenRepository {
	return &premiumTokenRepo{pool: pool}
}

// Create persists an issued token. Rows are append-only; there is no
// update path because tokens are immutable after issuance.
func (r *premiumTokenRepo) Create(ctx context.Context, tx repository.Tx, t *model.PremiumToken) error {
	const q = `
INSERT INTO premium_tokens (id, token, owner_id, source_code_id, issued_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		t.ID, t.Token, t.OwnerID, t.SourceCodeID, t.IssuedAt, t.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *premiumTokenRepo) FindByToken(ctx context.Context, tx repository.Tx, token string) (*model.PremiumToken, error) {
	const q = `
SELECT id, token, owner_id, source_code_id, issued_at, expires_at
  FROM premium_tokens
 WHERE token = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, token)
	if err != nil {
		return nil, err
	}

	var t model.PremiumToken
	err = row.Scan(&t.ID, &t.Token, &t.OwnerID, &t.SourceCodeID, &t.IssuedAt, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *premiumTokenRepo) CountActive(ctx context.Context, tx repository.Tx, at time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM premium_tokens WHERE expires_at > $1;`
	row, err := pickRow(ctx, r.pool, tx, q, at)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
