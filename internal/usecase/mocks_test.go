// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"premium-unlock/internal/domain"
	"premium-unlock/internal/domain/model"
	"premium-unlock/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memCodeRepo is a small in-memory implementation used by unit tests. Its
// Redeem honours the same conditional-transition contract as the Postgres
// repo: the check and the flip happen under one lock, and a non-matching
// row reports ErrNoTransition.
type memCodeRepo struct {
	mu     sync.Mutex
	byCode map[string]*model.UnlockCode

	collisions int   // force this many ErrAlreadyExists results from Create
	createErr  error // simulate storage failure on Create
	findErr    error // simulate storage failure on FindByCode

	createCalls int
	findCalls   int
	redeemCalls int
}

func newMemCodeRepo() *memCodeRepo {
	return &memCodeRepo{byCode: make(map[string]*model.UnlockCode)}
}

func (m *memCodeRepo) Create(ctx context.Context, tx repository.Tx, code *model.UnlockCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if m.collisions > 0 {
		m.collisions--
		return domain.ErrAlreadyExists
	}
	if _, ok := m.byCode[code.Code]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *code
	m.byCode[code.Code] = &cp
	return nil
}

func (m *memCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.UnlockCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	c, ok := m.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCodeRepo) Redeem(ctx context.Context, tx repository.Tx, code, ownerID string, at time.Time) (string, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redeemCalls++
	c, ok := m.byCode[code]
	if !ok || c.Used || at.After(c.CodeValidUntil) {
		return "", 0, domain.ErrNoTransition
	}
	c.Used = true
	owner := ownerID
	redeemedAt := at
	c.RedeemedBy = &owner
	c.RedeemedAt = &redeemedAt
	return c.ID, c.PremiumDurationSeconds, nil
}

func (m *memCodeRepo) Delete(ctx context.Context, tx repository.Tx, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byCode[code]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byCode, code)
	return nil
}

func (m *memCodeRepo) CountIssued(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byCode), nil
}

func (m *memCodeRepo) CountRedeemed(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.byCode {
		if c.Used {
			n++
		}
	}
	return n, nil
}

func (m *memCodeRepo) CountExpiredUnused(ctx context.Context, tx repository.Tx, at time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.byCode {
		if !c.Used && at.After(c.CodeValidUntil) {
			n++
		}
	}
	return n, nil
}

// memTokenRepo mirrors the token table with a unique constraint on the
// token string.
type memTokenRepo struct {
	mu      sync.Mutex
	byToken map[string]*model.PremiumToken

	collisions int   // force this many ErrAlreadyExists results from Create
	createErr  error // simulate storage failure on Create

	createCalls int
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{byToken: make(map[string]*model.PremiumToken)}
}

func (m *memTokenRepo) Create(ctx context.Context, tx repository.Tx, t *model.PremiumToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if m.collisions > 0 {
		m.collisions--
		return domain.ErrAlreadyExists
	}
	if _, ok := m.byToken[t.Token]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *t
	m.byToken[t.Token] = &cp
	return nil
}

func (m *memTokenRepo) FindByToken(ctx context.Context, tx repository.Tx, token string) (*model.PremiumToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byToken[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTokenRepo) CountActive(ctx context.Context, tx repository.Tx, at time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.byToken {
		if t.ExpiresAt.After(at) {
			n++
		}
	}
	return n, nil
}

// fixedClock gives tests full control of the server clock.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFixedClock(t time.Time) *fixedClock { return &fixedClock{t: t} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
