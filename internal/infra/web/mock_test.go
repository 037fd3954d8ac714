package web

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

// Handler tests run real use cases over these in-memory repositories; only
// the storage layer is faked.

type memCodeRepo struct {
	mu        sync.Mutex
	byCode    map[string]*model.UnlockCode
	createErr error
}

func newMemCodeRepo() *memCodeRepo {
	return &memCodeRepo{byCode: make(map[string]*model.UnlockCode)}
}

func (m *memCodeRepo) Create(ctx context.Context, tx repository.Tx, code *model.UnlockCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
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

type memTokenRepo struct {
	mu        sync.Mutex
	byToken   map[string]*model.PremiumToken
	createErr error
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{byToken: make(map[string]*model.PremiumToken)}
}

func (m *memTokenRepo) Create(ctx context.Context, tx repository.Tx, t *model.PremiumToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
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
