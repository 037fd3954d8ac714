package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"premium-unlock/internal/domain"
	"premium-unlock/internal/domain/model"
)

func newTokenFixture(t *testing.T, start time.Time) (*memTokenRepo, *fixedClock, *TokenUseCase) {
	t.Helper()
	tokens := newMemTokenRepo()
	clock := newFixedClock(start)
	uc := NewTokenUseCase(tokens, testLogger())
	uc.now = clock.Now
	return tokens, clock, uc
}

func seedToken(t *testing.T, tokens *memTokenRepo, issuedAt time.Time, durationSec int64) *model.PremiumToken {
	t.Helper()
	tok, err := model.NewPremiumToken("device-1", "code-1", issuedAt, durationSec)
	if err != nil {
		t.Fatalf("NewPremiumToken: %v", err)
	}
	if err := tokens.Create(context.Background(), nil, tok); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	return tok
}

func TestCheck_NotFound(t *testing.T) {
	_, _, uc := newTokenFixture(t, testStart)

	if _, err := uc.Check(context.Background(), "NOSUCHTOKEN"); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
	if _, err := uc.Check(context.Background(), ""); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Fatalf("empty token: expected ErrTokenNotFound, got %v", err)
	}
}

func TestCheck_ActiveAndRemaining(t *testing.T) {
	tokens, clock, uc := newTokenFixture(t, testStart)
	tok := seedToken(t, tokens, testStart, 300)

	st, err := uc.Check(context.Background(), tok.Token)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !st.Active {
		t.Error("token should be active immediately after issuance")
	}
	if st.RemainingSeconds != 300 {
		t.Errorf("RemainingSeconds = %d, want 300", st.RemainingSeconds)
	}
	if !st.ExpiresAt.Equal(tok.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", st.ExpiresAt, tok.ExpiresAt)
	}

	clock.Advance(100 * time.Second)
	st, err = uc.Check(context.Background(), tok.Token)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if st.RemainingSeconds != 200 {
		t.Errorf("RemainingSeconds = %d, want 200", st.RemainingSeconds)
	}
}

// Remaining is strictly decreasing while active and Active flips at most
// once, never back to true.
func TestCheck_ExpiryMonotonicity(t *testing.T) {
	tokens, clock, uc := newTokenFixture(t, testStart)
	tok := seedToken(t, tokens, testStart, 60)

	var lastRemaining int64 = 61
	flips := 0
	active := true
	for i := 0; i < 120; i++ {
		st, err := uc.Check(context.Background(), tok.Token)
		if err != nil {
			t.Fatalf("Check at step %d: %v", i, err)
		}
		if st.Active {
			if !active {
				t.Fatalf("step %d: token flipped back to active", i)
			}
			if st.RemainingSeconds >= lastRemaining {
				t.Fatalf("step %d: remaining %d not strictly decreasing from %d", i, st.RemainingSeconds, lastRemaining)
			}
			lastRemaining = st.RemainingSeconds
		} else {
			if active {
				flips++
				active = false
			}
			if st.RemainingSeconds != 0 {
				t.Fatalf("step %d: inactive token reports remaining %d", i, st.RemainingSeconds)
			}
		}
		clock.Advance(time.Second)
	}
	if flips != 1 {
		t.Fatalf("expected exactly one active->inactive flip, got %d", flips)
	}
}

// The answer derives only from the stored absolute expiry and the server
// clock: rebuilding the validator (a process restart) and checking any
// number of times changes nothing.
func TestCheck_ClockRestartImmunity(t *testing.T) {
	tokens, clock, uc := newTokenFixture(t, testStart)
	tok := seedToken(t, tokens, testStart, 300)

	expiry := tok.ExpiresAt

	clock.Advance(299 * time.Second)
	for i := 0; i < 5; i++ {
		st, err := uc.Check(context.Background(), tok.Token)
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if !st.Active {
			t.Fatal("token must be active before its stored expiry")
		}
	}

	// Simulate a process restart: fresh use case over the same store, with
	// the server clock now at exactly the stored expiry instant.
	restarted := NewTokenUseCase(tokens, testLogger())
	restarted.now = func() time.Time { return expiry }
	st, err := restarted.Check(context.Background(), tok.Token)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if st.Active {
		t.Error("token must be inactive at its stored expiry instant")
	}

	later := NewTokenUseCase(tokens, testLogger())
	later.now = func() time.Time { return expiry.Add(48 * time.Hour) }
	st, err = later.Check(context.Background(), tok.Token)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if st.Active || st.RemainingSeconds != 0 {
		t.Errorf("token must stay expired after restart, got %+v", st)
	}
}

// End-to-end: generate a 30-minute code, redeem it, watch the token expire
// on the server clock alone.
func TestEndToEnd_GenerateRedeemCheck(t *testing.T) {
	ctx := context.Background()
	codes := newMemCodeRepo()
	tokens := newMemTokenRepo()
	clock := newFixedClock(testStart)

	codeUC := NewCodeUseCase(codes, nil, testLogger())
	codeUC.now = clock.Now
	redeemUC := NewRedeemUseCase(codes, tokens, testLogger())
	redeemUC.now = clock.Now
	tokenUC := NewTokenUseCase(tokens, testLogger())
	tokenUC.now = clock.Now

	// Seed a 5-minute grant the way an admin would.
	code, err := codeUC.Generate(ctx, model.DurationTrial)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// Override duration to the scenario's 300s grant.
	codes.byCode[code.Code].PremiumDurationSeconds = 300

	tok, err := redeemUC.Redeem(ctx, "DEVICE-1", code.Code)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if got, want := tok.ExpiresAt, clock.Now().Add(300*time.Second); !got.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", got, want)
	}

	st, err := tokenUC.Check(ctx, tok.Token)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !st.Active || st.RemainingSeconds != 300 {
		t.Fatalf("expected active with 300s remaining, got %+v", st)
	}

	clock.Advance(301 * time.Second)
	st, err = tokenUC.Check(ctx, tok.Token)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if st.Active {
		t.Fatal("token must be inactive 301s after a 300s grant")
	}
}
