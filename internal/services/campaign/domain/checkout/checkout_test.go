package checkout

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/impulso-music/impulso/internal/services/campaign/domain/coupon"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/pricing"
)

var fixedTime = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T) Session {
	t.Helper()
	quote := pricing.BuildQuote(decimal.NewFromInt(500), coupon.Coupon{})
	session, err := NewSession("wiz123", "user1", quote, "idem-key-1", func() time.Time { return fixedTime }, func() (string, error) {
		return "chk123", nil
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

func attachQR(t *testing.T, session *Session) {
	t.Helper()
	if err := session.AttachQR("camp1", "http://qr/img", "pix-copy-paste", func() time.Time { return fixedTime }); err != nil {
		t.Fatalf("attach qr: %v", err)
	}
}

func TestNewSessionFreezesAmount(t *testing.T) {
	session := newTestSession(t)

	if session.State != StateAwaitingQR {
		t.Fatalf("expected awaiting QR, got %v", session.State)
	}
	if !session.FinalAmount.Equal(decimal.RequireFromString("525")) {
		t.Fatalf("expected frozen amount 525, got %s", session.FinalAmount)
	}
	if session.IdempotencyKey != "idem-key-1" {
		t.Fatalf("expected idempotency key retained, got %q", session.IdempotencyKey)
	}
}

func TestAttachQRStartsCountdown(t *testing.T) {
	session := newTestSession(t)
	attachQR(t, &session)

	if session.State != StateAwaitingConfirmation {
		t.Fatalf("expected awaiting confirmation, got %v", session.State)
	}
	if session.RemainingSeconds != CountdownSeconds {
		t.Fatalf("expected %d remaining, got %d", CountdownSeconds, session.RemainingSeconds)
	}
	want := fixedTime.Add(CountdownSeconds * time.Second)
	if !session.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, session.ExpiresAt)
	}
}

func TestAttachQRFailsClosedOnMissingFields(t *testing.T) {
	tests := []struct {
		name       string
		campaignID string
		image      string
		text       string
	}{
		{"missing image", "camp1", "", "pix"},
		{"missing text", "camp1", "http://qr", ""},
		{"missing campaign id", "", "http://qr", "pix"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			session := newTestSession(t)
			err := session.AttachQR(tc.campaignID, tc.image, tc.text, nil)
			if !errors.Is(err, ErrQRIncomplete) {
				t.Fatalf("expected ErrQRIncomplete, got %v", err)
			}
			if session.State != StateAwaitingQR {
				t.Fatalf("expected state unchanged, got %v", session.State)
			}
		})
	}
}

func TestAttachQRRequiresAwaitingQR(t *testing.T) {
	session := newTestSession(t)
	attachQR(t, &session)

	err := session.AttachQR("camp1", "http://qr", "pix", nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCountdownStopsAtZero(t *testing.T) {
	session := newTestSession(t)
	attachQR(t, &session)

	for i := 0; i < CountdownSeconds; i++ {
		session.Tick()
	}
	if session.RemainingSeconds != 0 {
		t.Fatalf("expected 0 remaining, got %d", session.RemainingSeconds)
	}
	if session.State != StateExpired {
		t.Fatalf("expected expired state, got %v", session.State)
	}
	if session.Confirmation != ConfirmationTimedOut {
		t.Fatalf("expected timed out confirmation, got %v", session.Confirmation)
	}

	// Extra ticks never go negative.
	session.Tick()
	if session.RemainingSeconds != 0 {
		t.Fatalf("expected 0 remaining after extra tick, got %d", session.RemainingSeconds)
	}
}

func TestRemainingAtDerivesFromClock(t *testing.T) {
	session := newTestSession(t)
	attachQR(t, &session)

	if got := session.RemainingAt(fixedTime); got != CountdownSeconds {
		t.Fatalf("expected %d, got %d", CountdownSeconds, got)
	}
	if got := session.RemainingAt(fixedTime.Add(45 * time.Second)); got != 555 {
		t.Fatalf("expected 555, got %d", got)
	}
	if got := session.RemainingAt(fixedTime.Add(20 * time.Minute)); got != 0 {
		t.Fatalf("expected 0 after expiry, got %d", got)
	}
}

func TestExpiredSessionBlocksConfirmation(t *testing.T) {
	session := newTestSession(t)
	attachQR(t, &session)
	for i := 0; i < CountdownSeconds; i++ {
		session.Tick()
	}

	if err := session.BeginConfirmation(nil); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if err := session.ApplyVerification(true, nil); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestClockExpiryBlocksConfirmation(t *testing.T) {
	session := newTestSession(t)
	attachQR(t, &session)

	// The window has passed on the clock but no tick landed yet.
	late := func() time.Time { return fixedTime.Add((CountdownSeconds + 1) * time.Second) }
	if err := session.BeginConfirmation(late); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if session.State != StateExpired {
		t.Fatalf("expected expired state, got %v", session.State)
	}
	if session.Confirmation != ConfirmationTimedOut {
		t.Fatalf("expected timed out confirmation, got %v", session.Confirmation)
	}

	session = newTestSession(t)
	attachQR(t, &session)
	if err := session.ApplyVerification(true, late); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if session.State != StateExpired {
		t.Fatalf("expected expired state, got %v", session.State)
	}
}

func TestVerifiedConfirmation(t *testing.T) {
	session := newTestSession(t)
	attachQR(t, &session)

	clock := func() time.Time { return fixedTime }
	if err := session.BeginConfirmation(clock); err != nil {
		t.Fatalf("begin confirmation: %v", err)
	}
	if session.Confirmation != ConfirmationPolling {
		t.Fatalf("expected polling, got %v", session.Confirmation)
	}

	// Gateway has not seen the payment yet: stay awaiting.
	err := session.ApplyVerification(false, clock)
	if !errors.Is(err, ErrPaymentUnverified) {
		t.Fatalf("expected ErrPaymentUnverified, got %v", err)
	}
	if session.State != StateAwaitingConfirmation {
		t.Fatalf("expected still awaiting, got %v", session.State)
	}

	// Settled payment confirms.
	if err := session.ApplyVerification(true, func() time.Time { return fixedTime.Add(time.Minute) }); err != nil {
		t.Fatalf("apply verification: %v", err)
	}
	if session.State != StateConfirmed {
		t.Fatalf("expected confirmed, got %v", session.State)
	}
	if session.Confirmation != ConfirmationVerified {
		t.Fatalf("expected verified, got %v", session.Confirmation)
	}
	if !session.Done() {
		t.Fatal("expected session done")
	}
}

func TestConfirmationRequiresQR(t *testing.T) {
	session := newTestSession(t)
	if err := session.BeginConfirmation(nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestStateLabels(t *testing.T) {
	if StateAwaitingConfirmation.StateLabel() != "AWAITING_CONFIRMATION" {
		t.Fatal("unexpected state label")
	}
	if ConfirmationTimedOut.Label() != "TIMED_OUT" {
		t.Fatal("unexpected confirmation label")
	}
	if StateUnspecified.StateLabel() != "UNSPECIFIED" {
		t.Fatal("unexpected zero state label")
	}
}
