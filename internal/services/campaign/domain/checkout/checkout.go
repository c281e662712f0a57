// Package checkout models the PIX payment session for a completed wizard.
//
// A session exists only after the marketplace accepted the campaign-creation
// request; a failed creation leaves nothing behind. The final amount is
// frozen from the pricing quote at creation time and is never recomputed
// from later budget edits, so the charged value cannot drift mid-payment.
//
// Confirmation is server-verified: the "I already paid" action starts a
// verification poll, and the session only reaches Confirmed once the
// payment gateway reports the charge settled. A countdown that reaches zero
// expires the session and blocks confirmation.
package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/impulso-music/impulso/internal/platform/errors"
	"github.com/impulso-music/impulso/internal/platform/id"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/pricing"
)

// CountdownSeconds is the PIX validity window.
const CountdownSeconds = 600

// State describes the checkout session lifecycle.
type State int

const (
	// StateUnspecified represents an invalid state value.
	StateUnspecified State = iota
	// StateAwaitingQR means the creation request was sent and the QR payload
	// has not been attached yet.
	StateAwaitingQR
	// StateAwaitingConfirmation means the QR is displayed and the countdown
	// is running.
	StateAwaitingConfirmation
	// StateExpired means the countdown reached zero before confirmation.
	StateExpired
	// StateConfirmed means the payment was verified and the session is done.
	StateConfirmed
)

// ConfirmationStatus describes the verification sub-state while awaiting
// confirmation.
type ConfirmationStatus int

const (
	// ConfirmationNone means no verification attempt has started.
	ConfirmationNone ConfirmationStatus = iota
	// ConfirmationPolling means a payment-status check is in flight or the
	// last check came back unpaid.
	ConfirmationPolling
	// ConfirmationVerified means the gateway reported the charge settled.
	ConfirmationVerified
	// ConfirmationTimedOut means the window closed before verification.
	ConfirmationTimedOut
)

var (
	// ErrInvalidTransition indicates an operation not allowed in the current state.
	ErrInvalidTransition = apperrors.New(apperrors.CodeCheckoutInvalidTransition, "checkout state does not allow this operation")
	// ErrQRIncomplete indicates a creation response missing QR payload fields.
	ErrQRIncomplete = apperrors.New(apperrors.CodeCheckoutQRIncomplete, "qr payload is missing required fields")
	// ErrExpired indicates the payment window has closed.
	ErrExpired = apperrors.New(apperrors.CodeCheckoutExpired, "checkout session has expired")
	// ErrPaymentUnverified indicates the gateway has not seen the payment yet.
	ErrPaymentUnverified = apperrors.New(apperrors.CodeCheckoutUnverified, "payment has not been verified")
)

// Session is one PIX payment attempt for a completed wizard.
type Session struct {
	ID             string
	WizardID       string
	UserID         string
	CampaignID     string
	FinalAmount    decimal.Decimal
	CouponCode     string
	QRImageURL     string
	QRText         string
	IdempotencyKey string
	State          State
	Confirmation   ConfirmationStatus
	// RemainingSeconds counts down once per second while awaiting
	// confirmation; it never goes below zero.
	RemainingSeconds int
	ExpiresAt        time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewSession freezes a quote into a payment session awaiting its QR payload.
// The idempotency key tags the creation request so a double-tap cannot
// create two paid campaigns.
func NewSession(wizardID, userID string, quote pricing.Quote, idempotencyKey string, now func() time.Time, idGenerator func() (string, error)) (Session, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	sessionID, err := idGenerator()
	if err != nil {
		return Session{}, fmt.Errorf("generate checkout session id: %w", err)
	}

	createdAt := now().UTC()
	return Session{
		ID:             sessionID,
		WizardID:       wizardID,
		UserID:         strings.TrimSpace(userID),
		FinalAmount:    quote.FinalAmount,
		CouponCode:     quote.CouponCode,
		IdempotencyKey: idempotencyKey,
		State:          StateAwaitingQR,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}, nil
}

// AttachQR stores the QR payload returned by the marketplace and starts the
// countdown. A payload missing either field fails closed: the session stays
// awaiting and the caller treats it as a creation failure.
func (s *Session) AttachQR(campaignID, qrImageURL, qrText string, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	if s.State != StateAwaitingQR {
		return ErrInvalidTransition
	}
	campaignID = strings.TrimSpace(campaignID)
	qrImageURL = strings.TrimSpace(qrImageURL)
	qrText = strings.TrimSpace(qrText)
	if campaignID == "" || qrImageURL == "" || qrText == "" {
		return ErrQRIncomplete
	}

	attachedAt := now().UTC()
	s.CampaignID = campaignID
	s.QRImageURL = qrImageURL
	s.QRText = qrText
	s.State = StateAwaitingConfirmation
	s.RemainingSeconds = CountdownSeconds
	s.ExpiresAt = attachedAt.Add(CountdownSeconds * time.Second)
	s.UpdatedAt = attachedAt
	return nil
}

// Tick advances the countdown by one second. At zero the session expires
// and stays at zero; ticking any other state is a no-op.
func (s *Session) Tick() {
	if s.State != StateAwaitingConfirmation {
		return
	}
	if s.RemainingSeconds > 0 {
		s.RemainingSeconds--
	}
	if s.RemainingSeconds == 0 {
		s.State = StateExpired
		if s.Confirmation != ConfirmationVerified {
			s.Confirmation = ConfirmationTimedOut
		}
	}
}

// RemainingAt derives the countdown value from the wall clock, clamped to
// [0, CountdownSeconds]. Reads use this so a stale stored value can never
// show more time than actually remains.
func (s Session) RemainingAt(now time.Time) int {
	if s.State != StateAwaitingConfirmation {
		return 0
	}
	if !now.Before(s.ExpiresAt) {
		return 0
	}
	remaining := int(s.ExpiresAt.Sub(now).Seconds())
	if remaining > CountdownSeconds {
		return CountdownSeconds
	}
	return remaining
}

// expireIfDue expires a session whose window has already closed on the
// clock, even if the tick runner has not landed yet. It reports whether the
// session is expired.
func (s *Session) expireIfDue(now time.Time) bool {
	if s.State == StateExpired {
		return true
	}
	if s.State != StateAwaitingConfirmation || now.Before(s.ExpiresAt) {
		return false
	}
	s.State = StateExpired
	s.RemainingSeconds = 0
	if s.Confirmation != ConfirmationVerified {
		s.Confirmation = ConfirmationTimedOut
	}
	s.UpdatedAt = now
	return true
}

// BeginConfirmation records that a payment-status check is in flight.
// Only a live awaiting session can start one; expiry is checked against the
// clock, not just the ticked state.
func (s *Session) BeginConfirmation(now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	if s.expireIfDue(now().UTC()) {
		return ErrExpired
	}
	if s.State != StateAwaitingConfirmation {
		return ErrInvalidTransition
	}
	s.Confirmation = ConfirmationPolling
	return nil
}

// ApplyVerification applies the gateway's payment-status answer. A settled
// payment confirms the session; an unsettled one keeps it polling and
// reports ErrPaymentUnverified so the caller can surface a retry.
func (s *Session) ApplyVerification(settled bool, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	if s.expireIfDue(now().UTC()) {
		return ErrExpired
	}
	if s.State != StateAwaitingConfirmation {
		return ErrInvalidTransition
	}
	if !settled {
		s.Confirmation = ConfirmationPolling
		return ErrPaymentUnverified
	}
	s.Confirmation = ConfirmationVerified
	s.State = StateConfirmed
	s.UpdatedAt = now().UTC()
	return nil
}

// Done reports whether the session has reached a terminal state.
func (s Session) Done() bool {
	return s.State == StateConfirmed || s.State == StateExpired
}

// StateLabel returns a stable label for a checkout state.
func (s State) StateLabel() string {
	switch s {
	case StateAwaitingQR:
		return "AWAITING_QR"
	case StateAwaitingConfirmation:
		return "AWAITING_CONFIRMATION"
	case StateExpired:
		return "EXPIRED"
	case StateConfirmed:
		return "CONFIRMED"
	default:
		return "UNSPECIFIED"
	}
}

// Label returns a stable label for a confirmation status.
func (c ConfirmationStatus) Label() string {
	switch c {
	case ConfirmationPolling:
		return "POLLING"
	case ConfirmationVerified:
		return "VERIFIED"
	case ConfirmationTimedOut:
		return "TIMED_OUT"
	default:
		return "NONE"
	}
}
