// Package service orchestrates the campaign wizard and checkout pipeline.
//
// It owns the session stores, the marketplace gateways, and the countdown
// runners for live checkout sessions. All operations are scoped to the
// authenticated user; a session belonging to someone else reads as not
// found.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/impulso-music/impulso/internal/platform/errors"
	"github.com/impulso-music/impulso/internal/platform/id"
	"github.com/impulso-music/impulso/internal/platform/money"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/checkout"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/coupon"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/pricing"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/track"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/wizard"
	"github.com/impulso-music/impulso/internal/services/campaign/gateway"
	"github.com/impulso-music/impulso/internal/services/campaign/storage"
)

var (
	// ErrSubmissionInFlight indicates a checkout creation already running for
	// the wizard session.
	ErrSubmissionInFlight = apperrors.New(apperrors.CodeWizardBusy, "a submission is already in flight for this wizard")
	// ErrWizardIncomplete indicates a checkout attempt on a wizard with
	// incomplete steps.
	ErrWizardIncomplete = apperrors.New(apperrors.CodeWizardIncomplete, "wizard has incomplete steps")
)

// Reasons a coupon did not apply. Both are recoverable: the user retries or
// proceeds without a discount.
const (
	CouponRejected    = "rejected"
	CouponUnavailable = "unavailable"
)

// Service implements the campaign wizard and checkout operations.
type Service struct {
	wizards   storage.WizardStore
	checkouts storage.CheckoutStore
	campaigns storage.CampaignStore
	coupons   gateway.CouponVerifier
	payments  gateway.PaymentGateway
	logger    *log.Logger

	now            func() time.Time
	idGenerator    func() (string, error)
	idempotencyKey func() string

	// inFlight guards against double-submission per wizard session;
	// pendingKeys holds each wizard's idempotency key until a creation
	// succeeds, so a retried submission reuses the same key.
	inFlightMu  sync.Mutex
	inFlight    map[string]struct{}
	pendingKeys map[string]string

	// runners tracks countdown goroutines per checkout session.
	runnerCtx    context.Context
	runnerCancel context.CancelFunc
	runnerWG     sync.WaitGroup
	runnersMu    sync.Mutex
	runners      map[string]context.CancelFunc
}

// Options configures a Service. Stores and gateways are required; clock and
// id generators default to production implementations.
type Options struct {
	Wizards   storage.WizardStore
	Checkouts storage.CheckoutStore
	Campaigns storage.CampaignStore
	Coupons   gateway.CouponVerifier
	Payments  gateway.PaymentGateway
	Logger    *log.Logger

	Now            func() time.Time
	IDGenerator    func() (string, error)
	IdempotencyKey func() string
}

// NewService creates the campaign service.
func NewService(opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = id.NewID
	}
	if opts.IdempotencyKey == nil {
		opts.IdempotencyKey = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	runnerCtx, runnerCancel := context.WithCancel(context.Background())
	return &Service{
		wizards:        opts.Wizards,
		checkouts:      opts.Checkouts,
		campaigns:      opts.Campaigns,
		coupons:        opts.Coupons,
		payments:       opts.Payments,
		logger:         opts.Logger,
		now:            opts.Now,
		idGenerator:    opts.IDGenerator,
		idempotencyKey: opts.IdempotencyKey,
		inFlight:       make(map[string]struct{}),
		pendingKeys:    make(map[string]string),
		runnerCtx:      runnerCtx,
		runnerCancel:   runnerCancel,
		runners:        make(map[string]context.CancelFunc),
	}
}

// Shutdown stops all countdown runners and waits for them to exit.
func (s *Service) Shutdown() {
	s.runnerCancel()
	s.runnerWG.Wait()
}

// StartWizard opens a new wizard session for a user. An empty platform
// defaults to Spotify.
func (s *Service) StartWizard(ctx context.Context, userID, platformLabel string) (wizard.Session, error) {
	platform := wizard.PlatformUnspecified
	if platformLabel != "" {
		parsed, err := wizard.PlatformFromLabel(platformLabel)
		if err != nil {
			return wizard.Session{}, err
		}
		platform = parsed
	}

	session, err := wizard.NewSession(userID, platform, s.now, s.idGenerator)
	if err != nil {
		return wizard.Session{}, fmt.Errorf("start wizard: %w", err)
	}
	if err := s.wizards.PutWizard(ctx, session); err != nil {
		return wizard.Session{}, fmt.Errorf("store wizard session: %w", err)
	}
	s.logger.Printf("wizard %s started for user %s on %s", session.ID, session.UserID, session.Platform.Label())
	return session, nil
}

// GetWizard fetches a user's wizard session.
func (s *Service) GetWizard(ctx context.Context, userID, wizardID string) (wizard.Session, error) {
	return s.ownedWizard(ctx, userID, wizardID)
}

// SelectTrack normalizes a raw track payload and stores the selection.
func (s *Service) SelectTrack(ctx context.Context, userID, wizardID string, payload track.Payload) (wizard.Session, error) {
	selection, err := track.Normalize(payload)
	if err != nil {
		return wizard.Session{}, err
	}
	return s.updateWizard(ctx, userID, wizardID, func(session *wizard.Session) error {
		session.SetTrack(selection)
		return nil
	})
}

// TargetingUpdate is a partial update to a wizard's targeting step.
// Nil pointer fields are left unchanged.
type TargetingUpdate struct {
	Genre       *string
	Language    *string
	AddMoods    []string
	RemoveMoods []string
}

// UpdateTargeting applies a partial targeting update.
func (s *Service) UpdateTargeting(ctx context.Context, userID, wizardID string, update TargetingUpdate) (wizard.Session, error) {
	return s.updateWizard(ctx, userID, wizardID, func(session *wizard.Session) error {
		if update.Genre != nil {
			session.SetGenre(*update.Genre)
		}
		if update.Language != nil {
			session.SetLanguage(*update.Language)
		}
		for _, mood := range update.AddMoods {
			session.AddMood(mood)
		}
		for _, mood := range update.RemoveMoods {
			session.RemoveMood(mood)
		}
		return nil
	})
}

// SetBudget sets the wizard budget. Slider amounts clamp into range; preset
// amounts are stored exactly and must be positive.
func (s *Service) SetBudget(ctx context.Context, userID, wizardID, amount string, preset bool) (wizard.Session, error) {
	value, err := money.Parse(amount)
	if err != nil {
		return wizard.Session{}, apperrors.Wrap(apperrors.CodeBudgetNotPositive, "invalid budget amount", err)
	}
	return s.updateWizard(ctx, userID, wizardID, func(session *wizard.Session) error {
		if preset {
			return session.SetBudgetPreset(value)
		}
		session.SetBudget(value)
		return nil
	})
}

// SetObservation stores the free-text campaign notes.
func (s *Service) SetObservation(ctx context.Context, userID, wizardID, text string) (wizard.Session, error) {
	return s.updateWizard(ctx, userID, wizardID, func(session *wizard.Session) error {
		session.SetObservation(text)
		return nil
	})
}

// Advance moves the wizard forward one step. A blocked step reports
// CodeWizardStepBlocked with the blocking step in the metadata.
func (s *Service) Advance(ctx context.Context, userID, wizardID string) (wizard.Session, error) {
	return s.updateWizard(ctx, userID, wizardID, func(session *wizard.Session) error {
		if session.CurrentStep >= wizard.TotalSteps {
			return nil
		}
		if !session.Advance() {
			return apperrors.WithMetadata(
				apperrors.CodeWizardStepBlocked,
				fmt.Sprintf("step %d is incomplete", session.CurrentStep),
				map[string]string{"Step": strconv.Itoa(session.CurrentStep)},
			)
		}
		return nil
	})
}

// Retreat moves the wizard back one step.
func (s *Service) Retreat(ctx context.Context, userID, wizardID string) (wizard.Session, error) {
	return s.updateWizard(ctx, userID, wizardID, func(session *wizard.Session) error {
		session.Retreat()
		return nil
	})
}

// GoToStep jumps to a step unconditionally, for edit-from-summary re-entry.
func (s *Service) GoToStep(ctx context.Context, userID, wizardID string, step int) (wizard.Session, error) {
	return s.updateWizard(ctx, userID, wizardID, func(session *wizard.Session) error {
		return session.GoToStep(step)
	})
}

// ResetWizard clears the wizard back to step 1, keeping its identity.
func (s *Service) ResetWizard(ctx context.Context, userID, wizardID string) (wizard.Session, error) {
	return s.updateWizard(ctx, userID, wizardID, func(session *wizard.Session) error {
		session.Reset()
		return nil
	})
}

// Quote computes the pricing breakdown for a wizard session.
func (s *Service) Quote(ctx context.Context, userID, wizardID string) (pricing.Quote, error) {
	session, err := s.ownedWizard(ctx, userID, wizardID)
	if err != nil {
		return pricing.Quote{}, err
	}
	return pricing.BuildQuote(session.Budget.Base, session.Coupon), nil
}

// CouponResult is the outcome of a coupon verification attempt.
// A coupon that did not apply is a normal result, never a propagated
// transport error; Reason says why.
type CouponResult struct {
	// Applied reports whether the coupon was authorized and attached.
	Applied bool
	// Reason is set when the coupon did not apply: CouponRejected or
	// CouponUnavailable.
	Reason string
	Coupon coupon.Coupon
	Quote  pricing.Quote
}

// VerifyCoupon checks a code against the marketplace and, when authorized,
// attaches it to the wizard. A declined code and an unreachable backend are
// both discriminated results; either way any previously applied coupon is
// left untouched.
func (s *Service) VerifyCoupon(ctx context.Context, userID, wizardID, code string) (CouponResult, error) {
	session, err := s.ownedWizard(ctx, userID, wizardID)
	if err != nil {
		return CouponResult{}, err
	}
	if code == "" {
		return CouponResult{}, coupon.ErrEmptyCode
	}
	currentQuote := pricing.BuildQuote(session.Budget.Base, session.Coupon)

	verification, err := s.coupons.Verify(ctx, code)
	if err != nil {
		s.logger.Printf("coupon verification unavailable for wizard %s: %v", wizardID, err)
		return CouponResult{Reason: CouponUnavailable, Quote: currentQuote}, nil
	}
	if !verification.Authorized {
		return CouponResult{Reason: CouponRejected, Quote: currentQuote}, nil
	}

	// A malformed authorization (unparseable value, unknown kind) reads as
	// the backend misbehaving, not the user's code being wrong.
	magnitude, err := money.Parse(verification.Value)
	if err != nil {
		s.logger.Printf("coupon value malformed for wizard %s: %v", wizardID, err)
		return CouponResult{Reason: CouponUnavailable, Quote: currentQuote}, nil
	}
	verified, err := coupon.FromVerification(code, verification.Kind, magnitude)
	if err != nil {
		s.logger.Printf("coupon kind malformed for wizard %s: %v", wizardID, err)
		return CouponResult{Reason: CouponUnavailable, Quote: currentQuote}, nil
	}

	updated, err := s.updateWizard(ctx, userID, wizardID, func(session *wizard.Session) error {
		return session.ApplyCoupon(verified)
	})
	if err != nil {
		return CouponResult{}, err
	}
	return CouponResult{
		Applied: true,
		Coupon:  verified,
		Quote:   pricing.BuildQuote(updated.Budget.Base, updated.Coupon),
	}, nil
}

// RemoveCoupon detaches any applied coupon from the wizard.
func (s *Service) RemoveCoupon(ctx context.Context, userID, wizardID string) (wizard.Session, error) {
	return s.updateWizard(ctx, userID, wizardID, func(session *wizard.Session) error {
		session.ClearCoupon()
		return nil
	})
}

// StartCheckout submits a completed wizard to the marketplace and opens its
// PIX payment session.
//
// Every step is re-validated first, so an unconditional step jump can never
// submit an incomplete wizard. Only one submission may run per wizard at a
// time, and the creation request carries an idempotency key so a retry
// cannot open a second charge.
func (s *Service) StartCheckout(ctx context.Context, userID, wizardID string) (checkout.Session, error) {
	if !s.markInFlight(wizardID) {
		return checkout.Session{}, ErrSubmissionInFlight
	}
	defer s.clearInFlight(wizardID)

	session, err := s.ownedWizard(ctx, userID, wizardID)
	if err != nil {
		return checkout.Session{}, err
	}
	if step, invalid := session.FirstInvalidStep(); invalid {
		return checkout.Session{}, apperrors.WithMetadata(
			apperrors.CodeWizardIncomplete,
			fmt.Sprintf("step %d is incomplete", step),
			map[string]string{"Step": strconv.Itoa(step)},
		)
	}

	quote := pricing.BuildQuote(session.Budget.Base, session.Coupon)
	payment, err := checkout.NewSession(session.ID, userID, quote, s.submissionKey(wizardID), s.now, s.idGenerator)
	if err != nil {
		return checkout.Session{}, fmt.Errorf("open checkout session: %w", err)
	}

	// The backend opens the PIX charge from the budget field, so it must be
	// the fee-inclusive amount, net of any verified coupon.
	created, err := s.payments.CreateCampaign(ctx, gateway.CreateCampaignRequest{
		Budget:     jsonNumber(quote.FinalAmount),
		Platform:   session.Platform.Label(),
		TrackID:    session.Track.ID,
		TrackName:  session.Track.Name,
		ArtistName: session.Track.ArtistName,
		TargetOptions: gateway.TargetOptions{
			Genre:    session.Targeting.Genre,
			Language: session.Targeting.Language,
			Mood:     session.Targeting.Moods,
		},
		Observation:    session.Observation,
		Coupon:         quote.CouponCode,
		IdempotencyKey: payment.IdempotencyKey,
	})
	if err != nil {
		s.logger.Printf("campaign creation failed for wizard %s: %v", wizardID, err)
		return checkout.Session{}, err
	}

	// A response without the full QR payload is a creation failure; nothing
	// is persisted and the wizard stays editable.
	if err := payment.AttachQR(created.ID, created.QRCodeImage, created.QRCodeText, s.now); err != nil {
		s.logger.Printf("campaign %s returned incomplete qr payload", created.ID)
		return checkout.Session{}, err
	}

	record := campaignRecord(session, quote, created.ID, s.now().UTC())
	if err := s.campaigns.PutCampaign(ctx, record); err != nil {
		return checkout.Session{}, fmt.Errorf("store campaign record: %w", err)
	}
	if err := s.checkouts.PutCheckout(ctx, payment); err != nil {
		return checkout.Session{}, fmt.Errorf("store checkout session: %w", err)
	}

	s.clearSubmissionKey(wizardID)
	s.startCountdown(payment.ID)
	s.logger.Printf("checkout %s opened for wizard %s, charging %s", payment.ID, wizardID, money.FormatBRL(payment.FinalAmount))
	return payment, nil
}

// GetCheckout fetches a user's checkout session. The countdown value is
// derived from the clock so a read never shows more time than remains.
func (s *Service) GetCheckout(ctx context.Context, userID, checkoutID string) (checkout.Session, error) {
	session, err := s.ownedCheckout(ctx, userID, checkoutID)
	if err != nil {
		return checkout.Session{}, err
	}
	if session.State == checkout.StateAwaitingConfirmation {
		session.RemainingSeconds = session.RemainingAt(s.now().UTC())
	}
	return session, nil
}

// ConfirmPayment handles the "I already paid" action: it asks the
// marketplace whether the charge settled and only confirms on a positive
// answer. An unsettled charge reports CodeCheckoutUnverified so the client
// can keep the session open and retry.
func (s *Service) ConfirmPayment(ctx context.Context, userID, checkoutID string) (checkout.Session, error) {
	session, err := s.ownedCheckout(ctx, userID, checkoutID)
	if err != nil {
		return checkout.Session{}, err
	}
	if err := session.BeginConfirmation(s.now); err != nil {
		// The window may have closed on the clock before the tick runner
		// landed; persist the expired state so later reads agree.
		if errors.Is(err, checkout.ErrExpired) {
			if putErr := s.checkouts.PutCheckout(ctx, session); putErr != nil {
				return checkout.Session{}, fmt.Errorf("store checkout session: %w", putErr)
			}
		}
		return checkout.Session{}, err
	}
	if err := s.checkouts.PutCheckout(ctx, session); err != nil {
		return checkout.Session{}, fmt.Errorf("store checkout session: %w", err)
	}

	status, err := s.payments.PaymentStatus(ctx, session.CampaignID)
	if err != nil {
		s.logger.Printf("payment status check failed for checkout %s: %v", checkoutID, err)
		return checkout.Session{}, apperrors.Wrap(apperrors.CodePaymentCreationFailed, "check payment status", err)
	}

	if err := session.ApplyVerification(status.Paid, s.now); err != nil {
		// Persist the polling sub-state before reporting unverified.
		if putErr := s.checkouts.PutCheckout(ctx, session); putErr != nil {
			return checkout.Session{}, fmt.Errorf("store checkout session: %w", putErr)
		}
		return session, err
	}

	if err := s.checkouts.PutCheckout(ctx, session); err != nil {
		return checkout.Session{}, fmt.Errorf("store checkout session: %w", err)
	}
	if err := s.campaigns.UpdatePaymentStatus(ctx, session.CampaignID, storage.PaymentPaid, s.now().UTC()); err != nil {
		return checkout.Session{}, fmt.Errorf("mark campaign paid: %w", err)
	}
	// The wizard is consumed; a new campaign starts a fresh session.
	if err := s.wizards.DeleteWizard(ctx, session.WizardID); err != nil {
		return checkout.Session{}, fmt.Errorf("discard wizard session: %w", err)
	}

	s.stopCountdown(session.ID)
	s.logger.Printf("checkout %s confirmed for campaign %s", session.ID, session.CampaignID)
	return session, nil
}

// AbandonCheckout discards a checkout session. The wizard stays intact so
// the user can resubmit.
func (s *Service) AbandonCheckout(ctx context.Context, userID, checkoutID string) error {
	session, err := s.ownedCheckout(ctx, userID, checkoutID)
	if err != nil {
		return err
	}
	s.stopCountdown(session.ID)
	if err := s.checkouts.DeleteCheckout(ctx, session.ID); err != nil {
		return fmt.Errorf("discard checkout session: %w", err)
	}
	return nil
}

// ListCampaigns returns the user's created campaigns, most recent first.
func (s *Service) ListCampaigns(ctx context.Context, userID string) ([]storage.CampaignRecord, error) {
	records, err := s.campaigns.ListCampaignsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return records, nil
}

// GetCampaign fetches one of the user's campaigns.
func (s *Service) GetCampaign(ctx context.Context, userID, campaignID string) (storage.CampaignRecord, error) {
	record, err := s.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return storage.CampaignRecord{}, err
	}
	if record.UserID != userID {
		return storage.CampaignRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (s *Service) ownedWizard(ctx context.Context, userID, wizardID string) (wizard.Session, error) {
	session, err := s.wizards.GetWizard(ctx, wizardID)
	if err != nil {
		return wizard.Session{}, err
	}
	if session.UserID != userID {
		return wizard.Session{}, storage.ErrNotFound
	}
	return session, nil
}

func (s *Service) ownedCheckout(ctx context.Context, userID, checkoutID string) (checkout.Session, error) {
	session, err := s.checkouts.GetCheckout(ctx, checkoutID)
	if err != nil {
		return checkout.Session{}, err
	}
	if session.UserID != userID {
		return checkout.Session{}, storage.ErrNotFound
	}
	return session, nil
}

func (s *Service) updateWizard(ctx context.Context, userID, wizardID string, mutate func(*wizard.Session) error) (wizard.Session, error) {
	session, err := s.ownedWizard(ctx, userID, wizardID)
	if err != nil {
		return wizard.Session{}, err
	}
	if err := mutate(&session); err != nil {
		return wizard.Session{}, err
	}
	session.UpdatedAt = s.now().UTC()
	if err := s.wizards.PutWizard(ctx, session); err != nil {
		return wizard.Session{}, fmt.Errorf("store wizard session: %w", err)
	}
	return session, nil
}

func (s *Service) markInFlight(wizardID string) bool {
	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()
	if _, busy := s.inFlight[wizardID]; busy {
		return false
	}
	s.inFlight[wizardID] = struct{}{}
	return true
}

func (s *Service) clearInFlight(wizardID string) {
	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()
	delete(s.inFlight, wizardID)
}

// submissionKey returns the wizard's pending idempotency key, minting one on
// first use. A failed creation keeps the key, so the retry carries the same
// one and the backend can de-duplicate.
func (s *Service) submissionKey(wizardID string) string {
	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()
	key, ok := s.pendingKeys[wizardID]
	if !ok {
		key = s.idempotencyKey()
		s.pendingKeys[wizardID] = key
	}
	return key
}

func (s *Service) clearSubmissionKey(wizardID string) {
	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()
	delete(s.pendingKeys, wizardID)
}

// startCountdown runs a per-session goroutine ticking the stored countdown
// once per second until the session reaches a terminal state or the runner
// is cancelled.
func (s *Service) startCountdown(checkoutID string) {
	runCtx, cancel := context.WithCancel(s.runnerCtx)
	s.runnersMu.Lock()
	s.runners[checkoutID] = cancel
	s.runnersMu.Unlock()

	s.runnerWG.Add(1)
	go func() {
		defer s.runnerWG.Done()
		defer s.stopCountdown(checkoutID)

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				session, err := s.checkouts.TickCheckout(runCtx, checkoutID)
				if err != nil {
					if !errors.Is(err, storage.ErrNotFound) {
						s.logger.Printf("countdown tick failed for checkout %s: %v", checkoutID, err)
					}
					return
				}
				if session.Done() {
					if session.State == checkout.StateExpired {
						s.logger.Printf("checkout %s expired unpaid", checkoutID)
					}
					return
				}
			}
		}
	}()
}

func (s *Service) stopCountdown(checkoutID string) {
	s.runnersMu.Lock()
	cancel, ok := s.runners[checkoutID]
	if ok {
		delete(s.runners, checkoutID)
	}
	s.runnersMu.Unlock()
	if ok {
		cancel()
	}
}
