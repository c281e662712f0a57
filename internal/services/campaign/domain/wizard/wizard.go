// Package wizard models the ordered campaign-creation session.
//
// One Session carries a user through the five wizard steps: track choice,
// audience targeting, notes, budget, and summary. Forward progress is gated
// by the current step's validity predicate; moving backwards is always
// allowed, and GoToStep jumps unconditionally for edit-from-summary
// re-entry. Checkout creation re-validates every step, so a jump can never
// smuggle an incomplete session into payment.
package wizard

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/impulso-music/impulso/internal/platform/errors"
	"github.com/impulso-music/impulso/internal/platform/id"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/budget"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/coupon"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/targeting"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/track"
)

// TotalSteps is the fixed number of wizard steps.
const TotalSteps = 5

// Step indices. The wizard is a fixed linear flow, not an extensible engine.
const (
	StepTrack     = 1
	StepTargeting = 2
	StepNotes     = 3
	StepBudget    = 4
	StepSummary   = 5
)

// Platform identifies where a campaign promotes its track.
type Platform int

const (
	// PlatformUnspecified represents an invalid platform value.
	PlatformUnspecified Platform = iota
	// PlatformSpotify promotes a Spotify track.
	PlatformSpotify
	// PlatformYouTube promotes a YouTube video.
	PlatformYouTube
	// PlatformTikTok promotes a TikTok sound.
	PlatformTikTok
	// PlatformInstagram promotes an Instagram reel.
	PlatformInstagram
)

// ErrStepOutOfRange indicates a step outside [1, TotalSteps].
var ErrStepOutOfRange = apperrors.New(apperrors.CodeWizardStepOutOfRange, "wizard step is out of range")

// Session is one user's pass through the campaign wizard.
type Session struct {
	ID          string
	UserID      string
	Platform    Platform
	CurrentStep int
	Track       track.Selection
	Targeting   targeting.Rules
	Budget      budget.Budget
	Observation string
	Coupon      coupon.Coupon
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewSession creates a wizard session at step 1 for a user.
func NewSession(userID string, platform Platform, now func() time.Time, idGenerator func() (string, error)) (Session, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	if platform == PlatformUnspecified {
		platform = PlatformSpotify
	}

	sessionID, err := idGenerator()
	if err != nil {
		return Session{}, fmt.Errorf("generate wizard session id: %w", err)
	}

	createdAt := now().UTC()
	return Session{
		ID:          sessionID,
		UserID:      strings.TrimSpace(userID),
		Platform:    platform,
		CurrentStep: StepTrack,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// SetTrack stores the chosen track. It never advances the step.
// Selecting a different track than the current one resets targeting and
// budget, because both are scoped to a single track.
func (s *Session) SetTrack(selection track.Selection) {
	if s.Track.Chosen() && s.Track.ID != selection.ID {
		s.Targeting = targeting.Rules{}
		s.Budget = budget.Budget{}
	}
	s.Track = selection
}

// SetGenre replaces the target genre.
func (s *Session) SetGenre(genre string) {
	s.Targeting.SetGenre(genre)
}

// SetLanguage replaces the target language.
func (s *Session) SetLanguage(language string) {
	s.Targeting.SetLanguage(language)
}

// AddMood adds a mood; duplicates are no-ops.
func (s *Session) AddMood(mood string) {
	s.Targeting.AddMood(mood)
}

// RemoveMood removes a mood; absent moods are no-ops.
func (s *Session) RemoveMood(mood string) {
	s.Targeting.RemoveMood(mood)
}

// SetBudget sets the base amount from the continuous slider control,
// clamping into the configured range.
func (s *Session) SetBudget(amount decimal.Decimal) {
	s.Budget.Base = budget.ClampContinuous(amount)
}

// SetBudgetPreset sets the base amount from a preset choice without
// re-clamping. Non-positive presets are refused.
func (s *Session) SetBudgetPreset(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.New(apperrors.CodeBudgetNotPositive, "budget must be positive")
	}
	s.Budget.Base = amount
	return nil
}

// SetObservation stores free-text campaign notes. No validation.
func (s *Session) SetObservation(text string) {
	s.Observation = text
}

// ApplyCoupon attaches a verified coupon to the session.
func (s *Session) ApplyCoupon(c coupon.Coupon) error {
	if !c.Verified {
		return coupon.ErrNotVerified
	}
	s.Coupon = c
	return nil
}

// ClearCoupon removes any applied coupon.
func (s *Session) ClearCoupon() {
	s.Coupon = coupon.Coupon{}
}

// StepValid reports whether a step's own data is complete.
// Steps outside [1, TotalSteps] are never valid.
func (s Session) StepValid(step int) bool {
	switch step {
	case StepTrack:
		return s.Track.Chosen()
	case StepTargeting:
		return s.Targeting.Valid()
	case StepNotes:
		// Free text, never gated beyond targeting.
		return true
	case StepBudget:
		return s.Budget.Set()
	case StepSummary:
		return true
	default:
		return false
	}
}

// Advance moves to the next step when the current step is valid.
// An invalid step is a refused no-op, not an error; the caller re-renders
// the blocking condition. Advance at the last step is a no-op.
func (s *Session) Advance() bool {
	if s.CurrentStep >= TotalSteps {
		return false
	}
	if !s.StepValid(s.CurrentStep) {
		return false
	}
	s.CurrentStep++
	return true
}

// Retreat moves one step back, never below the first step.
func (s *Session) Retreat() {
	if s.CurrentStep > 1 {
		s.CurrentStep--
	}
}

// GoToStep jumps to a step unconditionally. This deliberately bypasses
// forward gating to support edit-from-summary re-entry.
func (s *Session) GoToStep(step int) error {
	if step < 1 || step > TotalSteps {
		return ErrStepOutOfRange
	}
	s.CurrentStep = step
	return nil
}

// FirstInvalidStep returns the earliest gated step whose data is
// incomplete, and whether one exists. The summary step is excluded: it is
// valid whenever every step before it is.
func (s Session) FirstInvalidStep() (int, bool) {
	for step := StepTrack; step < StepSummary; step++ {
		if !s.StepValid(step) {
			return step, true
		}
	}
	return 0, false
}

// Complete reports whether every gated step is valid.
func (s Session) Complete() bool {
	_, invalid := s.FirstInvalidStep()
	return !invalid
}

// Reset returns the session to its initial empty state at step 1.
// Identity, platform, and creation time are preserved.
func (s *Session) Reset() {
	s.CurrentStep = StepTrack
	s.Track = track.Selection{}
	s.Targeting = targeting.Rules{}
	s.Budget = budget.Budget{}
	s.Observation = ""
	s.Coupon = coupon.Coupon{}
}

// PlatformFromLabel parses a wire label into a Platform.
func PlatformFromLabel(value string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "spotify":
		return PlatformSpotify, nil
	case "youtube":
		return PlatformYouTube, nil
	case "tiktok":
		return PlatformTikTok, nil
	case "instagram":
		return PlatformInstagram, nil
	default:
		return PlatformUnspecified, apperrors.WithMetadata(
			apperrors.CodeWizardInvalidPlatform,
			fmt.Sprintf("unknown platform: %s", value),
			map[string]string{"Platform": value},
		)
	}
}

// Label returns the wire label for a Platform.
func (p Platform) Label() string {
	switch p {
	case PlatformSpotify:
		return "spotify"
	case PlatformYouTube:
		return "youtube"
	case PlatformTikTok:
		return "tiktok"
	case PlatformInstagram:
		return "instagram"
	default:
		return ""
	}
}
