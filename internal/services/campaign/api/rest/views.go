package rest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/impulso-music/impulso/internal/platform/money"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/targeting"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/checkout"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/pricing"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/wizard"
	"github.com/impulso-music/impulso/internal/services/campaign/storage"
)

// wizardView is the wire shape of a wizard session. Money fields carry both
// the canonical decimal string and a pt-BR display string.
type wizardView struct {
	ID          string      `json:"id"`
	Platform    string      `json:"platform"`
	CurrentStep int         `json:"current_step"`
	TotalSteps  int         `json:"total_steps"`
	Track       *trackView  `json:"track,omitempty"`
	Targeting   targetView  `json:"targeting"`
	Observation string      `json:"observation,omitempty"`
	Budget      *budgetView `json:"budget,omitempty"`
	Coupon      *couponView `json:"coupon,omitempty"`
	StepsValid  []stepView  `json:"steps"`
	Complete    bool        `json:"complete"`
	Quote       pricingView `json:"quote"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type trackView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ArtistName string `json:"artist_name"`
	ArtworkURL string `json:"artwork_url,omitempty"`
}

type targetView struct {
	Genre    string   `json:"genre"`
	Language string   `json:"language"`
	Moods    []string `json:"moods"`
	MinMoods int      `json:"min_moods"`
}

type budgetView struct {
	Amount         string `json:"amount"`
	Display        string `json:"display"`
	EstimatedPlays int64  `json:"estimated_plays"`
	EstimatedDays  int64  `json:"estimated_days"`
}

type couponView struct {
	Code  string `json:"code"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type stepView struct {
	Step  int  `json:"step"`
	Valid bool `json:"valid"`
}

type pricingView struct {
	Subtotal     string `json:"subtotal"`
	ServiceFee   string `json:"service_fee"`
	Total        string `json:"total"`
	Discount     string `json:"discount,omitempty"`
	FinalAmount  string `json:"final_amount"`
	FinalDisplay string `json:"final_display"`
	CouponCode   string `json:"coupon_code,omitempty"`
}

func newWizardView(session wizard.Session) wizardView {
	view := wizardView{
		ID:          session.ID,
		Platform:    session.Platform.Label(),
		CurrentStep: session.CurrentStep,
		TotalSteps:  wizard.TotalSteps,
		Targeting: targetView{
			Genre:    session.Targeting.Genre,
			Language: session.Targeting.Language,
			Moods:    session.Targeting.Moods,
			MinMoods: targeting.MinMoods,
		},
		Observation: session.Observation,
		Complete:    session.Complete(),
		Quote:       newPricingView(pricing.BuildQuote(session.Budget.Base, session.Coupon)),
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}
	if session.Track.Chosen() {
		view.Track = &trackView{
			ID:         session.Track.ID,
			Name:       session.Track.Name,
			ArtistName: session.Track.ArtistName,
			ArtworkURL: session.Track.ArtworkURL,
		}
	}
	if session.Budget.Set() {
		view.Budget = &budgetView{
			Amount:         session.Budget.Base.String(),
			Display:        money.FormatBRL(session.Budget.Base),
			EstimatedPlays: session.Budget.EstimatedPlays(),
			EstimatedDays:  session.Budget.EstimatedDays(),
		}
	}
	if session.Coupon.Applies() {
		view.Coupon = &couponView{
			Code:  session.Coupon.Code,
			Kind:  session.Coupon.Kind.Label(),
			Value: session.Coupon.Magnitude.String(),
		}
	}
	for step := 1; step <= wizard.TotalSteps; step++ {
		view.StepsValid = append(view.StepsValid, stepView{Step: step, Valid: session.StepValid(step)})
	}
	return view
}

func newPricingView(quote pricing.Quote) pricingView {
	view := pricingView{
		Subtotal:     money.Round(quote.Subtotal).String(),
		ServiceFee:   money.Round(quote.ServiceFee).String(),
		Total:        money.Round(quote.Total).String(),
		FinalAmount:  money.Round(quote.FinalAmount).String(),
		FinalDisplay: money.FormatBRL(quote.FinalAmount),
		CouponCode:   quote.CouponCode,
	}
	if quote.Discount.IsPositive() {
		view.Discount = money.Round(quote.Discount).String()
	}
	return view
}

type checkoutView struct {
	ID               string    `json:"id"`
	WizardID         string    `json:"wizard_id"`
	CampaignID       string    `json:"campaign_id,omitempty"`
	State            string    `json:"state"`
	Confirmation     string    `json:"confirmation"`
	FinalAmount      string    `json:"final_amount"`
	FinalDisplay     string    `json:"final_display"`
	CouponCode       string    `json:"coupon_code,omitempty"`
	QRImageURL       string    `json:"qr_image_url,omitempty"`
	QRText           string    `json:"qr_text,omitempty"`
	RemainingSeconds int       `json:"remaining_seconds"`
	ExpiresAt        time.Time `json:"expires_at,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func newCheckoutView(session checkout.Session) checkoutView {
	return checkoutView{
		ID:               session.ID,
		WizardID:         session.WizardID,
		CampaignID:       session.CampaignID,
		State:            session.State.StateLabel(),
		Confirmation:     session.Confirmation.Label(),
		FinalAmount:      money.Round(session.FinalAmount).String(),
		FinalDisplay:     money.FormatBRL(session.FinalAmount),
		CouponCode:       session.CouponCode,
		QRImageURL:       session.QRImageURL,
		QRText:           session.QRText,
		RemainingSeconds: session.RemainingSeconds,
		ExpiresAt:        session.ExpiresAt,
		CreatedAt:        session.CreatedAt,
	}
}

type campaignView struct {
	ID            string    `json:"id"`
	Platform      string    `json:"platform"`
	TrackName     string    `json:"track_name"`
	ArtistName    string    `json:"artist_name"`
	ArtworkURL    string    `json:"artwork_url,omitempty"`
	Genre         string    `json:"genre"`
	Language      string    `json:"language"`
	Moods         []string  `json:"moods"`
	Observation   string    `json:"observation,omitempty"`
	FinalAmount   string    `json:"final_amount"`
	FinalDisplay  string    `json:"final_display"`
	CouponCode    string    `json:"coupon_code,omitempty"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

func centsToAmount(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func newCampaignView(record storage.CampaignRecord) campaignView {
	final := centsToAmount(record.FinalCents)
	return campaignView{
		ID:            record.ID,
		Platform:      record.Platform.Label(),
		TrackName:     record.TrackName,
		ArtistName:    record.ArtistName,
		ArtworkURL:    record.ArtworkURL,
		Genre:         record.Genre,
		Language:      record.Language,
		Moods:         record.Moods,
		Observation:   record.Observation,
		FinalAmount:   final.StringFixed(2),
		FinalDisplay:  money.FormatBRL(final),
		CouponCode:    record.CouponCode,
		PaymentStatus: string(record.PaymentStatus),
		CreatedAt:     record.CreatedAt,
	}
}
