package service

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/impulso-music/impulso/internal/platform/money"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/pricing"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/wizard"
	"github.com/impulso-music/impulso/internal/services/campaign/storage"
)

// jsonNumber renders a decimal as a bare JSON number for the backend.
func jsonNumber(amount decimal.Decimal) json.Number {
	return json.Number(amount.String())
}

// campaignRecord freezes a submitted wizard and its quote into the durable
// campaign row.
func campaignRecord(session wizard.Session, quote pricing.Quote, campaignID string, createdAt time.Time) storage.CampaignRecord {
	return storage.CampaignRecord{
		ID:            campaignID,
		UserID:        session.UserID,
		Platform:      session.Platform,
		TrackID:       session.Track.ID,
		TrackName:     session.Track.Name,
		ArtistName:    session.Track.ArtistName,
		ArtworkURL:    session.Track.ArtworkURL,
		Genre:         session.Targeting.Genre,
		Language:      session.Targeting.Language,
		Moods:         session.Targeting.Moods,
		Observation:   session.Observation,
		SubtotalCents: money.Cents(quote.Subtotal),
		FeeCents:      money.Cents(quote.ServiceFee),
		DiscountCents: money.Cents(quote.Discount),
		FinalCents:    money.Cents(quote.FinalAmount),
		CouponCode:    quote.CouponCode,
		PaymentStatus: storage.PaymentPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}
