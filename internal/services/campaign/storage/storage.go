// Package storage defines the persistence boundaries of the campaign service.
//
// Wizard and checkout sessions are live per-user state with no durability
// requirement across restarts; they live in the memory store. Created
// campaigns are durable records backing the campaign list and detail
// screens; they live in SQLite.
package storage

import (
	"context"
	"time"

	apperrors "github.com/impulso-music/impulso/internal/platform/errors"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/checkout"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/wizard"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such entity"
// states and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// PaymentStatus is the settlement state of a created campaign.
type PaymentStatus string

const (
	// PaymentPending means the campaign was created but not yet paid.
	PaymentPending PaymentStatus = "pending"
	// PaymentPaid means the PIX charge was verified as settled.
	PaymentPaid PaymentStatus = "paid"
)

// CampaignRecord captures a created campaign for list/detail reads.
// Money columns are integer minor units (centavos).
type CampaignRecord struct {
	ID            string
	UserID        string
	Platform      wizard.Platform
	TrackID       string
	TrackName     string
	ArtistName    string
	ArtworkURL    string
	Genre         string
	Language      string
	Moods         []string
	Observation   string
	SubtotalCents int64
	FeeCents      int64
	DiscountCents int64
	FinalCents    int64
	CouponCode    string
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// WizardStore owns live wizard sessions.
type WizardStore interface {
	PutWizard(ctx context.Context, session wizard.Session) error
	GetWizard(ctx context.Context, sessionID string) (wizard.Session, error)
	DeleteWizard(ctx context.Context, sessionID string) error
}

// CheckoutStore owns live checkout sessions and serializes their mutations,
// including countdown ticks.
type CheckoutStore interface {
	PutCheckout(ctx context.Context, session checkout.Session) error
	GetCheckout(ctx context.Context, sessionID string) (checkout.Session, error)
	DeleteCheckout(ctx context.Context, sessionID string) error
	// TickCheckout applies one countdown tick atomically and returns the
	// updated session.
	TickCheckout(ctx context.Context, sessionID string) (checkout.Session, error)
}

// CampaignStore owns durable created-campaign records.
type CampaignStore interface {
	PutCampaign(ctx context.Context, record CampaignRecord) error
	GetCampaign(ctx context.Context, campaignID string) (CampaignRecord, error)
	// ListCampaignsByUser returns a user's campaigns, most recent first.
	ListCampaignsByUser(ctx context.Context, userID string) ([]CampaignRecord, error)
	UpdatePaymentStatus(ctx context.Context, campaignID string, status PaymentStatus, updatedAt time.Time) error
}
