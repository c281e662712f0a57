// Package gateway defines the outbound dependencies of the campaign service:
// the marketplace coupon verifier and the campaign-creation payment backend.
package gateway

import (
	"context"
	"encoding/json"
)

// CouponVerification is the marketplace's answer to a coupon check.
type CouponVerification struct {
	// Authorized reports whether the code is valid for campaign purchases.
	Authorized bool
	// Kind is the discount kind wire label ("fixed" or "percent").
	Kind string
	// Value is the discount magnitude: currency units for fixed coupons,
	// a percentage for percent coupons.
	Value string
}

// CouponVerifier checks coupon codes against the marketplace backend.
type CouponVerifier interface {
	Verify(ctx context.Context, code string) (CouponVerification, error)
}

// TargetOptions is the audience block of a campaign-creation request.
type TargetOptions struct {
	Genre    string   `json:"genre"`
	Language string   `json:"language"`
	Mood     []string `json:"mood"`
}

// CreateCampaignRequest is the payload sent to the marketplace to create a
// campaign and open its PIX charge.
type CreateCampaignRequest struct {
	// Budget is the amount the backend charges: the campaign budget plus the
	// service fee, minus any verified coupon discount. Serialized as a bare
	// JSON number to match the backend's numeric field.
	Budget         json.Number   `json:"budget"`
	Platform       string        `json:"platform"`
	TrackID        string        `json:"track_id"`
	TrackName      string        `json:"track_name"`
	ArtistName     string        `json:"artist_name"`
	TargetOptions  TargetOptions `json:"target_options"`
	Observation    string        `json:"observation,omitempty"`
	Coupon         string        `json:"coupon,omitempty"`
	IdempotencyKey string        `json:"-"`
}

// CreateCampaignResponse carries the created campaign id and its PIX payload.
type CreateCampaignResponse struct {
	ID          string
	QRCodeImage string
	QRCodeText  string
}

// PaymentStatusResponse is the settlement answer for a created campaign.
type PaymentStatusResponse struct {
	Paid bool
}

// PaymentGateway creates campaigns on the marketplace and reports whether
// their PIX charges settled.
type PaymentGateway interface {
	CreateCampaign(ctx context.Context, req CreateCampaignRequest) (CreateCampaignResponse, error)
	PaymentStatus(ctx context.Context, campaignID string) (PaymentStatusResponse, error)
}
