// Package httpapi is the HTTP client for the marketplace backend.
//
// The backend is the existing marketplace API: coupon verification, campaign
// creation with a PIX charge, and payment-status reads. Responses sometimes
// arrive wrapped in a {"data": ...} envelope depending on the backend
// version, so decoding tolerates both shapes.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/impulso-music/impulso/internal/platform/errors"
	"github.com/impulso-music/impulso/internal/services/campaign/gateway"
)

// couponService is the marketplace service name coupon codes are scoped to.
const couponService = "Campanhas"

// TokenSource supplies the bearer token for marketplace requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token, for service accounts
// and tests.
type StaticToken string

// Token returns the static token.
func (t StaticToken) Token(_ context.Context) (string, error) {
	return string(t), nil
}

// Client talks to the marketplace backend over HTTP. It implements
// gateway.CouponVerifier and gateway.PaymentGateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a marketplace client. A nil httpClient gets a default
// with a 15s timeout.
func NewClient(baseURL string, httpClient *http.Client, tokens TokenSource) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
	}
}

type couponVerifyResponse struct {
	Authorize bool        `json:"authorize"`
	Type      string      `json:"type"`
	Value     json.Number `json:"value"`
}

// Verify checks a coupon code against the marketplace.
// An unauthorized coupon is a normal answer, not an error.
func (c *Client) Verify(ctx context.Context, code string) (gateway.CouponVerification, error) {
	query := url.Values{}
	query.Set("service", couponService)
	query.Set("q", code)

	var payload couponVerifyResponse
	if err := c.do(ctx, http.MethodPost, "/coupon/verify?"+query.Encode(), nil, "", &payload); err != nil {
		return gateway.CouponVerification{}, fmt.Errorf("verify coupon: %w", err)
	}
	return gateway.CouponVerification{
		Authorized: payload.Authorize,
		Kind:       payload.Type,
		Value:      payload.Value.String(),
	}, nil
}

type createCampaignResponse struct {
	ID      json.Number `json:"id"`
	Payment struct {
		Method struct {
			QRCode     string `json:"qrcode"`
			QRCodeText string `json:"qrcode_text"`
		} `json:"method"`
	} `json:"payment"`
}

// CreateCampaign creates a campaign and opens its PIX charge. The
// idempotency key is sent as a header so a retried request cannot create a
// second charge.
func (c *Client) CreateCampaign(ctx context.Context, req gateway.CreateCampaignRequest) (gateway.CreateCampaignResponse, error) {
	var payload createCampaignResponse
	if err := c.do(ctx, http.MethodPost, "/campaigns", req, req.IdempotencyKey, &payload); err != nil {
		return gateway.CreateCampaignResponse{}, apperrors.Wrap(apperrors.CodePaymentCreationFailed, "create campaign", err)
	}
	return gateway.CreateCampaignResponse{
		ID:          payload.ID.String(),
		QRCodeImage: payload.Payment.Method.QRCode,
		QRCodeText:  payload.Payment.Method.QRCodeText,
	}, nil
}

type paymentStatusResponse struct {
	Paid   bool   `json:"paid"`
	Status string `json:"status"`
}

// PaymentStatus reports whether a campaign's PIX charge settled.
func (c *Client) PaymentStatus(ctx context.Context, campaignID string) (gateway.PaymentStatusResponse, error) {
	var payload paymentStatusResponse
	path := "/campaigns/" + url.PathEscape(campaignID) + "/payment"
	if err := c.do(ctx, http.MethodGet, path, nil, "", &payload); err != nil {
		return gateway.PaymentStatusResponse{}, fmt.Errorf("payment status: %w", err)
	}
	paid := payload.Paid || strings.EqualFold(payload.Status, "paid")
	return gateway.PaymentStatusResponse{Paid: paid}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, idempotencyKey string, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("resolve token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(unwrapEnvelope(raw), out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// unwrapEnvelope peels the optional {"data": ...} wrapper some backend
// versions add around response payloads.
func unwrapEnvelope(raw []byte) []byte {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		return envelope.Data
	}
	return raw
}
