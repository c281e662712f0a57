package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/impulso-music/impulso/internal/services/campaign/gateway"
)

func TestVerifyCoupon(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/coupon/verify" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("service"); got != "Campanhas" {
			t.Errorf("expected service Campanhas, got %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "PROMO10" {
			t.Errorf("expected code PROMO10, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"authorize": true,
			"type":      "percent",
			"value":     10,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), StaticToken("tok"))
	got, err := client.Verify(context.Background(), "PROMO10")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !got.Authorized || got.Kind != "percent" || got.Value != "10" {
		t.Fatalf("unexpected verification: %+v", got)
	}
}

func TestVerifyCouponUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"authorize": false})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), nil)
	got, err := client.Verify(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Authorized {
		t.Fatal("expected unauthorized coupon")
	}
}

func TestCreateCampaign(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/campaigns" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Idempotency-Key"); got != "idem1" {
			t.Errorf("expected idempotency key, got %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["budget"] != float64(500) || body["platform"] != "spotify" {
			t.Errorf("unexpected body: %v", body)
		}
		target, _ := body["target_options"].(map[string]any)
		if target["genre"] != "indie" {
			t.Errorf("unexpected target options: %v", target)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 42,
			"payment": map[string]any{
				"method": map[string]any{
					"qrcode":      "http://qr/img",
					"qrcode_text": "pix-copy-paste",
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), nil)
	resp, err := client.CreateCampaign(context.Background(), gateway.CreateCampaignRequest{
		Budget:     json.Number("500"),
		Platform:   "spotify",
		TrackID:    "track1",
		TrackName:  "Midnight Drive",
		ArtistName: "The Night Owls",
		TargetOptions: gateway.TargetOptions{
			Genre:    "indie",
			Language: "pt",
			Mood:     []string{"chill", "dreamy", "upbeat"},
		},
		IdempotencyKey: "idem1",
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if resp.ID != "42" {
		t.Fatalf("expected id 42, got %q", resp.ID)
	}
	if resp.QRCodeImage != "http://qr/img" || resp.QRCodeText != "pix-copy-paste" {
		t.Fatalf("unexpected qr payload: %+v", resp)
	}
}

func TestCreateCampaignDataEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"id": "abc",
				"payment": map[string]any{
					"method": map[string]any{
						"qrcode":      "http://qr/img",
						"qrcode_text": "pix",
					},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), nil)
	resp, err := client.CreateCampaign(context.Background(), gateway.CreateCampaignRequest{})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if resp.ID != "abc" || resp.QRCodeText != "pix" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCreateCampaignServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), nil)
	if _, err := client.CreateCampaign(context.Background(), gateway.CreateCampaignRequest{}); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestPaymentStatus(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		want bool
	}{
		{"paid flag", map[string]any{"paid": true}, true},
		{"status label", map[string]any{"status": "paid"}, true},
		{"pending", map[string]any{"status": "pending"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/campaigns/42/payment" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				_ = json.NewEncoder(w).Encode(tc.body)
			}))
			defer server.Close()

			client := NewClient(server.URL, server.Client(), nil)
			got, err := client.PaymentStatus(context.Background(), "42")
			if err != nil {
				t.Fatalf("payment status: %v", err)
			}
			if got.Paid != tc.want {
				t.Fatalf("expected paid=%v, got %v", tc.want, got.Paid)
			}
		})
	}
}
