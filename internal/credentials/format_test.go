package credentials

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"oauth-gateway/internal/common/errors"
)

func testBundle() TokenBundle {
	return TokenBundle{
		AccessToken:    "ya29.access",
		RefreshToken:   "1//refresh",
		ClientID:       "client-id.apps.googleusercontent.com",
		ClientSecret:   "client-secret",
		TokenURI:       "https://oauth2.googleapis.com/token",
		Scopes:         []string{"openid", "https://www.googleapis.com/auth/gmail.modify"},
		Expiry:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Account:        "user@example.com",
		RAPTToken:      "rapt",
		UniverseDomain: "googleapis.com",
	}
}

func TestFormat_PreservesBundleVerbatim(t *testing.T) {
	claims := IdentityClaims{Subject: "1234567890", Email: "user@example.com"}
	bundle := testBundle()

	rec, err := Format(claims, bundle, ProviderGCP, ServiceIMAP, map[string]string{"id_token": "raw.jwt"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if rec.Email != "user@example.com" || rec.UID != "1234567890" {
		t.Errorf("unexpected identity: %s / %s", rec.Email, rec.UID)
	}
	if rec.Provider != ProviderGCP || rec.Service != ServiceIMAP {
		t.Errorf("unexpected discriminator: %s / %s", rec.Provider, rec.Service)
	}
	if !reflect.DeepEqual(rec.Creds, bundle) {
		t.Errorf("bundle not preserved verbatim:\n got %+v\nwant %+v", rec.Creds, bundle)
	}
	if rec.IDToken() != "raw.jwt" {
		t.Errorf("expected id_token in extras, got %q", rec.IDToken())
	}
}

func TestFormat_RoundTripThroughJSON(t *testing.T) {
	claims := IdentityClaims{Subject: "1234567890", Email: "user@example.com"}
	extras := map[string]string{"id_token": "raw.jwt", "session": "abc"}

	rec, err := Format(claims, testBundle(), ProviderGCP, ServiceIMAP, extras)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !back.Creds.Expiry.Equal(rec.Creds.Expiry) {
		t.Errorf("expiry not preserved: %v vs %v", back.Creds.Expiry, rec.Creds.Expiry)
	}
	back.Creds.Expiry = rec.Creds.Expiry
	if !reflect.DeepEqual(&back, rec) {
		t.Errorf("record not preserved through JSON:\n got %+v\nwant %+v", &back, rec)
	}
	if len(back.Extras) != 2 {
		t.Errorf("expected both extras keys, got %v", back.Extras)
	}
}

func TestFormat_MissingIdentity(t *testing.T) {
	tests := []struct {
		name   string
		claims IdentityClaims
	}{
		{"no subject", IdentityClaims{Email: "user@example.com"}},
		{"no email", IdentityClaims{Subject: "1234567890"}},
		{"empty claims", IdentityClaims{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Format(tt.claims, testBundle(), ProviderGCP, ServiceIMAP, nil)
			if !errors.IsType(err, errors.ErrTypeMissingIdentity) {
				t.Errorf("expected missing_identity_token, got %v", err)
			}
		})
	}
}

func TestFormat_ExtrasMergedAdditively(t *testing.T) {
	claims := IdentityClaims{Subject: "1234567890", Email: "user@example.com"}
	extras := map[string]string{"id_token": "raw.jwt"}

	rec, err := Format(claims, testBundle(), ProviderGCP, ServiceIMAP, extras)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// The record owns its extras map
	extras["id_token"] = "tampered"
	if rec.Extras["id_token"] != "raw.jwt" {
		t.Error("record extras must not alias the caller's map")
	}

	// Nil extras still yields a usable map
	rec2, err := Format(claims, testBundle(), ProviderGCP, ServiceIMAP, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec2.Extras == nil {
		t.Error("expected non-nil extras map")
	}
}

func TestTokenBundle_IsExpired(t *testing.T) {
	tests := []struct {
		name     string
		expiry   time.Time
		expected bool
	}{
		{"zero expiry never expires", time.Time{}, false},
		{"expires in an hour", time.Now().Add(time.Hour), false},
		{"expires in two minutes is inside the buffer", time.Now().Add(2 * time.Minute), true},
		{"expired an hour ago", time.Now().Add(-time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := TokenBundle{AccessToken: "tok", Expiry: tt.expiry}
			if got := b.IsExpired(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestRecord_Key(t *testing.T) {
	rec := &Record{Provider: ProviderGCP, Service: ServiceIMAP, UID: "1234567890"}
	if rec.Key() != "gcp:imap:1234567890" {
		t.Errorf("unexpected key: %s", rec.Key())
	}
}
