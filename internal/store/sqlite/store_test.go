package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"oauth-gateway/internal/common/errors"
	"oauth-gateway/internal/credentials"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "creds.db"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(email, uid string) *credentials.Record {
	return &credentials.Record{
		Email:    email,
		UID:      uid,
		Provider: credentials.ProviderGCP,
		Service:  credentials.ServiceIMAP,
		Creds: credentials.TokenBundle{
			AccessToken:  "ya29.access",
			RefreshToken: "1//refresh",
			Scopes:       []string{"openid"},
			Expiry:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Extras: map[string]string{"id_token": "raw.jwt"},
	}
}

func TestNewStore_RequiresPath(t *testing.T) {
	if _, err := NewStore(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), credentials.ProviderGCP, credentials.ServiceIMAP, "user@example.com")
	if !errors.IsType(err, errors.ErrTypeNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestStore_PutThenGet(t *testing.T) {
	s := newTestStore(t)
	rec := testRecord("user@example.com", "1234567890")

	if err := s.Put(context.Background(), rec); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := s.Get(context.Background(), credentials.ProviderGCP, credentials.ServiceIMAP, "user@example.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.UID != rec.UID {
		t.Errorf("expected uid %s, got %s", rec.UID, got.UID)
	}
	if got.Creds.RefreshToken != rec.Creds.RefreshToken {
		t.Errorf("refresh token not preserved: %s", got.Creds.RefreshToken)
	}
	if !got.Creds.Expiry.Equal(rec.Creds.Expiry) {
		t.Errorf("expiry not preserved: %v", got.Creds.Expiry)
	}
}

func TestStore_PutUpsertsByUID(t *testing.T) {
	s := newTestStore(t)
	rec := testRecord("user@example.com", "1234567890")

	if err := s.Put(context.Background(), rec); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	rec.Creds.AccessToken = "ya29.newer"
	if err := s.Put(context.Background(), rec); err != nil {
		t.Fatalf("second put failed: %v", err)
	}

	got, err := s.Get(context.Background(), credentials.ProviderGCP, credentials.ServiceIMAP, "user@example.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Creds.AccessToken != "ya29.newer" {
		t.Errorf("expected overwritten token, got %s", got.Creds.AccessToken)
	}
}

func TestStore_MultipleIdentities(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put(context.Background(), testRecord("alice@example.com", "111")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := s.Put(context.Background(), testRecord("bob@example.com", "222")); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	alice, err := s.Get(context.Background(), credentials.ProviderGCP, credentials.ServiceIMAP, "alice@example.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if alice.UID != "111" {
		t.Errorf("expected alice's record, got uid %s", alice.UID)
	}

	bob, err := s.Get(context.Background(), credentials.ProviderGCP, credentials.ServiceIMAP, "bob@example.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if bob.UID != "222" {
		t.Errorf("expected bob's record, got uid %s", bob.UID)
	}
}
