package store_test

import (
	"context"
	"testing"

	"oauth-gateway/internal/common/errors"
	"oauth-gateway/internal/config"
	"oauth-gateway/internal/credentials"
	"oauth-gateway/internal/store"
	_ "oauth-gateway/internal/store/file"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	rec := &credentials.Record{
		Email:    "user@example.com",
		UID:      "42",
		Provider: credentials.ProviderGCP,
		Service:  credentials.ServiceIMAP,
		Creds:    credentials.TokenBundle{AccessToken: "tok"},
	}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := s.Get(ctx, credentials.ProviderGCP, credentials.ServiceIMAP, "user@example.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.UID != "42" {
		t.Errorf("expected uid 42, got %s", got.UID)
	}

	// Mutating the returned record must not affect the stored copy.
	got.Creds.AccessToken = "mutated"
	again, err := s.Get(ctx, credentials.ProviderGCP, credentials.ServiceIMAP, "user@example.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if again.Creds.AccessToken != "tok" {
		t.Errorf("stored record was aliased: %s", again.Creds.AccessToken)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := store.NewMemoryStore()

	_, err := s.Get(context.Background(), credentials.ProviderGCP, credentials.ServiceIMAP, "nobody@example.com")
	if !errors.IsType(err, errors.ErrTypeNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestNew_UnsupportedStorageType(t *testing.T) {
	_, err := store.New(&config.Config{StorageType: "etcd"})
	if !errors.IsType(err, errors.ErrTypeConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestNew_FileBackend(t *testing.T) {
	s, err := store.New(&config.Config{
		StorageType:     "file",
		CredentialsFile: t.TempDir() + "/creds.json",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer s.Close()
}
