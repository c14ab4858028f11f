package secret

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gaspardpetit/mcptap/internal/auth"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	store := NewFile(path)

	if store.Exists() {
		t.Fatal("store should start empty")
	}

	in := &auth.Token{
		Token:        "jwt-value",
		ExpiresAt:    1_700_000_000,
		Claims:       auth.Claims{Subject: "u1", Tier: "pro"},
		RefreshToken: "refresh-value",
	}
	if err := store.Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !store.Exists() {
		t.Fatal("Exists false after save")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}

	out, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Token != in.Token || out.Claims.Tier != "pro" || out.RefreshToken != "refresh-value" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestFileStoreClearIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewFile(path)

	if err := store.Save(&auth.Token{Token: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("first clear: %v", err)
	}
	if store.Exists() {
		t.Fatal("token survived clear")
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear must be a no-op: %v", err)
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	store := NewFile(filepath.Join(t.TempDir(), "absent.json"))
	if _, err := store.Load(); err == nil {
		t.Fatal("expected error loading missing token")
	}
}
