package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestBindFlagsEnvDefaults(t *testing.T) {
	old := env
	t.Cleanup(func() { env = old })
	vals := map[string]string{
		"MCPTAP_API_KEY":    "km_live_secret",
		"MCPTAP_API_URL":    "https://staging.example.com",
		"MCPTAP_BATCH_SIZE": "5",
		"METRICS_PORT":      "9090",
	}
	env = func(k string) string { return vals[k] }

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var cfg Config
	cfg.BindFlags(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatal(err)
	}

	if cfg.APIKey != "km_live_secret" {
		t.Fatalf("APIKey = %q", cfg.APIKey)
	}
	if cfg.APIURL != "https://staging.example.com" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.BatchSize != 5 {
		t.Fatalf("BatchSize = %d", cfg.BatchSize)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Fatalf("MetricsAddr = %q, want :9090", cfg.MetricsAddr)
	}
	if !cfg.ExcludePing {
		t.Fatal("ExcludePing should default to true")
	}
	if cfg.RiskThreshold != 0.8 {
		t.Fatalf("RiskThreshold = %v", cfg.RiskThreshold)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	old := env
	t.Cleanup(func() { env = old })
	env = func(k string) string {
		if k == "MCPTAP_BATCH_SIZE" {
			return "5"
		}
		return ""
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var cfg Config
	cfg.BindFlags(fs)
	if err := fs.Parse([]string{"--batch-size", "20", "--api-key", "flagged"}); err != nil {
		t.Fatal(err)
	}
	if cfg.BatchSize != 20 {
		t.Fatalf("BatchSize = %d, want 20", cfg.BatchSize)
	}
	if cfg.APIKey != "flagged" {
		t.Fatalf("APIKey = %q", cfg.APIKey)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	in := Config{
		APIKey:        "km_live_1234567890",
		APIURL:        "https://api.example.com",
		DefaultTier:   "pro",
		BatchSize:     3,
		ExcludePing:   true,
		RiskThreshold: 0.5,
	}
	if err := in.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}

	var out Config
	if err := out.LoadFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.APIKey != in.APIKey || out.DefaultTier != "pro" || out.BatchSize != 3 {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if out.RiskThreshold != 0.5 {
		t.Fatalf("RiskThreshold = %v", out.RiskThreshold)
	}
}

func TestLoadFileKeepsUnlistedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("api_url: https://other.example.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Config{APIKey: "keepme", APIURL: "https://api.example.com"}
	if err := cfg.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "keepme" {
		t.Fatalf("APIKey = %q, want keepme", cfg.APIKey)
	}
	if cfg.APIURL != "https://other.example.com" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
}

func TestMaskSecret(t *testing.T) {
	cases := []struct{ in, want string }{
		{"km_live_1234567890", "km_l...7890"},
		{"short", "*****"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := MaskSecret(tc.in); got != tc.want {
			t.Fatalf("MaskSecret(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
