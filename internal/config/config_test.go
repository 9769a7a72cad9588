package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Env != "dev" || cfg.Server.Addr != ":8080" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.Rotation.LockTimeout != "5s" || cfg.Rotation.LedgerRetries != 3 {
		t.Fatalf("rotation defaults: %+v", cfg.Rotation)
	}
	if cfg.OTP.TTL != "5m" {
		t.Fatalf("otp default: %q", cfg.OTP.TTL)
	}
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	path := writeYAML(t, `
app:
  env: dev
server:
  addr: ":9000"
rotation:
  lock_timeout: 2s
  ledger_retries: 5
`)

	t.Setenv("SERVER_ADDR", ":9100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9100" {
		t.Fatalf("env should override yaml, got %q", cfg.Server.Addr)
	}
	if cfg.Rotation.LockTimeout != "2s" || cfg.Rotation.LedgerRetries != 5 {
		t.Fatalf("rotation: %+v", cfg.Rotation)
	}
}

func TestLoad_RejectsBadDuration(t *testing.T) {
	path := writeYAML(t, `
rotation:
  lock_timeout: "cinco segundos"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected duration parse error")
	}
}

func TestLoad_ProdRequiresJWTSecret(t *testing.T) {
	path := writeYAML(t, `
app:
  env: prod
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected jwt.secret required error in prod")
	}

	t.Setenv("JWT_SECRET", "super-secreto")
	if _, err := Load(path); err != nil {
		t.Fatalf("secret via env should pass: %v", err)
	}
}

func TestDur(t *testing.T) {
	if Dur("5s").Seconds() != 5 {
		t.Fatal("Dur parse")
	}
}
