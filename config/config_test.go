package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8086" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Convert.Binary != "soffice" || cfg.Convert.Timeout != 2*time.Minute {
		t.Errorf("Convert = %+v", cfg.Convert)
	}
	if cfg.Sign.X != 400 || cfg.Sign.Y != 30 || cfg.Sign.Width != 150 || cfg.Sign.Height != 50 {
		t.Errorf("Sign = %+v", cfg.Sign)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fillmate.yaml")
	data := `
port: "9090"
data_dir: /var/lib/fillmate
convert:
  binary: /opt/libreoffice/soffice
  timeout: 30s
sign:
  x: 380
  y: 40
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.DataDir != "/var/lib/fillmate" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Convert.Binary != "/opt/libreoffice/soffice" || cfg.Convert.Timeout != 30*time.Second {
		t.Errorf("Convert = %+v", cfg.Convert)
	}
	if cfg.Sign.X != 380 || cfg.Sign.Y != 40 {
		t.Errorf("Sign = %+v", cfg.Sign)
	}
	// Unset fields still get defaults.
	if cfg.Sign.Width != 150 || cfg.DBPath != "db/fillmate.db" {
		t.Errorf("defaults missing: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("SOFFICE_BIN", "/usr/bin/soffice")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Convert.Binary != "/usr/bin/soffice" {
		t.Errorf("Binary = %q", cfg.Convert.Binary)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/fillmate.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
