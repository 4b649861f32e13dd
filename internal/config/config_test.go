package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/reactpy-go/client/internal/rerrors"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != DefaultPort || cfg.Server.Host != DefaultHost {
		t.Fatalf("expected default server config, got %#v", cfg.Server)
	}
}

func TestLoadFilePartialYAMLFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("expected overridden port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != DefaultHost {
		t.Fatalf("expected default host to survive partial YAML, got %q", cfg.Server.Host)
	}
}

func TestLoadFileMalformedYAMLReturnsCodedError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("server: [this is not: a map"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
	var re *rerrors.RuntimeError
	if !errors.As(err, &re) || re.Code != "E602" {
		t.Fatalf("expected a coded E602 error, got %v", err)
	}
}

func TestAddrJoinsHostAndPort(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 9999
	if got, want := cfg.Addr(), "0.0.0.0:9999"; got != want {
		t.Fatalf("Addr() = %q, want %q", got, want)
	}
}

func TestSaveWritesBackReadableYAML(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Server.Port = 1234
	cfg.path = filepath.Join(dir, FileName)

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Server.Port != 1234 {
		t.Fatalf("expected saved port to round-trip, got %d", reloaded.Server.Port)
	}
}
