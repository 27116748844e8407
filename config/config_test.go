package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("CALCCTL_CONFIG_DIR", t.TempDir())

	want := Config{ServerURL: "http://localhost:9000", Token: "tok-123"}
	if err := Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CALCCTL_CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != (Config{}) {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoad_ConfigFileIsDirectory(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("CALCCTL_CONFIG_DIR", tmp)

	cfgPath := filepath.Join(tmp, "config.json")
	if err := os.Mkdir(cfgPath, 0o755); err != nil {
		t.Fatalf("setup config dir: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatalf("expected read error when config file is a directory")
	} else if os.IsNotExist(err) {
		t.Fatalf("expected non-ENOENT error, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	t.Setenv("CALCCTL_CONFIG_DIR", t.TempDir())

	if err := Save(Config{Token: "x"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := Delete(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Deleting again is a no-op.
	if err := Delete(); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	cfg, err := Load()
	if err != nil || cfg != (Config{}) {
		t.Fatalf("expected zero config after delete, got %+v err=%v", cfg, err)
	}
}
