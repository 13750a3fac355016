package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != "" || cfg.APIKey != "" || cfg.DeviceID != "" {
		t.Errorf("missing file should yield empty config: %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	in := &Config{
		ServerURL: "https://api.example.test",
		APIKey:    "key-1",
		DeviceID:  "device-1",
		Features:  map[string]bool{"offline_cache": false},
	}
	if err := Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.ServerURL != in.ServerURL || out.APIKey != in.APIKey || out.DeviceID != in.DeviceID {
		t.Errorf("round trip lost fields: %+v", out)
	}
	if v, ok := out.Features["offline_cache"]; !ok || v {
		t.Errorf("features = %v", out.Features)
	}
}

func TestServerURLPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FIELDSYNC_SERVER_URL", "")

	if got := ServerURL(); got != defaultServerURL {
		t.Errorf("ServerURL = %q, want default %q", got, defaultServerURL)
	}

	if err := Save(&Config{ServerURL: "https://from-file.test"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := ServerURL(); got != "https://from-file.test" {
		t.Errorf("ServerURL = %q, want the file value", got)
	}

	t.Setenv("FIELDSYNC_SERVER_URL", "https://from-env.test")
	if got := ServerURL(); got != "https://from-env.test" {
		t.Errorf("ServerURL = %q, env must win", got)
	}
}

func TestAPIKeyPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FIELDSYNC_API_KEY", "")

	if got := APIKey(); got != "" {
		t.Errorf("APIKey = %q, want empty", got)
	}

	if err := Save(&Config{APIKey: "file-key"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := APIKey(); got != "file-key" {
		t.Errorf("APIKey = %q", got)
	}

	t.Setenv("FIELDSYNC_API_KEY", "env-key")
	if got := APIKey(); got != "env-key" {
		t.Errorf("APIKey = %q, env must win", got)
	}
}

func TestDeviceIDAssignedOnce(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	first, err := DeviceID()
	if err != nil {
		t.Fatalf("DeviceID: %v", err)
	}
	if first == "" {
		t.Fatal("expected a generated device id")
	}

	second, err := DeviceID()
	if err != nil {
		t.Fatalf("DeviceID: %v", err)
	}
	if second != first {
		t.Errorf("device id changed between calls: %q then %q", first, second)
	}

	// It must be persisted, not just cached.
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DeviceID != first {
		t.Errorf("persisted id = %q, want %q", cfg.DeviceID, first)
	}
}

func TestDataDirOverride(t *testing.T) {
	t.Setenv("FIELDSYNC_BASE_DIR", "/tmp/elsewhere")

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if dir != "/tmp/elsewhere" {
		t.Errorf("DataDir = %q", dir)
	}

	t.Setenv("FIELDSYNC_BASE_DIR", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir, err = DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if dir != filepath.Join(home, ".fieldsync") {
		t.Errorf("DataDir = %q", dir)
	}
}

func TestSaveIsAtomic(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := Save(&Config{ServerURL: "https://x.test"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(home, ".config", "fieldsync"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
