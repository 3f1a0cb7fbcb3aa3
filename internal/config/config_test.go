package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsZeroDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != (Defaults{}) {
		t.Errorf("expected zero Defaults for missing file, got %+v", cfg)
	}
}

func TestLoadParsesFields(t *testing.T) {
	content := `
nonblocking = true
preserve_immutable = true
buffer_size = 8192
verbose = true
`
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.NonBlocking {
		t.Errorf("expected NonBlocking true")
	}
	if !cfg.PreserveImmutable {
		t.Errorf("expected PreserveImmutable true")
	}
	if cfg.BufferSize != 8192 {
		t.Errorf("expected BufferSize 8192, got %d", cfg.BufferSize)
	}
	if !cfg.Verbose {
		t.Errorf("expected Verbose true")
	}
}

func TestDefaultPathUsesXDGWhenSet(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-home")

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath failed: %v", err)
	}
	want := filepath.Join("/tmp/xdg-home", "atomictx", "config.toml")
	if path != want {
		t.Errorf("expected %q, got %q", want, path)
	}
}

func TestDefaultPathFallsBackToHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath failed: %v", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available in this environment")
	}
	want := filepath.Join(home, ".config", "atomictx", "config.toml")
	if path != want {
		t.Errorf("expected %q, got %q", want, path)
	}
}
