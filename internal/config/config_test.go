package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.UseDesktop {
		t.Error("default config should use the desktop destination")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config was not written back: %v", err)
	}

	// A second load must read the written file, not rewrite it.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if again != cfg {
		t.Errorf("second load = %+v; want %+v", again, cfg)
	}
}

func TestLoadParsesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"use_desktop": false, "custom_path": "/data/photos"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UseDesktop {
		t.Error("UseDesktop = true; want false")
	}
	if cfg.CustomPath != "/data/photos" {
		t.Errorf("CustomPath = %s; want /data/photos", cfg.CustomPath)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted malformed JSON")
	}
}

func TestDestinationRootCustomPath(t *testing.T) {
	parent := t.TempDir()
	custom := filepath.Join(parent, "photos")
	cfg := Config{UseDesktop: false, CustomPath: custom}

	root, err := cfg.DestinationRoot()
	if err != nil {
		t.Fatalf("DestinationRoot: %v", err)
	}
	if root != custom {
		t.Errorf("root = %s; want %s", root, custom)
	}
}

func TestDestinationRootFallsBackOnInvalidCustomPath(t *testing.T) {
	cfg := Config{UseDesktop: false, CustomPath: filepath.Join(t.TempDir(), "missing", "deeper", "photos")}

	root, err := cfg.DestinationRoot()
	if err != nil {
		t.Fatalf("DestinationRoot: %v", err)
	}
	if filepath.Base(root) != DesktopFolderName {
		t.Errorf("root = %s; want Desktop fallback ending in %s", root, DesktopFolderName)
	}
}

func TestDestinationRootDesktop(t *testing.T) {
	cfg := Config{UseDesktop: true, CustomPath: "/ignored"}

	root, err := cfg.DestinationRoot()
	if err != nil {
		t.Fatalf("DestinationRoot: %v", err)
	}
	if filepath.Base(root) != DesktopFolderName {
		t.Errorf("root = %s; want path ending in %s", root, DesktopFolderName)
	}
}
