package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// DesktopFolderName is the destination folder created under Desktop when
// use_desktop is set.
const DesktopFolderName = "photo_iphone"

// Config selects the destination root for copied media.
type Config struct {
	UseDesktop bool   `json:"use_desktop"`
	CustomPath string `json:"custom_path"`
}

// Default returns the configuration written when no config file exists.
func Default() Config {
	return Config{UseDesktop: true}
}

// Load reads the JSON config at path. A missing file is not an error:
// the default config is written back so the user has something to edit,
// and the default is returned.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if writeErr := Save(path, cfg); writeErr != nil {
			log.Printf("Could not write default config to %s: %v", path, writeErr)
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as indented JSON.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// DestinationRoot resolves the destination root directory. With
// use_desktop the root is Desktop/photo_iphone; otherwise custom_path is
// used verbatim when its parent directory exists, falling back to the
// Desktop default when it does not.
func (c Config) DestinationRoot() (string, error) {
	desktop, err := desktopDir()
	if err != nil {
		return "", err
	}
	fallback := filepath.Join(desktop, DesktopFolderName)

	if c.UseDesktop {
		return fallback, nil
	}
	if c.CustomPath == "" {
		return fallback, nil
	}
	if _, err := os.Stat(filepath.Dir(c.CustomPath)); err != nil {
		log.Printf("Invalid custom path %s, using Desktop as fallback", c.CustomPath)
		return fallback, nil
	}
	return c.CustomPath, nil
}

func desktopDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, "Desktop"), nil
}
