package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Loader locates and reads the rc file.
type Loader struct {
	Version      string // Build version, "dev" enables .annocanvasrc in the working directory
	OverridePath string
}

// NewLoader creates a new Loader.
func NewLoader(version, overridePath string) *Loader {
	return &Loader{Version: version, OverridePath: overridePath}
}

// Load parses the first config file found, or returns defaults when there is
// none.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// candidates lists config paths in search order.
func (l *Loader) candidates() []string {
	var paths []string
	if l.OverridePath != "" {
		paths = append(paths, l.OverridePath)
	}
	if l.Version == "dev" {
		if wd, err := os.Getwd(); err == nil {
			paths = append(paths, filepath.Join(wd, ".annocanvasrc"))
		}
	}
	if dir := userDir(); dir != "" {
		paths = append(paths,
			filepath.Join(dir, "config.rc"),
			filepath.Join(dir, "annocanvas.rc"))
	}
	return paths
}

// GetConfigPath returns the first existing config file, or "".
func (l *Loader) GetConfigPath() string {
	for _, p := range l.candidates() {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// Save writes cfg to the file Load would read, creating the per-user config
// file when none exists. It returns the path written.
func (l *Loader) Save(cfg *Config) (string, error) {
	path := l.GetConfigPath()
	if path == "" {
		dir := userDir()
		if dir == "" {
			return "", fmt.Errorf("no home directory to save config in")
		}
		path = filepath.Join(dir, "config.rc")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(cfg.String()), 0o644); err != nil {
		return "", fmt.Errorf("write config %s: %w", path, err)
	}
	return path, nil
}

func userDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "annocanvas")
}
