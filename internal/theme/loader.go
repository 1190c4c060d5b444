package theme

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Loader resolves a theme name to a Theme.
type Loader struct {
	// Custom holds themes defined inline in the rc file. They shadow every
	// other source.
	Custom    map[string]*Theme
	ConfigDir string
	SystemDir string
}

// NewLoader returns a Loader searching the per-user and system theme
// directories.
func NewLoader(custom map[string]*Theme) *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		Custom:    custom,
		ConfigDir: filepath.Join(home, ".config", "annocanvas", "themes"),
		SystemDir: "/usr/share/annocanvas/themes",
	}
}

// Load returns the named theme. An empty name is the default theme. The
// search order is rc-file themes, an existing file path, embedded themes,
// ConfigDir, then SystemDir.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" {
		return Default(), nil
	}
	if t, ok := l.Custom[name]; ok && t != nil {
		return t, nil
	}
	if st, err := os.Stat(name); err == nil && !st.IsDir() {
		return parseFile(os.DirFS(filepath.Dir(name)), filepath.Base(name))
	}

	filename := name
	if !strings.HasSuffix(filename, ".theme") {
		filename += ".theme"
	}
	if t, err := parseFile(EmbeddedThemes, "defaults/"+filename); err == nil {
		return t, nil
	}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, filename)); err != nil {
			continue
		}
		return parseFile(os.DirFS(dir), filename)
	}
	return nil, fmt.Errorf("theme '%s' not found", name)
}

func parseFile(fsys fs.FS, name string) (*Theme, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}
	return t, nil
}
