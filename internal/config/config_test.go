package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `
theme = my_custom_theme
save_dir = /tmp/annotations
selected_label = car
kind = poly

[notify]
save = false
copy = true

[editor]
point_radius = 7
fill_alpha = 96
zoom_step = 1.5

[label.car]
name = Car
color = #FF0000
category = vehicle

[label.tree]
name = "Tree"
color = forestgreen

[theme.my_custom_theme]
Background: #111111
Foreground = #FFFFFF
`

func TestParse(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Theme != "my_custom_theme" || cfg.SaveDir != "/tmp/annotations" {
		t.Errorf("root = %q %q", cfg.Theme, cfg.SaveDir)
	}
	if cfg.SelectedLabel != "car" || cfg.Kind != "polygon" {
		t.Errorf("selected=%q kind=%q", cfg.SelectedLabel, cfg.Kind)
	}
	if cfg.Notify.Save || !cfg.Notify.Copy {
		t.Errorf("notify = %+v", cfg.Notify)
	}
	if len(cfg.Labels) != 2 || cfg.Labels[0].ID != "car" || cfg.Labels[1].ID != "tree" {
		t.Fatalf("labels = %+v", cfg.Labels)
	}
	if cfg.Labels[0].Category != "vehicle" || cfg.Labels[1].Name != "Tree" {
		t.Errorf("labels = %+v", cfg.Labels)
	}
	if cfg.Labels[1].Color != "#228B22" {
		t.Errorf("named color normalised to %q", cfg.Labels[1].Color)
	}

	th, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}
	if th.Background.R != 0x11 || th.Foreground.R != 0xFF {
		t.Errorf("Unexpected theme colors: %+v", th)
	}

	o := cfg.RenderOptions()
	if o.PointRadius != 7 || o.FillAlpha != 96 || o.StrokeWidth != 2 {
		t.Errorf("render options = %+v", o)
	}
	if cfg.ZoomStep() != 1.5 {
		t.Errorf("zoom step = %v", cfg.ZoomStep())
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"bad bool":   "[notify]\nsave = maybe\n",
		"bad kind":   "kind = ellipse\n",
		"bad alpha":  "[editor]\nfill_alpha = 300\n",
		"bad number": "[editor]\ndash = wide\n",
		"bad color":  "[label.x]\ncolor = nope\n",
		"bad theme":  "[theme.t]\nBackground: #12\n",
		"empty id":   "[label.]\n",
	}
	for name, in := range tests {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestCircular(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}
	cfg2, err := Parse(strings.NewReader(cfg.String()))
	if err != nil {
		t.Fatalf("Circular parse failed: %v\n%s", err, cfg.String())
	}
	if cfg.Theme != cfg2.Theme || cfg.SaveDir != cfg2.SaveDir || cfg.Kind != cfg2.Kind {
		t.Errorf("root mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.Notify != cfg2.Notify || cfg.Editor != cfg2.Editor {
		t.Errorf("section mismatch: %+v vs %+v", cfg, cfg2)
	}
	if len(cfg2.Labels) != 2 || cfg.Labels[1] != cfg2.Labels[1] {
		t.Errorf("labels mismatch: %+v vs %+v", cfg.Labels, cfg2.Labels)
	}
	t1, t2 := cfg.Themes["my_custom_theme"], cfg2.Themes["my_custom_theme"]
	if t1 == nil || t2 == nil || *t1 != *t2 {
		t.Errorf("theme mismatch: %+v vs %+v", t1, t2)
	}
}

func TestLoaderOverrideAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.rc")
	if err := os.WriteFile(path, []byte("theme = dark\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader("1.0.0", path)
	cfg, err := l.Load()
	if err != nil || cfg.Theme != "dark" {
		t.Fatalf("load: %v %+v", err, cfg)
	}
	cfg.SelectedLabel = "car"
	written, err := l.Save(cfg)
	if err != nil || written != path {
		t.Fatalf("save: %v %q", err, written)
	}
	again, err := l.Load()
	if err != nil || again.SelectedLabel != "car" {
		t.Fatalf("reload: %v %+v", err, again)
	}
}

func TestLoaderDevMode(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", filepath.Join(dir, "home"))
	if err := os.WriteFile(filepath.Join(dir, ".annocanvasrc"), []byte("[notify]\nsave = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewLoader("dev", "").Load()
	if err != nil || !cfg.Notify.Save {
		t.Fatalf("dev load: %v %+v", err, cfg)
	}
	cfg, err = NewLoader("1.0.0", "").Load()
	if err != nil || cfg.Notify.Save {
		t.Fatalf("release build read the dev rc: %v %+v", err, cfg)
	}
}
