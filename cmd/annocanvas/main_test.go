package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/annocanvas/internal/annotation"
	"github.com/example/annocanvas/internal/config"
	"github.com/example/annocanvas/internal/imageio"
)

var gray = color.RGBA{0x80, 0x80, 0x80, 0xff}

func testRoot() *root {
	cfg := config.New()
	cfg.Labels = []annotation.Label{
		{ID: "car", Name: "Car", Color: "#FF0000"},
		{ID: "roof", Name: "Roof", Color: "#00FF00"},
	}
	cfg.SelectedLabel = "car"
	return &root{program: "annocanvas", config: cfg}
}

func writeImage(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(gray), image.Point{}, draw.Src)
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := imageio.Save(img, path, imageio.DefaultSaveOptions()); err != nil {
		t.Fatal(err)
	}
	return path
}

const seedJSON = `[
  {"id": "a1", "labelId": "car", "type": "box", "coordinates": [[2, 2], [10, 8]]},
  {"id": "a2", "labelId": "roof", "type": "point", "coordinates": [[15, 15]]}
]`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSeed(t *testing.T) {
	list, err := loadSeed(writeSeed(t, seedJSON))
	if err != nil {
		t.Fatalf("loadSeed: %v", err)
	}
	if len(list) != 2 || list[0].Kind != annotation.KindBox || list[1].Points[0].X != 15 {
		t.Fatalf("list = %+v", list)
	}
	if list, err := loadSeed(""); err != nil || list != nil {
		t.Fatalf("empty path = %v, %v", list, err)
	}
	if _, err := loadSeed(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
	bad := `[{"id": "x", "labelId": "car", "type": "box", "coordinates": [[1, 1]]}]`
	if _, err := loadSeed(writeSeed(t, bad)); !errors.Is(err, annotation.ErrInvalidGeometry) {
		t.Fatalf("bad geometry err = %v", err)
	}
}

func TestSessionOptionsKind(t *testing.T) {
	if _, err := sessionOptions(config.New(), "", "hexagon", nil); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if _, err := sessionOptions(nil, "", "polygon", nil); err != nil {
		t.Fatalf("polygon: %v", err)
	}
}

func TestDefaultOutput(t *testing.T) {
	cases := []struct {
		ref, dir, want string
	}{
		{"/tmp/pics/cat.jpg", "", "cat.annotated.png"},
		{"cat.jpg", "/out", filepath.Join("/out", "cat.annotated.png")},
		{"https://example.com/images/dog.webp?x=1", "", "dog.annotated.png"},
		{"https://example.com/", "", "image.annotated.png"},
	}
	for _, c := range cases {
		if got := defaultOutput(c.ref, c.dir); got != c.want {
			t.Errorf("defaultOutput(%q, %q) = %q, want %q", c.ref, c.dir, got, c.want)
		}
	}
}

func TestEmitJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := emitJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "[]\n" {
		t.Fatalf("empty = %q", got)
	}
	buf.Reset()
	list := []annotation.Annotation{{ID: "a1", LabelID: "car", Kind: annotation.KindPoint}}
	if err := emitJSON(&buf, list); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"labelId":"car"`) || strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("line = %q", buf.String())
	}
}

func TestParseRenderFlags(t *testing.T) {
	r := testRoot()
	var uerr *UsageError
	if _, err := parseRenderCmd(nil, r); !errors.As(err, &uerr) {
		t.Fatalf("missing file err = %v", err)
	}
	if _, err := parseRenderCmd([]string{"-file", "x.png"}, r); err == nil || !strings.Contains(err.Error(), "output") {
		t.Fatalf("missing output err = %v", err)
	}
	if _, err := parseRenderCmd([]string{"-file", "x.png", "-output", "o.png", "-width", "10"}, r); err == nil {
		t.Fatal("expected error for width without height")
	}
	if _, err := parseRenderCmd([]string{"-file", "x.png", "-output", "o.jpg", "-quality", "0"}, r); err == nil {
		t.Fatal("expected error for quality 0")
	}
	c, err := parseRenderCmd([]string{"-file", "x.png", "-to-clipboard"}, r)
	if err != nil || !c.toClipboard || c.Program() != "annocanvas render" {
		t.Fatalf("parse = %+v, %v", c, err)
	}
}

func TestRenderNative(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.png")
	c, err := parseRenderCmd([]string{"-file", writeImage(t, 40, 30), "-annotations", writeSeed(t, seedJSON), "-output", out}, testRoot())
	if err != nil {
		t.Fatal(err)
	}
	var stderr bytes.Buffer
	c.stderr = &stderr
	if err := c.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	img, err := imageio.NewDecoder().Load(context.Background(), out)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Fatalf("bounds = %v", b)
	}
	// The right edge of the box is stroked in the label color.
	r, g, b, _ := img.At(10, 5).RGBA()
	if r>>8 < 0xC0 || g>>8 > 0x80 || b>>8 > 0x80 {
		t.Fatalf("edge = %v, want red", img.At(10, 5))
	}
	if r, _, _, _ := img.At(30, 25).RGBA(); r>>8 != 0x80 {
		t.Fatalf("background = %v", img.At(30, 25))
	}
	if !strings.Contains(stderr.String(), "saved "+out) {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRenderViewport(t *testing.T) {
	c, err := parseRenderCmd([]string{"-file", writeImage(t, 40, 30), "-output", "unused.png", "-width", "200", "-height", "100"}, testRoot())
	if err != nil {
		t.Fatal(err)
	}
	img, err := c.render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Fatalf("bounds = %v", b)
	}
	// The 40x30 image is centered at scale 1, below the status panel.
	if got := img.RGBAAt(100, 60); got != gray {
		t.Fatalf("image pixel = %v", got)
	}
	if got := img.RGBAAt(20, 95); got == gray {
		t.Fatal("backdrop painted with image color")
	}
}

func TestRenderLoadError(t *testing.T) {
	c, err := parseRenderCmd([]string{"-file", filepath.Join(t.TempDir(), "missing.png"), "-output", "o.png"}, testRoot())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Run(); err == nil || !strings.Contains(err.Error(), "missing.png") {
		t.Fatalf("err = %v", err)
	}
}

func TestParseAnnotate(t *testing.T) {
	r := testRoot()
	r.config.SaveDir = "/shots"
	var uerr *UsageError
	if _, err := parseAnnotateCmd(nil, r); !errors.As(err, &uerr) {
		t.Fatalf("err = %v", err)
	}
	a, err := parseAnnotateCmd([]string{"-kind", "polygon", "-emit", "pics/cat.png"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if a.file != "pics/cat.png" || a.output != filepath.Join("/shots", "cat.annotated.png") || !a.emit || a.kind != "polygon" {
		t.Fatalf("parsed = %+v", a)
	}
}

func TestLabelsCmd(t *testing.T) {
	r := testRoot()
	c, err := parseLabelsCmd(nil, r)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	c.stdout = &out
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "* car") || !strings.Contains(lines[2], "Roof") {
		t.Fatalf("output = %q", out.String())
	}
	if !strings.Contains(lines[1], "\x1b[48;2;255;0;0m") {
		t.Fatalf("missing swatch: %q", lines[1])
	}

	c.asJSON = true
	out.Reset()
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"id": "roof"`) {
		t.Fatalf("json = %q", out.String())
	}
}

func TestResolveThemePrecedence(t *testing.T) {
	r := testRoot()
	r.config.Theme = "high_contrast"
	t.Setenv("ANNOCANVAS_THEME", "")
	if got := r.resolveTheme().Name; got != "High Contrast" {
		t.Fatalf("config theme = %q", got)
	}
	t.Setenv("ANNOCANVAS_THEME", "dark")
	if got := r.resolveTheme().Name; got != "Dark" {
		t.Fatalf("env theme = %q", got)
	}
	r.themeName = "default"
	if got := r.resolveTheme().Name; got != "Default" {
		t.Fatalf("flag theme = %q", got)
	}
	r.themeName = "no-such-theme"
	if got := r.resolveTheme().Name; got != "Default" {
		t.Fatalf("fallback theme = %q", got)
	}
}

func TestWindowTitle(t *testing.T) {
	got := windowTitle("/tmp/pics/cat.jpg", "/out/cat.annotated.png")
	if got != "AnnoCanvas - cat.jpg - → cat.annotated.png" {
		t.Fatalf("title = %q", got)
	}
	if got := windowTitle("", ""); got != "AnnoCanvas" {
		t.Fatalf("bare title = %q", got)
	}
}

func TestUsageErrorRendersHelp(t *testing.T) {
	c, err := parseRenderCmd([]string{"-to-clipboard", "-file", "x"}, testRoot())
	if err != nil {
		t.Fatal(err)
	}
	help := (&UsageError{of: c}).Error()
	if !strings.HasPrefix(help, "Usage: annocanvas render") || !strings.Contains(help, "-to-clipboard") {
		t.Fatalf("help = %q", help)
	}
}
