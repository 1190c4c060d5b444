//go:build linux || freebsd || openbsd || netbsd || dragonfly

package clipboard

import (
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/example/annocanvas/internal/annotation"
)

func TestWriteWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")

	initOnce = sync.Once{}
	initErr = nil
	t.Cleanup(func() { initOnce = sync.Once{}; initErr = nil })

	if err := WriteImage(image.NewRGBA(image.Rect(0, 0, 2, 2))); !errors.Is(err, errNoDisplay) {
		t.Fatalf("WriteImage: expected errNoDisplay, got %v", err)
	}
	if err := WriteAnnotations([]annotation.Annotation{}); !errors.Is(err, errNoDisplay) {
		t.Fatalf("WriteAnnotations: expected errNoDisplay, got %v", err)
	}
}

func TestEncodePNG(t *testing.T) {
	data, err := encodePNG(image.NewRGBA(image.Rect(0, 0, 3, 3)))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Fatalf("not a PNG: % x", data[:8])
	}
}
