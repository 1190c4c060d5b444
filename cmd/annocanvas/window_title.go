package main

import (
	"path/filepath"
	"strings"

	"github.com/example/annocanvas/internal/appstate"
	"github.com/example/annocanvas/internal/imageio"
)

// windowTitle joins the program name, the image and the save target.
func windowTitle(ref, output string) string {
	parts := []string{appstate.ProgramTitle}
	ref = strings.TrimSpace(ref)
	if ref != "" {
		if !imageio.IsURL(ref) {
			ref = filepath.Base(ref)
		}
		parts = append(parts, ref)
	}
	output = strings.TrimSpace(output)
	if output != "" {
		parts = append(parts, "→ "+filepath.Base(output))
	}
	return strings.Join(parts, " - ")
}
