package theme

import (
	"image/color"
)

// Theme defines the colors of the host window chrome. Annotation colors come
// from labels, not from the theme.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Window background behind the canvas
	Foreground color.RGBA // Header and status text

	// Header & Toolbar
	HeaderBackground  color.RGBA
	ToolbarBackground color.RGBA
	ShortcutText      color.RGBA

	// Tool and label buttons
	ButtonBackground       color.RGBA
	ButtonBackgroundHover  color.RGBA
	ButtonBackgroundActive color.RGBA // selected kind or label
	ButtonText             color.RGBA
	ButtonTextActive       color.RGBA
	ButtonBorder           color.RGBA

	// Canvas
	CanvasBackground color.RGBA
	CheckerLight     color.RGBA
	CheckerDark      color.RGBA
	PanelBackground  color.RGBA // status and message overlays
	PanelText        color.RGBA
}

// Default returns the built-in light theme. It is also the base every parsed
// theme starts from, so theme files only need the keys they change.
func Default() *Theme {
	return &Theme{
		Name:                   "Default",
		Background:             color.RGBA{220, 220, 220, 255},
		Foreground:             color.RGBA{0, 0, 0, 255},
		HeaderBackground:       color.RGBA{200, 200, 200, 255},
		ToolbarBackground:      color.RGBA{220, 220, 220, 255},
		ShortcutText:           color.RGBA{40, 40, 40, 255},
		ButtonBackground:       color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover:  color.RGBA{180, 180, 180, 255},
		ButtonBackgroundActive: color.RGBA{150, 150, 150, 255},
		ButtonText:             color.RGBA{0, 0, 0, 255},
		ButtonTextActive:       color.RGBA{0, 0, 0, 255},
		ButtonBorder:           color.RGBA{0, 0, 0, 255},
		CanvasBackground:       color.RGBA{0x1f, 0x1f, 0x1f, 255},
		CheckerLight:           color.RGBA{220, 220, 220, 255},
		CheckerDark:            color.RGBA{192, 192, 192, 255},
		PanelBackground:        color.RGBA{0, 0, 0, 0xb0},
		PanelText:              color.RGBA{255, 255, 255, 255},
	}
}
