package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/annocanvas/internal/annotation"
	"github.com/example/annocanvas/internal/render"
	"github.com/example/annocanvas/internal/theme"
)

// DefaultZoomStep is the factor applied per wheel notch or +/- key.
const DefaultZoomStep = 1.25

// Notify holds notification settings.
type Notify struct {
	Save bool
	Copy bool
}

// Editor holds the [editor] section. Zero values mean "use the default".
type Editor struct {
	PointRadius float64
	StrokeWidth float64
	FillAlpha   int
	Dash        float64
	FontSize    float64
	ZoomStep    float64
}

// Config holds the application configuration.
type Config struct {
	Theme         string
	SaveDir       string
	SelectedLabel string
	Kind          string
	Notify        Notify
	Editor        Editor
	// Labels keeps the order the [label.*] sections appear in.
	Labels []annotation.Label
	Themes map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Themes: make(map[string]*theme.Theme),
	}
}

// label returns the label with id, appending it when missing.
func (c *Config) label(id string) *annotation.Label {
	for i := range c.Labels {
		if c.Labels[i].ID == id {
			return &c.Labels[i]
		}
	}
	c.Labels = append(c.Labels, annotation.Label{ID: id})
	return &c.Labels[len(c.Labels)-1]
}

// ZoomStep returns the configured zoom factor or DefaultZoomStep.
func (c *Config) ZoomStep() float64 {
	if c.Editor.ZoomStep > 1 {
		return c.Editor.ZoomStep
	}
	return DefaultZoomStep
}

// RenderOptions overlays the [editor] section on render.DefaultOptions.
func (c *Config) RenderOptions() render.Options {
	o := render.DefaultOptions()
	if c.Editor.PointRadius > 0 {
		o.PointRadius = c.Editor.PointRadius
	}
	if c.Editor.StrokeWidth > 0 {
		o.StrokeWidth = c.Editor.StrokeWidth
	}
	if c.Editor.FillAlpha > 0 {
		o.FillAlpha = uint8(min(c.Editor.FillAlpha, 255))
	}
	if c.Editor.Dash > 0 {
		o.DashLength = c.Editor.Dash
	}
	if c.Editor.FontSize > 0 {
		o.FontSize = c.Editor.FontSize
	}
	return o
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	if c.SelectedLabel != "" {
		fmt.Fprintf(&sb, "selected_label = %s\n", c.SelectedLabel)
	}
	if c.Kind != "" {
		fmt.Fprintf(&sb, "kind = %s\n", c.Kind)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	if c.Editor != (Editor{}) {
		sb.WriteString("[editor]\n")
		writeFloat(&sb, "point_radius", c.Editor.PointRadius)
		writeFloat(&sb, "stroke_width", c.Editor.StrokeWidth)
		if c.Editor.FillAlpha > 0 {
			fmt.Fprintf(&sb, "fill_alpha = %d\n", c.Editor.FillAlpha)
		}
		writeFloat(&sb, "dash", c.Editor.Dash)
		writeFloat(&sb, "font_size", c.Editor.FontSize)
		writeFloat(&sb, "zoom_step", c.Editor.ZoomStep)
		sb.WriteString("\n")
	}

	for _, l := range c.Labels {
		fmt.Fprintf(&sb, "[label.%s]\n", l.ID)
		if l.Name != "" {
			fmt.Fprintf(&sb, "name = %s\n", l.Name)
		}
		if l.Color != "" {
			fmt.Fprintf(&sb, "color = %s\n", l.Color)
		}
		if l.Category != "" {
			fmt.Fprintf(&sb, "category = %s\n", l.Category)
		}
		sb.WriteString("\n")
	}

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)
	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_, _ = c.Themes[name].WriteTo(&sb)
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeFloat(sb *strings.Builder, key string, v float64) {
	if v > 0 {
		fmt.Fprintf(sb, "%s = %g\n", key, v)
	}
}
