package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/annocanvas/internal/annotation"
	"github.com/example/annocanvas/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var (
		section      string
		currentTheme *theme.Theme
		currentLabel string
		lineNo       int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			currentTheme = nil
			currentLabel = ""
			switch {
			case strings.HasPrefix(section, "theme."):
				name := strings.TrimPrefix(section, "theme.")
				// Start with defaults so missing keys are fine
				currentTheme = theme.Default()
				currentTheme.Name = name
				cfg.Themes[name] = currentTheme
			case strings.HasPrefix(section, "label."):
				currentLabel = strings.TrimPrefix(section, "label.")
				if currentLabel == "" {
					return nil, fmt.Errorf("line %d: empty label id", lineNo)
				}
				cfg.label(currentLabel)
			}
			continue
		}

		// Key = Value, or Key: Value inside theme sections
		var key, value string
		var ok bool
		if key, value, ok = strings.Cut(line, "="); !ok {
			if key, value, ok = strings.Cut(line, ":"); !ok {
				continue
			}
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentTheme != nil:
			err = currentTheme.Set(key, value)
		case currentLabel != "":
			err = setLabelField(cfg.label(currentLabel), key, value)
		case section == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case section == "editor":
			err = setEditorField(&cfg.Editor, key, value)
		case section == "":
			err = setRootField(cfg, key, value)
		}
		if err != nil {
			name := section
			if name == "" {
				name = "root"
			}
			return nil, fmt.Errorf("line %d: error in section [%s]: %w", lineNo, name, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	case "selected_label":
		cfg.SelectedLabel = value
	case "kind":
		k, err := annotation.ParseKind(value)
		if err != nil {
			return err
		}
		cfg.Kind = k.String()
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func setEditorField(e *Editor, key, value string) error {
	var dst *float64
	switch strings.ToLower(key) {
	case "point_radius":
		dst = &e.PointRadius
	case "stroke_width":
		dst = &e.StrokeWidth
	case "dash":
		dst = &e.Dash
	case "font_size":
		dst = &e.FontSize
	case "zoom_step":
		dst = &e.ZoomStep
	case "fill_alpha":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > 255 {
			return fmt.Errorf("fill_alpha must be 0-255, got %q", value)
		}
		e.FillAlpha = n
		return nil
	default:
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v < 0 {
		return fmt.Errorf("invalid number for key %s: %q", key, value)
	}
	*dst = v
	return nil
}

func setLabelField(l *annotation.Label, key, value string) error {
	switch strings.ToLower(key) {
	case "name":
		l.Name = value
	case "category":
		l.Category = value
	case "color":
		c, err := theme.ParseColor(value)
		if err != nil {
			return fmt.Errorf("label %s: %w", l.ID, err)
		}
		l.Color = theme.Hex(c)
	}
	return nil
}
