package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/example/annocanvas/internal/annotation"
	"github.com/example/annocanvas/internal/config"
	"github.com/example/annocanvas/internal/editor"
	"github.com/example/annocanvas/internal/imageio"
)

// loadSeed reads a JSON array of annotations. An empty path is no seed.
func loadSeed(p string) ([]annotation.Annotation, error) {
	if p == "" {
		return nil, nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read annotations: %w", err)
	}
	var list []annotation.Annotation
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse annotations %s: %w", p, err)
	}
	for i, a := range list {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("annotation %d (%s): %w", i, a.ID, err)
		}
	}
	return list, nil
}

// sessionOptions builds the editor options shared by annotate and render:
// labels, selection and styling from the config, overridden by flags.
func sessionOptions(cfg *config.Config, selected, kind string, seed []annotation.Annotation) ([]editor.Option, error) {
	if cfg == nil {
		cfg = config.New()
	}
	opts := []editor.Option{
		editor.WithLabels(cfg.Labels),
		editor.WithAnnotations(seed),
		editor.WithRenderOptions(cfg.RenderOptions()),
	}
	if selected == "" {
		selected = cfg.SelectedLabel
	}
	if selected != "" {
		opts = append(opts, editor.WithSelectedLabel(selected))
	}
	if kind == "" {
		kind = cfg.Kind
	}
	if kind != "" {
		k, err := annotation.ParseKind(kind)
		if err != nil {
			return nil, err
		}
		opts = append(opts, editor.WithKind(k))
	}
	return opts, nil
}

// defaultOutput names the annotated copy of ref inside dir.
func defaultOutput(ref, dir string) string {
	base := ref
	if imageio.IsURL(ref) {
		if u, err := url.Parse(ref); err == nil {
			base = path.Base(u.Path)
		}
	} else {
		base = filepath.Base(ref)
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "image"
	}
	return filepath.Join(dir, base+".annotated.png")
}

// emitJSON writes list as one JSON line.
func emitJSON(w io.Writer, list []annotation.Annotation) error {
	if list == nil {
		list = []annotation.Annotation{}
	}
	return json.NewEncoder(w).Encode(list)
}
