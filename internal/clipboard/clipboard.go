// Package clipboard publishes rendered frames and annotation JSON to the
// system clipboard. It is write-only.
package clipboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"os"

	"github.com/disintegration/imaging"

	"github.com/example/annocanvas/internal/annotation"
)

var errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteAnnotations places list on the clipboard as indented JSON text.
func WriteAnnotations(list []annotation.Annotation) error {
	if list == nil {
		list = []annotation.Annotation{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return WriteText(string(data))
}
