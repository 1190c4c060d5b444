package imageio

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// SaveOptions controls lossy encoders.
type SaveOptions struct {
	Quality  int // 1-100, jpeg and webp
	Lossless bool
}

// DefaultSaveOptions returns quality 90, lossy.
func DefaultSaveOptions() SaveOptions { return SaveOptions{Quality: 90} }

// Save writes img to path, choosing the encoder from the extension. Unknown
// extensions are written as PNG.
func Save(img image.Image, path string, opts SaveOptions) error {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultSaveOptions().Quality
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := webp.Encode(f, img, &webp.Options{Lossless: opts.Lossless, Quality: float32(opts.Quality)}); err != nil {
			_ = f.Close()
			return fmt.Errorf("encode webp: %w", err)
		}
		return f.Close()
	case ".jpg", ".jpeg":
		return imaging.Save(img, path, imaging.JPEGQuality(opts.Quality))
	case ".png", ".gif", ".tif", ".tiff", ".bmp":
		return imaging.Save(img, path)
	default:
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := imaging.Encode(f, img, imaging.PNG); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
}
