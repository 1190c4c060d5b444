// Package imageio resolves image references (paths or http(s) URLs) to
// decoded images and writes rendered frames back out.
package imageio

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/example/annocanvas/internal/geometry"
)

// MaxDownloadBytes caps the size of an image fetched over HTTP.
const MaxDownloadBytes = 64 << 20

// Decoder loads images from files and http(s) URLs.
type Decoder struct {
	Client    *http.Client
	UserAgent string
}

// NewDecoder returns a Decoder with a 30 second HTTP timeout.
func NewDecoder() *Decoder {
	return &Decoder{
		Client:    &http.Client{Timeout: 30 * time.Second},
		UserAgent: "annocanvas/1.0",
	}
}

// Load decodes ref. EXIF orientation is applied so pixel coordinates match
// what a browser would show.
func (d *Decoder) Load(ctx context.Context, ref string) (image.Image, error) {
	if IsURL(ref) {
		img, err := d.fetch(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", ref, err)
		}
		return img, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := imaging.Open(ref, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ref, err)
	}
	return img, nil
}

// IsURL reports whether ref should be fetched over HTTP.
func IsURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func (d *Decoder) fetch(ctx context.Context, ref string) (image.Image, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %s", resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") && !strings.HasPrefix(ct, "application/octet-stream") {
		return nil, fmt.Errorf("not an image (Content-Type: %s)", ct)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > MaxDownloadBytes {
		return nil, fmt.Errorf("image larger than %d bytes", MaxDownloadBytes)
	}
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

// Size returns the pixel dimensions of img.
func Size(img image.Image) geometry.Size {
	b := img.Bounds()
	return geometry.Size{W: float64(b.Dx()), H: float64(b.Dy())}
}
