package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/example/annocanvas/internal/clipboard"
	"github.com/example/annocanvas/internal/editor"
	"github.com/example/annocanvas/internal/imageio"
)

// renderCmd paints annotations over an image without opening a window.
type renderCmd struct {
	*root
	fs          *flag.FlagSet
	file        string
	annotations string
	output      string
	width       int
	height      int
	quality     int
	lossless    bool
	toClipboard bool
	loader      editor.ImageLoader
	stderr      io.Writer
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	c := &renderCmd{root: r.subcommand("render"), fs: fs, loader: imageio.NewDecoder(), stderr: os.Stderr}
	fs.StringVar(&c.file, "file", "", "image file or http(s) URL")
	fs.StringVar(&c.annotations, "annotations", "", "JSON file of annotations to draw")
	fs.StringVar(&c.output, "output", "", "output file; the extension picks png, jpg or webp")
	fs.IntVar(&c.width, "width", 0, "paint a width x height view with status text instead of the native image")
	fs.IntVar(&c.height, "height", 0, "view height, used with -width")
	fs.IntVar(&c.quality, "quality", imageio.DefaultSaveOptions().Quality, "jpeg and lossy webp quality (1-100)")
	fs.BoolVar(&c.lossless, "lossless", false, "write lossless webp")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the rendered image to the clipboard")
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.file == "" {
		return nil, &UsageError{of: c}
	}
	if c.output == "" && !c.toClipboard {
		return nil, errors.New("an output file or -to-clipboard is required")
	}
	if (c.width > 0) != (c.height > 0) {
		return nil, errors.New("-width and -height must be given together")
	}
	if c.quality < 1 || c.quality > 100 {
		return nil, fmt.Errorf("quality %d out of range 1-100", c.quality)
	}
	return c, nil
}

func (c *renderCmd) Run() error {
	img, err := c.render(context.Background())
	if err != nil {
		return err
	}
	if c.output != "" {
		if err := imageio.Save(img, c.output, imageio.SaveOptions{Quality: c.quality, Lossless: c.lossless}); err != nil {
			return fmt.Errorf("save %s: %w", c.output, err)
		}
		fmt.Fprintf(c.stderr, "saved %s\n", c.output)
		c.notifySave(c.output)
	}
	if c.toClipboard {
		if err := clipboard.WriteImage(img); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintln(c.stderr, "image copied to clipboard")
		c.notifyCopy(c.file, img)
	}
	return nil
}

func (c *renderCmd) render(ctx context.Context) (*image.RGBA, error) {
	seed, err := loadSeed(c.annotations)
	if err != nil {
		return nil, err
	}
	opts, err := sessionOptions(c.config, "", "", seed)
	if err != nil {
		return nil, err
	}
	if c.width > 0 {
		opts = append(opts, editor.WithViewport(c.width, c.height))
	}
	ed := editor.New(opts...)
	if err := ed.Load(ctx, c.loader, c.file); err != nil {
		return nil, err
	}
	if c.width <= 0 {
		return ed.Snapshot()
	}
	dst := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	ed.Paint(dst)
	return dst, nil
}
