package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/example/annocanvas/internal/annotation"
	"github.com/example/annocanvas/internal/appstate"
	"github.com/example/annocanvas/internal/editor"
)

// annotateCmd represents the annotate subcommand.
type annotateCmd struct {
	*root
	fs          *flag.FlagSet
	file        string
	annotations string
	selected    string
	kind        string
	output      string
	width       int
	height      int
	emit        bool
	stdout      io.Writer
}

func (a *annotateCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)
	a := &annotateCmd{root: r.subcommand("annotate"), fs: fs, stdout: os.Stdout}
	fs.StringVar(&a.file, "file", "", "image file or http(s) URL to annotate")
	fs.StringVar(&a.annotations, "annotations", "", "JSON file of existing annotations")
	fs.StringVar(&a.selected, "select", "", "label id selected on start up")
	fs.StringVar(&a.kind, "kind", "", "drawing tool: box, polygon or point")
	fs.StringVar(&a.output, "output", "", "file the annotated image is saved to (default <save_dir>/<name>.annotated.png)")
	fs.IntVar(&a.width, "width", 1024, "window width")
	fs.IntVar(&a.height, "height", 768, "window height")
	fs.BoolVar(&a.emit, "emit", false, "print the annotations as a JSON line after every change")
	fs.Usage = usageFunc(a)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if a.file == "" && fs.NArg() == 1 {
		a.file = fs.Arg(0)
	}
	if a.file == "" {
		return nil, &UsageError{of: a}
	}
	if a.output == "" {
		a.output = defaultOutput(a.file, a.config.SaveDir)
	}
	return a, nil
}

func (a *annotateCmd) Run() error {
	seed, err := loadSeed(a.annotations)
	if err != nil {
		return err
	}
	opts, err := sessionOptions(a.config, a.selected, a.kind, seed)
	if err != nil {
		return err
	}
	if a.emit {
		opts = append(opts, editor.WithOnAnnotationsChange(func(list []annotation.Annotation) {
			if err := emitJSON(a.stdout, list); err != nil {
				log.Printf("emit: %v", err)
			}
		}))
	}
	st := appstate.New(
		appstate.WithImageRef(a.file),
		appstate.WithOutput(a.output),
		appstate.WithTitle(windowTitle(a.file, a.output)),
		appstate.WithSize(a.width, a.height),
		appstate.WithTheme(a.activeTheme),
		appstate.WithZoomStep(a.config.ZoomStep()),
		appstate.WithRenderOptions(a.config.RenderOptions()),
		appstate.WithNotifier(a.notifier),
		appstate.WithEditorOptions(opts...),
	)
	st.Run()
	return nil
}
