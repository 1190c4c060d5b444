package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/example/annocanvas/internal/annotation"
)

// labelsCmd lists the label registry from the config file.
type labelsCmd struct {
	*root
	fs     *flag.FlagSet
	asJSON bool
	stdout io.Writer
}

func parseLabelsCmd(args []string, r *root) (*labelsCmd, error) {
	fs := flag.NewFlagSet("labels", flag.ExitOnError)
	cmd := &labelsCmd{root: r.subcommand("labels"), fs: fs, stdout: os.Stdout}
	fs.BoolVar(&cmd.asJSON, "json", false, "print the registry as JSON")
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *labelsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *labelsCmd) Run() error {
	labels := annotation.NewRegistry(c.config.Labels...).Labels()
	if c.asJSON {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		if labels == nil {
			labels = []annotation.Label{}
		}
		return enc.Encode(labels)
	}
	if len(labels) == 0 {
		fmt.Fprintln(c.stdout, "no labels configured; add [label.<id>] sections to the config file")
		return nil
	}
	fmt.Fprintln(c.stdout, "configured labels (* marks the selected label):")
	for _, l := range labels {
		marker := " "
		if l.ID == c.config.SelectedLabel {
			marker = "*"
		}
		block := "  "
		if col, err := colorful.Hex(l.Color); err == nil {
			r, g, b := col.RGB255()
			block = fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m", r, g, b)
		}
		fmt.Fprintf(c.stdout, "%s %-12s %-16s %-8s %s %s\n", marker, l.ID, l.Name, l.Color, block, l.Category)
	}
	return nil
}
