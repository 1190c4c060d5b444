package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/example/annocanvas/internal/config"
)

type configCmd struct {
	*root
	fs     *flag.FlagSet
	stdout io.Writer
	loader *config.Loader
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	c := &configCmd{root: r.subcommand("config"), fs: fs, stdout: os.Stdout, loader: config.NewLoader(version, configPathOverride)}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}

	switch args[0] {
	case "print":
		fmt.Fprint(c.stdout, c.config.String())
		return nil
	case "path":
		if p := c.loader.GetConfigPath(); p != "" {
			fmt.Fprintln(c.stdout, p)
			return nil
		}
		fmt.Fprintln(c.stdout, "no config file found")
		return nil
	case "save":
		path, err := c.loader.Save(c.config)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Configuration saved to %s\n", path)
		return nil
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}
