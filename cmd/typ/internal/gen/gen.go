// Package gen implements the "typ gen" command.
package gen

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/broady/typ/internal/diag"
	"github.com/broady/typ/typgen"
)

// Inputs selects the files to translate: a configuration file, explicit
// paths, or both.
type Inputs struct {
	Files  []string `arg:"" optional:"" help:"Source files to translate."`
	Config string   `help:"YAML configuration file (typ.yaml)." short:"c" type:"existingfile"`
}

// Generator returns a generator for the selected inputs.
func (in *Inputs) Generator(logger *slog.Logger) (*typgen.Generator, error) {
	cfg := &typgen.Config{}
	if in.Config != "" {
		var err error
		if cfg, err = typgen.LoadConfig(in.Config); err != nil {
			return nil, err
		}
	}
	if len(in.Files) == 0 && len(cfg.Inputs) == 0 {
		return nil, errors.New("no input files (pass files or --config)")
	}
	cfg.Logger = logger
	return typgen.FromConfig(cfg).Files(in.Files...), nil
}

type Cmd struct {
	Inputs `embed:""`

	Out       string `help:"Output directory for generated files (default: out_dir from --config)." short:"o" type:"path"`
	Stdout    bool   `help:"Write generated code to standard output."`
	Tab       bool   `help:"Indent with tabs."`
	Comments  bool   `help:"Precede each declaration with its source location."`
	NoAliases bool   `help:"Do not emit a type alias per function."`
	Debug     bool   `help:"Log the rendered expansion of every file."`
}

func (c *Cmd) Run(logger *slog.Logger, printer *diag.Printer) error {
	g, err := c.Generator(logger)
	if err != nil {
		return err
	}
	if c.Tab {
		g.Indent("tab", 0)
	}
	if c.Comments {
		g.Comments()
	}
	if c.NoAliases {
		g.NoAliases()
	}
	if c.Debug {
		g.Debug()
	}

	var result *typgen.Result
	if c.Stdout {
		result, err = g.ToWriter(os.Stdout)
	} else {
		result, err = g.ToDir(c.Out)
	}
	if result != nil {
		printer.Warnings(result.Warnings)
		for _, f := range result.Files {
			logger.Info("wrote", "file", f.Path, "bytes", f.Size)
		}
	}
	if err != nil {
		return fmt.Errorf("%d error(s)", printer.Errors(err))
	}
	return nil
}
