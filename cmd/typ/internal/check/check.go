// Package check implements the "typ check" command.
package check

import (
	"fmt"
	"log/slog"

	"github.com/broady/typ/cmd/typ/internal/gen"
	"github.com/broady/typ/internal/diag"
)

type Cmd struct {
	gen.Inputs `embed:""`
}

func (c *Cmd) Run(logger *slog.Logger, printer *diag.Printer) error {
	g, err := c.Generator(logger)
	if err != nil {
		return err
	}
	result, err := g.Check()
	if result != nil {
		printer.Warnings(result.Warnings)
	}
	if err != nil {
		return fmt.Errorf("%d error(s)", printer.Errors(err))
	}

	fmt.Printf("✓ %d files, %d declarations\n", len(result.Modules), result.DeclsGenerated)
	return nil
}
