package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/broady/typ/cmd/typ/internal/check"
	"github.com/broady/typ/cmd/typ/internal/gen"
	"github.com/broady/typ/internal/diag"
)

type CLI struct {
	Verbose bool `help:"Log debug output." short:"v"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Translate source files into type-level Rust."`
	Check   check.Cmd  `cmd:"" help:"Translate source files and report errors without writing output."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("typ"),
		kong.Description("Translate enums, structs and functions into traits and trait bounds."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	err := ctx.Run(logger, diag.New(os.Stderr))
	ctx.FatalIfErrorf(err)
}
