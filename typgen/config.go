package typgen

import (
	"errors"
	"fmt"
	"go/token"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/broady/typ"
	"github.com/broady/typ/typgen/rust"
	"github.com/broady/typ/typgen/translate"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultHeader is written at the top of every generated file.
const DefaultHeader = "// Code generated by typ. DO NOT EDIT."

var validate = validator.New()

// Config holds the configuration for code generation.
// It can be loaded from a typ.yaml file with LoadConfig.
type Config struct {
	// OutDir is the directory where generated files will be written.
	// e.g. "./src/gen"
	OutDir string `yaml:"out_dir"`

	// Inputs are the source files to translate.
	Inputs []string `yaml:"inputs" validate:"dive,required"`

	// IndentStyle is "space" (default) or "tab".
	IndentStyle string `yaml:"indent_style" validate:"omitempty,oneof=space tab"`

	// IndentSize is the number of spaces per level. Default: 4
	IndentSize int `yaml:"indent_size" validate:"gte=0,lte=16"`

	// LineEnding is "lf" (default) or "crlf".
	LineEnding string `yaml:"line_ending" validate:"omitempty,oneof=lf crlf"`

	// TrailingNewline ensures files end with a newline. Default: true
	TrailingNewline *bool `yaml:"trailing_newline"`

	// Header is written at the top of each file. Default: DefaultHeader.
	// Set NoHeader to omit it.
	Header   string `yaml:"header"`
	NoHeader bool   `yaml:"no_header"`

	// Comments precedes every declaration with the location of the item it came from.
	Comments bool `yaml:"comments"`

	// Overwrite replaces existing output files. Default: true
	Overwrite *bool `yaml:"overwrite"`

	// Translator options. The #![typ(...)] attribute of an input file
	// overrides these per file.
	IdentPrefix   string `yaml:"prefix"`
	ComputePrefix string `yaml:"compute_prefix"`
	NoAliases     bool   `yaml:"no_aliases"`
	Debug         bool   `yaml:"debug"`

	// Logger receives progress and debug records. Nil means slog.Default().
	Logger *slog.Logger `yaml:"-"`
}

// LoadConfig reads a YAML configuration file. Relative OutDir and Inputs
// are resolved against the directory containing the file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: empty path")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg, err := decodeConfig(file, path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if cfg.OutDir != "" && !filepath.IsAbs(cfg.OutDir) {
		cfg.OutDir = filepath.Join(dir, cfg.OutDir)
	}
	for i, in := range cfg.Inputs {
		if in != "" && !filepath.IsAbs(in) {
			cfg.Inputs[i] = filepath.Join(dir, in)
		}
	}
	return cfg, nil
}

// ParseConfig decodes YAML configuration from r. The name is used in error messages.
// Unknown keys are rejected.
func ParseConfig(r io.Reader, name string) (*Config, error) {
	return decodeConfig(r, name)
}

func decodeConfig(r io.Reader, name string) (*Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: %s is empty", name)
		}
		return nil, fmt.Errorf("config: parse %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", name, err)
	}
	return &cfg, nil
}

// Validate checks the configuration's field constraints.
// Failures are reported as a single CodeInvalidOptions error.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return typ.FromValidation(err, token.Position{})
	}
	return nil
}

// applyConfigDefaults applies default values to Config.
func applyConfigDefaults(cfg *Config) *Config {
	// Make a copy to avoid mutating the input
	result := *cfg

	if result.IndentStyle == "" {
		result.IndentStyle = "space"
	}
	if result.IndentSize == 0 {
		result.IndentSize = 4
	}
	if result.LineEnding == "" {
		result.LineEnding = "lf"
	}
	if result.TrailingNewline == nil {
		v := true
		result.TrailingNewline = &v
	}
	if result.Header == "" && !result.NoHeader {
		result.Header = DefaultHeader
	}
	if result.NoHeader {
		result.Header = ""
	}
	if result.Overwrite == nil {
		v := true
		result.Overwrite = &v
	}
	if result.Logger == nil {
		result.Logger = slog.Default()
	}

	return &result
}

// rustConfig returns the rendering options. cfg must have defaults applied.
func (c *Config) rustConfig() rust.GeneratorConfig {
	return rust.GeneratorConfig{
		IndentStyle:     c.IndentStyle,
		IndentSize:      c.IndentSize,
		LineEnding:      c.LineEnding,
		TrailingNewline: *c.TrailingNewline,
		Header:          c.Header,
		EmitComments:    c.Comments,
	}
}

// translateOptions returns the base translator options that each file's
// attributes are overlaid on.
func (c *Config) translateOptions() translate.Options {
	return translate.Options{
		IdentPrefix:   c.IdentPrefix,
		ComputePrefix: c.ComputePrefix,
		NoAliases:     c.NoAliases,
		Debug:         c.Debug,
		Logger:        c.Logger,
	}
}
