package translate

import (
	"go/token"
	"log/slog"
	"regexp"

	"github.com/broady/typ"
	"github.com/broady/typ/syntax"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

const (
	// DefaultIdentPrefix prefixes synthetic identifiers such as the method receiver.
	DefaultIdentPrefix = "__TYP__"

	// DefaultComputePrefix prefixes the capability trait generated for each function.
	DefaultComputePrefix = "Compute_"

	// AttributeName is the crate-level attribute carrying translator options:
	// #![typ(prefix = "__X__", compute_prefix = "Eval", no_aliases, debug)].
	AttributeName = "typ"
)

var (
	validate      = newValidator()
	schemaDecoder = newSchemaDecoder()

	identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// newSchemaDecoder decodes attribute arguments. Empty values are kept so
// that prefix = "" reaches validation instead of keeping the default.
func newSchemaDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.ZeroEmpty(true)
	return d
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return identRE.MatchString(fl.Field().String())
	})
	return v
}

// Options configures a Translator.
type Options struct {
	// IdentPrefix prefixes synthetic identifiers. Default: "__TYP__".
	IdentPrefix string `schema:"prefix" validate:"required,ident"`

	// ComputePrefix prefixes the per-function capability trait: a function f
	// is computed through the trait <ComputePrefix>f. Default: "Compute_".
	ComputePrefix string `schema:"compute_prefix" validate:"required,ident"`

	// NoAliases suppresses the type alias naming each function's result.
	NoAliases bool `schema:"no_aliases"`

	// Debug logs the rendered expansion of every translated file.
	Debug bool `schema:"debug"`

	// Logger receives per-item debug records. Nil means slog.Default().
	Logger *slog.Logger `schema:"-"`
}

// DefaultOptions returns the default translator options.
func DefaultOptions() Options {
	return Options{
		IdentPrefix:   DefaultIdentPrefix,
		ComputePrefix: DefaultComputePrefix,
	}
}

func (o Options) withDefaults() Options {
	if o.IdentPrefix == "" {
		o.IdentPrefix = DefaultIdentPrefix
	}
	if o.ComputePrefix == "" {
		o.ComputePrefix = DefaultComputePrefix
	}
	return o
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// ResolveOptions overlays the file's #![typ(...)] attributes on base and validates the result.
// Attributes with other names are ignored.
func ResolveOptions(base Options, f *syntax.File) (Options, error) {
	opts := base.withDefaults()
	pos := token.Position{Filename: f.Filename}
	for _, attr := range f.Attrs {
		name, ok := attr.Path.Ident()
		if !attr.Inner || !ok || name != AttributeName {
			continue
		}
		pos = attr.Pos()

		values := make(map[string][]string)
		for _, arg := range attr.Args {
			if arg.Key == "" {
				return base, typ.NewError(typ.CodeInvalidOptions, arg.Pos, "typ attribute arguments must be key = value pairs or flags")
			}
			values[arg.Key] = append(values[arg.Key], arg.Value)
		}
		if err := schemaDecoder.Decode(&opts, values); err != nil {
			return base, typ.Errorf(typ.CodeInvalidOptions, attr.Pos(), "invalid typ attribute: %v", err)
		}
	}
	if err := validate.Struct(opts); err != nil {
		return base, typ.FromValidation(err, pos)
	}
	return opts, nil
}
