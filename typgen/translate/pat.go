package translate

import (
	"go/token"

	"github.com/broady/typ"
	"github.com/broady/typ/syntax"
	"github.com/broady/typ/typgen/ir"
)

// FieldBinding is one field of a destructured variant: the binding name and the
// capability its value must have.
type FieldBinding struct {
	Name       string
	Capability ir.Bound
	Pos        token.Position
}

// Destructure converts a match-arm pattern into its variant name and field bindings.
//
// Accepted shapes are Variant(field @ Capability, ...) and the field-less
// variants Variant and path::Variant. Every field must carry an @ capability.
func Destructure(pat syntax.Pat) (string, []FieldBinding, error) {
	switch p := pat.(type) {
	case *syntax.IdentPat:
		if p.Sub != nil || p.Ref {
			return "", nil, typ.Errorf(typ.CodeUnsupportedPattern, p.Pos(), "unsupported pattern binding %q", p.Name)
		}
		return p.Name, nil, nil
	case *syntax.PathPat:
		name, err := variantName(p.Path)
		return name, nil, err
	case *syntax.TupleStructPat:
		name, err := variantName(p.Path)
		if err != nil {
			return "", nil, err
		}
		fields := make([]FieldBinding, 0, len(p.Elems))
		for _, elem := range p.Elems {
			f, err := destructureField(elem)
			if err != nil {
				return "", nil, err
			}
			fields = append(fields, f)
		}
		return name, fields, nil
	case *syntax.WildcardPat:
		return "", nil, typ.NewError(typ.CodeUnsupportedPattern, p.Pos(), "wildcard patterns are not supported")
	}
	return "", nil, typ.NewError(typ.CodeUnsupportedPattern, pat.Pos(), "match patterns must have the form Variant(field @ Capability, ...)")
}

func variantName(p *syntax.Path) (string, error) {
	last := p.Last()
	if len(last.Args) > 0 {
		return "", typ.Errorf(typ.CodeUnsupportedPattern, p.Pos(), "generic arguments are not allowed in pattern %s", p)
	}
	return last.Name, nil
}

func destructureField(pat syntax.Pat) (FieldBinding, error) {
	ident, ok := pat.(*syntax.IdentPat)
	if !ok {
		return FieldBinding{}, typ.NewError(typ.CodeUnsupportedPattern, pat.Pos(), "variant fields must be bound as name @ Capability")
	}
	var capPath *syntax.Path
	switch sub := ident.Sub.(type) {
	case nil:
		return FieldBinding{}, typ.Errorf(typ.CodeMissingCapabilityAnnotation, ident.Pos(), "field %q needs a capability annotation: %s @ Capability", ident.Name, ident.Name)
	case *syntax.IdentPat:
		if sub.Sub != nil {
			return FieldBinding{}, typ.NewError(typ.CodeUnsupportedPattern, sub.Pos(), "nested @ bindings are not supported")
		}
		capPath = &syntax.Path{Segments: []*syntax.PathSegment{{Name: sub.Name}}}
	case *syntax.PathPat:
		capPath = sub.Path
	default:
		return FieldBinding{}, typ.NewError(typ.CodeUnsupportedPattern, sub.Pos(), "capability annotation must name a trait")
	}
	b, err := boundOfPath(capPath)
	if err != nil {
		return FieldBinding{}, err
	}
	return FieldBinding{Name: ident.Name, Capability: b, Pos: ident.Pos()}, nil
}
