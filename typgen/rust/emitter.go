package rust

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/broady/typ/typgen/ir"
)

// phantomPath is the zero-sized field type carrying a marker's parameters.
const phantomPath = "::core::marker::PhantomData"

// Emitter handles Rust code emission for generated declarations.
type Emitter struct {
	config GeneratorConfig
	indent string
}

// NewEmitter returns an Emitter for the given formatting options.
func NewEmitter(cfg GeneratorConfig) *Emitter {
	indent := strings.Repeat(" ", cfg.IndentSize)
	if cfg.IndentStyle == "tab" {
		indent = "\t"
	} else if cfg.IndentSize <= 0 {
		indent = "    "
	}
	return &Emitter{config: cfg, indent: indent}
}

// EmitDecl emits a top-level declaration.
func (e *Emitter) EmitDecl(buf *bytes.Buffer, d ir.Decl) ([]ir.Warning, error) {
	if e.config.EmitComments {
		if src := d.Src(); !src.IsZero() {
			fmt.Fprintf(buf, "// %s\n", src)
		}
	}

	switch d := d.(type) {
	case *ir.TraitDecl:
		return e.emitTrait(buf, d)
	case *ir.MarkerDecl:
		return e.emitMarker(buf, d)
	case *ir.ImplDecl:
		return nil, e.emitImpl(buf, d)
	case *ir.AliasDecl:
		return e.emitAlias(buf, d)
	default:
		return nil, fmt.Errorf("unsupported declaration kind: %s", d.Kind())
	}
}

// emitTrait emits a capability trait. Enum traits have no members.
func (e *Emitter) emitTrait(buf *bytes.Buffer, t *ir.TraitDecl) ([]ir.Warning, error) {
	name, warnings := e.declName(t.Name, t.Source)

	buf.WriteString(visibility(t.Vis))
	buf.WriteString("trait ")
	buf.WriteString(name)
	params, err := e.emitTypeParameters(t.Params)
	if err != nil {
		return nil, err
	}
	buf.WriteString(params)

	if len(t.Assoc) == 0 {
		buf.WriteString(" {}")
		return warnings, nil
	}

	buf.WriteString(" {\n")
	for _, a := range t.Assoc {
		buf.WriteString(e.indent)
		buf.WriteString("type ")
		buf.WriteString(escapeDeclName(a.Name))
		if !a.Bounds.IsEmpty() {
			bounds, err := e.emitBounds(a.Bounds)
			if err != nil {
				return nil, err
			}
			buf.WriteString(": ")
			buf.WriteString(bounds)
		}
		buf.WriteString(";\n")
	}
	buf.WriteString("}")
	return warnings, nil
}

// emitMarker emits a zero-sized marker type. Parameterized markers hold
// their parameters in a PhantomData tuple.
func (e *Emitter) emitMarker(buf *bytes.Buffer, m *ir.MarkerDecl) ([]ir.Warning, error) {
	name, warnings := e.declName(m.Name, m.Source)

	buf.WriteString(visibility(m.Vis))
	buf.WriteString("struct ")
	buf.WriteString(name)
	if len(m.Params) == 0 {
		buf.WriteString(";")
		return warnings, nil
	}

	params, err := e.emitTypeParameters(m.Params)
	if err != nil {
		return nil, err
	}
	buf.WriteString(params)

	names := make([]string, len(m.Params))
	for i, p := range m.Params {
		names[i] = escapeDeclName(p.Name)
	}
	buf.WriteString("(")
	buf.WriteString(phantomPath)
	buf.WriteString("<")
	buf.WriteString(tuple(names))
	buf.WriteString(">);")
	return warnings, nil
}

// emitImpl emits a trait implementation.
func (e *Emitter) emitImpl(buf *bytes.Buffer, im *ir.ImplDecl) error {
	if im.For == nil {
		return fmt.Errorf("implementation of %s has no implementing type", im.Trait)
	}

	buf.WriteString("impl")
	params, err := e.emitTypeParameters(im.Params)
	if err != nil {
		return err
	}
	buf.WriteString(params)
	buf.WriteString(" ")

	trait, err := e.emitBound(im.Trait)
	if err != nil {
		return err
	}
	buf.WriteString(trait)
	buf.WriteString(" for ")
	self, err := e.EmitTypeExpr(im.For)
	if err != nil {
		return err
	}
	buf.WriteString(self)

	if len(im.Where) > 0 {
		buf.WriteString("\nwhere\n")
		for _, p := range im.Where {
			ty, err := e.EmitTypeExpr(p.Type)
			if err != nil {
				return err
			}
			bounds, err := e.emitBounds(p.Bounds)
			if err != nil {
				return err
			}
			buf.WriteString(e.indent)
			buf.WriteString(ty)
			buf.WriteString(": ")
			buf.WriteString(bounds)
			buf.WriteString(",\n")
		}
	} else {
		buf.WriteString(" ")
	}

	if len(im.Assoc) == 0 {
		buf.WriteString("{}")
		return nil
	}

	buf.WriteString("{\n")
	for _, a := range im.Assoc {
		if a.Value == nil {
			return fmt.Errorf("associated type %s of %s has no value", a.Name, im.Trait)
		}
		value, err := e.EmitTypeExpr(a.Value)
		if err != nil {
			return err
		}
		buf.WriteString(e.indent)
		buf.WriteString("type ")
		buf.WriteString(escapeDeclName(a.Name))
		buf.WriteString(" = ")
		buf.WriteString(value)
		buf.WriteString(";\n")
	}
	buf.WriteString("}")
	return nil
}

// emitAlias emits a type alias.
func (e *Emitter) emitAlias(buf *bytes.Buffer, a *ir.AliasDecl) ([]ir.Warning, error) {
	name, warnings := e.declName(a.Name, a.Source)
	if a.Type == nil {
		return nil, fmt.Errorf("alias %s has no type", a.Name)
	}

	buf.WriteString(visibility(a.Vis))
	buf.WriteString("type ")
	buf.WriteString(name)
	params, err := e.emitTypeParameters(a.Params)
	if err != nil {
		return nil, err
	}
	buf.WriteString(params)
	buf.WriteString(" = ")

	underlying, err := e.EmitTypeExpr(a.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to emit alias %s: %w", a.Name, err)
	}
	buf.WriteString(underlying)
	buf.WriteString(";")
	return warnings, nil
}

// EmitTypeExpr emits a type expression.
func (e *Emitter) EmitTypeExpr(t ir.TypeExpr) (string, error) {
	switch t := t.(type) {
	case *ir.Var:
		return escapeDeclName(t.Name), nil
	case *ir.App:
		return e.emitApplication(t.Path, t.Args)
	case *ir.Tuple:
		elems, err := e.emitTypeExprs(t.Elems)
		if err != nil {
			return "", err
		}
		return tuple(elems), nil
	case *ir.Dyn:
		bounds, err := e.emitBounds(t.Bounds)
		if err != nil {
			return "", err
		}
		return "dyn " + bounds, nil
	case *ir.Projection:
		self, err := e.EmitTypeExpr(t.Self)
		if err != nil {
			return "", err
		}
		trait, err := e.emitBound(t.Trait)
		if err != nil {
			return "", err
		}
		return "<" + self + " as " + trait + ">::" + escapeDeclName(t.Name), nil
	case nil:
		return "", fmt.Errorf("missing type expression")
	default:
		return "", fmt.Errorf("unsupported type expression kind: %s", t.Kind())
	}
}

func (e *Emitter) emitTypeExprs(ts []ir.TypeExpr) ([]string, error) {
	out := make([]string, len(ts))
	for i, t := range ts {
		s, err := e.EmitTypeExpr(t)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (e *Emitter) emitApplication(path ir.Path, args []ir.TypeExpr) (string, error) {
	if len(path.Segments) == 0 {
		return "", fmt.Errorf("empty path")
	}
	var sb strings.Builder
	if path.Global {
		sb.WriteString("::")
	}
	for i, seg := range path.Segments {
		if i > 0 {
			sb.WriteString("::")
		}
		sb.WriteString(escapeSegment(seg))
	}
	if len(args) > 0 {
		parts, err := e.emitTypeExprs(args)
		if err != nil {
			return "", err
		}
		sb.WriteString("<")
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString(">")
	}
	return sb.String(), nil
}

func (e *Emitter) emitBound(b ir.Bound) (string, error) {
	return e.emitApplication(b.Path, b.Args)
}

func (e *Emitter) emitBounds(s ir.BoundSet) (string, error) {
	items := s.Items()
	parts := make([]string, len(items))
	for i, b := range items {
		part, err := e.emitBound(b)
		if err != nil {
			return "", err
		}
		parts[i] = part
	}
	return strings.Join(parts, " + "), nil
}

// emitTypeParameters emits a parameter list with inline bounds.
func (e *Emitter) emitTypeParameters(params []ir.TypeParam) (string, error) {
	if len(params) == 0 {
		return "", nil
	}
	parts := make([]string, len(params))
	for i, p := range params {
		part := escapeDeclName(p.Name)
		if !p.Bounds.IsEmpty() {
			bounds, err := e.emitBounds(p.Bounds)
			if err != nil {
				return "", err
			}
			part += ": " + bounds
		}
		parts[i] = part
	}
	return "<" + strings.Join(parts, ", ") + ">", nil
}

// declName escapes a declared name and warns when it had to change.
func (e *Emitter) declName(name string, src ir.Source) (string, []ir.Warning) {
	escaped := escapeDeclName(name)
	if isIdentifier(name) && !pathKeywords[name] {
		return escaped, nil
	}
	w := ir.Warning{
		Code:    "renamed_identifier",
		Message: fmt.Sprintf("%q is not a valid identifier; emitted as %s", name, escaped),
		Item:    name,
	}
	if !src.IsZero() {
		w.Source = &src
	}
	return escaped, []ir.Warning{w}
}

func visibility(vis string) string {
	if vis == "" {
		return ""
	}
	return vis + " "
}

// tuple renders a tuple type; a single element keeps its trailing comma.
func tuple(elems []string) string {
	switch len(elems) {
	case 0:
		return "()"
	case 1:
		return "(" + elems[0] + ",)"
	}
	return "(" + strings.Join(elems, ", ") + ")"
}
