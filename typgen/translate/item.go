// Package translate lowers parsed items into type-level declarations.
//
// Enums become a capability trait plus one marker type per variant, and
// functions become a computation trait whose implementations enumerate every
// execution path through the body. The result is an ir.Module that a
// generator renders into host source code.
package translate

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/broady/typ"
	"github.com/broady/typ/syntax"
	"github.com/broady/typ/typgen/ir"
)

// Translator translates items with a fixed set of options.
// It holds no per-item state and is safe for concurrent use.
type Translator struct {
	opts Options
	log  *slog.Logger
}

// New returns a Translator. Empty prefixes are replaced by their defaults.
func New(opts Options) *Translator {
	opts = opts.withDefaults()
	return &Translator{opts: opts, log: opts.logger()}
}

// Translate translates every item of f. Items are independent: a failing item
// contributes no declarations, and the returned error joins the failure of
// every such item. The module holds the declarations of the items that succeeded.
func Translate(f *syntax.File, opts Options) (*ir.Module, error) {
	return New(opts).File(f)
}

// File translates every item of f. See Translate.
func (t *Translator) File(f *syntax.File) (*ir.Module, error) {
	m := &ir.Module{
		Name:   strings.TrimSuffix(filepath.Base(f.Filename), filepath.Ext(f.Filename)),
		Source: f.Filename,
	}
	var errs []error
	for _, item := range f.Items {
		decls, warnings, err := t.item(item)
		if err != nil {
			t.log.Debug("item failed", "item", syntax.Describe(item), "code", typ.CodeOf(err))
			errs = append(errs, err)
			continue
		}
		m.Add(decls...)
		for _, w := range warnings {
			m.AddWarning(w)
		}
	}
	return m, errors.Join(errs...)
}

// Item translates a single item into its declarations.
func (t *Translator) Item(item syntax.Item) ([]ir.Decl, error) {
	decls, _, err := t.item(item)
	return decls, err
}

func (t *Translator) item(item syntax.Item) ([]ir.Decl, []ir.Warning, error) {
	var (
		decls    []ir.Decl
		warnings []ir.Warning
		branches int
		err      error
	)
	switch it := item.(type) {
	case *syntax.EnumItem:
		decls, warnings, err = t.enum(it)
	case *syntax.StructItem:
		decls, warnings, err = t.structItem(it)
	case *syntax.FnItem:
		var u *Unit
		u, err = t.Func(it, nil, nil)
		if err == nil {
			decls, branches = t.emit(u), len(u.Branches)
		}
	case *syntax.ImplItem:
		decls, branches, err = t.impl(it)
	default:
		err = typ.Errorf(typ.CodeUnsupportedItemKind, item.Pos(), "unsupported item kind: %s", item.ItemKind()).
			WithDetail("kind", item.ItemKind())
	}
	if err != nil {
		return nil, nil, err
	}
	t.log.Debug("translated item",
		"kind", item.ItemKind(),
		"name", syntax.Describe(item),
		"decls", len(decls),
		"branches", branches)
	return decls, warnings, nil
}

// enum emits one capability trait named after the enum and, per variant, a
// marker type with one bounded parameter per field plus an empty
// implementation of the trait.
func (t *Translator) enum(e *syntax.EnumItem) ([]ir.Decl, []ir.Warning, error) {
	src := ir.SourceOf(e.Pos())
	decls := []ir.Decl{&ir.TraitDecl{Name: e.Name, Vis: e.Vis, Source: src}}
	for _, v := range e.Variants {
		params, err := fieldParams(v.Fields)
		if err != nil {
			return nil, nil, err
		}
		decls = append(decls, &ir.MarkerDecl{Name: v.Name, Vis: e.Vis, Params: params, Source: ir.SourceOf(v.Pos())})
	}
	for _, d := range decls[1:] {
		marker := d.(*ir.MarkerDecl)
		decls = append(decls, markerImpl(e.Name, marker))
	}
	return decls, ignoredGenerics("enum", e.Name, e.Generics, src), nil
}

// structItem emits a single marker type, like a lone variant without a trait.
func (t *Translator) structItem(s *syntax.StructItem) ([]ir.Decl, []ir.Warning, error) {
	params, err := fieldParams(s.Fields)
	if err != nil {
		return nil, nil, err
	}
	src := ir.SourceOf(s.Pos())
	marker := &ir.MarkerDecl{Name: s.Name, Vis: s.Vis, Params: params, Source: src}
	return []ir.Decl{marker}, ignoredGenerics("struct", s.Name, s.Generics, src), nil
}

func fieldParams(fields syntax.Fields) ([]ir.TypeParam, error) {
	params := make([]ir.TypeParam, 0, len(fields.List))
	for i, f := range fields.List {
		bounds, err := boundsOfType(f.Type)
		if err != nil {
			return nil, err
		}
		name := f.Name
		if fields.Style == syntax.TupleFields {
			name = fmt.Sprintf("T%d", i)
		}
		params = append(params, ir.TypeParam{Name: name, Bounds: bounds})
	}
	return params, nil
}

func markerImpl(trait string, m *ir.MarkerDecl) *ir.ImplDecl {
	impl := &ir.ImplDecl{Trait: ir.B(trait), Source: m.Source}
	args := make([]ir.TypeExpr, len(m.Params))
	for i, p := range m.Params {
		impl.Params = append(impl.Params, ir.TypeParam{Name: p.Name})
		args[i] = ir.V(p.Name)
		if !p.Bounds.IsEmpty() {
			impl.Where = append(impl.Where, ir.Predicate{Type: args[i], Bounds: p.Bounds})
		}
	}
	impl.For = ir.Apply(m.Name, args...)
	return impl
}

func ignoredGenerics(kind, name string, g syntax.Generics, src ir.Source) []ir.Warning {
	if len(g.Params) == 0 && len(g.Where) == 0 {
		return nil
	}
	return []ir.Warning{{
		Code:    "ignored_generics",
		Message: fmt.Sprintf("generic parameters of %s %s are ignored", kind, name),
		Source:  &src,
		Item:    name,
	}}
}

// impl translates every method of an inherent impl block against the receiver
// trait named by the self type.
func (t *Translator) impl(im *syntax.ImplItem) ([]ir.Decl, int, error) {
	if im.Trait != nil {
		return nil, 0, typ.NewError(typ.CodeTraitImplNotSupported, im.Trait.Pos(), `"for Trait" clause is not supported`)
	}
	receiver, err := selfPath(im.SelfType)
	if err != nil {
		return nil, 0, err
	}
	if len(im.Generics.Where) > 0 {
		return nil, 0, typ.NewError(typ.CodeUnsupportedTypeForm, im.Generics.Where[0].Pos(), "where clauses on impl blocks are not supported")
	}

	var (
		decls    []ir.Decl
		branches int
	)
	for _, member := range im.Members {
		switch m := member.(type) {
		case *syntax.FnItem:
			u, err := t.Func(m, &receiver, im.Generics.Params)
			if err != nil {
				return nil, 0, err
			}
			decls = append(decls, t.emit(u)...)
			branches += len(u.Branches)
		case *syntax.AssocTypeItem:
			return nil, 0, typ.Errorf(typ.CodeAssocTypeNotSupported, m.Pos(), "associated type %s is not supported", m.Name)
		default:
			return nil, 0, typ.Errorf(typ.CodeUnsupportedItemKind, m.Pos(), "unsupported item kind in impl block: %s", m.ItemKind())
		}
	}
	return decls, branches, nil
}

func selfPath(ty syntax.Type) (ir.Path, error) {
	pt, ok := ty.(*syntax.PathType)
	if !ok {
		return ir.Path{}, typ.NewError(typ.CodeUnsupportedSelfType, ty.Pos(), "unsupported type kind: impl self type must be a plain path")
	}
	path := ir.Path{Global: pt.Path.Global}
	for _, seg := range pt.Path.Segments {
		if len(seg.Args) > 0 {
			return ir.Path{}, typ.Errorf(typ.CodeUnsupportedSelfType, ty.Pos(), "impl self type %s must not have generic arguments", pt.Path)
		}
		path.Segments = append(path.Segments, seg.Name)
	}
	return path, nil
}
