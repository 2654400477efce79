package translate

import (
	"github.com/broady/typ/typgen/ir"
)

// outputName is the associated type carrying a computation's result.
const outputName = "Output"

// emit lowers a translated function into declarations: the computation trait,
// an alias naming its result unless disabled, and one implementation per branch.
func (t *Translator) emit(u *Unit) []ir.Decl {
	src := ir.SourceOf(u.Pos)
	compute := t.computeName(u.Name)

	var rest []ir.TypeExpr
	if len(u.Args) > 0 {
		rest = u.Args[1:]
	}
	trait := &ir.TraitDecl{
		Name:   compute,
		Vis:    u.Vis,
		Params: paramsOf(rest),
		Assoc:  []ir.AssocType{{Name: outputName, Bounds: u.OutputBounds}},
		Source: src,
	}
	decls := []ir.Decl{trait}

	if !t.opts.NoAliases {
		decls = append(decls, &ir.AliasDecl{
			Name:   u.Name,
			Vis:    u.Vis,
			Params: paramsOf(u.Args),
			Type: &ir.Projection{
				Self:  subjectOf(u.Args),
				Trait: ir.B(compute, rest...),
				Name:  outputName,
			},
			Source: src,
		})
	}

	for _, b := range u.Branches {
		tracked := b.Scope.Tracked()
		var args []ir.TypeExpr
		if len(tracked) > 0 {
			args = tracked[1:]
		}
		impl := &ir.ImplDecl{
			Trait:  ir.B(compute, args...),
			For:    subjectOf(tracked),
			Where:  b.Scope.Predicates(),
			Assoc:  []ir.AssocType{{Name: outputName, Value: b.Type}},
			Source: src,
		}
		for _, q := range b.Scope.Quantifiers() {
			impl.Params = append(impl.Params, ir.TypeParam{Name: q})
		}
		decls = append(decls, impl)
	}
	return decls
}

// subjectOf returns the implementing type for a list of arguments: the first
// argument, or () when there are none.
func subjectOf(args []ir.TypeExpr) ir.TypeExpr {
	if len(args) == 0 {
		return ir.Unit()
	}
	return args[0]
}

func paramsOf(args []ir.TypeExpr) []ir.TypeParam {
	if len(args) == 0 {
		return nil
	}
	params := make([]ir.TypeParam, len(args))
	for i, a := range args {
		params[i] = ir.TypeParam{Name: a.String()}
	}
	return params
}
