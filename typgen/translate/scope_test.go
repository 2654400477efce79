package translate

import (
	"go/token"
	"testing"

	"github.com/broady/typ"
	"github.com/broady/typ/typgen/ir"
)

func TestScope_DeclareQuantifier(t *testing.T) {
	s := NewScope()
	if err := s.DeclareQuantifier("T", token.Position{}); err != nil {
		t.Fatalf("first declaration: %v", err)
	}
	err := s.DeclareQuantifier("T", token.Position{Filename: "a.rs", Line: 3, Column: 1})
	if typ.CodeOf(err) != typ.CodeDuplicateQuantifier {
		t.Fatalf("second declaration: got %v, want %s", err, typ.CodeDuplicateQuantifier)
	}

	child := s.Child()
	if err := child.DeclareQuantifier("T", token.Position{}); err != nil {
		t.Errorf("shadowing in child: %v", err)
	}
	if got := child.Quantifiers(); len(got) != 1 || got[0] != "T" {
		t.Errorf("child.Quantifiers() = %v, want [T]", got)
	}
	if err := child.DeclareQuantifier("T", token.Position{}); typ.CodeOf(err) != typ.CodeDuplicateQuantifier {
		t.Errorf("redeclaration in child: got %v", err)
	}
}

func TestScope_ChildIsolation(t *testing.T) {
	parent := NewScope()
	x := ir.V("x")
	parent.AddConstraints(x, ir.NewBoundSet(ir.B("Bar")))
	parent.BindSubstitution("y", ir.Apply("Zero"))
	parent.Track(x)

	child := parent.Child()
	child.AddConstraints(x, ir.NewBoundSet(ir.B("Baz")))
	child.AddConstraints(ir.V("z"), ir.NewBoundSet(ir.B("Qux")))
	child.BindSubstitution("y", ir.Apply("One"))
	child.Rename(x, ir.Apply("Succ", ir.V("p")))

	if got := parent.Constraints(x).String(); got != "Bar" {
		t.Errorf("parent constraints on x = %q, want Bar", got)
	}
	if !parent.Constraints(ir.V("z")).IsEmpty() {
		t.Error("child constraint leaked into parent")
	}
	if got := parent.Resolve("y").String(); got != "Zero" {
		t.Errorf("parent.Resolve(y) = %s, want Zero", got)
	}
	if got := parent.Tracked()[0].String(); got != "x" {
		t.Errorf("parent tracked = %s, want x", got)
	}
	if got := child.Tracked()[0].String(); got != "Succ<p>" {
		t.Errorf("child tracked = %s, want Succ<p>", got)
	}
}

func TestScope_AddConstraintsMerges(t *testing.T) {
	s := NewScope()
	x := ir.V("x")
	s.AddConstraints(x, ir.NewBoundSet(ir.B("Bar")))
	s.AddConstraints(x, ir.NewBoundSet(ir.B("Compute_f", ir.V("y"))))
	s.AddConstraints(x, ir.NewBoundSet(ir.B("Bar")))

	if got, want := s.Constraints(x).String(), "Bar + Compute_f<y>"; got != want {
		t.Errorf("Constraints(x) = %q, want %q", got, want)
	}
}

func TestScope_Resolve(t *testing.T) {
	s := NewScope()
	if got := s.Resolve("a").String(); got != "a" {
		t.Errorf("unbound Resolve(a) = %s, want a", got)
	}
	s.BindSubstitution("a", ir.Apply("Zero"))
	if got := s.Resolve("a").String(); got != "Zero" {
		t.Errorf("Resolve(a) = %s, want Zero", got)
	}
	s.Unbind("a")
	if _, ok := s.Substitution("a"); ok {
		t.Error("Unbind did not remove the substitution")
	}
}

func TestScope_Predicates(t *testing.T) {
	s := NewScope()
	s.AddConstraints(ir.V("b"), ir.NewBoundSet(ir.B("Nat")))
	s.AddConstraints(ir.V("empty"), ir.BoundSet{})
	s.AddConstraints(ir.V("a"), ir.NewBoundSet(ir.B("Nat")))

	preds := s.Predicates()
	if len(preds) != 2 {
		t.Fatalf("len(Predicates()) = %d, want 2", len(preds))
	}
	if preds[0].Type.String() != "b" || preds[1].Type.String() != "a" {
		t.Errorf("Predicates() order = %s, %s; want b, a", preds[0].Type, preds[1].Type)
	}
}

func TestScope_RenameMergesCollisions(t *testing.T) {
	s := NewScope()
	s.AddConstraints(ir.V("x"), ir.NewBoundSet(ir.B("Nat")))
	s.AddConstraints(ir.Apply("Zero"), ir.NewBoundSet(ir.B("Compute_f")))
	s.BindSubstitution("w", ir.Apply("Pair", ir.V("x")))

	s.Rename(ir.V("x"), ir.Apply("Zero"))

	preds := s.Predicates()
	if len(preds) != 1 {
		t.Fatalf("len(Predicates()) = %d, want 1", len(preds))
	}
	if got, want := preds[0].Bounds.String(), "Nat + Compute_f"; got != want {
		t.Errorf("merged bounds = %q, want %q", got, want)
	}
	if got := s.Resolve("w").String(); got != "Pair<Zero>" {
		t.Errorf("Resolve(w) = %s, want Pair<Zero>", got)
	}
}

func TestScope_RemoveQuantifier(t *testing.T) {
	s := NewScope()
	_ = s.DeclareQuantifier("a", token.Position{})
	_ = s.DeclareQuantifier("b", token.Position{})
	s.RemoveQuantifier("a")
	if s.IsQuantifier("a") {
		t.Error("a is still a quantifier")
	}
	if got := s.Quantifiers(); len(got) != 1 || got[0] != "b" {
		t.Errorf("Quantifiers() = %v, want [b]", got)
	}
	if err := s.DeclareQuantifier("a", token.Position{}); err != nil {
		t.Errorf("redeclare after remove: %v", err)
	}
}
