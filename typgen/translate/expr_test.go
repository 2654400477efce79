package translate

import (
	"go/token"
	"strings"
	"testing"

	"github.com/broady/typ"
	"github.com/broady/typ/syntax"
	"github.com/broady/typ/typgen/ir"
)

// argScope returns a root scope in which every name is an argument of capability Nat.
func argScope(t *testing.T, names ...string) *Scope {
	t.Helper()
	s := NewScope()
	for _, name := range names {
		if err := s.DeclareQuantifier(name, token.Position{}); err != nil {
			t.Fatal(err)
		}
		s.AddConstraints(ir.V(name), ir.NewBoundSet(ir.B("Nat")))
	}
	return s
}

func translateExpr(t *testing.T, src string, scope *Scope) ([]Branch, error) {
	t.Helper()
	x, err := syntax.ParseExpr(src)
	if err != nil {
		t.Fatalf("ParseExpr(%q): %v", src, err)
	}
	return New(testOptions()).Expr(x, scope)
}

func branchTypes(branches []Branch) string {
	types := make([]string, len(branches))
	for i, b := range branches {
		types[i] = b.Type.String()
	}
	return strings.Join(types, " | ")
}

func TestExpr_Types(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"path", "a", "a"},
		{"unbound path", "Zero", "Zero"},
		{"paren", "((a))", "a"},
		{"unit", "()", "()"},
		{"tuple", "(a, b)", "(a, b)"},
		{"one tuple", "(a,)", "(a,)"},
		{"call", "f(a, b)", "f<a, b>"},
		{"nullary call", "f()", "f"},
		{"nested call", "f(g(a), b)", "f<g<a>, b>"},
		{"equality", "a == b", "TypeEquals<a, b>"},
		{"and", "a && b", "TAnd<a, b>"},
		{"less equal", "a <= b", "TLessThanEqual<a, b>"},
		{"add", "a + b", "TAdd<a, b>"},
		{"sub", "a - b", "TSub<a, b>"},
		{"divide", "a / b", "TDivide<a, b>"},
		{"precedence", "a + b / c", "TAdd<a, TDivide<b, c>>"},
		{"if", "if a == b { a } else { b }", "TIf<TypeEquals<a, b>, a, b>"},
		{"else if", "if a { b } else if b { a } else { c }", "TIf<a, b, TIf<b, a, c>>"},
		{"empty block", "{}", "()"},
		{"block", "{ let c = f(a); g(c, b) }", "g<f<a>, b>"},
		{"statement block", "{ f(a); }", "()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			branches, err := translateExpr(t, tt.src, argScope(t, "a", "b", "c"))
			if err != nil {
				t.Fatalf("Expr: %v", err)
			}
			if got := branchTypes(branches); got != tt.want {
				t.Errorf("Expr(%q) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestExpr_CallConstraints(t *testing.T) {
	scope := NewScope()
	x := ir.V("x")
	scope.AddConstraints(x, ir.NewBoundSet(ir.B("Bar")))

	branches, err := translateExpr(t, "f(x, y)", scope)
	if err != nil {
		t.Fatal(err)
	}
	if len(branches) != 1 {
		t.Fatalf("len(branches) = %d, want 1", len(branches))
	}
	b := branches[0]
	if got := b.Type.String(); got != "f<x, y>" {
		t.Errorf("type = %s, want f<x, y>", got)
	}
	if got, want := b.Scope.Constraints(x).String(), "Bar + Compute_f<y>"; got != want {
		t.Errorf("constraints on x = %q, want %q", got, want)
	}
	if got := scope.Constraints(x).String(); got != "Bar" {
		t.Errorf("input scope was modified: %q", got)
	}

	again, err := New(testOptions()).Expr(&syntax.CallExpr{Fun: mustParseExpr(t, "f"), Args: []syntax.Expr{mustParseExpr(t, "x"), mustParseExpr(t, "y")}}, b.Scope)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := again[0].Scope.Constraints(x).String(), "Bar + Compute_f<y>"; got != want {
		t.Errorf("repeated call constraints = %q, want %q", got, want)
	}
}

func mustParseExpr(t *testing.T, src string) syntax.Expr {
	t.Helper()
	x, err := syntax.ParseExpr(src)
	if err != nil {
		t.Fatal(err)
	}
	return x
}

func TestExpr_NullaryCallSubject(t *testing.T) {
	branches, err := translateExpr(t, "zero()", NewScope())
	if err != nil {
		t.Fatal(err)
	}
	if got := branches[0].Scope.Constraints(ir.Unit()).String(); got != "Compute_zero" {
		t.Errorf("constraints on () = %q, want Compute_zero", got)
	}
}

func TestExpr_IfConstraints(t *testing.T) {
	branches, err := translateExpr(t, "if c { a } else { b }", argScope(t, "a", "b", "c"))
	if err != nil {
		t.Fatal(err)
	}
	if len(branches) != 1 {
		t.Fatalf("if produced %d branches, want 1", len(branches))
	}
	if got, want := branches[0].Scope.Constraints(ir.V("c")).String(), "Nat + Compute_TIf<a, b>"; got != want {
		t.Errorf("constraints on c = %q, want %q", got, want)
	}
}

func TestExpr_Match(t *testing.T) {
	src := `match a {
		Zero => b,
		Succ(p @ Nat) => match b {
			Zero => a,
			Succ(q @ Nat) => f(p, q),
		},
	}`
	branches, err := translateExpr(t, src, argScope(t, "a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := branchTypes(branches), "b | Succ<p> | f<p, q>"; got != want {
		t.Fatalf("branches = %s, want %s", got, want)
	}

	first := branches[0].Scope
	if first.IsQuantifier("a") {
		t.Error("refined scrutinee is still a quantifier")
	}
	if got := first.Resolve("a").String(); got != "Zero" {
		t.Errorf("first arm: a = %s, want Zero", got)
	}
	if got := first.Constraints(ir.Apply("Zero")).String(); got != "Nat" {
		t.Errorf("first arm: constraints moved to Zero = %q, want Nat", got)
	}

	last := branches[2].Scope
	if got := strings.Join(last.Quantifiers(), ","); got != "p,q" {
		t.Errorf("last arm quantifiers = %s, want p,q", got)
	}
	if got, want := last.Constraints(ir.V("p")).String(), "Nat + Compute_f<q>"; got != want {
		t.Errorf("last arm constraints on p = %q, want %q", got, want)
	}
	if last.IsQuantifier("a") || last.IsQuantifier("b") {
		t.Error("refined scrutinees are still quantifiers")
	}
}

func TestExpr_MatchBranchCount(t *testing.T) {
	scope := argScope(t, "a", "b")
	arm := func(src string) int {
		branches, err := translateExpr(t, src, scope)
		if err != nil {
			t.Fatal(err)
		}
		return len(branches)
	}
	left := arm("match b { Zero => a, Succ(q @ Nat) => q }")
	right := arm("f(a)")
	total := arm("match a { Zero => match b { Zero => a, Succ(q @ Nat) => q }, Succ(p @ Nat) => f(a) }")
	if total != left+right {
		t.Errorf("match branches = %d, want %d + %d", total, left, right)
	}
}

func TestExpr_MatchRefinesTrackedArgs(t *testing.T) {
	scope := argScope(t, "a", "b")
	scope.Track(ir.V("a"), ir.V("b"))
	branches, err := translateExpr(t, "match b { Zero => a, Succ(q @ Nat) => q }", scope)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, b := range branches {
		got = append(got, joinTypes(b.Scope.Tracked()))
	}
	if want := []string{"a, Zero", "a, Succ<q>"}; strings.Join(got, " | ") != strings.Join(want, " | ") {
		t.Errorf("tracked = %v, want %v", got, want)
	}
	if joinTypes(scope.Tracked()) != "a, b" {
		t.Errorf("input scope tracked = %s", joinTypes(scope.Tracked()))
	}
}

func TestExpr_MatchThroughAlias(t *testing.T) {
	src := `{
		let y = a;
		match y { Zero => a, Succ(p @ Nat) => (a, y) }
	}`
	scope := argScope(t, "a", "b")
	scope.Track(ir.V("a"), ir.V("b"))
	branches, err := translateExpr(t, src, scope)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := branchTypes(branches), "Zero | (Succ<p>, Succ<p>)"; got != want {
		t.Errorf("branches = %s, want %s", got, want)
	}
	for _, b := range branches {
		if b.Scope.IsQuantifier("a") {
			t.Errorf("%s: aliased scrutinee is still a quantifier", b.Type)
		}
	}
	if got := joinTypes(branches[1].Scope.Tracked()); got != "Succ<p>, b" {
		t.Errorf("tracked = %s, want Succ<p>, b", got)
	}
}

func TestExpr_MatchFieldShadowsArgument(t *testing.T) {
	branches, err := translateExpr(t, "match a { Zero => b, Succ(b @ Nat) => (b, f(b)) }", argScope(t, "a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := branchTypes(branches), "b | (__TYP__b, f<__TYP__b>)"; got != want {
		t.Fatalf("branches = %s, want %s", got, want)
	}
	s := branches[1].Scope
	if got := strings.Join(s.Quantifiers(), ","); got != "b,__TYP__b" {
		t.Errorf("quantifiers = %s, want b,__TYP__b", got)
	}
	if got := s.Constraints(ir.V("b")).String(); got != "Nat" {
		t.Errorf("outer b constraints = %q, want Nat", got)
	}
	if got, want := s.Constraints(ir.V("__TYP__b")).String(), "Nat + Compute_f"; got != want {
		t.Errorf("field constraints = %q, want %q", got, want)
	}
}

func joinTypes(ts []ir.TypeExpr) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

func TestExpr_EmptyMatch(t *testing.T) {
	branches, err := translateExpr(t, "match a {}", argScope(t, "a"))
	if err != nil {
		t.Fatal(err)
	}
	if len(branches) != 0 {
		t.Errorf("empty match produced %d branches", len(branches))
	}
}

func TestExpr_LetForksBlock(t *testing.T) {
	src := `{
		let c: Nat = match a { Zero => b, Succ(p @ Nat) => p };
		f(c)
	}`
	branches, err := translateExpr(t, src, argScope(t, "a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := branchTypes(branches), "f<b> | f<p>"; got != want {
		t.Errorf("branches = %s, want %s", got, want)
	}
	if got, want := branches[1].Scope.Constraints(ir.V("p")).String(), "Nat + Compute_f"; got != want {
		t.Errorf("constraints on p = %q, want %q", got, want)
	}
}

func TestExpr_BlockBindingsDoNotLeak(t *testing.T) {
	scope := argScope(t, "a")
	scope.BindSubstitution("c", ir.Apply("One"))

	branches, err := translateExpr(t, "{ let c = a; let d = c; d }", scope)
	if err != nil {
		t.Fatal(err)
	}
	out := branches[0]
	if got := out.Type.String(); got != "a" {
		t.Errorf("type = %s, want a", got)
	}
	if got := out.Scope.Resolve("c").String(); got != "One" {
		t.Errorf("c after block = %s, want One", got)
	}
	if _, ok := out.Scope.Substitution("d"); ok {
		t.Error("d leaked out of the block")
	}
}

func TestExpr_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code typ.ErrorCode
		want string
	}{
		{"missing else", "if a { b }", typ.CodeMissingElseBranch, "else"},
		{"operator", "a * b", typ.CodeUnsupportedOperator, `"*"`},
		{"or operator", "a || b", typ.CodeUnsupportedOperator, `"||"`},
		{"literal", "1", typ.CodeUnsupportedExpressionForm, "literal 1"},
		{"method call", "a.f()", typ.CodeUnsupportedExpressionForm, "method call .f()"},
		{"field", "a.b", typ.CodeUnsupportedExpressionForm, "field access .b"},
		{"unary", "!a", typ.CodeUnsupportedExpressionForm, "unary !"},
		{"return", "return a", typ.CodeUnsupportedExpressionForm, "return"},
		{"qualified path", "a::b", typ.CodeUnsupportedExpressionForm, "qualified path a::b"},
		{"paren callee", "(f)(a)", typ.CodeInvalidCallee, "bare function name"},
		{"qualified callee", "m::f(a)", typ.CodeInvalidCallee, "bare function name"},
		{"call scrutinee", "match f(a) { Zero => a }", typ.CodeInvalidMatchScrutinee, "argument or variable"},
		{"unbound scrutinee", "match z { Zero => a }", typ.CodeInvalidMatchScrutinee, `"z"`},
		{"guard", "match a { Zero if b => a }", typ.CodeUnsupportedExpressionForm, "guards"},
		{"missing capability", "match a { Succ(p) => p }", typ.CodeMissingCapabilityAnnotation, "p @ Capability"},
		{"wildcard arm", "match a { _ => a }", typ.CodeUnsupportedPattern, "wildcard"},
		{"duplicate field", "match a { Pair(p @ Nat, p @ Nat) => p }", typ.CodeDuplicateQuantifier, `"p"`},
		{"missing initializer", "{ let c; c }", typ.CodeMissingInitializer, "initializer"},
		{"tuple binding", "{ let (c, d) = a; c }", typ.CodeInvalidBindingPattern, "plain identifier"},
		{"in-block item", "{ fn g() {} g() }", typ.CodeInBlockItemNotSupported, "fn g"},
		{"reference annotation", "{ let c: &Nat = a; c }", typ.CodeUnsupportedTypeForm, "reference"},
		{"error in branch", "match a { Zero => a, Succ(p @ Nat) => p.x }", typ.CodeUnsupportedExpressionForm, "field access"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := translateExpr(t, tt.src, argScope(t, "a", "b"))
			if got := typ.CodeOf(err); got != tt.code {
				t.Fatalf("code = %q (err %v), want %q", got, err, tt.code)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}
