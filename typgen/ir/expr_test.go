package ir

import "testing"

func TestTypeExpr_String(t *testing.T) {
	tests := []struct {
		name string
		expr TypeExpr
		want string
	}{
		{"var", V("a"), "a"},
		{"app no args", Apply("Zero"), "Zero"},
		{"app", Apply("Succ", V("m")), "Succ<m>"},
		{"nested app", Apply("add", Apply("Succ", V("m")), V("b")), "add<Succ<m>, b>"},
		{"global path", &App{Path: Path{Global: true, Segments: []string{"core", "marker", "PhantomData"}}}, "::core::marker::PhantomData"},
		{"unit", Unit(), "()"},
		{"one tuple", TupleOf(V("a")), "(a,)"},
		{"tuple", TupleOf(V("a"), Apply("Zero")), "(a, Zero)"},
		{"dyn", &Dyn{Bounds: NewBoundSet(B("Nat"), B("Clone"))}, "dyn Nat + Clone"},
		{"projection", &Projection{Self: V("a"), Trait: B("Compute_add", V("b")), Name: "Output"}, "<a as Compute_add<b>>::Output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypeExpr_Kind(t *testing.T) {
	tests := []struct {
		expr TypeExpr
		want ExprKind
	}{
		{V("a"), KindVar},
		{Apply("A"), KindApp},
		{Unit(), KindTuple},
		{&Dyn{}, KindDyn},
		{&Projection{Self: V("a"), Name: "Output"}, KindProjection},
	}
	for _, tt := range tests {
		if got := tt.expr.Kind(); got != tt.want {
			t.Errorf("%T.Kind() = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestExprKind_String(t *testing.T) {
	if KindProjection.String() != "Projection" {
		t.Errorf("KindProjection.String() = %q", KindProjection.String())
	}
	if ExprKind(99).String() != "Unknown" {
		t.Errorf("unknown kind String() = %q", ExprKind(99).String())
	}
	if DeclAlias.String() != "Alias" {
		t.Errorf("DeclAlias.String() = %q", DeclAlias.String())
	}
}

func TestKeyAndEqual(t *testing.T) {
	a := Apply("Succ", V("m"))
	b := Apply("Succ", V("m"))
	if !Equal(a, b) {
		t.Error("structurally identical expressions should be equal")
	}
	if Equal(a, Apply("Succ", V("n"))) {
		t.Error("different arguments should not be equal")
	}
	if Key(nil) != "" {
		t.Errorf("Key(nil) = %q, want empty", Key(nil))
	}
}

func TestReplace(t *testing.T) {
	a := V("a")
	succ := Apply("Succ", V("m"))

	tests := []struct {
		name string
		in   TypeExpr
		want string
	}{
		{"whole", a, "Succ<m>"},
		{"inside app", Apply("add", a, V("b")), "add<Succ<m>, b>"},
		{"inside tuple", TupleOf(a, a), "(Succ<m>, Succ<m>)"},
		{"inside dyn bound", &Dyn{Bounds: NewBoundSet(B("Compute_f", a))}, "dyn Compute_f<Succ<m>>"},
		{"inside projection", &Projection{Self: a, Trait: B("Compute_f", a), Name: "Output"}, "<Succ<m> as Compute_f<Succ<m>>>::Output"},
		{"untouched", Apply("add", V("b")), "add<b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Replace(tt.in, a, succ).String(); got != tt.want {
				t.Errorf("Replace() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReplace_KeepsIdentityWhenUnchanged(t *testing.T) {
	in := Apply("add", V("b"), V("c"))
	if got := Replace(in, V("a"), Unit()); got != TypeExpr(in) {
		t.Error("Replace should return the original expression when nothing matches")
	}
}

func TestReplace_DoesNotMutate(t *testing.T) {
	in := Apply("add", V("a"))
	Replace(in, V("a"), Unit())
	if in.String() != "add<a>" {
		t.Errorf("Replace mutated its input: %s", in)
	}
}
