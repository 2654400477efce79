package rust

import (
	"bytes"
	"strings"
	"testing"

	"github.com/broady/typ/typgen/ir"
)

func TestEmitter_EmitDecl(t *testing.T) {
	nat := ir.NewBoundSet(ir.B("Nat"))
	tests := []struct {
		name    string
		decl    ir.Decl
		config  GeneratorConfig
		want    []string
		notWant []string
	}{
		{
			name: "enum trait",
			decl: &ir.TraitDecl{Name: "Nat", Vis: "pub"},
			want: []string{"pub trait Nat {}"},
		},
		{
			name: "compute trait",
			decl: &ir.TraitDecl{
				Name:   "Compute_add",
				Params: []ir.TypeParam{{Name: "b"}},
				Assoc:  []ir.AssocType{{Name: "Output", Bounds: nat}},
			},
			want:    []string{"trait Compute_add<b> {", "    type Output: Nat;", "}"},
			notWant: []string{"pub "},
		},
		{
			name: "unbounded output",
			decl: &ir.TraitDecl{Name: "Compute_f", Assoc: []ir.AssocType{{Name: "Output"}}},
			want: []string{"trait Compute_f {\n    type Output;\n}"},
		},
		{
			name: "unit marker",
			decl: &ir.MarkerDecl{Name: "Zero", Vis: "pub(crate)"},
			want: []string{"pub(crate) struct Zero;"},
		},
		{
			name: "single param marker",
			decl: &ir.MarkerDecl{Name: "Succ", Vis: "pub", Params: []ir.TypeParam{{Name: "T0", Bounds: nat}}},
			want: []string{"pub struct Succ<T0: Nat>(::core::marker::PhantomData<(T0,)>);"},
		},
		{
			name: "multi param marker",
			decl: &ir.MarkerDecl{Name: "Pair", Params: []ir.TypeParam{
				{Name: "T0", Bounds: ir.NewBoundSet(ir.B("Nat"), ir.B("Bit"))},
				{Name: "T1"},
			}},
			want: []string{"struct Pair<T0: Nat + Bit, T1>(::core::marker::PhantomData<(T0, T1)>);"},
		},
		{
			name: "empty impl",
			decl: &ir.ImplDecl{Trait: ir.B("Nat"), For: ir.Apply("Zero")},
			want: []string{"impl Nat for Zero {}"},
		},
		{
			name: "marker impl",
			decl: &ir.ImplDecl{
				Params: []ir.TypeParam{{Name: "T0"}},
				Trait:  ir.B("Nat"),
				For:    ir.Apply("Succ", ir.V("T0")),
				Where:  []ir.Predicate{{Type: ir.V("T0"), Bounds: nat}},
			},
			want: []string{"impl<T0> Nat for Succ<T0>\nwhere\n    T0: Nat,\n{}"},
		},
		{
			name: "compute impl",
			decl: &ir.ImplDecl{
				Params: []ir.TypeParam{{Name: "b"}, {Name: "p"}},
				Trait:  ir.B("Compute_add", ir.V("b")),
				For:    ir.Apply("Succ", ir.V("p")),
				Where: []ir.Predicate{
					{Type: ir.V("p"), Bounds: ir.NewBoundSet(ir.B("Nat"), ir.B("Compute_add", ir.V("b")))},
				},
				Assoc: []ir.AssocType{{Name: "Output", Value: ir.Apply("Succ", ir.Apply("add", ir.V("p"), ir.V("b")))}},
			},
			want: []string{
				"impl<b, p> Compute_add<b> for Succ<p>\nwhere\n",
				"    p: Nat + Compute_add<b>,\n{\n",
				"    type Output = Succ<add<p, b>>;\n}",
			},
		},
		{
			name: "impl without where",
			decl: &ir.ImplDecl{
				Trait: ir.B("Compute_zero"),
				For:   ir.Unit(),
				Assoc: []ir.AssocType{{Name: "Output", Value: ir.Apply("Zero")}},
			},
			want: []string{"impl Compute_zero for () {\n    type Output = Zero;\n}"},
		},
		{
			name: "alias",
			decl: &ir.AliasDecl{
				Name:   "add",
				Vis:    "pub",
				Params: []ir.TypeParam{{Name: "a"}, {Name: "b"}},
				Type:   &ir.Projection{Self: ir.V("a"), Trait: ir.B("Compute_add", ir.V("b")), Name: "Output"},
			},
			want: []string{"pub type add<a, b> = <a as Compute_add<b>>::Output;"},
		},
		{
			name: "tab indent",
			decl: &ir.TraitDecl{Name: "Compute_f", Assoc: []ir.AssocType{{Name: "Output"}}},
			config: GeneratorConfig{IndentStyle: "tab"},
			want:   []string{"\ttype Output;"},
		},
		{
			name:   "two space indent",
			decl:   &ir.TraitDecl{Name: "Compute_f", Assoc: []ir.AssocType{{Name: "Output"}}},
			config: GeneratorConfig{IndentStyle: "space", IndentSize: 2},
			want:   []string{"\n  type Output;"},
		},
		{
			name:   "source comment",
			decl:   &ir.TraitDecl{Name: "Nat", Source: ir.Source{File: "nat.rs", Line: 3, Column: 1}},
			config: GeneratorConfig{EmitComments: true},
			want:   []string{"// nat.rs:3:1\ntrait Nat {}"},
		},
		{
			name:    "no comment without source",
			decl:    &ir.TraitDecl{Name: "Nat"},
			config:  GeneratorConfig{EmitComments: true},
			notWant: []string{"//"},
		},
		{
			name: "keyword names",
			decl: &ir.ImplDecl{
				Params: []ir.TypeParam{{Name: "type"}},
				Trait:  ir.B("Compute_f"),
				For:    ir.V("type"),
				Assoc:  []ir.AssocType{{Name: "Output", Value: &ir.App{Path: ir.PathOf("crate", "match"), Args: nil}}},
			},
			want: []string{"impl<r#type> Compute_f for r#type", "type Output = crate::r#match;"},
		},
		{
			name: "global path and dyn",
			decl: &ir.AliasDecl{
				Name: "D",
				Type: &ir.App{Path: ir.Path{Global: true, Segments: []string{"core", "Box"}}, Args: []ir.TypeExpr{&ir.Dyn{Bounds: nat}}},
			},
			want: []string{"type D = ::core::Box<dyn Nat>;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if _, err := NewEmitter(tt.config).EmitDecl(&buf, tt.decl); err != nil {
				t.Fatalf("EmitDecl: %v", err)
			}
			got := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q\ngot:\n%s", w, got)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("output should not contain %q\ngot:\n%s", nw, got)
				}
			}
		})
	}
}

func TestEmitter_Warnings(t *testing.T) {
	var buf bytes.Buffer
	src := ir.Source{File: "a.rs", Line: 1, Column: 1}
	warnings, err := NewEmitter(GeneratorConfig{}).EmitDecl(&buf, &ir.MarkerDecl{Name: "Self", Source: src})
	if err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "struct Self_;" {
		t.Errorf("output = %q", got)
	}
	if len(warnings) != 1 || warnings[0].Code != "renamed_identifier" || warnings[0].Source == nil {
		t.Errorf("warnings = %+v", warnings)
	}

	buf.Reset()
	warnings, _ = NewEmitter(GeneratorConfig{}).EmitDecl(&buf, &ir.TraitDecl{Name: "Nat"})
	if len(warnings) != 0 {
		t.Errorf("valid name produced warnings %+v", warnings)
	}
}

func TestEmitter_Errors(t *testing.T) {
	tests := []struct {
		name string
		decl ir.Decl
		want string
	}{
		{"impl without type", &ir.ImplDecl{Trait: ir.B("Nat")}, "no implementing type"},
		{"impl assoc without value", &ir.ImplDecl{Trait: ir.B("F"), For: ir.Unit(), Assoc: []ir.AssocType{{Name: "Output"}}}, "has no value"},
		{"alias without type", &ir.AliasDecl{Name: "a"}, "has no type"},
		{"empty path", &ir.AliasDecl{Name: "a", Type: &ir.App{}}, "empty path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			_, err := NewEmitter(GeneratorConfig{}).EmitDecl(&buf, tt.decl)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestEscaping(t *testing.T) {
	tests := []struct {
		fn   func(string) string
		in   string
		want string
	}{
		{escapeDeclName, "Nat", "Nat"},
		{escapeDeclName, "type", "r#type"},
		{escapeDeclName, "self", "self_"},
		{escapeDeclName, "Self", "Self_"},
		{escapeDeclName, "1st", "_1st"},
		{escapeDeclName, "a-b", "a_b"},
		{escapeDeclName, "_", "__"},
		{escapeSegment, "crate", "crate"},
		{escapeSegment, "match", "r#match"},
	}
	for _, tt := range tests {
		if got := tt.fn(tt.in); got != tt.want {
			t.Errorf("escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
