package syntax

import (
	"go/token"
	"strings"
)

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() token.Position
}

type node struct {
	pos token.Position
}

func (n node) Pos() token.Position { return n.pos }

// File is a parsed source file.
type File struct {
	Filename string

	// Attrs are the inner attributes (#![...]) at the top of the file.
	Attrs []*Attribute

	Items []Item
}

// Attribute is an outer (#[...]) or inner (#![...]) attribute.
// Args holds key = value pairs of a list-style attribute such as
// #![typ(prefix = "__X__", debug)]; a bare flag is recorded with value "true".
type Attribute struct {
	node
	Inner bool
	Path  *Path
	Args  []AttrArg
}

// AttrArg is a single key = value argument of an attribute.
type AttrArg struct {
	Key   string
	Value string
	Pos   token.Position
}

// Path is a possibly qualified name such as a::B<C>.
type Path struct {
	node
	Global   bool
	Segments []*PathSegment
}

// PathSegment is one segment of a path, with its generic arguments.
type PathSegment struct {
	Name string
	Args []Type
}

// Ident returns the path's name when it is a single segment without generic arguments.
func (p *Path) Ident() (string, bool) {
	if p == nil || p.Global || len(p.Segments) != 1 || len(p.Segments[0].Args) != 0 {
		return "", false
	}
	return p.Segments[0].Name, true
}

// Last returns the final segment.
func (p *Path) Last() *PathSegment {
	return p.Segments[len(p.Segments)-1]
}

func (p *Path) String() string {
	var b strings.Builder
	if p.Global {
		b.WriteString("::")
	}
	for i, seg := range p.Segments {
		if i > 0 {
			b.WriteString("::")
		}
		b.WriteString(seg.Name)
		if len(seg.Args) > 0 {
			b.WriteString("<…>")
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Types

// Type is a syntactic type.
type Type interface {
	Node
	typeNode()
}

// PathType is a named type: Foo, a::Bar<T>.
type PathType struct {
	node
	Path *Path
}

// InferType is the placeholder type _.
type InferType struct {
	node
}

// TraitObjectType is a bound union: dyn A + B (Dyn) or impl A + B.
type TraitObjectType struct {
	node
	Dyn    bool
	Bounds []*TypeBound
}

// RefType is &T or &mut T.
type RefType struct {
	node
	Mut      bool
	Lifetime string
	Elem     Type
}

// TupleType is (A, B); the empty tuple is the unit type.
type TupleType struct {
	node
	Elems []Type
}

// ArrayType is [T] (Len nil) or [T; N].
type ArrayType struct {
	node
	Elem Type
	Len  Expr
}

func (*PathType) typeNode()        {}
func (*InferType) typeNode()       {}
func (*TraitObjectType) typeNode() {}
func (*RefType) typeNode()         {}
func (*TupleType) typeNode()       {}
func (*ArrayType) typeNode()       {}

// TypeBound is a single bound: a trait path, or a lifetime when Lifetime is set.
type TypeBound struct {
	node
	Lifetime string
	Path     *Path
}

// ---------------------------------------------------------------------------
// Generics

// GenericKind distinguishes type, lifetime and const generic parameters.
type GenericKind int

const (
	GenericType GenericKind = iota
	GenericLifetime
	GenericConst
)

// GenericParam is a single generic parameter.
type GenericParam struct {
	node
	Kind   GenericKind
	Name   string
	Bounds []*TypeBound // type and lifetime params
	Type   Type         // const params
}

// WherePredicate is a single "T: A + B" clause.
type WherePredicate struct {
	node
	Type   Type
	Bounds []*TypeBound
}

// Generics holds a generic parameter list and where clause.
type Generics struct {
	Params []*GenericParam
	Where  []*WherePredicate
}

// ---------------------------------------------------------------------------
// Items

// Item is a top-level or impl-level declaration.
type Item interface {
	Node
	ItemKind() string
	itemNode()
}

// EnumItem is an enum declaration.
type EnumItem struct {
	node
	Attrs    []*Attribute
	Vis      string
	Name     string
	Generics Generics
	Variants []*Variant
}

// Variant is one enum variant.
type Variant struct {
	node
	Name   string
	Fields Fields
}

// FieldStyle is the shape of a field list.
type FieldStyle int

const (
	UnitFields FieldStyle = iota
	TupleFields
	NamedFields
)

// Fields is the field list of a struct or variant.
type Fields struct {
	Style FieldStyle
	List  []*Field
}

// Field is a single field. Name is empty for positional fields.
type Field struct {
	node
	Vis  string
	Name string
	Type Type
}

// StructItem is a struct declaration.
type StructItem struct {
	node
	Attrs    []*Attribute
	Vis      string
	Name     string
	Generics Generics
	Fields   Fields
}

// FnItem is a free function, or a method inside an impl block.
type FnItem struct {
	node
	Attrs []*Attribute
	Vis   string
	Sig   *Signature
	Body  *BlockExpr
}

// Signature is a function signature.
type Signature struct {
	node
	Name     string
	Generics Generics
	Params   []*Param
	Output   Type // nil when there is no explicit return type
}

// Param is a function parameter: either a receiver or a typed pattern.
type Param struct {
	node
	Receiver *Receiver
	Pat      Pat
	Type     Type
}

// Receiver is self, mut self, &self, &mut self or self: T.
type Receiver struct {
	node
	Ref      bool
	Mut      bool
	Lifetime string
	Type     Type
}

// ImplItem is an impl block.
type ImplItem struct {
	node
	Attrs    []*Attribute
	Generics Generics
	Trait    *Path // nil for inherent impls
	SelfType Type
	Members  []Item
}

// AssocTypeItem is "type Name = T;" inside an impl block.
type AssocTypeItem struct {
	node
	Name     string
	Generics Generics
	Type     Type
}

// OtherItem records an item the parser recognises but does not model
// (use, trait, mod, const, static, type alias, macro invocations).
type OtherItem struct {
	node
	Kind string
	Name string
}

func (*EnumItem) ItemKind() string      { return "enum" }
func (*StructItem) ItemKind() string    { return "struct" }
func (*FnItem) ItemKind() string        { return "fn" }
func (*ImplItem) ItemKind() string      { return "impl" }
func (*AssocTypeItem) ItemKind() string { return "type" }
func (o *OtherItem) ItemKind() string   { return o.Kind }

func (*EnumItem) itemNode()      {}
func (*StructItem) itemNode()    {}
func (*FnItem) itemNode()        {}
func (*ImplItem) itemNode()      {}
func (*AssocTypeItem) itemNode() {}
func (*OtherItem) itemNode()     {}

// ---------------------------------------------------------------------------
// Statements

// Stmt is a statement inside a block.
type Stmt interface {
	Node
	stmtNode()
}

// LetStmt is a local binding. Init is nil when there is no initializer.
// An annotated binding (let x: T = ...) has a *TypedPat pattern.
type LetStmt struct {
	node
	Pat  Pat
	Init Expr
}

// ItemStmt is an item declared inside a block.
type ItemStmt struct {
	node
	Item Item
}

// ExprStmt is an expression statement. Semi reports a trailing semicolon.
type ExprStmt struct {
	node
	X    Expr
	Semi bool
}

func (*LetStmt) stmtNode()  {}
func (*ItemStmt) stmtNode() {}
func (*ExprStmt) stmtNode() {}

// ---------------------------------------------------------------------------
// Expressions

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// PathExpr is a path used as a value: x, a::b.
type PathExpr struct {
	node
	Path *Path
}

// LitKind is the kind of a literal.
type LitKind int

const (
	LitInt LitKind = iota
	LitString
	LitChar
	LitBool
)

// LitExpr is a literal.
type LitExpr struct {
	node
	Kind  LitKind
	Value string
}

// TupleExpr is (a, b); the empty tuple is the unit value.
type TupleExpr struct {
	node
	Elems []Expr
}

// ParenExpr is a parenthesized expression.
type ParenExpr struct {
	node
	X Expr
}

// BlockExpr is { stmts; tail }.
type BlockExpr struct {
	node
	Stmts []Stmt
	Tail  Expr // nil when the block has no trailing expression
}

// IfExpr is if cond { … } [else …]. Else is nil, a *BlockExpr or an *IfExpr.
type IfExpr struct {
	node
	Cond Expr
	Then *BlockExpr
	Else Expr
}

// MatchExpr is match x { arms }.
type MatchExpr struct {
	node
	X    Expr
	Arms []*Arm
}

// Arm is a single match arm.
type Arm struct {
	node
	Pat   Pat
	Guard Expr
	Body  Expr
}

// CallExpr is f(args).
type CallExpr struct {
	node
	Fun  Expr
	Args []Expr
}

// MethodCallExpr is recv.name(args).
type MethodCallExpr struct {
	node
	Recv Expr
	Name string
	Args []Expr
}

// FieldExpr is x.name.
type FieldExpr struct {
	node
	X    Expr
	Name string
}

// BinaryExpr is x op y.
type BinaryExpr struct {
	node
	Op Kind
	X  Expr
	Y  Expr
}

// UnaryExpr is op x, where op is one of -, !, *, & or &mut.
type UnaryExpr struct {
	node
	Op string
	X  Expr
}

// ReturnExpr is return [x].
type ReturnExpr struct {
	node
	X Expr
}

func (*PathExpr) exprNode()       {}
func (*LitExpr) exprNode()        {}
func (*TupleExpr) exprNode()      {}
func (*ParenExpr) exprNode()      {}
func (*BlockExpr) exprNode()      {}
func (*IfExpr) exprNode()         {}
func (*MatchExpr) exprNode()      {}
func (*CallExpr) exprNode()       {}
func (*MethodCallExpr) exprNode() {}
func (*FieldExpr) exprNode()      {}
func (*BinaryExpr) exprNode()     {}
func (*UnaryExpr) exprNode()      {}
func (*ReturnExpr) exprNode()     {}

// ---------------------------------------------------------------------------
// Patterns

// Pat is a pattern.
type Pat interface {
	Node
	patNode()
}

// IdentPat binds a name, optionally followed by "@ Sub".
type IdentPat struct {
	node
	Name string
	Mut  bool
	Ref  bool
	Sub  Pat
}

// WildcardPat is _.
type WildcardPat struct {
	node
}

// PathPat is a path used as a pattern, such as a unit variant A::B.
type PathPat struct {
	node
	Path *Path
}

// TupleStructPat is Variant(p, …).
type TupleStructPat struct {
	node
	Path  *Path
	Elems []Pat
}

// TuplePat is (p, …).
type TuplePat struct {
	node
	Elems []Pat
}

// TypedPat is p: T, used by let bindings and parameters.
type TypedPat struct {
	node
	Pat  Pat
	Type Type
}

// LitPat is a literal pattern.
type LitPat struct {
	node
	Lit *LitExpr
}

func (*IdentPat) patNode()       {}
func (*WildcardPat) patNode()    {}
func (*PathPat) patNode()        {}
func (*TupleStructPat) patNode() {}
func (*TuplePat) patNode()       {}
func (*TypedPat) patNode()       {}
func (*LitPat) patNode()         {}
