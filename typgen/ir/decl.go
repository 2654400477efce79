package ir

// TypeParam is a type parameter of a generated declaration.
type TypeParam struct {
	Name   string
	Bounds BoundSet
}

// Predicate is a single where-clause entry: Type must satisfy Bounds.
type Predicate struct {
	Type   TypeExpr
	Bounds BoundSet
}

// AssocType is an associated type. In a trait it declares the name and its
// bounds; in an implementation Value holds the assigned type.
type AssocType struct {
	Name   string
	Bounds BoundSet
	Value  TypeExpr
}

// TraitDecl declares a capability trait.
type TraitDecl struct {
	// Name is the trait name.
	Name string

	// Vis is the visibility of the source item ("pub", "pub(crate)" or "").
	Vis string

	// Params are the trait's type parameters.
	Params []TypeParam

	// Assoc lists associated types. Enum traits have none; the
	// computation trait of a function declares Output.
	Assoc []AssocType

	// Source location of the originating item.
	Source Source
}

// Kind returns DeclTrait.
func (*TraitDecl) Kind() DeclKind { return DeclTrait }

// DeclName returns the trait name.
func (d *TraitDecl) DeclName() string { return d.Name }

// Src returns the originating item's location.
func (d *TraitDecl) Src() Source { return d.Source }

func (*TraitDecl) sealed() {}

// MarkerDecl declares a zero-sized marker type, one per enum variant or struct.
type MarkerDecl struct {
	Name   string
	Vis    string
	Params []TypeParam
	Source Source
}

// Kind returns DeclMarker.
func (*MarkerDecl) Kind() DeclKind { return DeclMarker }

// DeclName returns the marker name.
func (d *MarkerDecl) DeclName() string { return d.Name }

// Src returns the originating item's location.
func (d *MarkerDecl) Src() Source { return d.Source }

func (*MarkerDecl) sealed() {}

// ImplDecl implements Trait for a type.
type ImplDecl struct {
	// Params are the implementation's quantifiers.
	Params []TypeParam

	// Trait is the implemented trait.
	Trait Bound

	// For is the implementing type.
	For TypeExpr

	// Where lists the accumulated constraints.
	Where []Predicate

	// Assoc assigns associated types.
	Assoc []AssocType

	Source Source
}

// Kind returns DeclImpl.
func (*ImplDecl) Kind() DeclKind { return DeclImpl }

// DeclName returns "": implementations are unnamed.
func (*ImplDecl) DeclName() string { return "" }

// Src returns the originating item's location.
func (d *ImplDecl) Src() Source { return d.Source }

func (*ImplDecl) sealed() {}

// AliasDecl declares a type alias, used to name the result of a computation.
type AliasDecl struct {
	Name   string
	Vis    string
	Params []TypeParam
	Type   TypeExpr
	Source Source
}

// Kind returns DeclAlias.
func (*AliasDecl) Kind() DeclKind { return DeclAlias }

// DeclName returns the alias name.
func (d *AliasDecl) DeclName() string { return d.Name }

// Src returns the originating item's location.
func (d *AliasDecl) Src() Source { return d.Source }

func (*AliasDecl) sealed() {}
