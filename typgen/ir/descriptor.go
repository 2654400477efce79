package ir

// ExprKind identifies the category of a type expression.
type ExprKind int

const (
	KindVar        ExprKind = iota // Type variable (quantifier or unresolved name)
	KindApp                        // Named type applied to zero or more arguments
	KindTuple                      // Tuple, including the unit type ()
	KindDyn                        // Capability object bounded by a BoundSet
	KindProjection                 // <Self as Trait>::Name
)

// String returns the string representation of the expression kind.
func (k ExprKind) String() string {
	switch k {
	case KindVar:
		return "Var"
	case KindApp:
		return "App"
	case KindTuple:
		return "Tuple"
	case KindDyn:
		return "Dyn"
	case KindProjection:
		return "Projection"
	default:
		return "Unknown"
	}
}

// DeclKind identifies the category of a generated declaration.
type DeclKind int

const (
	DeclTrait  DeclKind = iota // Capability trait
	DeclMarker                 // Zero-sized marker type
	DeclImpl                   // Trait implementation
	DeclAlias                  // Type alias
)

// String returns the string representation of the declaration kind.
func (k DeclKind) String() string {
	switch k {
	case DeclTrait:
		return "Trait"
	case DeclMarker:
		return "Marker"
	case DeclImpl:
		return "Impl"
	case DeclAlias:
		return "Alias"
	default:
		return "Unknown"
	}
}

// TypeExpr is the base interface for all type expressions.
// Type expressions are immutable; use Replace to derive new ones.
type TypeExpr interface {
	// Kind returns the expression kind for type switching.
	Kind() ExprKind

	// String renders the expression in host-language syntax. Two expressions
	// are structurally identical when their renderings are equal.
	String() string

	// Ensure only types in this package can implement TypeExpr.
	sealed()
}

// Decl is the base interface for all generated declarations.
type Decl interface {
	// Kind returns the declaration kind for type switching.
	Kind() DeclKind

	// DeclName returns the declared name, or "" for implementations.
	DeclName() string

	// Src returns the location of the item the declaration was generated from.
	Src() Source

	sealed()
}
