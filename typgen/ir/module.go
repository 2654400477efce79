package ir

import "fmt"

// Module is the complete set of declarations generated from one input file.
type Module struct {
	// Name is the output name, usually the input file's base name without extension.
	Name string

	// Source is the input file path.
	Source string

	// Decls contains the generated declarations in emission order: for every
	// item, its traits and markers come before implementations and aliases.
	Decls []Decl

	// Warnings contains non-fatal issues encountered during translation.
	Warnings []Warning
}

// Add appends declarations to the module.
func (m *Module) Add(decls ...Decl) {
	m.Decls = append(m.Decls, decls...)
}

// AddWarning adds a warning to the module.
func (m *Module) AddWarning(w Warning) {
	m.Warnings = append(m.Warnings, w)
}

// Find looks up a named declaration. Returns nil if not found.
func (m *Module) Find(name string) Decl {
	for _, d := range m.Decls {
		if d.DeclName() == name {
			return d
		}
	}
	return nil
}

// Count returns the number of declarations of the given kind.
func (m *Module) Count(kind DeclKind) int {
	n := 0
	for _, d := range m.Decls {
		if d.Kind() == kind {
			n++
		}
	}
	return n
}

// Validate checks the module for structural issues.
// Returns all validation errors found (not just the first).
//
// Implementations of traits that are not declared in the module are allowed:
// operator traits such as TAdd come from the host prelude.
func (m *Module) Validate() []error {
	var errs []error

	names := make(map[string]DeclKind)
	for _, d := range m.Decls {
		name := d.DeclName()
		if d.Kind() == DeclImpl {
			impl := d.(*ImplDecl)
			if impl.For == nil {
				errs = append(errs, &ValidationError{
					Code:    "missing_impl_type",
					Message: "implementation of " + impl.Trait.String() + " has no implementing type",
				})
			}
			errs = append(errs, validateParams("impl "+impl.Trait.String(), impl.Params)...)
			continue
		}
		if name == "" {
			errs = append(errs, &ValidationError{
				Code:    "missing_name",
				Message: fmt.Sprintf("%s declaration has no name", d.Kind()),
			})
			continue
		}
		// Traits and types live in the same namespace.
		if prev, ok := names[name]; ok {
			errs = append(errs, &ValidationError{
				Code:    "duplicate_decl",
				Message: fmt.Sprintf("duplicate declaration name: %s (%s and %s)", name, prev, d.Kind()),
			})
		}
		names[name] = d.Kind()

		switch d := d.(type) {
		case *TraitDecl:
			errs = append(errs, validateParams("trait "+name, d.Params)...)
		case *MarkerDecl:
			errs = append(errs, validateParams("marker "+name, d.Params)...)
		case *AliasDecl:
			errs = append(errs, validateParams("alias "+name, d.Params)...)
			if d.Type == nil {
				errs = append(errs, &ValidationError{
					Code:    "missing_alias_type",
					Message: "alias " + name + " has no target type",
				})
			}
		}
	}
	return errs
}

func validateParams(context string, params []TypeParam) []error {
	var errs []error
	seen := make(map[string]bool)
	for _, p := range params {
		if seen[p.Name] {
			errs = append(errs, &ValidationError{
				Code:    "duplicate_param",
				Message: context + " declares type parameter " + p.Name + " twice",
			})
		}
		seen[p.Name] = true
	}
	return errs
}

// ValidationError represents a module validation error.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
