// Package typ holds the error taxonomy shared by the typ parser, translator and generator.
package typ

import (
	"errors"
	"fmt"
	"go/token"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorCode represents a machine-readable error kind.
type ErrorCode string

const (
	CodeSyntaxError ErrorCode = "syntax_error"

	// Item translation.
	CodeUnsupportedItemKind     ErrorCode = "unsupported_item_kind"
	CodeTraitImplNotSupported   ErrorCode = "trait_impl_not_supported"
	CodeUnsupportedSelfType     ErrorCode = "unsupported_self_type"
	CodeInvalidReceiverPosition ErrorCode = "invalid_receiver_position"
	CodeAssocTypeNotSupported   ErrorCode = "assoc_type_not_supported"

	// Signatures and types.
	CodeLifetimeNotAllowed     ErrorCode = "lifetime_not_allowed"
	CodeConstGenericNotAllowed ErrorCode = "const_generic_not_allowed"
	CodeUnsupportedTypeForm    ErrorCode = "unsupported_type_form"
	CodeDuplicateQuantifier    ErrorCode = "duplicate_quantifier"

	// Function bodies.
	CodeInBlockItemNotSupported     ErrorCode = "in_block_item_not_supported"
	CodeMissingInitializer          ErrorCode = "missing_initializer"
	CodeInvalidBindingPattern       ErrorCode = "invalid_binding_pattern"
	CodeUnsupportedExpressionForm   ErrorCode = "unsupported_expression_form"
	CodeUnsupportedOperator         ErrorCode = "unsupported_operator"
	CodeMissingElseBranch           ErrorCode = "missing_else_branch"
	CodeInvalidMatchScrutinee       ErrorCode = "invalid_match_scrutinee"
	CodeInvalidCallee               ErrorCode = "invalid_callee"
	CodeMissingCapabilityAnnotation ErrorCode = "missing_capability_annotation"
	CodeUnsupportedPattern          ErrorCode = "unsupported_pattern"

	// Options and configuration.
	CodeInvalidOptions ErrorCode = "invalid_options"
)

// Error is a translation diagnostic anchored at a source location.
type Error struct {
	Code    ErrorCode
	Message string
	Pos     token.Position
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a new diagnostic.
func NewError(code ErrorCode, pos token.Position, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Pos:     pos,
	}
}

// Errorf creates a new diagnostic with a formatted message.
func Errorf(code ErrorCode, pos token.Position, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	}
}

// WithDetail returns a new Error with the key-value pair added to details.
func (e *Error) WithDetail(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Pos:     e.Pos,
		Details: details,
	}
}

// WithFile returns a copy of e whose position names the given file.
// Positions produced by the parser already carry a filename; this is used
// for errors raised before a file is known.
func (e *Error) WithFile(filename string) *Error {
	if e.Pos.Filename != "" {
		return e
	}
	cp := *e
	cp.Pos.Filename = filename
	return &cp
}

// CodeOf returns the code of the first *Error found in err's tree, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Errors flattens joined errors into a list of leaf errors in order.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range u.Unwrap() {
			out = append(out, Errors(e)...)
		}
		return out
	}
	return []error{err}
}

// FromValidation converts validator failures into a CodeInvalidOptions error.
// Other errors are returned unchanged.
func FromValidation(err error, pos token.Position) error {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}
	details := make(map[string]any)
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		msg := formatValidationError(ve)
		details[ve.Field()] = msg
		messages = append(messages, ve.Field()+": "+msg)
	}
	return &Error{
		Code:    CodeInvalidOptions,
		Message: strings.Join(messages, "; "),
		Pos:     pos,
		Details: details,
	}
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "excludesall":
		return fmt.Sprintf("must not contain any of %q", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
