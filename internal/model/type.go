// Package model defines the structural type model the mapper generator works on.
// It hides the complexity of the underlying go/types representation.
package model

import (
	"go/types"
	"strings"
)

// TypeKind is the closed set of shapes the generator distinguishes.
type TypeKind int

// Constants for the different kinds of types.
const (
	Unknown TypeKind = iota
	// Primitive is a basic type, or a named type whose underlying type is basic.
	Primitive
	// KnownValue is a configured atomic type that is copied as a unit.
	KnownValue
	// List is a slice.
	List
	// Set is a map[E]struct{}.
	Set
	// Class is a named struct type.
	Class
	// Opaque covers every other shape; it is copied as a unit.
	Opaque
)

func (k TypeKind) String() string {
	switch k {
	case Primitive:
		return "Primitive"
	case KnownValue:
		return "KnownValue"
	case List:
		return "List"
	case Set:
		return "Set"
	case Class:
		return "Class"
	case Opaque:
		return "Opaque"
	default:
		return "Unknown"
	}
}

// TypeDescriptor describes one type reference reachable from a stub.
type TypeDescriptor struct {
	// Kind is resolved once by the metadata provider.
	Kind TypeKind
	// Name is the simple name of a named or basic type. Empty for unnamed composites.
	Name string
	// PkgPath is the import path of a named type.
	PkgPath string
	// PkgName is the package name of a named type.
	PkgName string
	// Pointer reports one level of pointer indirection in front of a Class or KnownValue.
	Pointer bool
	// Elem is the element type of a List or Set.
	Elem *TypeDescriptor
	// Args holds the type arguments of an instantiated generic type.
	Args []*TypeDescriptor
	// Fields are the declared fields of a Class, promoted embedded fields included.
	// Left nil by the analyzer, which resolves fields lazily.
	Fields []*FieldDescriptor
	// Expr is the fully qualified type expression of an unnamed Opaque type.
	Expr string
	// Original is the go/types type this descriptor was built from, without
	// the pointer for Class and KnownValue descriptors.
	Original types.Type
}

// IsNamed reports whether the type was introduced with the 'type' keyword.
func (t *TypeDescriptor) IsNamed() bool {
	return t != nil && t.Name != "" && t.PkgPath != ""
}

// Key returns the canonical name of the type without its pointer.
func (t *TypeDescriptor) Key() string {
	if t == nil {
		return ""
	}
	if t.IsNamed() {
		var sb strings.Builder
		sb.WriteString(t.PkgPath)
		sb.WriteString(".")
		sb.WriteString(t.Name)
		if len(t.Args) > 0 {
			sb.WriteString("[")
			for i, arg := range t.Args {
				if i > 0 {
					sb.WriteString(",")
				}
				sb.WriteString(arg.CanonicalName())
			}
			sb.WriteString("]")
		}
		return sb.String()
	}
	switch t.Kind {
	case List:
		return "[]" + t.Elem.CanonicalName()
	case Set:
		return "map[" + t.Elem.CanonicalName() + "]struct{}"
	case Primitive:
		return t.Name
	}
	if t.Expr != "" {
		return t.Expr
	}
	return t.Name
}

// CanonicalName returns the fully qualified type text, generics and pointer included.
func (t *TypeDescriptor) CanonicalName() string {
	if t == nil {
		return ""
	}
	if t.Pointer {
		return "*" + t.Key()
	}
	return t.Key()
}

// SimpleName returns the name used to synthesize helper names.
// Unnamed lists and sets are named after their element.
func (t *TypeDescriptor) SimpleName() string {
	if t == nil {
		return ""
	}
	if t.Name != "" {
		return t.Name
	}
	switch t.Kind {
	case List:
		return t.Elem.SimpleName() + "s"
	case Set:
		return t.Elem.SimpleName() + "Set"
	}
	return "Value"
}

// IsCollection reports whether the type is a List or a Set.
func (t *TypeDescriptor) IsCollection() bool {
	return t != nil && (t.Kind == List || t.Kind == Set)
}

func (t *TypeDescriptor) String() string {
	if t == nil {
		return "nil"
	}
	return t.CanonicalName()
}
