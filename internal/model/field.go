package model

// Modifier flags a property of a struct field.
type Modifier uint8

const (
	// Unexported marks a field whose name starts with a lower-case letter.
	Unexported Modifier = 1 << iota
	// Embedded marks a field promoted from an embedded struct.
	Embedded
	// Ignored marks a field tagged to be skipped by the generator.
	Ignored
)

// Has reports whether all bits of m are set.
func (m Modifier) Has(flag Modifier) bool {
	return m&flag == flag
}

// FieldDescriptor represents a single field within a struct.
type FieldDescriptor struct {
	// Name is the field name.
	Name string
	// Type is the declared type of the field.
	Type *TypeDescriptor
	// Modifiers holds the field's flags.
	Modifiers Modifier
	// PkgPath is the package declaring the field; it decides visibility of unexported fields.
	PkgPath string
}

// Accessible reports whether generated code in pkgPath may read and write the field.
func (f *FieldDescriptor) Accessible(pkgPath string) bool {
	if f == nil || f.Modifiers.Has(Ignored) {
		return false
	}
	if f.Modifiers.Has(Unexported) {
		return f.PkgPath == pkgPath
	}
	return true
}

// FindField returns the field with exactly the given name, or nil.
func FindField(fields []*FieldDescriptor, name string) *FieldDescriptor {
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}
