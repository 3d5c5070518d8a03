package model

// ConversionKey uniquely identifies one generation request.
type ConversionKey struct {
	Target string
	Source string
}

// NewConversionKey builds the key for a (target, source) pair. Pointers are
// not part of the key because object helpers are pointer-normalized.
func NewConversionKey(target, source *TypeDescriptor) ConversionKey {
	return ConversionKey{Target: target.Key(), Source: source.Key()}
}

func (k ConversionKey) String() string {
	return k.Source + "->" + k.Target
}

// GeneratedMethod is the source text of one generated conversion function.
type GeneratedMethod struct {
	Key  ConversionKey
	Name string
	Text string
	// Calls lists the keys of the generated helpers this method calls, in call order.
	Calls []ConversionKey
}

// Metadata is the read side of the type metadata provider used during generation.
type Metadata interface {
	// FieldsOf returns the fields of a Class type in declared order.
	FieldsOf(t *TypeDescriptor) []*FieldDescriptor
	// IsPrimitive reports whether t is copied with plain assignment or conversion.
	IsPrimitive(t *TypeDescriptor) bool
}

// Declared serves metadata straight from descriptors whose Fields are already populated.
type Declared struct{}

// FieldsOf returns t.Fields.
func (Declared) FieldsOf(t *TypeDescriptor) []*FieldDescriptor {
	if t == nil {
		return nil
	}
	return t.Fields
}

// IsPrimitive reports whether t is Primitive.
func (Declared) IsPrimitive(t *TypeDescriptor) bool {
	return t != nil && t.Kind == Primitive
}
