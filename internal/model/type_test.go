package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeDescriptor_CanonicalName(t *testing.T) {
	item := &TypeDescriptor{Kind: Class, Name: "Item", PkgPath: "example.com/shop", PkgName: "shop"}
	itemPtr := &TypeDescriptor{Kind: Class, Name: "Item", PkgPath: "example.com/shop", PkgName: "shop", Pointer: true}
	str := &TypeDescriptor{Kind: Primitive, Name: "string"}

	testCases := []struct {
		name      string
		typ       *TypeDescriptor
		canonical string
		key       string
	}{
		{"primitive", str, "string", "string"},
		{"class", item, "example.com/shop.Item", "example.com/shop.Item"},
		{"pointer to class", itemPtr, "*example.com/shop.Item", "example.com/shop.Item"},
		{"list of pointers", &TypeDescriptor{Kind: List, Elem: itemPtr}, "[]*example.com/shop.Item", "[]*example.com/shop.Item"},
		{"set", &TypeDescriptor{Kind: Set, Elem: str}, "map[string]struct{}", "map[string]struct{}"},
		{
			"generic class",
			&TypeDescriptor{Kind: Class, Name: "Page", PkgPath: "example.com/shop", Args: []*TypeDescriptor{item, str}},
			"example.com/shop.Page[example.com/shop.Item,string]",
			"example.com/shop.Page[example.com/shop.Item,string]",
		},
		{"opaque", &TypeDescriptor{Kind: Opaque, Expr: "map[string]int"}, "map[string]int", "map[string]int"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.canonical, tt.typ.CanonicalName())
			assert.Equal(t, tt.key, tt.typ.Key())
		})
	}
}

func TestTypeDescriptor_SimpleName(t *testing.T) {
	item := &TypeDescriptor{Kind: Class, Name: "Item", PkgPath: "example.com/shop"}
	assert.Equal(t, "Item", item.SimpleName())
	assert.Equal(t, "Items", (&TypeDescriptor{Kind: List, Elem: item}).SimpleName())
	assert.Equal(t, "ItemSet", (&TypeDescriptor{Kind: Set, Elem: item}).SimpleName())
	assert.Equal(t, "Value", (&TypeDescriptor{Kind: Opaque, Expr: "func()"}).SimpleName())
}

func TestConversionKey_IgnoresPointers(t *testing.T) {
	order := &TypeDescriptor{Kind: Class, Name: "Order", PkgPath: "a"}
	orderPtr := &TypeDescriptor{Kind: Class, Name: "Order", PkgPath: "a", Pointer: true}
	dto := &TypeDescriptor{Kind: Class, Name: "OrderDTO", PkgPath: "b"}

	assert.Equal(t, NewConversionKey(dto, order), NewConversionKey(dto, orderPtr))
	assert.Equal(t, "a.Order->b.OrderDTO", NewConversionKey(dto, order).String())
}

func TestFieldDescriptor_Accessible(t *testing.T) {
	exported := &FieldDescriptor{Name: "ID", PkgPath: "a"}
	unexported := &FieldDescriptor{Name: "secret", PkgPath: "a", Modifiers: Unexported}
	ignored := &FieldDescriptor{Name: "Cache", PkgPath: "a", Modifiers: Ignored}

	assert.True(t, exported.Accessible("b"))
	assert.True(t, unexported.Accessible("a"))
	assert.False(t, unexported.Accessible("b"))
	assert.False(t, ignored.Accessible("a"))
	assert.Nil(t, FindField([]*FieldDescriptor{exported}, "id"))
	assert.Same(t, exported, FindField([]*FieldDescriptor{exported}, "ID"))
}
