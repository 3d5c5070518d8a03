package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/origadmin/mapgen/internal/model"
)

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "OrderDTO", Capitalize("orderDTO"))
	assert.Equal(t, "Élan", Capitalize("élan"))
	assert.Equal(t, "", Capitalize(""))
}

func TestHelperNames(t *testing.T) {
	itemDTO, _ := itemPair()
	assert.Equal(t, "convert2ItemDTO", ObjectName(itemDTO))
	assert.Equal(t, "convert2ItemDTO", ObjectName(ptr(itemDTO)))
	assert.Equal(t, "convert2ItemDTOs", CollectionName(itemDTO))
	assert.Equal(t, "convert2ItemDTOss", CollectionName(list(itemDTO)))

	lower := class(dtoPkg, "lineItem")
	assert.Equal(t, "convert2LineItem", ObjectName(lower))
}

func TestNamer_Name(t *testing.T) {
	first := model.ConversionKey{Target: "b.ItemDTO", Source: "a.Item"}
	second := model.ConversionKey{Target: "b.ItemDTO", Source: "c.Item"}

	n := NewNamer(map[string]bool{"convert2Reserved": true})
	assert.Equal(t, "convert2ItemDTO", n.Name(first, "convert2ItemDTO"))
	assert.Equal(t, "convert2ItemDTO", n.Name(first, "convert2ItemDTO"), "a key keeps its name")
	assert.Equal(t, "convert2ItemDTO_"+keyHash(second), n.Name(second, "convert2ItemDTO"))
	assert.Equal(t, "convert2Reserved_"+keyHash(first), NewNamer(map[string]bool{"convert2Reserved": true}).Name(first, "convert2Reserved"))
	assert.ElementsMatch(t, []string{"convert2ItemDTO", "convert2ItemDTO_" + keyHash(second)}, n.Names())
}

func TestKeyHash(t *testing.T) {
	key := model.ConversionKey{Target: "b.ItemDTO", Source: "a.Item"}
	assert.Len(t, keyHash(key), 8)
	assert.Equal(t, keyHash(key), keyHash(model.ConversionKey{Target: "b.ItemDTO", Source: "a.Item"}))
	assert.NotEqual(t, keyHash(key), keyHash(model.ConversionKey{Target: "a.Item", Source: "b.ItemDTO"}))
}
