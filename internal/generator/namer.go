package generator

import (
	"fmt"
	"hash/fnv"
	"unicode"
	"unicode/utf8"

	"github.com/origadmin/mapgen/internal/model"
)

const namePrefix = "convert2"

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// ObjectName is the undisambiguated name of the object helper producing t.
func ObjectName(t *model.TypeDescriptor) string {
	return namePrefix + Capitalize(t.SimpleName())
}

// CollectionName is the undisambiguated name of the collection helper
// producing a list or set of elem.
func CollectionName(elem *model.TypeDescriptor) string {
	return namePrefix + Capitalize(elem.SimpleName()) + "s"
}

// Namer hands out helper names for one invocation. The first key to claim a
// name keeps it; any other key asking for the same name gets a suffix derived
// from its own canonical text.
type Namer struct {
	reserved map[string]bool
	owners   map[string]model.ConversionKey
	names    map[model.ConversionKey]string
}

// NewNamer creates a namer that never hands out a reserved name.
func NewNamer(reserved map[string]bool) *Namer {
	return &Namer{
		reserved: reserved,
		owners:   make(map[string]model.ConversionKey),
		names:    make(map[model.ConversionKey]string),
	}
}

// Name returns the helper name for key, claiming base if it is still free.
func (n *Namer) Name(key model.ConversionKey, base string) string {
	if name, ok := n.names[key]; ok {
		return name
	}
	name := base
	if n.taken(name) {
		name = fmt.Sprintf("%s_%s", base, keyHash(key))
		for i := 2; n.taken(name); i++ {
			name = fmt.Sprintf("%s_%s_%d", base, keyHash(key), i)
		}
	}
	n.owners[name] = key
	n.names[key] = name
	return name
}

// Names returns every name handed out so far.
func (n *Namer) Names() []string {
	names := make([]string, 0, len(n.owners))
	for name := range n.owners {
		names = append(names, name)
	}
	return names
}

func (n *Namer) taken(name string) bool {
	if n.reserved[name] {
		return true
	}
	_, ok := n.owners[name]
	return ok
}

// keyHash is the first 8 hex digits of the FNV-1a hash of the key.
func keyHash(key model.ConversionKey) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.String()))
	return fmt.Sprintf("%08x", h.Sum32())
}
