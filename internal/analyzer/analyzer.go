// Package analyzer resolves go/types types into the structural model used by
// the generator and serves their field metadata.
package analyzer

import (
	"go/types"
	"log/slog"
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/origadmin/mapgen/internal/config"
	"github.com/origadmin/mapgen/internal/model"
)

// ErrUnresolvedType is returned when a type has no usable metadata, typically
// because the package failed to type-check.
var ErrUnresolvedType = errors.New("unresolved type")

// Provider is the type metadata provider. It is not safe for concurrent use;
// each worker owns its own provider.
type Provider struct {
	cfg       *config.Config
	localPkg  string
	typeCache map[types.Type]*model.TypeDescriptor
	fields    map[string][]*model.FieldDescriptor
}

// NewProvider creates a provider for code generated into the package localPkg.
func NewProvider(cfg *config.Config, localPkg string) *Provider {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Provider{
		cfg:       cfg,
		localPkg:  localPkg,
		typeCache: make(map[types.Type]*model.TypeDescriptor),
		fields:    make(map[string][]*model.FieldDescriptor),
	}
}

// LocalPkg returns the import path of the generating package.
func (p *Provider) LocalPkg() string {
	return p.localPkg
}

// Resolve converts typ into a descriptor. Fields are not resolved here; they
// are produced on demand by FieldsOf.
func (p *Provider) Resolve(typ types.Type) (*model.TypeDescriptor, error) {
	if typ == nil {
		return nil, errors.Wrap(ErrUnresolvedType, "nil type")
	}
	desc := p.resolveType(typ)
	if desc == nil {
		return nil, errors.Wrapf(ErrUnresolvedType, "type %s", typ)
	}
	return desc, nil
}

func (p *Provider) resolveType(typ types.Type) *model.TypeDescriptor {
	if cached, exists := p.typeCache[typ]; exists {
		return cached
	}
	typ = types.Unalias(typ)
	if b, ok := typ.(*types.Basic); ok && b.Kind() == types.Invalid {
		return nil
	}

	switch t := typ.(type) {
	case *types.Pointer:
		elem := p.resolveType(t.Elem())
		if elem == nil {
			return nil
		}
		if !elem.Pointer && (elem.Kind == model.Class || elem.Kind == model.KnownValue) {
			desc := *elem
			desc.Pointer = true
			p.typeCache[typ] = &desc
			return &desc
		}
		return p.opaque(typ)
	case *types.Named:
		return p.resolveNamed(t)
	}

	desc := &model.TypeDescriptor{Original: typ}
	p.typeCache[typ] = desc
	if !p.resolveShape(desc, typ) {
		delete(p.typeCache, typ)
		return nil
	}
	slog.Debug("Provider.resolveType", "type", typ.String(), "kind", desc.Kind)
	return desc
}

func (p *Provider) resolveNamed(t *types.Named) *model.TypeDescriptor {
	obj := t.Obj()
	desc := &model.TypeDescriptor{Name: obj.Name(), Original: t}
	if obj.Pkg() != nil {
		desc.PkgPath = obj.Pkg().Path()
		desc.PkgName = obj.Pkg().Name()
	}
	p.typeCache[t] = desc

	if args := t.TypeArgs(); args != nil {
		for i := 0; i < args.Len(); i++ {
			arg := p.resolveType(args.At(i))
			if arg == nil {
				delete(p.typeCache, t)
				return nil
			}
			desc.Args = append(desc.Args, arg)
		}
	}

	if desc.PkgPath != "" && p.cfg.IsKnownValue(desc.PkgPath+"."+desc.Name) {
		desc.Kind = model.KnownValue
		slog.Debug("Provider.resolveNamed: known value", "type", desc.Key())
		return desc
	}
	if _, ok := t.Underlying().(*types.Struct); ok {
		desc.Kind = model.Class
		slog.Debug("Provider.resolveNamed: class", "type", desc.Key())
		return desc
	}
	if !p.resolveShape(desc, t.Underlying()) {
		delete(p.typeCache, t)
		return nil
	}
	slog.Debug("Provider.resolveNamed", "type", desc.Key(), "kind", desc.Kind)
	return desc
}

// resolveShape fills the kind (and element) of desc from an unnamed type.
func (p *Provider) resolveShape(desc *model.TypeDescriptor, typ types.Type) bool {
	switch t := typ.(type) {
	case *types.Basic:
		if t.Kind() == types.Invalid {
			return false
		}
		desc.Kind = model.Primitive
		if desc.Name == "" {
			desc.Name = t.Name()
		}
	case *types.Slice:
		elem := p.resolveType(t.Elem())
		if elem == nil {
			return false
		}
		desc.Kind = model.List
		desc.Elem = elem
	case *types.Map:
		if !isEmptyStruct(t.Elem()) {
			desc.Kind = model.Opaque
			desc.Expr = types.TypeString(typ, nil)
			return true
		}
		elem := p.resolveType(t.Key())
		if elem == nil {
			return false
		}
		desc.Kind = model.Set
		desc.Elem = elem
	default:
		desc.Kind = model.Opaque
		desc.Expr = types.TypeString(typ, nil)
	}
	return true
}

func (p *Provider) opaque(typ types.Type) *model.TypeDescriptor {
	desc := &model.TypeDescriptor{Kind: model.Opaque, Expr: types.TypeString(typ, nil), Original: typ}
	p.typeCache[typ] = desc
	return desc
}

func isEmptyStruct(typ types.Type) bool {
	s, ok := typ.Underlying().(*types.Struct)
	return ok && s.NumFields() == 0
}

// FieldsOf returns the fields of a Class in declared order. Fields of
// non-pointer embedded structs are promoted in place of the embedded field.
func (p *Provider) FieldsOf(t *model.TypeDescriptor) []*model.FieldDescriptor {
	if t == nil || t.Kind != model.Class || t.Original == nil {
		return nil
	}
	key := t.Key()
	if fields, ok := p.fields[key]; ok {
		return fields
	}
	s, ok := t.Original.Underlying().(*types.Struct)
	if !ok {
		return nil
	}
	fields := p.parseFields(s, make(map[*types.Struct]bool))
	p.fields[key] = fields
	slog.Debug("Provider.FieldsOf", "type", key, "fields", len(fields))
	return fields
}

// IsPrimitive reports whether t is copied by plain assignment or conversion.
func (p *Provider) IsPrimitive(t *model.TypeDescriptor) bool {
	return t != nil && t.Kind == model.Primitive
}

func (p *Provider) parseFields(s *types.Struct, seen map[*types.Struct]bool) []*model.FieldDescriptor {
	seen[s] = true
	direct := make(map[string]bool, s.NumFields())
	for i := 0; i < s.NumFields(); i++ {
		if f := s.Field(i); !p.promotes(f) {
			direct[f.Name()] = true
		}
	}

	fields := make([]*model.FieldDescriptor, 0, s.NumFields())
	added := make(map[string]bool, s.NumFields())
	for i := 0; i < s.NumFields(); i++ {
		f := s.Field(i)
		ignored := reflect.StructTag(s.Tag(i)).Get(p.cfg.IgnoreTag) == "-"
		if p.promotes(f) {
			if ignored {
				continue
			}
			embedded := types.Unalias(f.Type()).Underlying().(*types.Struct)
			if seen[embedded] {
				continue
			}
			for _, promoted := range p.parseFields(embedded, seen) {
				if direct[promoted.Name] || added[promoted.Name] {
					continue
				}
				promoted.Modifiers |= model.Embedded
				fields = append(fields, promoted)
				added[promoted.Name] = true
			}
			continue
		}

		if f.Name() == "_" {
			continue
		}
		typ := p.resolveType(f.Type())
		if typ == nil {
			slog.Debug("Provider.parseFields: skipping unresolved field", "field", f.Name())
			continue
		}
		field := &model.FieldDescriptor{Name: f.Name(), Type: typ}
		if f.Pkg() != nil {
			field.PkgPath = f.Pkg().Path()
		}
		if !f.Exported() {
			field.Modifiers |= model.Unexported
		}
		if ignored {
			field.Modifiers |= model.Ignored
		}
		fields = append(fields, field)
		added[field.Name] = true
	}
	delete(seen, s)
	return fields
}

// promotes reports whether an embedded field contributes its own fields
// instead of being a field itself.
func (p *Provider) promotes(f *types.Var) bool {
	if !f.Embedded() {
		return false
	}
	named, ok := types.Unalias(f.Type()).(*types.Named)
	if !ok {
		return false
	}
	if _, ok := named.Underlying().(*types.Struct); !ok {
		return false
	}
	if obj := named.Obj(); obj.Pkg() != nil && p.cfg.IsKnownValue(obj.Pkg().Path()+"."+obj.Name()) {
		return false
	}
	return true
}
