package generator

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/origadmin/mapgen/internal/model"
)

// Context is the method accumulator of one invocation together with the
// state needed to terminate recursion.
type Context struct {
	meta    model.Metadata
	opts    Options
	namer   *Namer
	imports *ImportManager

	methods []*model.GeneratedMethod
	done    map[model.ConversionKey]bool
	active  []model.ConversionKey
}

func newContext(meta model.Metadata, opts Options) *Context {
	imports := opts.Imports
	if imports == nil {
		imports = NewImportManager(opts.LocalPkg, nil)
	}
	return &Context{
		meta:    meta,
		opts:    opts,
		namer:   NewNamer(opts.Reserved),
		imports: imports,
		done:    make(map[model.ConversionKey]bool),
	}
}

// pending is a helper a body calls that still has to be generated.
type pending struct {
	strategy Strategy
	target   *model.TypeDescriptor
	source   *model.TypeDescriptor
}

func (p pending) key() model.ConversionKey {
	return model.NewConversionKey(p.target, p.source)
}

// value is the conversion of one source expression into the target type.
type value struct {
	// expr has the target type, or is a pointer to it when deref is set.
	expr string
	// deref asks the caller to nil-check expr and dereference it.
	deref bool
	// call is the helper expr invokes, if any.
	call *pending
}

// generate emits the helper for the pair if it has not been emitted yet and
// returns its name.
func (c *Context) generate(strategy Strategy, target, source *model.TypeDescriptor) (string, error) {
	key := model.NewConversionKey(target, source)
	name := c.helperName(strategy, target, source)
	if i := slices.Index(c.active, key); i >= 0 {
		path := make([]string, 0, len(c.active)-i+1)
		for _, k := range c.active[i:] {
			path = append(path, k.String())
		}
		path = append(path, key.String())
		return "", errors.WithHint(
			errors.Wrapf(ErrCyclicTypeGraph, "%s", strings.Join(path, " => ")),
			"write the conversion of one of these types by hand",
		)
	}
	if c.done[key] {
		slog.Debug("Context.generate: reusing", "key", key, "name", name)
		return name, nil
	}

	c.active = append(c.active, key)
	defer func() { c.active = c.active[:len(c.active)-1] }()

	slog.Debug("Context.generate", "key", key, "name", name, "strategy", strategy)
	var err error
	if strategy == StrategyObject {
		err = c.generateObject(name, target, source)
	} else {
		err = c.generateCollection(name, strategy, target, source)
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

func (c *Context) helperName(strategy Strategy, target, source *model.TypeDescriptor) string {
	key := model.NewConversionKey(target, source)
	if strategy == StrategyObject {
		return c.namer.Name(key, ObjectName(target))
	}
	return c.namer.Name(key, CollectionName(target.Elem))
}

// emit appends a generated method and marks its key as done.
func (c *Context) emit(key model.ConversionKey, name, text string, calls []model.ConversionKey) {
	c.methods = append(c.methods, &model.GeneratedMethod{
		Key:   key,
		Name:  name,
		Text:  text,
		Calls: calls,
	})
	c.done[key] = true
}

// resolve generates the helper a value calls.
func (c *Context) resolve(p *pending) error {
	if p == nil {
		return nil
	}
	_, err := c.generate(p.strategy, p.target, p.source)
	return err
}

// call renders a call of a generated helper.
func (c *Context) call(name, arg string) string {
	if r := c.opts.Receiver; r != nil {
		return fmt.Sprintf("%s.%s(%s)", r.Name, name, arg)
	}
	return fmt.Sprintf("%s(%s)", name, arg)
}

// signature renders the opening line of a generated function.
func (c *Context) signature(name, param, paramType, resultType string) string {
	if r := c.opts.Receiver; r != nil {
		return fmt.Sprintf("func (%s %s) %s(%s %s) %s {\n", r.Name, r.Type, name, param, paramType, resultType)
	}
	return fmt.Sprintf("func %s(%s %s) %s {\n", name, param, paramType, resultType)
}

// convert describes how expr, of type source, becomes a value of type target.
// expr must be addressable.
func (c *Context) convert(target, source *model.TypeDescriptor, expr string) value {
	if strategy := Classify(target, source); strategy != StrategyObject {
		if target.Elem.CanonicalName() == source.Elem.CanonicalName() {
			if target.Key() != source.Key() && target.IsNamed() {
				return value{expr: fmt.Sprintf("%s(%s)", c.typeExpr(target), expr)}
			}
			return value{expr: expr}
		}
		p := &pending{strategy: strategy, target: target, source: source}
		name := c.helperName(strategy, target, source)
		return value{expr: c.call(name, expr), call: p}
	}

	if c.needsObject(target, source) {
		p := &pending{strategy: StrategyObject, target: target, source: source}
		name := c.helperName(StrategyObject, target, source)
		arg := expr
		if !source.Pointer {
			arg = "&" + expr
		}
		v := value{expr: c.call(name, arg), call: p}
		switch {
		case target.Pointer:
		case source.Pointer:
			v.deref = true
		default:
			v.expr = "*" + v.expr
		}
		return v
	}

	if c.meta.IsPrimitive(target) && c.meta.IsPrimitive(source) && target.CanonicalName() != source.CanonicalName() {
		return value{expr: fmt.Sprintf("%s(%s)", c.typeExpr(target), expr)}
	}
	if target.Key() == source.Key() && target.Pointer != source.Pointer {
		if target.Pointer {
			return value{expr: "&" + expr}
		}
		return value{expr: expr, deref: true}
	}
	return value{expr: expr}
}

// needsObject reports whether a field pair is converted by a nested object helper.
func (c *Context) needsObject(target, source *model.TypeDescriptor) bool {
	return target.Kind == model.Class &&
		target.Key() != source.Key() &&
		!c.meta.IsPrimitive(target) &&
		!c.meta.IsPrimitive(source)
}

// indent prefixes every line of s with one tab.
func indent(s string) string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = "\t" + line
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
