package generator

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/origadmin/mapgen/internal/model"
)

// generateObject emits the field-by-field conversion of a struct. Helpers
// called by the fields are generated first; the method itself is appended last.
func (c *Context) generateObject(name string, target, source *model.TypeDescriptor) error {
	key := model.NewConversionKey(target, source)
	var body strings.Builder
	body.WriteString("if source == nil {\n\treturn nil\n}\n")
	fmt.Fprintf(&body, "target := &%s{}\n", c.elemType(target))

	var calls []model.ConversionKey
	sourceFields := c.meta.FieldsOf(source)
	for _, f := range c.meta.FieldsOf(target) {
		if !f.Accessible(c.opts.LocalPkg) {
			slog.Debug("Context.generateObject: skipping field", "type", target.Key(), "field", f.Name)
			continue
		}
		p := model.FindField(sourceFields, f.Name)
		if !p.Accessible(c.opts.LocalPkg) {
			slog.Debug("Context.generateObject: no source field", "type", target.Key(), "field", f.Name)
			fmt.Fprintf(&body, "target.%s = _ // no source field %s\n", f.Name, f.Name)
			continue
		}

		v := c.convert(f.Type, p.Type, "source."+p.Name)
		if v.deref {
			fmt.Fprintf(&body, "if v := %s; v != nil {\n\ttarget.%s = *v\n}\n", v.expr, f.Name)
		} else {
			fmt.Fprintf(&body, "target.%s = %s\n", f.Name, v.expr)
		}
		if v.call != nil {
			calls = append(calls, v.call.key())
			if err := c.resolve(v.call); err != nil {
				return err
			}
		}
	}
	body.WriteString("return target\n")

	text := c.signature(name, "source", c.ptrType(source), c.ptrType(target)) + indent(body.String()) + "}\n"
	c.emit(key, name, text, calls)
	return nil
}
