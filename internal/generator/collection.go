package generator

import (
	"fmt"
	"strings"

	"github.com/origadmin/mapgen/internal/model"
)

// generateCollection emits the element-wise conversion of a list or set. The
// method is appended before the element helper it calls is generated.
func (c *Context) generateCollection(name string, strategy Strategy, target, source *model.TypeDescriptor) error {
	key := model.NewConversionKey(target, source)
	targetType := c.typeExpr(target)

	var body strings.Builder
	fmt.Fprintf(&body, "if len(sources) == 0 {\n\treturn %s{}\n}\n", targetType)

	var v value
	if strategy == StrategyList {
		fmt.Fprintf(&body, "targets := make(%s, 0, len(sources))\n", targetType)
		v = c.convert(target.Elem, source.Elem, "sources[i]")
		body.WriteString("for i := range sources {\n")
		if v.deref {
			fmt.Fprintf(&body, "\tif v := %s; v != nil {\n\t\ttargets = append(targets, *v)\n\t}\n", v.expr)
		} else {
			fmt.Fprintf(&body, "\ttargets = append(targets, %s)\n", v.expr)
		}
	} else {
		fmt.Fprintf(&body, "targets := make(%s, len(sources))\n", targetType)
		v = c.convert(target.Elem, source.Elem, "source")
		body.WriteString("for source := range sources {\n")
		if v.deref {
			fmt.Fprintf(&body, "\tif v := %s; v != nil {\n\t\ttargets[*v] = struct{}{}\n\t}\n", v.expr)
		} else {
			fmt.Fprintf(&body, "\ttargets[%s] = struct{}{}\n", v.expr)
		}
	}
	body.WriteString("}\nreturn targets\n")

	var calls []model.ConversionKey
	if v.call != nil {
		calls = append(calls, v.call.key())
	}
	text := c.signature(name, "sources", c.typeExpr(source), targetType) + indent(body.String()) + "}\n"
	c.emit(key, name, text, calls)
	return c.resolve(v.call)
}
