package generator

import (
	"go/types"
	"strings"

	"github.com/origadmin/mapgen/internal/model"
)

// typeExpr renders t as Go source, qualified relative to the generating package.
func (c *Context) typeExpr(t *model.TypeDescriptor) string {
	var sb strings.Builder
	if t.Pointer {
		sb.WriteString("*")
	}
	switch {
	case t.IsNamed():
		if name := c.imports.Qualify(t.PkgPath, t.PkgName); name != "" {
			sb.WriteString(name)
			sb.WriteString(".")
		}
		sb.WriteString(t.Name)
		if len(t.Args) > 0 {
			sb.WriteString("[")
			for i, arg := range t.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(c.typeExpr(arg))
			}
			sb.WriteString("]")
		}
	case t.Kind == model.List:
		sb.WriteString("[]")
		sb.WriteString(c.typeExpr(t.Elem))
	case t.Kind == model.Set:
		sb.WriteString("map[")
		sb.WriteString(c.typeExpr(t.Elem))
		sb.WriteString("]struct{}")
	case t.Kind == model.Primitive:
		sb.WriteString(t.Name)
	case t.Original != nil:
		sb.WriteString(types.TypeString(t.Original, c.qualifier))
	case t.Expr != "":
		sb.WriteString(t.Expr)
	default:
		sb.WriteString(t.Name)
	}
	return sb.String()
}

// elemType renders the pointer-stripped form of t.
func (c *Context) elemType(t *model.TypeDescriptor) string {
	if !t.Pointer {
		return c.typeExpr(t)
	}
	stripped := *t
	stripped.Pointer = false
	return c.typeExpr(&stripped)
}

// ptrType renders t behind exactly one pointer.
func (c *Context) ptrType(t *model.TypeDescriptor) string {
	return "*" + c.elemType(t)
}

func (c *Context) qualifier(pkg *types.Package) string {
	return c.imports.Qualify(pkg.Path(), pkg.Name())
}
