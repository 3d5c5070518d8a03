// Package rewrite replaces stubs in a Go file with generated source.
package rewrite

import (
	"bytes"
	"go/format"
	"go/parser"
	"go/token"
	"sort"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/imports"

	"github.com/origadmin/mapgen/internal/generator"
)

// Replacement swaps the byte range [Start, End) of a file for Text.
type Replacement struct {
	Start int
	End   int
	Text  string
}

// Apply performs the replacements on src, adds the missing imports and
// formats the result. Replacements must not overlap.
func Apply(filename string, src []byte, replacements []Replacement, missing []generator.Import) ([]byte, error) {
	sorted := make([]Replacement, len(replacements))
	copy(sorted, replacements)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })

	out := bytes.Clone(src)
	end := len(out)
	for _, r := range sorted {
		if r.Start < 0 || r.Start > r.End || r.End > end {
			return nil, errors.Newf("%s: replacement [%d,%d) is out of range or overlaps", filename, r.Start, r.End)
		}
		var buf bytes.Buffer
		buf.Grow(len(out) - (r.End - r.Start) + len(r.Text))
		buf.Write(out[:r.Start])
		buf.WriteString(r.Text)
		buf.Write(out[r.End:])
		out = buf.Bytes()
		end = r.Start
	}

	if len(missing) > 0 {
		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, filename, out, parser.ParseComments)
		if err != nil {
			return nil, errors.Wrapf(err, "parse rewritten %s", filename)
		}
		for _, imp := range missing {
			astutil.AddNamedImport(fset, file, imp.Alias, imp.Path)
		}
		var buf bytes.Buffer
		if err := format.Node(&buf, fset, file); err != nil {
			return nil, errors.Wrapf(err, "print rewritten %s", filename)
		}
		out = buf.Bytes()
	}

	formatted, err := imports.Process(filename, out, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "format rewritten %s", filename)
	}
	return formatted, nil
}
