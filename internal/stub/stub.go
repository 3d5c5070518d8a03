// Package stub locates the mapper stubs a generation run replaces.
package stub

import (
	"go/ast"
	"go/token"
	"go/types"
	"path"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/packages"

	"github.com/origadmin/mapgen/internal/analyzer"
	"github.com/origadmin/mapgen/internal/config"
	"github.com/origadmin/mapgen/internal/generator"
)

// ErrNoStub is returned when there is no function to generate, or the function
// lacks a parameter or a result.
var ErrNoStub = errors.New("no mapper stub")

// DefaultReceiverName is used for generated methods when the stub's receiver is unnamed.
const DefaultReceiverName = "m"

// Stub is a function whose first result and first parameter define the
// conversion to generate.
type Stub struct {
	Filename string
	File     *ast.File
	Decl     *ast.FuncDecl
	// Name is the stub function name.
	Name string
	// Target is the type of the first result.
	Target types.Type
	// Source is the type of the first parameter.
	Source types.Type
	// Receiver is set when the stub is a method.
	Receiver *generator.Receiver
	// Imports maps the import paths of the file to the names they are bound to.
	Imports map[string]string

	recv types.Type
}

// Find returns every stub marked with the //go:mapgen directive in pkg, in
// file and source order. Marked declarations that are not valid stubs are
// reported through skipped.
func Find(pkg *packages.Package) (stubs []*Stub, skipped []error) {
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || !config.IsStubMarker(fn.Doc) {
				continue
			}
			s, err := newStub(pkg, file, fn)
			if err != nil {
				skipped = append(skipped, err)
				continue
			}
			stubs = append(stubs, s)
		}
	}
	return stubs, skipped
}

// At returns the stub declared around the 1-based line and column of filename.
func At(pkg *packages.Package, filename string, line, col int) (*Stub, error) {
	file, ok := analyzer.FileOf(pkg, filename)
	if !ok {
		return nil, errors.Wrapf(ErrNoStub, "file %s is not part of package %s", filename, pkg.PkgPath)
	}
	tokFile := pkg.Fset.File(file.Package)
	if tokFile == nil || line < 1 || line > tokFile.LineCount() {
		return nil, errors.Wrapf(ErrNoStub, "%s:%d is out of range", filename, line)
	}
	pos := tokFile.LineStart(line)
	if col > 1 {
		offset := tokFile.Offset(pos) + col - 1
		if offset > tokFile.Size() {
			offset = tokFile.Size()
		}
		pos = tokFile.Pos(offset)
	}

	nodes, _ := astutil.PathEnclosingInterval(file, pos, pos)
	for _, node := range nodes {
		if fn, ok := node.(*ast.FuncDecl); ok {
			return newStub(pkg, file, fn)
		}
	}
	return nil, errors.Wrapf(ErrNoStub, "no function at %s:%d:%d", filename, line, col)
}

func newStub(pkg *packages.Package, file *ast.File, fn *ast.FuncDecl) (*Stub, error) {
	pos := pkg.Fset.Position(fn.Pos())
	if fn.Type.Results == nil || fn.Type.Results.NumFields() == 0 {
		return nil, errors.Wrapf(ErrNoStub, "%s: %s has no result", pos, fn.Name.Name)
	}
	if fn.Type.Params == nil || fn.Type.Params.NumFields() == 0 {
		return nil, errors.Wrapf(ErrNoStub, "%s: %s has no parameter", pos, fn.Name.Name)
	}
	if pkg.TypesInfo == nil {
		return nil, errors.Wrapf(analyzer.ErrUnresolvedType, "%s: package %s has no type information", pos, pkg.PkgPath)
	}
	obj, ok := pkg.TypesInfo.Defs[fn.Name].(*types.Func)
	if !ok {
		return nil, errors.Wrapf(analyzer.ErrUnresolvedType, "%s: %s is not type-checked", pos, fn.Name.Name)
	}
	sig := obj.Type().(*types.Signature)

	s := &Stub{
		Filename: pos.Filename,
		File:     file,
		Decl:     fn,
		Name:     fn.Name.Name,
		Target:   sig.Results().At(0).Type(),
		Source:   sig.Params().At(0).Type(),
		Imports:  fileImports(pkg, file),
	}
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		field := fn.Recv.List[0]
		name := DefaultReceiverName
		if len(field.Names) > 0 && field.Names[0].Name != "_" {
			name = field.Names[0].Name
		}
		s.Receiver = &generator.Receiver{Name: name, Type: types.ExprString(field.Type)}
		if recv := sig.Recv(); recv != nil {
			s.recv = recv.Type()
		}
	}
	return s, nil
}

// Reserved returns the identifiers generated helpers must not take: the
// package-level names, plus the methods and fields of the receiver type for
// method stubs. The stub's own name is free since the stub is replaced.
func (s *Stub) Reserved(pkg *packages.Package) map[string]bool {
	if s.recv == nil {
		return analyzer.ScopeNames(pkg, s.Name)
	}
	reserved := analyzer.ScopeNames(pkg, "")
	recv := s.recv
	if p, ok := recv.(*types.Pointer); ok {
		recv = p.Elem()
	}
	mset := types.NewMethodSet(types.NewPointer(recv))
	for i := 0; i < mset.Len(); i++ {
		if name := mset.At(i).Obj().Name(); name != s.Name {
			reserved[name] = true
		}
	}
	if st, ok := recv.Underlying().(*types.Struct); ok {
		for i := 0; i < st.NumFields(); i++ {
			reserved[st.Field(i).Name()] = true
		}
	}
	return reserved
}

// Pos returns the start of the stub, its doc comment included.
func (s *Stub) Pos() token.Pos {
	if s.Decl.Doc != nil {
		return s.Decl.Doc.Pos()
	}
	return s.Decl.Pos()
}

func fileImports(pkg *packages.Package, file *ast.File) map[string]string {
	imports := make(map[string]string, len(file.Imports))
	for _, spec := range file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		switch {
		case spec.Name != nil:
			imports[importPath] = spec.Name.Name
		case pkg.Imports[importPath] != nil && pkg.Imports[importPath].Name != "":
			imports[importPath] = pkg.Imports[importPath].Name
		default:
			imports[importPath] = path.Base(importPath)
		}
	}
	return imports
}

// ParsePosition splits "file:line[:col]". The column defaults to 1.
func ParsePosition(pos string) (filename string, line, col int, err error) {
	parts := strings.Split(pos, ":")
	numbers := make([]int, 0, 2)
	for len(parts) > 1 && len(numbers) < 2 {
		n, convErr := strconv.Atoi(parts[len(parts)-1])
		if convErr != nil {
			break
		}
		numbers = append([]int{n}, numbers...)
		parts = parts[:len(parts)-1]
	}
	filename = strings.Join(parts, ":")
	switch {
	case filename == "" || len(numbers) == 0:
		return "", 0, 0, errors.WithHint(
			errors.Newf("invalid position %q", pos),
			"use file:line or file:line:col",
		)
	case len(numbers) == 1:
		return filename, numbers[0], 1, nil
	default:
		return filename, numbers[0], numbers[1], nil
	}
}
