package stub

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"github.com/origadmin/mapgen/internal/analyzer"
)

const mapperSrc = `package mapper

import (
	str "strings"
)

type Order struct{ ID string }

type OrderDTO struct{ ID string }

type Mapper struct{ prefix string }

func (m *Mapper) Existing() string { return str.ToUpper(m.prefix) }

// ToDTO maps an order.
//go:mapgen
func ToDTO(o Order) *OrderDTO {
	return nil
}

//go:mapgen
func (*Mapper) ToDTO(o *Order) OrderDTO {
	return OrderDTO{}
}

//go:mapgen
func NoResult(o Order) {}

func Plain(o Order) OrderDTO {
	return OrderDTO{}
}

func NoParams() OrderDTO { return OrderDTO{} }
`

func loadMapper(t *testing.T) *packages.Package {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "/work/mapper.go", mapperSrc, parser.ParseComments)
	require.NoError(t, err)
	info := &types.Info{
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
		Types: make(map[ast.Expr]types.TypeAndValue),
	}
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	pkg, err := conf.Check("example.com/mapper", fset, []*ast.File{file}, info)
	require.NoError(t, err)
	return &packages.Package{
		PkgPath:   "example.com/mapper",
		Name:      "mapper",
		Fset:      fset,
		Syntax:    []*ast.File{file},
		Types:     pkg,
		TypesInfo: info,
	}
}

func TestFind(t *testing.T) {
	pkg := loadMapper(t)
	stubs, skipped := Find(pkg)

	require.Len(t, stubs, 2)
	require.Len(t, skipped, 1)
	assert.ErrorIs(t, skipped[0], ErrNoStub)

	fn := stubs[0]
	assert.Equal(t, "ToDTO", fn.Name)
	assert.Equal(t, "/work/mapper.go", fn.Filename)
	assert.Equal(t, "*example.com/mapper.OrderDTO", fn.Target.String())
	assert.Equal(t, "example.com/mapper.Order", fn.Source.String())
	assert.Nil(t, fn.Receiver)
	assert.Equal(t, map[string]string{"strings": "str"}, fn.Imports)
	assert.Equal(t, fn.Decl.Doc.Pos(), fn.Pos())

	method := stubs[1]
	require.NotNil(t, method.Receiver)
	assert.Equal(t, DefaultReceiverName, method.Receiver.Name)
	assert.Equal(t, "*Mapper", method.Receiver.Type)
	assert.Equal(t, "example.com/mapper.OrderDTO", method.Target.String())
}

func TestReserved(t *testing.T) {
	pkg := loadMapper(t)
	stubs, _ := Find(pkg)
	require.Len(t, stubs, 2)

	fn := stubs[0].Reserved(pkg)
	assert.True(t, fn["Order"])
	assert.True(t, fn["Plain"])
	assert.False(t, fn["ToDTO"], "the stub is replaced")
	assert.False(t, fn["Existing"])

	method := stubs[1].Reserved(pkg)
	assert.True(t, method["Existing"])
	assert.True(t, method["prefix"])
	assert.True(t, method["ToDTO"], "the package-level ToDTO stays reserved")
}

func TestAt(t *testing.T) {
	pkg := loadMapper(t)

	s, err := At(pkg, "/work/mapper.go", 18, 2)
	require.NoError(t, err)
	assert.Equal(t, "ToDTO", s.Name)
	assert.Nil(t, s.Receiver)

	s, err = At(pkg, "/work/mapper.go", 30, 1)
	require.NoError(t, err)
	assert.Equal(t, "Plain", s.Name, "the directive is not required at a position")

	testCases := []struct {
		name string
		file string
		line int
	}{
		{"between declarations", "/work/mapper.go", 8},
		{"no result", "/work/mapper.go", 27},
		{"no parameters", "/work/mapper.go", 33},
		{"line out of range", "/work/mapper.go", 500},
		{"unknown file", "/work/other.go", 1},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := At(pkg, tt.file, tt.line, 1)
			assert.ErrorIs(t, err, ErrNoStub)
		})
	}
}

func TestUntypedPackage(t *testing.T) {
	pkg := loadMapper(t)
	pkg.TypesInfo = nil

	_, skipped := Find(pkg)
	require.Len(t, skipped, 3)
	assert.ErrorIs(t, skipped[0], analyzer.ErrUnresolvedType)
}

func TestParsePosition(t *testing.T) {
	testCases := []struct {
		in        string
		file      string
		line, col int
		wantErr   bool
	}{
		{in: "mapper.go:12:5", file: "mapper.go", line: 12, col: 5},
		{in: "mapper.go:12", file: "mapper.go", line: 12, col: 1},
		{in: `C:\src\mapper.go:3:4`, file: `C:\src\mapper.go`, line: 3, col: 4},
		{in: "mapper.go", wantErr: true},
		{in: ":3", wantErr: true},
	}
	for _, tt := range testCases {
		t.Run(tt.in, func(t *testing.T) {
			file, line, col, err := ParsePosition(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.file, file)
			assert.Equal(t, tt.line, line)
			assert.Equal(t, tt.col, col)
		})
	}
}
