package analyzer

import (
	"context"
	"go/ast"
	"log/slog"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/go/packages"
)

// LoadMode is the information mapgen needs from every loaded package.
const LoadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports

// PackageWalker loads packages and answers questions about their syntax.
type PackageWalker struct {
	dir     string
	overlay map[string][]byte
}

// NewPackageWalker creates a walker loading packages relative to dir.
// Overlay contents replace the on-disk content of the named files.
func NewPackageWalker(dir string, overlay map[string][]byte) *PackageWalker {
	return &PackageWalker{dir: dir, overlay: overlay}
}

// Load type-checks the packages matched by patterns. Packages with type errors
// are still returned; their stubs fail individually with ErrUnresolvedType.
func (w *PackageWalker) Load(ctx context.Context, patterns ...string) ([]*packages.Package, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	cfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     w.dir,
		Overlay: w.overlay,
		Tests:   false,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrapf(err, "load packages %v", patterns)
	}
	if len(pkgs) == 0 {
		return nil, errors.Newf("no packages matched %v", patterns)
	}
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			slog.Warn("Package loaded with errors", "pkg", pkg.PkgPath, "error", e.Msg)
		}
	}
	return pkgs, nil
}

// FileOf returns the syntax tree of the named file within pkg.
func FileOf(pkg *packages.Package, filename string) (*ast.File, bool) {
	for _, file := range pkg.Syntax {
		if pkg.Fset.Position(file.Package).Filename == filename {
			return file, true
		}
	}
	return nil, false
}

// ScopeNames returns the package-level identifiers declared in pkg, except skip.
func ScopeNames(pkg *packages.Package, skip string) map[string]bool {
	names := make(map[string]bool)
	if pkg.Types == nil {
		return names
	}
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		if name != skip {
			names[name] = true
		}
	}
	return names
}
