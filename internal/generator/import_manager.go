package generator

import (
	"fmt"
	"path"
	"sort"
)

// Import is an import the generated code needs and the file lacks.
type Import struct {
	Path string
	// Name is the identifier the generated code uses for the package.
	Name string
	// Alias is set when Name differs from the package's own name.
	Alias string
}

// ImportManager tracks the package names used by generated code in one file.
type ImportManager struct {
	localPkg string
	names    map[string]string // import path -> name
	paths    map[string]string // name -> import path
	added    map[string]*Import
}

// NewImportManager creates an ImportManager for code generated into localPkg.
// Existing maps the import paths of the file to the names they are bound to.
func NewImportManager(localPkg string, existing map[string]string) *ImportManager {
	im := &ImportManager{
		localPkg: localPkg,
		names:    make(map[string]string, len(existing)),
		paths:    make(map[string]string, len(existing)),
		added:    make(map[string]*Import),
	}
	for importPath, name := range existing {
		if name == "_" || name == "." {
			continue
		}
		im.names[importPath] = name
		im.paths[name] = importPath
	}
	return im
}

// Qualify returns the identifier to prefix names of pkgPath with, or "" for
// the local package.
func (im *ImportManager) Qualify(pkgPath, pkgName string) string {
	if pkgPath == "" || pkgPath == im.localPkg {
		return ""
	}
	if name, exists := im.names[pkgPath]; exists {
		return name
	}

	if pkgName == "" {
		pkgName = path.Base(pkgPath)
	}
	name := pkgName
	for i := 1; ; i++ {
		if _, conflict := im.paths[name]; !conflict {
			break
		}
		name = fmt.Sprintf("%s%d", pkgName, i)
	}

	imp := &Import{Path: pkgPath, Name: name}
	if name != pkgName || name != path.Base(pkgPath) {
		imp.Alias = name
	}
	im.names[pkgPath] = name
	im.paths[name] = pkgPath
	im.added[pkgPath] = imp
	return name
}

// Missing returns the imports added by Qualify, sorted by path.
func (im *ImportManager) Missing() []Import {
	imports := make([]Import, 0, len(im.added))
	for _, imp := range im.added {
		imports = append(imports, *imp)
	}
	sort.Slice(imports, func(i, j int) bool {
		return imports[i].Path < imports[j].Path
	})
	return imports
}
