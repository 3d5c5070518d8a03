package core

import (
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/go/packages"

	"github.com/origadmin/mapgen/internal/analyzer"
	"github.com/origadmin/mapgen/internal/config"
	"github.com/origadmin/mapgen/internal/generator"
	"github.com/origadmin/mapgen/internal/rewrite"
	"github.com/origadmin/mapgen/internal/stub"
)

// worker processes the stubs of one package. It owns its provider cache.
type worker struct {
	pkg      *packages.Package
	cfg      *config.Config
	provider *analyzer.Provider
	// generated holds the helper names produced by earlier stubs of the package.
	generated map[string]bool
	overlay   map[string][]byte
}

// processFile generates every stub of one file and returns the rewritten
// file, or nil when no stub produced output.
func (w *worker) processFile(stubs []*stub.Stub) (*FileResult, error) {
	first := stubs[0]
	filename := first.Filename
	src, err := w.readFile(filename)
	if err != nil {
		return nil, err
	}
	tokFile := w.pkg.Fset.File(first.Decl.Pos())
	if tokFile == nil || tokFile.Size() != len(src) {
		return nil, errors.Newf("%s changed since it was loaded", filename)
	}

	imports := generator.NewImportManager(w.pkg.PkgPath, first.Imports)
	result := &FileResult{Filename: filename, Original: src}
	var replacements []rewrite.Replacement
	for _, s := range stubs {
		generated, err := w.generate(s, imports)
		if err != nil {
			if IsPrecondition(err) {
				slog.Info("Skipping stub", "stub", s.Name, "reason", err)
				continue
			}
			return nil, errors.Wrapf(err, "%s: %s", w.pkg.Fset.Position(s.Decl.Pos()), s.Name)
		}
		replacements = append(replacements, rewrite.Replacement{
			Start: tokFile.Offset(s.Pos()),
			End:   tokFile.Offset(s.Decl.End()),
			Text:  strings.TrimSuffix(generated.Source(), "\n"),
		})
		result.Stubs = append(result.Stubs, s.Name)
		result.Methods = append(result.Methods, generated.Names()...)
	}
	if len(replacements) == 0 {
		return nil, nil
	}

	content, err := rewrite.Apply(filename, src, replacements, imports.Missing())
	if err != nil {
		return nil, err
	}
	result.Content = content
	slog.Debug("Generated file", "file", filename, "methods", joinNames(result.Methods))
	return result, nil
}

func (w *worker) generate(s *stub.Stub, imports *generator.ImportManager) (*generator.Result, error) {
	target, err := w.provider.Resolve(s.Target)
	if err != nil {
		return nil, err
	}
	source, err := w.provider.Resolve(s.Source)
	if err != nil {
		return nil, err
	}

	reserved := s.Reserved(w.pkg)
	for name := range w.generated {
		reserved[name] = true
	}
	result, err := generator.Generate(w.provider, target, source, generator.Options{
		LocalPkg: w.pkg.PkgPath,
		Receiver: s.Receiver,
		Imports:  imports,
		Reserved: reserved,
		Order:    w.cfg.Order,
	})
	if err != nil {
		return nil, err
	}
	for _, name := range result.Names() {
		w.generated[name] = true
	}
	return result, nil
}

func (w *worker) readFile(filename string) ([]byte, error) {
	if content, ok := w.overlay[filename]; ok {
		return content, nil
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}
	return content, nil
}
