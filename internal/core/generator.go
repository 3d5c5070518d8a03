// Package core runs generation over loaded packages: it finds stubs, generates
// their mappers and rewrites the files that contain them.
package core

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"github.com/origadmin/mapgen/internal/analyzer"
	"github.com/origadmin/mapgen/internal/config"
	"github.com/origadmin/mapgen/internal/generator"
	"github.com/origadmin/mapgen/internal/stub"
)

// Options configures a generation run.
type Options struct {
	// Dir is the directory packages are loaded from. Defaults to the working directory.
	Dir string
	// Patterns are the package patterns to load. Defaults to ".".
	Patterns []string
	// Position restricts the run to the function at "file:line[:col]".
	Position string
	// ConfigFile is an explicit configuration file.
	ConfigFile string
	// Config replaces loading the configuration when set.
	Config *config.Config
	// Order overrides the configured emission order when set.
	Order config.Order
	// DryRun computes the rewritten files without writing them.
	DryRun bool
	// Jobs bounds the number of packages processed concurrently.
	Jobs int
	// Overlay holds unsaved file contents keyed by absolute path.
	Overlay map[string][]byte
}

// FileResult is one rewritten file.
type FileResult struct {
	Filename string
	Original []byte
	Content  []byte
	// Stubs are the replaced stubs, in source order.
	Stubs []string
	// Methods are the generated function names, in emission order.
	Methods []string
}

// ConverterGenerator generates mappers for every stub of a set of packages.
type ConverterGenerator struct {
	opts Options
	cfg  *config.Config

	mu      sync.Mutex
	results []*FileResult
	errs    error
}

// NewGenerator creates a generator for opts.
func NewGenerator(opts Options) *ConverterGenerator {
	return &ConverterGenerator{opts: opts}
}

// Run loads the packages, generates every stub and returns the rewritten
// files sorted by name. Files whose generation fails are left untouched and
// reported in the combined error; the other files are still processed.
func (g *ConverterGenerator) Run(ctx context.Context) ([]*FileResult, error) {
	cfg := g.opts.Config
	if cfg == nil {
		loaded, err := config.Load(g.opts.ConfigFile, g.opts.Dir)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	g.cfg = cfg

	patterns := g.opts.Patterns
	var target *position
	if g.opts.Position != "" {
		pos, err := g.parsePosition()
		if err != nil {
			return nil, err
		}
		target = pos
		patterns = []string{"file=" + pos.filename}
	}

	slog.Info("Loading packages", "dir", g.opts.Dir, "patterns", patterns)
	pkgs, err := analyzer.NewPackageWalker(g.opts.Dir, g.opts.Overlay).Load(ctx, patterns...)
	if err != nil {
		return nil, err
	}

	eg, ctx := errgroup.WithContext(ctx)
	if g.opts.Jobs > 0 {
		eg.SetLimit(g.opts.Jobs)
	}
	for _, pkg := range pkgs {
		eg.Go(func() error {
			return g.processPackage(ctx, pkg, target)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(g.results, func(i, j int) bool {
		return g.results[i].Filename < g.results[j].Filename
	})
	return g.results, g.errs
}

type position struct {
	filename  string
	line, col int
}

func (g *ConverterGenerator) parsePosition() (*position, error) {
	filename, line, col, err := stub.ParsePosition(g.opts.Position)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(filename) {
		filename = filepath.Join(g.opts.Dir, filename)
	}
	filename, err = filepath.Abs(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", filename)
	}
	return &position{filename: filename, line: line, col: col}, nil
}

// processPackage handles the stubs of one package. Only context cancellation
// is returned; generation failures are recorded per file.
func (g *ConverterGenerator) processPackage(ctx context.Context, pkg *packages.Package, target *position) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pkgCfg, err := config.NewParser(g.cfg).Parse(pkg.Syntax)
	if err != nil {
		g.fail(errors.Wrapf(err, "package %s", pkg.PkgPath))
		return nil
	}
	if g.opts.Order != "" {
		pkgCfg.Order = g.opts.Order
	}

	var stubs []*stub.Stub
	if target != nil {
		if _, ok := analyzer.FileOf(pkg, target.filename); !ok {
			return nil
		}
		s, err := stub.At(pkg, target.filename, target.line, target.col)
		if err != nil {
			g.skip(err)
			return nil
		}
		stubs = append(stubs, s)
	} else {
		found, skipped := stub.Find(pkg)
		for _, err := range skipped {
			g.skip(err)
		}
		stubs = found
	}
	if len(stubs) == 0 {
		slog.Debug("No stubs in package", "pkg", pkg.PkgPath)
		return nil
	}

	w := &worker{
		pkg:       pkg,
		cfg:       pkgCfg,
		provider:  analyzer.NewProvider(pkgCfg, pkg.PkgPath),
		generated: make(map[string]bool),
		overlay:   g.opts.Overlay,
	}
	for _, group := range groupByFile(stubs) {
		if err := ctx.Err(); err != nil {
			return err
		}
		result, err := w.processFile(group)
		switch {
		case err != nil:
			g.fail(err)
			continue
		case result == nil:
			continue
		}
		if !g.opts.DryRun {
			if err := writeFile(result.Filename, result.Content); err != nil {
				g.fail(err)
				continue
			}
			slog.Info("Rewrote file", "file", result.Filename, "stubs", result.Stubs)
		}
		g.mu.Lock()
		g.results = append(g.results, result)
		g.mu.Unlock()
	}
	return nil
}

func (g *ConverterGenerator) fail(err error) {
	slog.Error("Generation failed", "error", err)
	g.mu.Lock()
	g.errs = errors.CombineErrors(g.errs, err)
	g.mu.Unlock()
}

// skip logs a precondition failure; these are not errors of the run.
func (g *ConverterGenerator) skip(err error) {
	slog.Info("Skipping stub", "reason", err)
}

// IsPrecondition reports whether err means there was nothing to generate.
func IsPrecondition(err error) bool {
	return errors.Is(err, stub.ErrNoStub) ||
		errors.Is(err, analyzer.ErrUnresolvedType) ||
		errors.Is(err, generator.ErrNotMappable)
}

func groupByFile(stubs []*stub.Stub) [][]*stub.Stub {
	var groups [][]*stub.Stub
	index := make(map[string]int)
	for _, s := range stubs {
		i, ok := index[s.Filename]
		if !ok {
			i = len(groups)
			index[s.Filename] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], s)
	}
	return groups
}

func writeFile(filename string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(filename); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(filename, content, mode); err != nil {
		return errors.Wrapf(err, "write %s", filename)
	}
	return nil
}

// joinNames renders names for log output.
func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
