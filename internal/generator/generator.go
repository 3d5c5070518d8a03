// Package generator produces the source text of mapper functions: the root
// conversion of a stub and every helper conversion its body calls.
package generator

import (
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/origadmin/mapgen/internal/config"
	"github.com/origadmin/mapgen/internal/model"
)

var (
	// ErrCyclicTypeGraph is returned when a conversion is re-entered while it is
	// still being generated.
	ErrCyclicTypeGraph = errors.New("cyclic type graph")
	// ErrNotMappable is returned when the root pair is neither two collections
	// of the same kind nor a struct target.
	ErrNotMappable = errors.New("types are not mappable")
)

// Receiver describes the receiver of a stub declared as a method.
type Receiver struct {
	// Name is the receiver identifier used in generated calls.
	Name string
	// Type is the receiver type as written in source, e.g. "*Mapper".
	Type string
}

// Options configures one invocation.
type Options struct {
	// LocalPkg is the import path of the package the code is generated into.
	LocalPkg string
	// Receiver turns every generated function into a method when set.
	Receiver *Receiver
	// Imports qualifies package names; a fresh manager is used when nil.
	Imports *ImportManager
	// Reserved holds identifiers a helper name must not take.
	Reserved map[string]bool
	// Order is the emission order of the generated methods.
	Order config.Order
}

// Result is the outcome of one invocation.
type Result struct {
	// Root is the name of the conversion generated for the stub's own pair.
	Root string
	// Methods are the generated methods in emission order, root included.
	Methods []*model.GeneratedMethod
	// Imports lists the imports the generated text needs and the file lacks.
	Imports []Import
}

// Source joins the generated methods into one block of Go source.
func (r *Result) Source() string {
	texts := make([]string, 0, len(r.Methods))
	for _, m := range r.Methods {
		texts = append(texts, m.Text)
	}
	return strings.Join(texts, "\n")
}

// Names returns the names of the generated methods in emission order.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Methods))
	for _, m := range r.Methods {
		names = append(names, m.Name)
	}
	return names
}

// Generate produces the conversion of source into target and every helper it
// needs. Nothing is shared between calls, so equal inputs give equal output.
func Generate(meta model.Metadata, target, source *model.TypeDescriptor, opts Options) (*Result, error) {
	if target == nil || source == nil {
		return nil, errors.Wrap(ErrNotMappable, "missing type")
	}
	strategy := Classify(target, source)
	if strategy == StrategyObject && target.Kind != model.Class {
		return nil, errors.WithHint(
			errors.Wrapf(ErrNotMappable, "%s from %s", target, source),
			"the result type must be a struct, or a slice or set when the parameter is one too",
		)
	}

	c := newContext(meta, opts)
	slog.Info("Generating mapper", "source", source.CanonicalName(), "target", target.CanonicalName(), "strategy", strategy)
	root, err := c.generate(strategy, target, source)
	if err != nil {
		return nil, err
	}

	methods := c.methods
	if opts.Order == config.OrderTopological {
		methods = Topological(methods, model.NewConversionKey(target, source))
	}
	slog.Info("Generated mapper", "root", root, "methods", len(methods))
	return &Result{
		Root:    root,
		Methods: methods,
		Imports: c.imports.Missing(),
	}, nil
}
