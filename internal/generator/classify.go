package generator

import "github.com/origadmin/mapgen/internal/model"

// Strategy selects the generator for a (target, source) pair.
type Strategy int

const (
	// StrategyObject maps a struct field by field.
	StrategyObject Strategy = iota
	// StrategyList maps a slice element by element.
	StrategyList
	// StrategySet maps a set element by element.
	StrategySet
)

func (s Strategy) String() string {
	switch s {
	case StrategyList:
		return "List"
	case StrategySet:
		return "Set"
	default:
		return "Object"
	}
}

// Classify picks the strategy for a pair. Mismatched collections fall
// through to StrategyObject.
func Classify(target, source *model.TypeDescriptor) Strategy {
	if !target.IsCollection() || target.Kind != source.Kind {
		return StrategyObject
	}
	if target.Kind == model.Set {
		return StrategySet
	}
	return StrategyList
}
