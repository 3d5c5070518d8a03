package generator

import "github.com/origadmin/mapgen/internal/model"

// Topological orders methods so that every method precedes the helpers it
// calls: a depth-first preorder walk from root over the call edges. Methods
// not reachable from root keep their accumulated order at the end.
func Topological(methods []*model.GeneratedMethod, root model.ConversionKey) []*model.GeneratedMethod {
	byKey := make(map[model.ConversionKey]*model.GeneratedMethod, len(methods))
	for _, m := range methods {
		byKey[m.Key] = m
	}

	ordered := make([]*model.GeneratedMethod, 0, len(methods))
	visited := make(map[model.ConversionKey]bool, len(methods))
	var visit func(key model.ConversionKey)
	visit = func(key model.ConversionKey) {
		m, ok := byKey[key]
		if !ok || visited[key] {
			return
		}
		visited[key] = true
		ordered = append(ordered, m)
		for _, call := range m.Calls {
			visit(call)
		}
	}
	visit(root)

	for _, m := range methods {
		if !visited[m.Key] {
			ordered = append(ordered, m)
		}
	}
	return ordered
}
