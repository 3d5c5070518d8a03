package config

import (
	"go/ast"
	"strings"
)

// DirectiveScanner collects mapgen comments from package syntax.
type DirectiveScanner struct{}

// NewDirectiveScanner creates a new DirectiveScanner.
func NewDirectiveScanner() *DirectiveScanner {
	return &DirectiveScanner{}
}

// DiscoverDirectives returns every package directive ("//go:mapgen:key=value")
// in source order. Stub markers are not included.
func (s *DirectiveScanner) DiscoverDirectives(files []*ast.File) []string {
	var directives []string
	for _, file := range files {
		for _, commentGroup := range file.Comments {
			for _, comment := range commentGroup.List {
				if strings.HasPrefix(comment.Text, DirectivePrefix+":") {
					directives = append(directives, strings.TrimSpace(comment.Text))
				}
			}
		}
	}
	return directives
}

// IsStubMarker reports whether the comment group marks a function as a mapper stub.
func IsStubMarker(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, comment := range doc.List {
		text := strings.TrimSpace(comment.Text)
		if text == DirectivePrefix || strings.HasPrefix(text, DirectivePrefix+" ") {
			return true
		}
	}
	return false
}
