package config

import (
	"go/ast"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
)

// Parser applies package-level mapgen directives on top of a base configuration.
//
//	//go:mapgen:known=github.com/shopspring/decimal.Decimal,time.Month
//	//go:mapgen:order=topological
//	//go:mapgen:ignore_tag=json
type Parser struct {
	config *Config
}

// NewParser creates a parser working on a copy of base.
func NewParser(base *Config) *Parser {
	if base == nil {
		base = NewConfig()
	}
	return &Parser{config: base.Clone()}
}

// Parse scans the files for directives and returns the resulting configuration.
func (p *Parser) Parse(files []*ast.File) (*Config, error) {
	directives := NewDirectiveScanner().DiscoverDirectives(files)
	for _, directive := range directives {
		if err := p.parseDirective(directive); err != nil {
			return nil, err
		}
	}
	if err := p.config.Validate(); err != nil {
		return nil, err
	}
	return p.config, nil
}

// parseDirective processes a single "//go:mapgen:key=value" comment.
func (p *Parser) parseDirective(directive string) error {
	directive = strings.TrimPrefix(directive, DirectivePrefix+":")
	parts := strings.SplitN(directive, "=", 2)
	key := strings.TrimSpace(parts[0])
	var value string
	if len(parts) > 1 {
		value = strings.Trim(strings.TrimSpace(parts[1]), `"`)
	}

	switch key {
	case "known":
		for _, name := range strings.Split(value, ",") {
			p.config.AddKnownValue(strings.TrimSpace(name))
		}
	case "order":
		p.config.Order = Order(value)
	case "ignore_tag":
		p.config.IgnoreTag = value
	default:
		return errors.WithHint(
			errors.Newf("unknown directive %s:%s", DirectivePrefix, key),
			"supported directives are known, order and ignore_tag",
		)
	}
	slog.Debug("Parser.parseDirective", "key", key, "value", value)
	return nil
}
