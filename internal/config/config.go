package config

import (
	"slices"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Order decides how generated methods are laid out in the file.
type Order string

const (
	// OrderAccumulated keeps the order in which the generators produced the methods.
	OrderAccumulated Order = "accumulated"
	// OrderTopological puts every caller before the helpers it calls, root first.
	OrderTopological Order = "topological"
)

// DefaultIgnoreTag is the struct tag key whose "-" value excludes a field.
const DefaultIgnoreTag = "mapgen"

// defaultKnownValueTypes are structurally structs but always copied as a unit.
var defaultKnownValueTypes = []string{
	"time.Time",
	"time.Duration",
	"time.Location",
	"math/big.Int",
	"math/big.Float",
	"math/big.Rat",
	"github.com/google/uuid.UUID",
	"github.com/shopspring/decimal.Decimal",
	"encoding/json.RawMessage",
}

// Config holds the complete configuration for a generation run.
type Config struct {
	// KnownValueTypes lists canonical type names (import path + "." + name)
	// treated as atomic leaves.
	KnownValueTypes []string `mapstructure:"known_value_types" yaml:"known_value_types"`
	// Order is the emission order of generated methods.
	Order Order `mapstructure:"order" yaml:"order"`
	// IgnoreTag is the struct tag key checked for "-".
	IgnoreTag string `mapstructure:"ignore_tag" yaml:"ignore_tag"`
}

// NewConfig creates a configuration populated with defaults.
func NewConfig() *Config {
	return &Config{
		KnownValueTypes: slices.Clone(defaultKnownValueTypes),
		Order:           OrderAccumulated,
		IgnoreTag:       DefaultIgnoreTag,
	}
}

// Clone creates a deep copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.KnownValueTypes = slices.Clone(c.KnownValueTypes)
	return &clone
}

// IsKnownValue reports whether the canonical type name is configured as atomic.
func (c *Config) IsKnownValue(canonical string) bool {
	return slices.Contains(c.KnownValueTypes, canonical)
}

// AddKnownValue appends a canonical type name unless it is already present.
func (c *Config) AddKnownValue(canonical string) {
	if canonical == "" || c.IsKnownValue(canonical) {
		return
	}
	c.KnownValueTypes = append(c.KnownValueTypes, canonical)
}

// Validate checks the configuration for unsupported values.
func (c *Config) Validate() error {
	switch c.Order {
	case OrderAccumulated, OrderTopological:
	default:
		return errors.WithHint(
			errors.Newf("unsupported order %q", c.Order),
			"use \"accumulated\" or \"topological\"",
		)
	}
	if c.IgnoreTag == "" {
		return errors.New("ignore tag must not be empty")
	}
	return nil
}

// YAML renders the configuration in the .mapgen.yaml format.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "marshal config")
	}
	return out, nil
}
