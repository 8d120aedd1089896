// Package policy handles tether.toml registry tuning.
package policy

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Policy collects the tunable limits of a handle registry.
type Policy struct {
	Limits Limits `toml:"limits"`
	Log    Log    `toml:"log"`
}

// Limits bounds registry internals.
type Limits struct {
	// HopBound caps subtag traversal depth; cyclic edge sets degrade
	// to "unrelated" within this many hops.
	HopBound int `toml:"hop-bound"`
	// MaxCount is the ceiling for counted registrations. A count that
	// reaches it saturates and stays saturated.
	MaxCount int64 `toml:"max-count"`
}

// Log configures diagnostics output.
type Log struct {
	// Level is the commonlog verbosity name (error, warning, notice,
	// info, debug).
	Level string `toml:"level"`
}

// Default returns the policy used when no tether.toml is present.
func Default() Policy {
	return Policy{
		Limits: Limits{
			HopBound: 10,
			MaxCount: math.MaxInt32,
		},
		Log: Log{Level: "notice"},
	}
}

// Load parses a tether.toml file from the given directory. Fields left
// out of the file keep their defaults.
func Load(dir string) (Policy, error) {
	path := filepath.Join(dir, "tether.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("cannot read %s: %w", path, err)
	}

	p := Default()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("invalid policy in %s: %w", path, err)
	}
	return p, nil
}

// Validate checks the policy's limits.
func (p Policy) Validate() error {
	if p.Limits.HopBound <= 0 {
		return fmt.Errorf("limits.hop-bound must be positive, got %d", p.Limits.HopBound)
	}
	if p.Limits.MaxCount < 1 {
		return fmt.Errorf("limits.max-count must be at least 1, got %d", p.Limits.MaxCount)
	}
	return nil
}
