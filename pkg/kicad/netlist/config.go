package netlist

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/schnet/pkg/kicad/sexp"
)

// Config controls the behavior of net synthesis.
type Config struct {
	// Tolerance is the distance at or below which two points are the same
	// point (default: 0.01).
	Tolerance float64

	// RotatePins applies the component rotation to pin offsets before
	// matching (default: false).
	RotatePins bool
}

// DefaultConfig returns a Config matching the reference placement rules.
func DefaultConfig() *Config {
	return &Config{
		Tolerance:  sexp.DefaultTolerance,
		RotatePins: false,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if math.IsNaN(c.Tolerance) || math.IsInf(c.Tolerance, 0) || c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be a positive finite number, got %v", c.Tolerance)
	}
	return nil
}
