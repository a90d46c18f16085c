package layout

import (
	"github.com/c360/schemascope/errors"
)

const (
	// DefaultSpringLength is the rest distance for field edges
	DefaultSpringLength = 80.0

	// DefaultSpringStrength scales the pull toward rest distance
	DefaultSpringStrength = 0.3

	// DefaultRepulsionStrength scales the inverse-square push between node pairs
	DefaultRepulsionStrength = 180.0

	// DefaultCenterStrength scales the pull toward canvas center
	DefaultCenterStrength = 0.05

	// DefaultCollisionPadding is extra separation beyond two node radii
	DefaultCollisionPadding = 4.0

	// DefaultAlpha is the starting temperature of a run
	DefaultAlpha = 1.0

	// DefaultAlphaMin is the temperature below which the run is settled
	DefaultAlphaMin = 0.005

	// DefaultAlphaDecay cools roughly to AlphaMin within ~230 ticks
	DefaultAlphaDecay = 0.0228

	// DefaultVelocityDecay is the velocity fraction retained per tick
	DefaultVelocityDecay = 0.6

	// DefaultWidth is the canvas width in layout units
	DefaultWidth = 1200.0

	// DefaultHeight is the canvas height in layout units
	DefaultHeight = 800.0
)

// Config holds force and cooling parameters for one engine instance.
type Config struct {
	SpringLength      float64 `json:"springLength"`
	SpringStrength    float64 `json:"springStrength"`
	RepulsionStrength float64 `json:"repulsionStrength"`
	CenterStrength    float64 `json:"centerStrength"`
	CollisionPadding  float64 `json:"collisionPadding"`
	Alpha             float64 `json:"alpha"`
	AlphaMin          float64 `json:"alphaMin"`
	AlphaDecay        float64 `json:"alphaDecay"`
	VelocityDecay     float64 `json:"velocityDecay"`
	Width             float64 `json:"width"`
	Height            float64 `json:"height"`

	// Seed drives placement jitter for nodes without a prior position.
	// Identical seeds and identical call sequences reproduce identical
	// trajectories.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns the standard simulation parameters.
func DefaultConfig() Config {
	return Config{
		SpringLength:      DefaultSpringLength,
		SpringStrength:    DefaultSpringStrength,
		RepulsionStrength: DefaultRepulsionStrength,
		CenterStrength:    DefaultCenterStrength,
		CollisionPadding:  DefaultCollisionPadding,
		Alpha:             DefaultAlpha,
		AlphaMin:          DefaultAlphaMin,
		AlphaDecay:        DefaultAlphaDecay,
		VelocityDecay:     DefaultVelocityDecay,
		Width:             DefaultWidth,
		Height:            DefaultHeight,
		Seed:              1,
	}
}

// Validate checks parameter ranges. Zero force strengths are legal so
// individual forces can be switched off.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "LayoutEngine", "Validate", "canvas dimensions must be positive")
	}
	if c.SpringLength <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "LayoutEngine", "Validate", "spring length must be positive")
	}
	if c.SpringStrength < 0 || c.RepulsionStrength < 0 || c.CenterStrength < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "LayoutEngine", "Validate", "force strengths must be non-negative")
	}
	if c.CollisionPadding < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "LayoutEngine", "Validate", "collision padding must be non-negative")
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "LayoutEngine", "Validate", "alpha must be in (0, 1]")
	}
	if c.AlphaMin <= 0 || c.AlphaMin >= c.Alpha {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "LayoutEngine", "Validate", "alpha min must be in (0, alpha)")
	}
	if c.AlphaDecay <= 0 || c.AlphaDecay >= 1 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "LayoutEngine", "Validate", "alpha decay must be in (0, 1)")
	}
	if c.VelocityDecay <= 0 || c.VelocityDecay > 1 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "LayoutEngine", "Validate", "velocity decay must be in (0, 1]")
	}
	return nil
}
