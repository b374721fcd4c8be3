package preprocess

import "fmt"

// Strength selects how much smoothing the denoise step applies.
type Strength int

const (
	DenoiseNone Strength = iota
	DenoiseLight
	DenoiseAggressive
)

// ParseStrength converts a configuration string into a Strength.
func ParseStrength(s string) (Strength, error) {
	switch s {
	case "", "none":
		return DenoiseNone, nil
	case "light":
		return DenoiseLight, nil
	case "aggressive":
		return DenoiseAggressive, nil
	default:
		return DenoiseNone, fmt.Errorf("unknown denoise strength %q", s)
	}
}

func (s Strength) String() string {
	switch s {
	case DenoiseLight:
		return "light"
	case DenoiseAggressive:
		return "aggressive"
	default:
		return "none"
	}
}

// Options control the correction steps. Strength and boost are configuration
// driven, not content adaptive, so repeated runs stay deterministic.
type Options struct {
	Deskew        bool
	Denoise       Strength
	ContrastBoost float64
	AutoCrop      bool
}

// DefaultOptions returns the corrections applied when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Deskew:        true,
		Denoise:       DenoiseLight,
		ContrastBoost: 1.0,
		AutoCrop:      false,
	}
}
