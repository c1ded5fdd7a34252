package scroll

import (
	"fmt"
	"math"
	"strings"
)

// Easing maps normalized animation time to normalized progress.
type Easing uint8

const (
	// Linear moves at constant speed.
	Linear Easing = iota
	// EaseOut is a cubic ease-out.
	EaseOut
	// EaseInOut is a cubic ease-in-out.
	EaseInOut
)

// Apply evaluates the easing curve at t, clamped to [0, 1].
func (e Easing) Apply(t float64) float64 {
	t = min(max(t, 0), 1)
	switch e {
	case EaseOut:
		return 1 - math.Pow(1-t, 3)
	case EaseInOut:
		if t < 0.5 {
			return 4 * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 3)/2
	}
	return t
}

func (e Easing) String() string {
	switch e {
	case EaseOut:
		return "ease-out"
	case EaseInOut:
		return "ease-in-out"
	}
	return "linear"
}

// ParseEasing accepts the names returned by String.
func ParseEasing(s string) (Easing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return Linear, nil
	case "ease-out", "easeout":
		return EaseOut, nil
	case "ease-in-out", "easeinout":
		return EaseInOut, nil
	}
	return Linear, fmt.Errorf("unknown easing %q", s)
}
