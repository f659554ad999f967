package common

import "math"

// FloorModf returns a mod n in [0, n) for n > 0, also for negative a.
// Non-finite inputs map to 0.
func FloorModf(a, n float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	m := math.Mod(a, n)
	if m < 0 {
		m += n
	}
	if m >= n {
		m = 0
	}
	return m
}

// ClampByte rounds v and clamps it into the 0..255 channel range.
func ClampByte(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(math.Round(v))
	}
}

// Clamp01 clamps v into [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
