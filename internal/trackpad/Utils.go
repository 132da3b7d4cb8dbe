package trackpad

import "math"

// truncate converts a surface coordinate to device units, rounding toward
// zero and saturating at the int32 range. NaN becomes 0.
func truncate(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func i32Max(a int32, b int32) int32 {
	if a < b {
		return b
	}
	return a
}

func boolValue(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
