// Package mathx collects the small numeric helpers shared by the control
// loop (float64 PID, split-range and actuator math) and the PWM/servo path
// (integer duty and angle math), so both use the same clamp/lerp/map
// vocabulary.
package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Between reports lo <= v && v <= hi (order-insensitive).
func Between[T constraints.Ordered](v, lo, hi T) bool {
	if hi < lo {
		lo, hi = hi, lo
	}
	return v >= lo && v <= hi
}

// Min/Max for ordered types not covered by a builtin in the call site's context.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Abs for signed numeric types.
func Abs[T constraints.Signed | constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Lerp linearly interpolates between a and b with t in [0,1]. t is not
// clamped by this function; callers that need saturation should Clamp t
// first.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// Map maps x from [inMin,inMax] to [outMin,outMax], clamping x to the input
// range first. inMin==inMax maps everything to outMin.
func Map[T constraints.Float](x, inMin, inMax, outMin, outMax T) T {
	if inMax == inMin {
		return outMin
	}
	x = Clamp(x, Min(inMin, inMax), Max(inMin, inMax))
	return outMin + (x-inMin)*(outMax-outMin)/(inMax-inMin)
}

// MapU16 maps x in [inMin,inMax] to [outMin,outMax] with 32-bit
// intermediates, for the duty/pulse-width integer path. Clamps to the out
// range if x is outside the input range.
func MapU16(x, inMin, inMax, outMin, outMax uint16) uint16 {
	if inMax == inMin {
		return outMin
	}
	if x < inMin {
		return outMin
	}
	if x > inMax {
		return outMax
	}
	num := uint32(x-inMin) * uint32(outMax-outMin)
	den := uint32(inMax - inMin)
	return uint16(uint32(outMin) + num/den)
}

// RoundDiv returns a/b rounded to the nearest integer, halves away from
// zero (floor((a + b/2)/b) for non-negative a); b == 0 yields 0.
func RoundDiv[T constraints.Integer](a, b T) T {
	if b == 0 {
		return 0
	}
	half := b / 2
	if a < 0 {
		return -(((-a) + half) / b)
	}
	return (a + half) / b
}
