// Package splitrange implements the split-range mapping from a single PID
// output to disjoint damper% / fan% actuator ranges (spec.md §4.3).
package splitrange

import "pitcore/internal/mathx"

// Map transforms PID output u (0..100) into damper% (linear, clamped) and
// fan% (0 below threshold, linear ramp from threshold to 100 above it).
func Map(u, fanOnThreshold float64) (damperPct, fanPct float64) {
	damperPct = mathx.Clamp(u, 0, 100)
	if u <= fanOnThreshold {
		return damperPct, 0
	}
	if fanOnThreshold >= 100 {
		return damperPct, 0
	}
	fanPct = mathx.Clamp((u-fanOnThreshold)/(100-fanOnThreshold)*100, 0, 100)
	return damperPct, fanPct
}
