// Package damper implements the butterfly-damper servo mapping of spec.md
// §4.5: position % -> angle -> pulse width, written through the
// ports.ServoPort capability at 50 Hz.
package damper

import "pitcore/internal/mathx"

// Config holds the servo's mechanical and electrical limits.
type Config struct {
	ClosedAngleDeg float64
	OpenAngleDeg   float64
	MinPulseUs     uint16
	MaxPulseUs     uint16
}

// Actuator maps a commanded position percentage onto a servo pulse width.
type Actuator struct {
	cfg         Config
	servo       interface{ WriteServoUs(uint16) }
	angleDeg    float64
	positionPct float64
}

func New(cfg Config, servo interface{ WriteServoUs(uint16) }) *Actuator {
	return &Actuator{cfg: cfg, servo: servo}
}

// AngleDeg returns the last commanded angle.
func (a *Actuator) AngleDeg() float64 { return a.angleDeg }

// PositionPct returns the last commanded position, 0..100.
func (a *Actuator) PositionPct() float64 { return a.positionPct }

// SetPosition maps positionPct (0..100) to an angle within
// [ClosedAngleDeg, OpenAngleDeg] and writes the corresponding pulse width.
func (a *Actuator) SetPosition(positionPct float64) {
	positionPct = mathx.Clamp(positionPct, 0, 100)
	a.positionPct = positionPct
	a.angleDeg = mathx.Lerp(a.cfg.ClosedAngleDeg, a.cfg.OpenAngleDeg, positionPct/100)

	us := mathx.MapU16(
		uint16(mathx.Clamp(a.angleDeg, 0, 180)),
		0, 180,
		a.cfg.MinPulseUs, a.cfg.MaxPulseUs,
	)
	a.servo.WriteServoUs(us)
}
