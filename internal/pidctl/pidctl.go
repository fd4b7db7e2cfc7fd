// Package pidctl implements the direct-acting PID regulator and its
// sticky lid-open detector (spec.md §4.2). A general-purpose PID library
// (e.g. felixge/pidctrl) was considered and rejected: the lid-open
// behaviour requires freezing the integral and previous-error state from
// outside the PID's own update step, which black-box PID libraries don't
// expose hooks for; see DESIGN.md.
package pidctl

import "pitcore/internal/mathx"

// Gains are the PID tuning constants.
type Gains struct {
	Kp, Ki, Kd float64
}

// LidThresholds are the sticky lid-open drop/recover percentages of
// setpoint (spec.md defaults: 6% / 2%).
type LidThresholds struct {
	DropPct, RecoverPct float64
}

// Controller is the PID + lid-open state machine. Zero value is usable
// but Enabled defaults to false; call SetEnabled(true) to arm it.
type Controller struct {
	Gains Gains
	Lid   LidThresholds

	integral    float64
	prevError   float64
	output      float64
	enabled     bool
	lidOpen     bool
	havePrev    bool
}

func New(g Gains, lid LidThresholds) *Controller {
	return &Controller{Gains: g, Lid: lid}
}

// Enabled reports whether the regulator is active.
func (c *Controller) Enabled() bool { return c.enabled }

// LidOpen reports the sticky lid-open flag.
func (c *Controller) LidOpen() bool { return c.lidOpen }

// Output returns the last computed output, 0..100.
func (c *Controller) Output() float64 { return c.output }

// SetEnabled arms or disarms the regulator. Disabling forces output to 0
// and clears the lid-open flag and all internal state, per spec.md §4.2.
func (c *Controller) SetEnabled(on bool) {
	c.enabled = on
	if !on {
		c.output = 0
		c.lidOpen = false
		c.integral = 0
		c.prevError = 0
		c.havePrev = false
	}
}

// Update runs one PID_SAMPLE_MS tick given the current pit temperature,
// setpoint, and elapsed seconds since the previous Update call, and
// returns the new output (0..100).
func (c *Controller) Update(pitTemp, setpoint, dtSeconds float64) float64 {
	c.updateLidState(pitTemp, setpoint)

	if !c.enabled {
		c.output = 0
		return c.output
	}
	if c.lidOpen {
		// Output forced to 0; integral held; previous error unchanged.
		c.output = 0
		return c.output
	}
	if dtSeconds <= 0 {
		dtSeconds = 1
	}

	err := setpoint - pitTemp
	if !c.havePrev {
		c.prevError = err
		c.havePrev = true
	}

	p := c.Gains.Kp * err

	// Tentative integral, used only to detect wind-up direction before
	// committing it.
	tentativeIntegral := c.integral + err*dtSeconds
	derivative := (err - c.prevError) / dtSeconds
	d := c.Gains.Kd * derivative

	unclamped := p + c.Gains.Ki*tentativeIntegral + d
	out := mathx.Clamp(unclamped, 0, 100)

	saturatedHigh := unclamped > 100 && err > 0
	saturatedLow := unclamped < 0 && err < 0
	if !saturatedHigh && !saturatedLow {
		c.integral = tentativeIntegral
	}

	c.prevError = err
	c.output = out
	return out
}

// updateLidState runs the sticky lid-open hysteresis of spec.md §4.2.
func (c *Controller) updateLidState(pitTemp, setpoint float64) {
	if !c.lidOpen {
		if setpoint > 0 && pitTemp < setpoint*(1-c.Lid.DropPct/100) {
			c.lidOpen = true
		}
		return
	}
	if pitTemp >= setpoint*(1-c.Lid.RecoverPct/100) {
		c.lidOpen = false
	}
}
