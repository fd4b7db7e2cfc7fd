// Package fan implements the blower fan actuator state machine of spec.md
// §4.4: kick-start, long-pulse sub-threshold cycling, minimum-speed clamp,
// and manual override, writing a single 8-bit PWM duty value through the
// ports.PWMPort capability (concretely, internal/hwio's PCA9685 actuator
// on real hardware).
package fan

import "pitcore/internal/mathx"

type State int

const (
	Off State = iota
	Kickstart
	LongPulse
	Normal
)

// Config holds the actuator's tunables, all sourced from the
// configuration surface of spec.md §6.
type Config struct {
	KickstartPct          float64 // ~75
	KickstartDurationMs   int64
	MinSpeedPct           float64
	LongPulseThresholdPct float64
	LongPulseCycleMs      int64
}

// Actuator is the fan state machine. Use New to construct it so wasOff
// starts true (the next non-zero SetSpeed triggers kick-start).
type Actuator struct {
	cfg Config
	pwm interface{ WritePWM(uint8) }

	state     State
	target    float64
	effective float64
	duty      uint8
	wasOff    bool
	manual    bool

	kickstartEndMs        int64
	longPulseCycleStartMs int64
}

func New(cfg Config, pwm interface{ WritePWM(uint8) }) *Actuator {
	return &Actuator{cfg: cfg, pwm: pwm, wasOff: true}
}

func (a *Actuator) State() State            { return a.state }
func (a *Actuator) IsKickStarting() bool    { return a.state == Kickstart && !a.manual }
func (a *Actuator) IsLongPulsing() bool     { return a.state == LongPulse && !a.manual }
func (a *Actuator) IsManual() bool          { return a.manual }
func (a *Actuator) Duty() uint8             { return a.duty }
func (a *Actuator) EffectivePct() float64   { return a.effective }
func (a *Actuator) Target() float64         { return a.target }

// SetSpeed sets the automatic target percent (0..100). Ignored while a
// manual override is active; per spec.md §4.4, a new automatic target is
// only honoured after Off() clears the override.
func (a *Actuator) SetSpeed(targetPct float64) {
	if a.manual {
		return
	}
	a.target = mathx.Clamp(targetPct, 0, 100)
}

// SetManualDuty freezes the actuator at an explicit duty byte until Off()
// is called.
func (a *Actuator) SetManualDuty(duty uint8) {
	a.manual = true
	a.duty = duty
	a.pwm.WritePWM(duty)
}

// Off transitions to the Off state unconditionally: duty=0, all flags
// clear, manual override is exited, and the next non-zero SetSpeed will
// trigger kick-start (invariant: wasOff=true).
func (a *Actuator) Off() {
	a.manual = false
	a.target = 0
	a.state = Off
	a.wasOff = true
	a.effective = 0
	a.setDutyFromPct(0)
}

// Update advances the state machine by one tick at time nowMs and writes
// the resulting PWM duty. Call once per scheduler tick, after SetSpeed.
func (a *Actuator) Update(nowMs int64) {
	if a.manual {
		return
	}
	if a.target <= 0 {
		a.Off()
		return
	}

	switch a.state {
	case Off:
		if a.wasOff {
			a.enterKickstart(nowMs)
		}
	case Kickstart:
		if nowMs >= a.kickstartEndMs {
			if a.target < a.cfg.LongPulseThresholdPct {
				a.enterLongPulse(nowMs)
			} else {
				a.enterNormal()
			}
		}
	case Normal:
		if a.target < a.cfg.LongPulseThresholdPct {
			a.enterLongPulse(nowMs)
		} else {
			a.enterNormal()
		}
	case LongPulse:
		if a.target >= a.cfg.LongPulseThresholdPct {
			a.enterNormal()
		} else {
			a.runLongPulseCycle(nowMs)
		}
	}
}

func (a *Actuator) enterKickstart(nowMs int64) {
	a.state = Kickstart
	a.wasOff = false
	a.kickstartEndMs = nowMs + a.cfg.KickstartDurationMs
	a.effective = a.cfg.KickstartPct
	a.setDutyFromPct(a.effective)
}

func (a *Actuator) enterLongPulse(nowMs int64) {
	if a.state != LongPulse {
		a.longPulseCycleStartMs = nowMs // anchor only on entry
	}
	a.state = LongPulse
	a.runLongPulseCycle(nowMs)
}

func (a *Actuator) enterNormal() {
	a.state = Normal
	eff := a.target
	if eff > 0 && eff < a.cfg.MinSpeedPct {
		eff = a.cfg.MinSpeedPct
	}
	a.effective = eff
	a.setDutyFromPct(eff)
}

// runLongPulseCycle computes the on/off duty for the current position
// within a long-pulse cycle, anchored at longPulseCycleStartMs.
func (a *Actuator) runLongPulseCycle(nowMs int64) {
	period := a.cfg.LongPulseCycleMs
	if period <= 0 {
		period = 1
	}
	threshold := a.cfg.LongPulseThresholdPct
	if threshold <= 0 {
		threshold = 1
	}
	onFraction := mathx.Clamp(a.target/threshold, 0, 1)
	elapsed := (nowMs - a.longPulseCycleStartMs) % period
	if elapsed < 0 {
		elapsed += period
	}
	onDurationMs := int64(onFraction * float64(period))

	if elapsed < onDurationMs {
		a.effective = a.cfg.MinSpeedPct
	} else {
		a.effective = 0
	}
	a.setDutyFromPct(a.effective)
}

func (a *Actuator) setDutyFromPct(pct float64) {
	pct = mathx.Clamp(pct, 0, 100)
	a.duty = uint8(mathx.Clamp(pct/100*255, 0, 255))
	a.pwm.WritePWM(a.duty)
}
