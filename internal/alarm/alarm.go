// Package alarm implements the pit-deviation and meat-completion alarm
// state machine of spec.md §4.6, driving a buzzer cadence through the
// ports.BuzzerPort capability.
package alarm

import "pitcore/internal/probe"

type Kind int

const (
	PitHigh Kind = iota
	PitLow
	Meat1Done
	Meat2Done
)

func (k Kind) String() string {
	switch k {
	case PitHigh:
		return "PitHigh"
	case PitLow:
		return "PitLow"
	case Meat1Done:
		return "Meat1Done"
	case Meat2Done:
		return "Meat2Done"
	default:
		return "Unknown"
	}
}

// Config holds the buzzer cadence and tone, sourced from spec.md §6.
type Config struct {
	PitBandDeg float64
	ToneHz     uint32
	OnMs       int64 // default 500
	OffMs      int64 // default 500
}

// Machine evaluates alarm conditions each tick and drives the buzzer.
type Machine struct {
	cfg    Config
	buzzer interface {
		ToneOn(uint32)
		ToneOff()
	}

	enabled bool

	meat1Target float64
	meat2Target float64

	pitTriggered   bool
	meat1Triggered bool
	meat2Triggered bool

	active []Kind

	buzzerOn       bool
	cadenceStarted bool
	lastToggleMs   int64
}

func New(cfg Config, buzzer interface {
	ToneOn(uint32)
	ToneOff()
}) *Machine {
	return &Machine{cfg: cfg, buzzer: buzzer, enabled: true}
}

func (m *Machine) SetEnabled(on bool) {
	m.enabled = on
	if !on {
		m.silence()
	}
}

func (m *Machine) Enabled() bool { return m.enabled }

// SetPitBand updates the pit-deviation band in place, leaving meat targets
// and trigger state untouched.
func (m *Machine) SetPitBand(degrees float64) { m.cfg.PitBandDeg = degrees }

// SetMeatTarget sets the completion target for meat probe n (1 or 2) and
// clears its triggered flag, allowing the alarm to re-fire on the new
// target.
func (m *Machine) SetMeatTarget(n int, target float64) {
	switch n {
	case 1:
		m.meat1Target = target
		m.meat1Triggered = false
	case 2:
		m.meat2Target = target
		m.meat2Triggered = false
	}
}

// Active returns the currently active alarm kinds, in evaluation order.
func (m *Machine) Active() []Kind {
	out := make([]Kind, len(m.active))
	copy(out, m.active)
	return out
}

func (m *Machine) IsAlarming() bool { return m.enabled && len(m.active) > 0 }

// Acknowledge silences the buzzer, clears the active list, and sets the
// trigger flags of every currently active kind so they do not immediately
// re-fire.
func (m *Machine) Acknowledge() {
	for _, k := range m.active {
		switch k {
		case PitHigh, PitLow:
			m.pitTriggered = true
		case Meat1Done:
			m.meat1Triggered = true
		case Meat2Done:
			m.meat2Triggered = true
		}
	}
	m.active = nil
	m.silence()
}

func (m *Machine) silence() {
	if m.buzzerOn {
		m.buzzer.ToneOff()
	}
	m.buzzerOn = false
	m.cadenceStarted = false
}

// Update evaluates the pit-deviation and meat-completion conditions and
// drives the buzzer cadence. Call once per tick with the just-sampled
// temperatures and probe statuses.
func (m *Machine) Update(
	pitTemp, setpoint float64, pitReached bool,
	meat1Temp float64, meat1Status probe.Status,
	meat2Temp float64, meat2Status probe.Status,
	nowMs int64,
) {
	if !m.enabled {
		return
	}

	var active []Kind

	if pitReached {
		switch {
		case pitTemp > setpoint+m.cfg.PitBandDeg:
			if !m.pitTriggered {
				active = append(active, PitHigh)
			}
		case pitTemp < setpoint-m.cfg.PitBandDeg:
			if !m.pitTriggered {
				active = append(active, PitLow)
			}
		default:
			m.pitTriggered = false
		}
	}

	// A meat-done alarm stays active until Acknowledge clears the list or
	// SetMeatTarget re-arms its probe.
	for _, k := range m.active {
		if (k == Meat1Done && m.meat1Triggered) || (k == Meat2Done && m.meat2Triggered) {
			active = append(active, k)
		}
	}

	if m.meat1Target > 0 && meat1Status == probe.Ok && meat1Temp > 0 {
		if meat1Temp >= m.meat1Target && !m.meat1Triggered {
			active = append(active, Meat1Done)
			m.meat1Triggered = true
		}
	}
	if m.meat2Target > 0 && meat2Status == probe.Ok && meat2Temp > 0 {
		if meat2Temp >= m.meat2Target && !m.meat2Triggered {
			active = append(active, Meat2Done)
			m.meat2Triggered = true
		}
	}

	m.active = active
	m.runBuzzer(nowMs)
}

func (m *Machine) runBuzzer(nowMs int64) {
	if !m.IsAlarming() {
		m.silence()
		return
	}

	onMs, offMs := m.cfg.OnMs, m.cfg.OffMs
	if onMs <= 0 {
		onMs = 500
	}
	if offMs <= 0 {
		offMs = 500
	}

	if !m.cadenceStarted {
		m.cadenceStarted = true
		m.lastToggleMs = nowMs
		m.buzzerOn = true
		m.buzzer.ToneOn(m.cfg.ToneHz)
		return
	}

	elapsed := nowMs - m.lastToggleMs
	if m.buzzerOn && elapsed >= onMs {
		m.buzzerOn = false
		m.buzzer.ToneOff()
		m.lastToggleMs = nowMs
	} else if !m.buzzerOn && elapsed >= offMs {
		m.buzzerOn = true
		m.buzzer.ToneOn(m.cfg.ToneHz)
		m.lastToggleMs = nowMs
	}
}
