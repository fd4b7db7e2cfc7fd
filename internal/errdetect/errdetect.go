// Package errdetect maintains the active-error list of spec.md §4.7: probe
// open/short, fire-out (sustained decline under saturated fan), and
// link-lost, each idempotent on (kind, probe index).
package errdetect

import (
	"fmt"

	"pitcore/errcode"
	"pitcore/internal/probe"
)

const maxErrors = 8

// Entry is one active error: a stable kind, the probe it concerns (or -1
// for errors not tied to a probe), and a human-readable message.
type Entry struct {
	Kind       errcode.Code
	ProbeIndex int
	Message    string
}

// Config holds the fire-out detector's tunables.
type Config struct {
	FireOutRateDegPerMin float64 // default 5
	FireOutDurationMs    int64   // default 10 * 60_000
	FanSaturatedPct      float64 // default 95
	SampleGateMs         int64   // default 60_000 (simulated minute)
}

const fireOutRingSize = 10

// Detector tracks the active error list plus the fire-out ring state.
type Detector struct {
	cfg     Config
	entries []Entry

	linkLost bool

	ring       [fireOutRingSize]float64
	ringHead   int
	ringCount  int
	lastSample int64
	sampled    bool

	declining      bool
	declineStartMs int64
}

func New(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Active returns the current active error list, in the order entries were
// added (stable for the lifetime of a given error).
func (d *Detector) Active() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

func (d *Detector) has(kind errcode.Code, probeIndex int) bool {
	for _, e := range d.entries {
		if e.Kind == kind && e.ProbeIndex == probeIndex {
			return true
		}
	}
	return false
}

func (d *Detector) add(kind errcode.Code, probeIndex int, message string) {
	if d.has(kind, probeIndex) {
		return
	}
	if len(d.entries) >= maxErrors {
		return
	}
	d.entries = append(d.entries, Entry{Kind: kind, ProbeIndex: probeIndex, Message: message})
}

func (d *Detector) remove(kind errcode.Code, probeIndex int) {
	out := d.entries[:0]
	for _, e := range d.entries {
		if e.Kind == kind && e.ProbeIndex == probeIndex {
			continue
		}
		out = append(out, e)
	}
	d.entries = out
}

var probeNames = map[probe.Index]string{
	probe.Pit:   "pit",
	probe.Meat1: "meat1",
	probe.Meat2: "meat2",
}

// UpdateProbe applies the per-tick probe-status rule for one probe index.
func (d *Detector) UpdateProbe(idx probe.Index, status probe.Status) {
	i := int(idx)
	name := probeNames[idx]
	switch status {
	case probe.Open:
		d.add(errcode.ProbeOpen, i, fmt.Sprintf("%s probe disconnected", name))
		d.remove(errcode.ProbeShort, i)
	case probe.Short:
		d.add(errcode.ProbeShort, i, fmt.Sprintf("%s probe shorted", name))
		d.remove(errcode.ProbeOpen, i)
	case probe.Ok:
		d.remove(errcode.ProbeOpen, i)
		d.remove(errcode.ProbeShort, i)
	}
}

// UpdateLink applies the link-lost rule.
func (d *Detector) UpdateLink(connected bool) {
	d.linkLost = !connected
	if connected {
		d.remove(errcode.LinkLost, -1)
	} else {
		d.add(errcode.LinkLost, -1, "network link down")
	}
}

// UpdateFireOut samples pitTemp into the minute-cadence ring and evaluates
// the sustained-decline-under-saturated-fan condition. Call every tick;
// internally gated to once per SampleGateMs.
func (d *Detector) UpdateFireOut(nowMs int64, pitTemp, fanPct float64) {
	gate := d.cfg.SampleGateMs
	if gate <= 0 {
		gate = 60_000
	}
	if d.sampled && nowMs-d.lastSample < gate {
		return
	}
	prevTemp, hadPrev := d.latestRingValue()
	d.sampled = true
	d.lastSample = nowMs
	d.pushRing(pitTemp)

	rate := d.cfg.FireOutRateDegPerMin
	if rate <= 0 {
		rate = 5
	}
	duration := d.cfg.FireOutDurationMs
	if duration <= 0 {
		duration = 10 * 60_000
	}
	satPct := d.cfg.FanSaturatedPct
	if satPct <= 0 {
		satPct = 95
	}

	if d.ringCount < 2 || !hadPrev || prevTemp <= 0 {
		d.clearDecline()
		return
	}

	ratePerMin := prevTemp - pitTemp
	if ratePerMin >= rate && fanPct >= satPct {
		if !d.declining {
			d.declining = true
			d.declineStartMs = nowMs
		}
		if nowMs-d.declineStartMs >= duration {
			d.add(errcode.FireOut, -1, "fire appears to be out")
		}
	} else {
		d.clearDecline()
	}
}

func (d *Detector) clearDecline() {
	d.declining = false
	d.declineStartMs = 0
	d.remove(errcode.FireOut, -1)
}

func (d *Detector) pushRing(v float64) {
	d.ring[d.ringHead] = v
	d.ringHead = (d.ringHead + 1) % fireOutRingSize
	if d.ringCount < fireOutRingSize {
		d.ringCount++
	}
}

// latestRingValue returns the most recently pushed ring value, before the
// current sample is pushed.
func (d *Detector) latestRingValue() (float64, bool) {
	if d.ringCount == 0 {
		return 0, false
	}
	idx := (d.ringHead - 1 + fireOutRingSize) % fireOutRingSize
	return d.ring[idx], true
}
