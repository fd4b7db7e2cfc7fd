// Package probe implements the Steinhart-Hart thermistor conversion and
// connection-status classifier for the pit and two meat probes (spec.md
// §4.1). Each probe exposes a Sample method producing a retained-style
// snapshot (the caller decides when to sample; nothing here gates on an
// interval), and works in floating point since
// the cubic Steinhart-Hart model needs it rather than an all-integer
// fixed-point representation.
package probe

import "math"

// Index identifies which of the three probes a Sampler slot belongs to.
type Index int

const (
	Pit Index = iota
	Meat1
	Meat2
	numProbes
)

// Status is the connection classification of a probe, per the invariant:
// Open iff raw >= openThreshold; Short iff raw <= shortThreshold; Ok
// otherwise.
type Status int

const (
	Ok Status = iota
	Open
	Short
)

func (s Status) String() string {
	switch s {
	case Open:
		return "open"
	case Short:
		return "short"
	default:
		return "ok"
	}
}

// Unit is the temperature unit the sampler reports in.
type Unit int

const (
	Celsius Unit = iota
	Fahrenheit
)

// Coeffs are the Steinhart-Hart calibration coefficients plus the
// additive calibration offset (in the configured Unit) and ADC
// classification thresholds for one probe channel.
type Coeffs struct {
	A, B, C float64
	OffsetDeg float64

	RrefOhms     float64
	ADCMax       int32
	OpenThresh   int32 // raw >= this -> Open
	ShortThresh  int32 // raw <= this -> Short
}

// Snapshot is what the sampler exposes to consumers. Consumers MUST check
// Status, not Temperature's magnitude, to decide disconnection: Open/Short
// probes report Temperature == 0.
type Snapshot struct {
	Temperature float64
	Status      Status
	RawADC      int32
}

// Probe holds the last sample for one channel.
type Probe struct {
	Coeffs Coeffs
	last   Snapshot
}

func NewProbe(c Coeffs) *Probe { return &Probe{Coeffs: c} }

// Last returns the most recently computed snapshot.
func (p *Probe) Last() Snapshot { return p.last }

// Sample converts one raw ADC reading into a Snapshot, classifying the
// probe and computing temperature only when connected.
func (p *Probe) Sample(raw int32, unit Unit) Snapshot {
	c := p.Coeffs
	status := classify(raw, c.OpenThresh, c.ShortThresh)
	if status != Ok {
		p.last = Snapshot{Temperature: 0, Status: status, RawADC: raw}
		return p.last
	}

	r := resistance(raw, c.ADCMax, c.RrefOhms)
	tC := steinhartHartC(r, c.A, c.B, c.C)
	t := tC
	if unit == Fahrenheit {
		t = celsiusToFahrenheit(tC)
	}
	t += c.OffsetDeg

	p.last = Snapshot{Temperature: t, Status: Ok, RawADC: raw}
	return p.last
}

// classify applies the raw-ADC status invariant from spec.md §3.
func classify(raw, openThresh, shortThresh int32) Status {
	if raw >= openThresh {
		return Open
	}
	if raw <= shortThresh {
		return Short
	}
	return Ok
}

// resistance computes R = Rref * (ADC_MAX/raw - 1); R = 0 if raw <= 0.
func resistance(raw, adcMax int32, rref float64) float64 {
	if raw <= 0 {
		return 0
	}
	return rref * (float64(adcMax)/float64(raw) - 1)
}

// steinhartHartC computes 1/T = A + B*ln(R) + C*(ln R)^3; returns Celsius.
func steinhartHartC(r, a, b, c float64) float64 {
	if r <= 0 {
		return 0
	}
	lnR := math.Log(r)
	invT := a + b*lnR + c*lnR*lnR*lnR
	if invT == 0 {
		return 0
	}
	tK := 1 / invT
	return tK - 273.15
}

func celsiusToFahrenheit(c float64) float64 { return 1.8*c + 32 }

// Sampler holds the three probes together. It has no sampling interval of
// its own; the caller gates how often Sample runs.
type Sampler struct {
	Unit   Unit
	probes [numProbes]*Probe
}

// NewSampler builds a Sampler from per-probe coefficients, indexed Pit,
// Meat1, Meat2.
func NewSampler(unit Unit, pit, meat1, meat2 Coeffs) *Sampler {
	return &Sampler{
		Unit: unit,
		probes: [numProbes]*Probe{
			Pit:   NewProbe(pit),
			Meat1: NewProbe(meat1),
			Meat2: NewProbe(meat2),
		},
	}
}

// Sample converts raw ADC readings for all three channels in index order
// and returns their snapshots.
func (s *Sampler) Sample(rawPit, rawMeat1, rawMeat2 int32) [numProbes]Snapshot {
	var out [numProbes]Snapshot
	out[Pit] = s.probes[Pit].Sample(rawPit, s.Unit)
	out[Meat1] = s.probes[Meat1].Sample(rawMeat1, s.Unit)
	out[Meat2] = s.probes[Meat2].Sample(rawMeat2, s.Unit)
	return out
}

// Snapshot returns the last computed value for one probe without resampling.
func (s *Sampler) Snapshot(i Index) Snapshot { return s.probes[i].Last() }
