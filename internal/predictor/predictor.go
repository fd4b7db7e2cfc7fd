// Package predictor computes a time-to-target estimate for each meat probe
// from a circular window of recent (timestamp, temperature) samples using
// ordinary least-squares linear regression (spec.md §4.8).
package predictor

import (
	"gonum.org/v1/gonum/stat"

	"pitcore/internal/probe"
)

const (
	windowSize = 60
	minSamples = 12
)

// sample is one thermal observation: epoch seconds and temperature.
type sample struct {
	epochSeconds int64
	temperature  float64
}

// Window is a per-probe circular buffer of thermal samples plus a
// completion target.
type Window struct {
	ring   [windowSize]sample
	head   int
	count  int
	target float64
}

func NewWindow() *Window { return &Window{} }

// SetTarget sets the completion target temperature. A target of 0 disables
// ETA reporting.
func (w *Window) SetTarget(target float64) { w.target = target }

func (w *Window) Target() float64 { return w.target }

// Reset zeros head/count but preserves the target, per spec.md §4.8.
func (w *Window) Reset() {
	w.head = 0
	w.count = 0
}

// Add records a new sample. Callers are responsible for only calling this
// when the probe is Ok and the wall-clock epoch is valid (post-NTP); the
// window itself has no notion of probe status.
func (w *Window) Add(epochSeconds int64, temperature float64) {
	w.ring[w.head] = sample{epochSeconds: epochSeconds, temperature: temperature}
	w.head = (w.head + 1) % windowSize
	if w.count < windowSize {
		w.count++
	}
}

// Count returns the number of samples currently held.
func (w *Window) Count() int { return w.count }

// oldestIndex returns the ring index of the oldest retained sample.
func (w *Window) oldestIndex() int {
	if w.count < windowSize {
		return 0
	}
	return w.head
}

// Slope returns the OLS slope in degrees/second, or 0 if there are fewer
// than minSamples or the regression is degenerate (constant timestamps).
func (w *Window) Slope() float64 {
	if w.count < minSamples {
		return 0
	}

	xs := make([]float64, w.count)
	ys := make([]float64, w.count)
	start := w.oldestIndex()
	t0 := w.ring[start].epochSeconds

	for i := 0; i < w.count; i++ {
		s := w.ring[(start+i)%windowSize]
		xs[i] = float64(s.epochSeconds - t0)
		ys[i] = s.temperature
	}

	_, beta := stat.LinearRegression(xs, ys, nil, false)
	if isDegenerate(beta) {
		return 0
	}
	return beta
}

func isDegenerate(v float64) bool {
	return v != v || v > 1e300 || v < -1e300 // NaN or effectively infinite
}

// latest returns the most recently added sample and whether one exists.
func (w *Window) latest() (sample, bool) {
	if w.count == 0 {
		return sample{}, false
	}
	idx := (w.head - 1 + windowSize) % windowSize
	return w.ring[idx], true
}

// Result is the predictor's per-tick output for one meat probe.
type Result struct {
	RatePerMin float64 // slope * 60, reported regardless of target
	HasETA     bool
	ETAEpoch   int64
}

const maxHorizonSeconds = 24 * 60 * 60

// Evaluate computes the current rate and, if a target is set and the slope
// indicates progress toward it, an ETA epoch.
func (w *Window) Evaluate(nowEpochSeconds int64) Result {
	slope := w.Slope()
	res := Result{RatePerMin: slope * 60}

	if w.target <= 0 || slope <= 0 {
		return res
	}
	latest, ok := w.latest()
	if !ok {
		return res
	}
	if latest.temperature >= w.target {
		return res
	}

	timeToTarget := (w.target - latest.temperature) / slope
	if timeToTarget > maxHorizonSeconds {
		return res
	}

	res.HasETA = true
	res.ETAEpoch = nowEpochSeconds + int64(timeToTarget)
	return res
}

// Predictor owns one Window per meat probe.
type Predictor struct {
	windows map[probe.Index]*Window
}

func New() *Predictor {
	return &Predictor{
		windows: map[probe.Index]*Window{
			probe.Meat1: NewWindow(),
			probe.Meat2: NewWindow(),
		},
	}
}

func (p *Predictor) Window(idx probe.Index) *Window { return p.windows[idx] }

// Sample records a snapshot for idx if the probe is Ok and the epoch is
// valid; no-op otherwise (including for non-meat probe indices).
func (p *Predictor) Sample(idx probe.Index, epochValid bool, epochSeconds int64, snap probe.Snapshot) {
	w, ok := p.windows[idx]
	if !ok || !epochValid || snap.Status != probe.Ok {
		return
	}
	w.Add(epochSeconds, snap.Temperature)
}

func (p *Predictor) Evaluate(idx probe.Index, nowEpochSeconds int64) Result {
	w, ok := p.windows[idx]
	if !ok {
		return Result{}
	}
	return w.Evaluate(nowEpochSeconds)
}

func (p *Predictor) SetTarget(idx probe.Index, target float64) {
	if w, ok := p.windows[idx]; ok {
		w.SetTarget(target)
	}
}

func (p *Predictor) Reset(idx probe.Index) {
	if w, ok := p.windows[idx]; ok {
		w.Reset()
	}
}
