// Package fakeports provides deterministic, in-memory stand-ins for every
// ports capability, for host unit tests that exercise the control loop
// against in-memory channels and fakes rather than real hardware.
package fakeports

import (
	"github.com/spf13/afero"

	"pitcore/internal/hwio"
)

// FakeClock is a manually-advanced Clock. Zero value starts at epoch 0
// (invalid) and monotonic 0.
type FakeClock struct {
	monoMs int64
	epoch  int64
}

func NewFakeClock() *FakeClock { return &FakeClock{} }

func (c *FakeClock) NowMonotonicMs() int64 { return c.monoMs }
func (c *FakeClock) NowEpochOrZero() int64 { return c.epoch }

// AdvanceMs moves the monotonic clock forward by ms milliseconds.
func (c *FakeClock) AdvanceMs(ms int64) { c.monoMs += ms }

// SetEpoch sets the wall-clock epoch seconds (simulating NTP sync).
func (c *FakeClock) SetEpoch(epochSeconds int64) { c.epoch = epochSeconds }

// AdvanceEpochSeconds moves the epoch clock forward by s seconds (and the
// monotonic clock by the same amount, in milliseconds, keeping both in
// lock-step for predictor tests).
func (c *FakeClock) AdvanceEpochSeconds(s int64) {
	c.epoch += s
	c.monoMs += s * 1000
}

// FakeADC returns a settable raw count per channel index.
type FakeADC struct {
	Values map[int]int32
}

func NewFakeADC() *FakeADC { return &FakeADC{Values: map[int]int32{}} }

func (a *FakeADC) ReadRaw(channel int) int32 { return a.Values[channel] }

// RecordingPWM captures every WritePWM call for assertion.
type RecordingPWM struct {
	Writes []uint8
}

func (p *RecordingPWM) WritePWM(duty uint8) { p.Writes = append(p.Writes, duty) }
func (p *RecordingPWM) Last() uint8 {
	if len(p.Writes) == 0 {
		return 0
	}
	return p.Writes[len(p.Writes)-1]
}

// RecordingServo captures every WriteServoUs call for assertion.
type RecordingServo struct {
	Writes []uint16
}

func (s *RecordingServo) WriteServoUs(us uint16) { s.Writes = append(s.Writes, us) }
func (s *RecordingServo) Last() uint16 {
	if len(s.Writes) == 0 {
		return 0
	}
	return s.Writes[len(s.Writes)-1]
}

// RecordingBuzzer tracks on/off state and tone transitions.
type RecordingBuzzer struct {
	On       bool
	LastFreq uint32
	Toggles  int
}

func (b *RecordingBuzzer) ToneOn(freqHz uint32) {
	if !b.On {
		b.Toggles++
	}
	b.On = true
	b.LastFreq = freqHz
}
func (b *RecordingBuzzer) ToneOff() {
	if b.On {
		b.Toggles++
	}
	b.On = false
}

// FakeLink is a settable LinkPort.
type FakeLink struct{ Connected bool }

func (l *FakeLink) LinkConnected() bool { return l.Connected }

// NewMemStorage returns an in-memory ports.Storage backed by afero's
// MemMapFs, for session-recorder tests that need real append/read-back
// semantics without touching disk.
func NewMemStorage() *hwio.AferoStorage {
	return hwio.NewAferoStorage(afero.NewMemMapFs())
}
