// Package ports declares the abstract hardware/storage capabilities every
// subsystem depends on, per the design note that no subsystem should call
// a driver directly: each capability is a narrow interface so host tests
// can substitute an in-memory fake and the real target can substitute a
// PCA9685/GPIO-backed implementation (internal/hwio) without either side
// knowing about the other.
package ports

import "pitcore/internal/timex"

// Clock re-exports timex.Clock as the canonical time capability.
type Clock = timex.Clock

// PWMPort writes a single PWM duty value (0..255, 8-bit, fixed 25 kHz
// carrier per spec.md §4.4) to the blower fan.
type PWMPort interface {
	WritePWM(duty uint8)
}

// ServoPort writes a single pulse-width command in microseconds to the
// damper servo, at the actuator's own 50 Hz cadence.
type ServoPort interface {
	WriteServoUs(us uint16)
}

// ADCPort reads a raw, single-ended ADC count from one channel.
type ADCPort interface {
	ReadRaw(channel int) int32
}

// BuzzerPort drives the alarm buzzer GPIO/tone generator.
type BuzzerPort interface {
	ToneOn(freqHz uint32)
	ToneOff()
}

// Storage is the append-only, read-back persistence capability the
// session recorder uses. It is satisfied by an afero.Fs in production
// (internal/hwio wraps afero.NewOsFs()) and by afero.NewMemMapFs() in
// tests, see internal/fakeports.
type Storage interface {
	// AppendFile opens path for append (creating it if absent) and writes
	// b, returning the number of bytes written.
	AppendFile(path string, b []byte) (int, error)
	// ReadFile reads the entire contents of path, or an error if absent.
	ReadFile(path string) ([]byte, error)
	// Remove deletes path; absent files are not an error.
	Remove(path string) error
	// Size reports the current size of path, or 0 if absent.
	Size(path string) (int64, error)
}

// LinkPort reports whether the network/UI link is currently connected.
// The controller only consumes this as a boolean set by an external
// collaborator (the out-of-scope Wi-Fi manager); it never dials out
// itself.
type LinkPort interface {
	LinkConnected() bool
}
