// Package timex collects clock helpers shared by every subsystem that gates
// work on wall-clock time: monotonic milliseconds for state-machine
// deadlines, and epoch-seconds for the predictor and session recorder.
package timex

import "time"

// NowMs returns monotonic-ish Unix milliseconds as int64. On the real
// target this is backed by a free-running timer; tests use a FakeClock
// (internal/fakeports) instead of wall time.
func NowMs() int64 { return time.Now().UnixMilli() }

// NowEpochSeconds returns the runtime clock's wall-clock epoch seconds
// unconditionally. SystemClock.NowEpochOrZero applies EpochValid on top of
// it and reports 0 while the clock has not been set from a trustworthy
// source (pre-NTP on the real target); callers of that method must treat
// 0 as "invalid", not as 1970-01-01.
func NowEpochSeconds() int64 { return time.Now().Unix() }

// EpochValid reports whether an epoch-seconds value looks like it has been
// set from a real time source. Used to gate predictor sampling and session
// timestamps until the clock is trustworthy.
func EpochValid(epochSeconds int64) bool {
	// Any timestamp from 2020-01-01 onward is treated as "real"; anything
	// before that is almost certainly a default/unset clock.
	const epoch2020 = 1577836800
	return epochSeconds >= epoch2020
}

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}

// Clock is the abstract time capability every subsystem depends on instead
// of calling time.Now directly, so tests can drive deterministic ticks.
type Clock interface {
	// NowMonotonicMs is used for all state-machine deadlines (kick-start,
	// long-pulse, fire-out decline timers).
	NowMonotonicMs() int64
	// NowEpochOrZero returns the wall-clock epoch seconds, or 0 if not yet
	// valid (pre-NTP). Predictor and session recorder consult this.
	NowEpochOrZero() int64
}

// SystemClock is the real-time Clock backed by the runtime clock.
type SystemClock struct{}

func (SystemClock) NowMonotonicMs() int64 { return NowMs() }
func (SystemClock) NowEpochOrZero() int64 {
	e := NowEpochSeconds()
	if !EpochValid(e) {
		return 0
	}
	return e
}
