package fan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pitcore/internal/fakeports"
)

func testConfig() Config {
	return Config{
		KickstartPct:          75,
		KickstartDurationMs:   3000,
		MinSpeedPct:           20,
		LongPulseThresholdPct: 25,
		LongPulseCycleMs:      10000,
	}
}

func TestKickstartOnFirstNonZeroTarget(t *testing.T) {
	pwm := &fakeports.RecordingPWM{}
	a := New(testConfig(), pwm)

	a.SetSpeed(30)
	a.Update(0)

	require.True(t, a.IsKickStarting())
	require.InDelta(t, 75.0, a.EffectivePct(), 1e-9)
}

func TestKickstartTransitionsToNormalAboveThreshold(t *testing.T) {
	pwm := &fakeports.RecordingPWM{}
	a := New(testConfig(), pwm)

	a.SetSpeed(50)
	a.Update(0)
	require.True(t, a.IsKickStarting())

	a.Update(3000) // kickstart end reached
	require.Equal(t, Normal, a.State())
	require.InDelta(t, 50.0, a.EffectivePct(), 1e-9)
}

func TestKickstartTransitionsToLongPulseBelowThreshold(t *testing.T) {
	pwm := &fakeports.RecordingPWM{}
	a := New(testConfig(), pwm)

	a.SetSpeed(10)
	a.Update(0)
	a.Update(3000)
	require.True(t, a.IsLongPulsing())
}

func TestMinSpeedClampInNormal(t *testing.T) {
	pwm := &fakeports.RecordingPWM{}
	cfg := testConfig()
	cfg.MinSpeedPct = 30 // above the long-pulse threshold, so Normal can clamp
	a := New(cfg, pwm)
	a.SetSpeed(50)
	a.Update(0)
	a.Update(3000) // now Normal at 50%

	a.SetSpeed(25) // still >= threshold(25) -> stays Normal, clamped up to 30
	a.Update(3100)
	require.InDelta(t, 30.0, a.EffectivePct(), 1e-9)
}

func TestLongPulseCycleOnOff(t *testing.T) {
	pwm := &fakeports.RecordingPWM{}
	cfg := testConfig()
	a := New(cfg, pwm)
	a.SetSpeed(10) // onFraction = 10/25 = 0.4 of the 10s cycle -> 4s on
	a.Update(0)
	a.Update(3000) // enters long-pulse, cycle anchored at t=3000

	a.Update(3000) // cyclePos=0 -> on
	require.InDelta(t, cfg.MinSpeedPct, a.EffectivePct(), 1e-9)

	a.Update(3000 + 5000) // cyclePos=5000 >= 4000 onDuration -> off
	require.InDelta(t, 0.0, a.EffectivePct(), 1e-9)

	a.Update(3000 + 10000) // next cycle wraps back to on
	require.InDelta(t, cfg.MinSpeedPct, a.EffectivePct(), 1e-9)
}

func TestTargetZeroTurnsOff(t *testing.T) {
	pwm := &fakeports.RecordingPWM{}
	a := New(testConfig(), pwm)
	a.SetSpeed(50)
	a.Update(0)
	a.Update(3000)
	require.Equal(t, Normal, a.State())

	a.SetSpeed(0)
	a.Update(3100)
	require.Equal(t, Off, a.State())
	require.Equal(t, uint8(0), a.Duty())
}

func TestOffClearsFlagsAndNextSetSpeedKickstarts(t *testing.T) {
	pwm := &fakeports.RecordingPWM{}
	a := New(testConfig(), pwm)
	a.SetSpeed(50)
	a.Update(0)
	a.Update(3000)

	a.Off()
	require.Equal(t, Off, a.State())
	require.Equal(t, uint8(0), a.Duty())

	a.SetSpeed(40)
	a.Update(5000)
	require.True(t, a.IsKickStarting())
}

func TestManualOverrideFreezesActuator(t *testing.T) {
	pwm := &fakeports.RecordingPWM{}
	a := New(testConfig(), pwm)
	a.SetManualDuty(128)
	require.True(t, a.IsManual())
	require.Equal(t, uint8(128), a.Duty())

	a.SetSpeed(99) // must be ignored while manual
	a.Update(1000)
	require.Equal(t, uint8(128), a.Duty())

	a.Off()
	require.False(t, a.IsManual())
	a.SetSpeed(30)
	a.Update(1000)
	require.True(t, a.IsKickStarting())
}

func TestDutyAlwaysInRange(t *testing.T) {
	pwm := &fakeports.RecordingPWM{}
	a := New(testConfig(), pwm)
	for _, target := range []float64{0, 5, 50, 100, 150, -10} {
		a.SetSpeed(target)
		a.Update(int64(target) * 100)
		require.LessOrEqual(t, a.Duty(), uint8(255))
	}
}
