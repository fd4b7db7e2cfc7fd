package alarm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pitcore/internal/fakeports"
	"pitcore/internal/probe"
)

func testConfig() Config {
	return Config{PitBandDeg: 5, ToneHz: 2000, OnMs: 500, OffMs: 500}
}

func TestPitHighTriggersOnlyAfterPitReached(t *testing.T) {
	buzzer := &fakeports.RecordingBuzzer{}
	m := New(testConfig(), buzzer)

	m.Update(260, 250, false, 0, probe.Open, 0, probe.Open, 1000)
	require.False(t, m.IsAlarming())

	m.Update(260, 250, true, 0, probe.Open, 0, probe.Open, 1000)
	require.True(t, m.IsAlarming())
	require.Contains(t, m.Active(), PitHigh)
}

func TestPitLowTriggers(t *testing.T) {
	buzzer := &fakeports.RecordingBuzzer{}
	m := New(testConfig(), buzzer)

	m.Update(240, 250, true, 0, probe.Open, 0, probe.Open, 1000)
	require.Contains(t, m.Active(), PitLow)
}

func TestPitInBandClearsTrigger(t *testing.T) {
	buzzer := &fakeports.RecordingBuzzer{}
	m := New(testConfig(), buzzer)

	m.Update(260, 250, true, 0, probe.Open, 0, probe.Open, 1000)
	require.True(t, m.IsAlarming())

	m.Update(250, 250, true, 0, probe.Open, 0, probe.Open, 2000)
	require.False(t, m.IsAlarming())
}

func TestPitAlarmDoesNotRefireUntilInBandAgain(t *testing.T) {
	buzzer := &fakeports.RecordingBuzzer{}
	m := New(testConfig(), buzzer)

	m.Update(260, 250, true, 0, probe.Open, 0, probe.Open, 1000)
	m.Acknowledge()
	require.False(t, m.IsAlarming())

	// still above band: must not re-fire because acknowledge set pitTriggered
	m.Update(262, 250, true, 0, probe.Open, 0, probe.Open, 1500)
	require.False(t, m.IsAlarming())

	// back in band clears the trigger flag
	m.Update(250, 250, true, 0, probe.Open, 0, probe.Open, 2000)
	require.False(t, m.IsAlarming())

	// deviating again now re-fires
	m.Update(260, 250, true, 0, probe.Open, 0, probe.Open, 2500)
	require.True(t, m.IsAlarming())
	require.Contains(t, m.Active(), PitHigh)
}

func TestMeatCompletionTriggersOnce(t *testing.T) {
	buzzer := &fakeports.RecordingBuzzer{}
	m := New(testConfig(), buzzer)
	m.SetMeatTarget(1, 165)

	m.Update(200, 250, false, 166, probe.Ok, 0, probe.Open, 1000)
	require.Contains(t, m.Active(), Meat1Done)

	// still active until acknowledged, and not added a second time
	m.Update(200, 250, false, 167, probe.Ok, 0, probe.Open, 2000)
	require.Equal(t, []Kind{Meat1Done}, m.Active())

	m.Acknowledge()
	m.Update(200, 250, false, 168, probe.Ok, 0, probe.Open, 3000)
	require.NotContains(t, m.Active(), Meat1Done)
}

func TestMeatCompletionRefiresAfterNewTarget(t *testing.T) {
	buzzer := &fakeports.RecordingBuzzer{}
	m := New(testConfig(), buzzer)
	m.SetMeatTarget(2, 165)

	m.Update(200, 250, false, 0, probe.Open, 170, probe.Ok, 1000)
	require.Contains(t, m.Active(), Meat2Done)

	m.SetMeatTarget(2, 180)
	m.Update(200, 250, false, 0, probe.Open, 170, probe.Ok, 2000)
	require.NotContains(t, m.Active(), Meat2Done)

	m.Update(200, 250, false, 0, probe.Open, 181, probe.Ok, 3000)
	require.Contains(t, m.Active(), Meat2Done)
}

func TestAcknowledgeClearsActiveAndSilencesBuzzer(t *testing.T) {
	buzzer := &fakeports.RecordingBuzzer{}
	m := New(testConfig(), buzzer)
	m.Update(260, 250, true, 0, probe.Open, 0, probe.Open, 1000)
	require.True(t, m.IsAlarming())

	m.Acknowledge()
	require.False(t, m.IsAlarming())
	require.Empty(t, m.Active())
	require.False(t, buzzer.On)
}

func TestBuzzerCadenceAlternates(t *testing.T) {
	buzzer := &fakeports.RecordingBuzzer{}
	m := New(testConfig(), buzzer)

	m.Update(260, 250, true, 0, probe.Open, 0, probe.Open, 0)
	require.True(t, buzzer.On)

	m.Update(260, 250, true, 0, probe.Open, 0, probe.Open, 500)
	require.False(t, buzzer.On)

	m.Update(260, 250, true, 0, probe.Open, 0, probe.Open, 1000)
	require.True(t, buzzer.On)
}

func TestDisableForcesBuzzerOffAndBypassesEvaluation(t *testing.T) {
	buzzer := &fakeports.RecordingBuzzer{}
	m := New(testConfig(), buzzer)
	m.Update(260, 250, true, 0, probe.Open, 0, probe.Open, 0)
	require.True(t, buzzer.On)

	m.SetEnabled(false)
	require.False(t, buzzer.On)

	m.Update(260, 250, true, 0, probe.Open, 0, probe.Open, 500)
	require.False(t, m.IsAlarming())
	require.False(t, buzzer.On)
}
