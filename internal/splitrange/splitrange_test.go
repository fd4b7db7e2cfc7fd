package splitrange

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBelowThresholdFanIsZero(t *testing.T) {
	damper, fan := Map(30, 60)
	require.Equal(t, 30.0, damper)
	require.Equal(t, 0.0, fan)
}

func TestAtThresholdFanIsZero(t *testing.T) {
	_, fan := Map(60, 60)
	require.Equal(t, 0.0, fan)
}

func TestAboveThresholdFanRampsLinearly(t *testing.T) {
	damper, fan := Map(80, 60)
	require.Equal(t, 80.0, damper)
	require.InDelta(t, 50.0, fan, 1e-9) // (80-60)/(100-60)*100 = 50
}

func TestFullOutputMapsFanTo100(t *testing.T) {
	_, fan := Map(100, 60)
	require.InDelta(t, 100.0, fan, 1e-9)
}

func TestDamperAlwaysClampedToRange(t *testing.T) {
	damper, _ := Map(150, 60)
	require.Equal(t, 100.0, damper)
	damper, _ = Map(-10, 60)
	require.Equal(t, 0.0, damper)
}
