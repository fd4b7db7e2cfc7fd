package predictor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pitcore/internal/probe"
)

func TestSlopeZeroBelowMinSamples(t *testing.T) {
	w := NewWindow()
	for i := 0; i < 5; i++ {
		w.Add(int64(i*5), 100+float64(i))
	}
	require.Equal(t, 0.0, w.Slope())
}

func TestSlopePositiveForRisingTemperature(t *testing.T) {
	w := NewWindow()
	for i := 0; i < 20; i++ {
		w.Add(int64(i*5), 100+float64(i)*2) // rising 2 deg per 5s sample = 0.4 deg/s
	}
	require.InDelta(t, 0.4, w.Slope(), 1e-6)
}

func TestSlopeZeroOnConstantTimestamps(t *testing.T) {
	w := NewWindow()
	for i := 0; i < 20; i++ {
		w.Add(1000, 150) // degenerate: identical x values
	}
	require.Equal(t, 0.0, w.Slope())
}

func TestWindowWrapsAtCapacity(t *testing.T) {
	w := NewWindow()
	for i := 0; i < 90; i++ {
		w.Add(int64(i*5), float64(i))
	}
	require.Equal(t, windowSize, w.Count())
}

func TestETAComputedWhenApproachingTarget(t *testing.T) {
	w := NewWindow()
	w.SetTarget(150)
	for i := 0; i < 20; i++ {
		w.Add(int64(i*5), 100+float64(i)*1) // 0.2 deg/s rising
	}
	res := w.Evaluate(1000)
	require.True(t, res.HasETA)
	require.Greater(t, res.ETAEpoch, int64(1000))
}

func TestETANotReportedWhenAlreadyAtTarget(t *testing.T) {
	w := NewWindow()
	w.SetTarget(110)
	for i := 0; i < 20; i++ {
		w.Add(int64(i*5), 100+float64(i)*1)
	}
	res := w.Evaluate(1000)
	require.False(t, res.HasETA)
}

func TestETANotReportedWithoutTarget(t *testing.T) {
	w := NewWindow()
	for i := 0; i < 20; i++ {
		w.Add(int64(i*5), 100+float64(i))
	}
	res := w.Evaluate(1000)
	require.False(t, res.HasETA)
}

func TestETASuppressedBeyond24Hours(t *testing.T) {
	w := NewWindow()
	w.SetTarget(100000)
	for i := 0; i < 20; i++ {
		w.Add(int64(i*5), 100+float64(i)*0.001) // extremely slow rise
	}
	res := w.Evaluate(1000)
	require.False(t, res.HasETA)
}

func TestResetPreservesTarget(t *testing.T) {
	w := NewWindow()
	w.SetTarget(165)
	w.Add(0, 100)
	w.Reset()
	require.Equal(t, 0, w.Count())
	require.Equal(t, 165.0, w.Target())
}

func TestPredictorSampleIgnoresBadProbeAndEpoch(t *testing.T) {
	p := New()
	p.Sample(probe.Meat1, false, 100, probe.Snapshot{Temperature: 150, Status: probe.Ok})
	require.Equal(t, 0, p.Window(probe.Meat1).Count())

	p.Sample(probe.Meat1, true, 100, probe.Snapshot{Temperature: 150, Status: probe.Open})
	require.Equal(t, 0, p.Window(probe.Meat1).Count())

	p.Sample(probe.Meat1, true, 100, probe.Snapshot{Temperature: 150, Status: probe.Ok})
	require.Equal(t, 1, p.Window(probe.Meat1).Count())
}

func TestPredictorIgnoresNonMeatIndex(t *testing.T) {
	p := New()
	p.Sample(probe.Pit, true, 100, probe.Snapshot{Temperature: 150, Status: probe.Ok})
	require.Nil(t, p.Window(probe.Pit))
}
