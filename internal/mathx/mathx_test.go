package mathx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	require.Equal(t, 5, Clamp(5, 0, 10))
	require.Equal(t, 0, Clamp(-5, 0, 10))
	require.Equal(t, 10, Clamp(50, 0, 10))
	require.Equal(t, 3, Clamp(3, 10, 0)) // swapped bounds
}

func TestMapU16(t *testing.T) {
	require.Equal(t, uint16(0), MapU16(0, 0, 100, 0, 4095))
	require.Equal(t, uint16(4095), MapU16(100, 0, 100, 0, 4095))
	require.Equal(t, uint16(2047), MapU16(50, 0, 100, 0, 4095))
	require.Equal(t, uint16(0), MapU16(0, 50, 50, 0, 4095)) // degenerate input range
}

func TestMapFloat(t *testing.T) {
	require.InDelta(t, 50.0, Map(50.0, 0, 100, 0, 100), 1e-9)
	require.InDelta(t, 0.0, Map(-10.0, 0, 100, 0, 100), 1e-9) // clamps below
	require.InDelta(t, 100.0, Map(200.0, 0, 100, 0, 100), 1e-9)
}

func TestRoundDiv(t *testing.T) {
	require.Equal(t, 2255, RoundDiv(22550, 10))
	require.Equal(t, -2255, RoundDiv(-22550, 10))
}
