package session

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"pitcore/internal/fakeports"
)

func testConfig(capacity int) Config {
	return Config{
		Capacity:         capacity,
		SampleIntervalMs: 5000,
		FlushIntervalMs:  60_000,
		FilePath:         "/session.dat",
	}
}

func TestFixed10RoundTrip(t *testing.T) {
	for _, temp := range []float64{0, 100.5, -100.5, 225.5, 3276.7, -3276.7} {
		enc := EncodeFixed10(temp)
		require.InDelta(t, temp, DecodeFixed10(enc), 0.05)
	}
}

func TestSampleGatedByInterval(t *testing.T) {
	storage := fakeports.NewMemStorage()
	r := New(testConfig(100), storage)
	require.NoError(t, r.StartSession(1700000000))

	ok := r.Sample(0, 1700000000, DataPoint{PitX10: 2500})
	require.True(t, ok)

	ok = r.Sample(1000, 1700000001, DataPoint{PitX10: 2501})
	require.False(t, ok) // within interval

	ok = r.Sample(5000, 1700000005, DataPoint{PitX10: 2502})
	require.True(t, ok)

	require.Equal(t, 2, r.Count())
}

func TestRingWrapsAndTracksTotals(t *testing.T) {
	storage := fakeports.NewMemStorage()
	capacity := 20
	r := New(testConfig(capacity), storage)
	require.NoError(t, r.StartSession(1700000000))

	nowMs := int64(0)
	nowEpoch := int64(1700000000)
	total := capacity + 50
	for i := 0; i < total; i++ {
		r.Sample(nowMs, nowEpoch, DataPoint{PitX10: int16(i)})
		nowMs += 5000
		nowEpoch += 5
	}

	require.Equal(t, capacity, r.Count())
	require.Equal(t, int64(total), r.TotalPoints())
	require.True(t, r.Wrapped())

	first, ok := r.GetPoint(0)
	require.True(t, ok)
	require.Equal(t, int16(50), first.PitX10)

	last, ok := r.GetPoint(capacity - 1)
	require.True(t, ok)
	require.Equal(t, int16(total-1), last.PitX10)
}

func TestFlushWritesHeaderAndPoints(t *testing.T) {
	storage := fakeports.NewMemStorage()
	r := New(testConfig(100), storage)
	require.NoError(t, r.StartSession(1700000000))

	r.Sample(0, 1700000000, DataPoint{PitX10: 2500, FanPct: 30, DamperPct: 40})
	r.Sample(5000, 1700000005, DataPoint{PitX10: 2510, FanPct: 31, DamperPct: 41})

	require.NoError(t, r.Flush(0, true))
	require.Equal(t, int64(2), r.FlushedUpTo())

	raw, err := storage.ReadFile("/session.dat")
	require.NoError(t, err)
	require.Equal(t, headerSize+2*recordSize, len(raw))
	require.Equal(t, uint32(1700000000), binary.LittleEndian.Uint32(raw[0:4]))
}

func TestBeginRecoversPriorSessionDiscardingSurplus(t *testing.T) {
	storage := fakeports.NewMemStorage()

	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[:], 1700000000)
	_, err := storage.AppendFile("/session.dat", hdr[:])
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		pt := DataPoint{EpochSeconds: uint32(1700000000 + i*5), PitX10: int16(i)}
		rec := pt.encode()
		_, err := storage.AppendFile("/session.dat", rec[:])
		require.NoError(t, err)
	}

	r := New(testConfig(20), storage)
	require.NoError(t, r.Begin())

	require.True(t, r.Active())
	require.Equal(t, 20, r.Count())
	require.Equal(t, int64(25), r.TotalPoints())
	require.Equal(t, int64(25), r.FlushedUpTo())
	require.True(t, r.Wrapped())

	first, ok := r.GetPoint(0)
	require.True(t, ok)
	require.Equal(t, int16(5), first.PitX10) // oldest 5 discarded
}

func TestBeginWithNoFileStartsInactive(t *testing.T) {
	storage := fakeports.NewMemStorage()
	r := New(testConfig(20), storage)
	require.NoError(t, r.Begin())
	require.False(t, r.Active())
	require.Equal(t, 0, r.Count())
}

func TestBeginExactlyFiveRecoveredPoints(t *testing.T) {
	storage := fakeports.NewMemStorage()
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[:], 1700000000)
	_, err := storage.AppendFile("/session.dat", hdr[:])
	require.NoError(t, err)

	var first DataPoint
	for i := 0; i < 5; i++ {
		pt := DataPoint{EpochSeconds: uint32(1700000000 + i*5), PitX10: int16(i)}
		if i == 0 {
			first = pt
		}
		rec := pt.encode()
		_, err := storage.AppendFile("/session.dat", rec[:])
		require.NoError(t, err)
	}

	r := New(testConfig(2880), storage)
	require.NoError(t, r.Begin())

	require.True(t, r.Active())
	require.Equal(t, 5, r.Count())
	require.Equal(t, int64(5), r.TotalPoints())
	require.Equal(t, int64(5), r.FlushedUpTo())

	got, ok := r.GetPoint(0)
	require.True(t, ok)
	require.Equal(t, first, got)
}

func TestClearSessionWipesRingAndFile(t *testing.T) {
	storage := fakeports.NewMemStorage()
	r := New(testConfig(20), storage)
	require.NoError(t, r.StartSession(1700000000))
	r.Sample(0, 1700000000, DataPoint{PitX10: 100})
	require.NoError(t, r.Flush(0, true))

	require.NoError(t, r.ClearSession(1700001000))
	require.False(t, r.Active())
	require.Equal(t, 0, r.Count())

	_, err := storage.ReadFile("/session.dat")
	require.Error(t, err)
}

func TestToCSVAndJSONFormatTemperatures(t *testing.T) {
	storage := fakeports.NewMemStorage()
	r := New(testConfig(20), storage)
	require.NoError(t, r.StartSession(1700000000))
	r.Sample(0, 1700000000, DataPoint{PitX10: 2255, Meat1X10: 1650, FanPct: 20, DamperPct: 30})

	csv := r.ToCSV()
	require.Contains(t, csv, "225.5")
	require.Contains(t, csv, "165.0")

	j := r.ToJSON()
	require.Contains(t, j, `"pit":225.5`)
}
