package ingest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMaksoo/kartlog/pkg/model"
)

func lap(driverID, num int, lapTime float64) *model.Lap {
	return &model.Lap{DriverID: driverID, LapNumber: num, LapTime: lapTime}
}

func TestComputeDerivedBestLapAndGaps(t *testing.T) {
	laps := []*model.Lap{
		lap(1, 1, 54.511),
		lap(1, 2, 52.998),
		lap(1, 3, 53.250),
	}
	distance := 365.0
	ComputeDerived(laps, &distance)

	assert.False(t, laps[0].IsBestLap)
	assert.True(t, laps[1].IsBestLap)
	assert.False(t, laps[2].IsBestLap)

	require.NotNil(t, laps[0].GapToBestLap)
	assert.InDelta(t, 1.513, *laps[0].GapToBestLap, 0.0001)
	require.NotNil(t, laps[1].GapToBestLap)
	assert.InDelta(t, 0.0, *laps[1].GapToBestLap, 0.0001)

	assert.Nil(t, laps[0].Interval)
	require.NotNil(t, laps[1].Interval)
	assert.InDelta(t, -1.513, *laps[1].Interval, 0.0001)
	require.NotNil(t, laps[2].Interval)
	assert.InDelta(t, 0.252, *laps[2].Interval, 0.0001)

	// 365m in 52.998s = 24.79 km/h
	require.NotNil(t, laps[1].AvgSpeed)
	assert.InDelta(t, 24.79, *laps[1].AvgSpeed, 0.001)
}

func TestComputeDerivedTieGoesToEarliestLap(t *testing.T) {
	laps := []*model.Lap{
		lap(1, 1, 53.000),
		lap(1, 2, 53.000),
	}
	ComputeDerived(laps, nil)
	assert.True(t, laps[0].IsBestLap)
	assert.False(t, laps[1].IsBestLap)
}

func TestComputeDerivedRanking(t *testing.T) {
	laps := []*model.Lap{
		lap(1, 1, 55.000),
		lap(1, 2, 53.500),
		lap(2, 1, 54.000),
		lap(2, 2, 52.900),
		lap(3, 1, 56.000),
	}
	ComputeDerived(laps, nil)

	for _, l := range laps {
		require.NotNil(t, l.Position, "driver %d lap %d", l.DriverID, l.LapNumber)
	}
	// driver 2 has the session best
	assert.Equal(t, 1, *laps[2].Position)
	assert.Equal(t, 2, *laps[0].Position)
	assert.Equal(t, 3, *laps[4].Position)

	// gap to the same lap of the driver one rank better
	require.NotNil(t, laps[0].GapToPrevious)
	assert.InDelta(t, 1.0, *laps[0].GapToPrevious, 0.0001) // 55.000 - 54.000
	assert.Nil(t, laps[2].GapToPrevious)                   // rank 1 has nobody ahead
	require.NotNil(t, laps[4].GapToPrevious)
	assert.InDelta(t, 1.0, *laps[4].GapToPrevious, 0.0001) // 56.000 - 55.000
}

func TestComputeDerivedIdempotent(t *testing.T) {
	build := func() []*model.Lap {
		return []*model.Lap{
			lap(1, 1, 55.000),
			lap(1, 2, 53.500),
			lap(2, 1, 54.000),
		}
	}
	distance := 365.0

	once := build()
	ComputeDerived(once, &distance)

	twice := build()
	ComputeDerived(twice, &distance)
	ComputeDerived(twice, &distance)

	// shuffled input must converge on the same result
	shuffled := []*model.Lap{
		lap(2, 1, 54.000),
		lap(1, 2, 53.500),
		lap(1, 1, 55.000),
	}
	ComputeDerived(shuffled, &distance)

	sorter := cmpopts.SortSlices(func(a, b *model.Lap) bool {
		if a.DriverID != b.DriverID {
			return a.DriverID < b.DriverID
		}
		return a.LapNumber < b.LapNumber
	})
	if diff := cmp.Diff(once, twice, sorter); diff != "" {
		t.Errorf("repeated run differs (-once +twice):\n%s", diff)
	}
	if diff := cmp.Diff(once, shuffled, sorter); diff != "" {
		t.Errorf("shuffled run differs (-once +shuffled):\n%s", diff)
	}
}

func TestComputeDerivedNoDistance(t *testing.T) {
	laps := []*model.Lap{lap(1, 1, 53.0)}
	ComputeDerived(laps, nil)
	assert.Nil(t, laps[0].AvgSpeed)
}

func TestComputeDerivedEmpty(t *testing.T) {
	assert.NotPanics(t, func() { ComputeDerived(nil, nil) })
}
