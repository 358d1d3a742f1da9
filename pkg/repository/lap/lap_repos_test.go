//nolint:dupl,errcheck // ok for this test code
package lap

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gotest.tools/v3/assert"

	"github.com/TheMaksoo/kartlog/pkg/extract"
	"github.com/TheMaksoo/kartlog/pkg/model"
	"github.com/TheMaksoo/kartlog/testsupport/basedata"
	"github.com/TheMaksoo/kartlog/testsupport/testdb"
)

func createLaps(pool *pgxpool.Pool, sessionID, driverID int, times ...float64) []*model.Lap {
	ctx := context.Background()
	var laps []*model.Lap
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for i, lt := range times {
			l := &model.Lap{
				SessionID: sessionID,
				DriverID:  driverID,
				LapNumber: i + 1,
				LapTime:   lt,
			}
			if err := Create(ctx, tx, l); err != nil {
				return err
			}
			laps = append(laps, l)
		}
		return nil
	})
	if err != nil {
		panic(err)
	}
	return laps
}

func TestCreateAndLoadBySession(t *testing.T) {
	pool := testdb.InitTestDb()
	_, driver, session := basedata.CreateSampleSession(pool)
	createLaps(pool, session.ID, driver.ID, 54.511, 52.998)

	laps, err := LoadBySession(context.Background(), pool, session.ID)
	assert.NilError(t, err)
	assert.Equal(t, 2, len(laps))
	assert.Equal(t, 1, laps[0].LapNumber)
	assert.Equal(t, 52.998, laps[1].LapTime)
}

func TestExists(t *testing.T) {
	pool := testdb.InitTestDb()
	_, driver, session := basedata.CreateSampleSession(pool)
	createLaps(pool, session.ID, driver.ID, 54.511)

	found, err := Exists(context.Background(), pool, session.ID, driver.ID, 1, 54.511)
	assert.NilError(t, err)
	assert.Assert(t, found)

	// same lap number, different time is a new lap
	found, err = Exists(context.Background(), pool, session.ID, driver.ID, 1, 54.512)
	assert.NilError(t, err)
	assert.Assert(t, !found)
}

// Lap times parsed from result files must survive the numeric(8,3)
// round trip so re-imports hit the exact-match duplicate check. Values
// like 20.548 are the awkward ones, their naive whole-seconds plus
// fraction sum is one ulp off the decimal.
func TestExistsAfterNumericRoundTrip(t *testing.T) {
	pool := testdb.InitTestDb()
	_, driver, session := basedata.CreateSampleSession(pool)

	for _, raw := range []string{"20.548", "55.679", "1:02.943"} {
		parsed, err := extract.ParseLapTime(raw)
		assert.NilError(t, err)
		createLaps(pool, session.ID, driver.ID, parsed)

		found, err := Exists(context.Background(), pool, session.ID, driver.ID, 1, parsed)
		assert.NilError(t, err)
		assert.Assert(t, found, raw)

		_, err = DeleteBySession(context.Background(), pool, session.ID)
		assert.NilError(t, err)
	}
}

func TestUpdateDerived(t *testing.T) {
	pool := testdb.InitTestDb()
	_, driver, session := basedata.CreateSampleSession(pool)
	laps := createLaps(pool, session.ID, driver.ID, 54.511, 52.998)

	pos := 1
	gap := 1.513
	speed := 24.79
	laps[0].Position = &pos
	laps[0].GapToBestLap = &gap
	laps[0].AvgSpeed = &speed
	laps[1].Position = &pos
	laps[1].IsBestLap = true

	err := pgx.BeginFunc(context.Background(), pool, func(tx pgx.Tx) error {
		for _, l := range laps {
			if err := UpdateDerived(context.Background(), tx, l); err != nil {
				return err
			}
		}
		return nil
	})
	assert.NilError(t, err)

	reloaded, err := LoadBySession(context.Background(), pool, session.ID)
	assert.NilError(t, err)
	assert.Assert(t, reloaded[1].IsBestLap)
	assert.Equal(t, 1.513, *reloaded[0].GapToBestLap)
	assert.Equal(t, 24.79, *reloaded[0].AvgSpeed)
}

func TestCountAndDeleteBySession(t *testing.T) {
	pool := testdb.InitTestDb()
	_, driver, session := basedata.CreateSampleSession(pool)
	createLaps(pool, session.ID, driver.ID, 54.511, 52.998, 53.200)

	count, err := CountBySession(context.Background(), pool, session.ID)
	assert.NilError(t, err)
	assert.Equal(t, 3, count)

	num, err := DeleteBySession(context.Background(), pool, session.ID)
	assert.NilError(t, err)
	assert.Equal(t, 3, num)
}
