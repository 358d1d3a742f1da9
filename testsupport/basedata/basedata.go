package basedata

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TheMaksoo/kartlog/pkg/model"
	driverrepos "github.com/TheMaksoo/kartlog/pkg/repository/driver"
	sessionrepos "github.com/TheMaksoo/kartlog/pkg/repository/session"
	trackrepos "github.com/TheMaksoo/kartlog/pkg/repository/track"
)

func TestDate() time.Time {
	t, _ := time.Parse("2006-01-02", "2024-11-21")
	return t
}

func SampleTrack() *model.Track {
	distance := 365.0
	price := 17.5
	return &model.Track{Name: "testtrack", Distance: &distance, HeatPrice: &price}
}

func SampleDriver() *model.Driver {
	return &model.Driver{Name: "Test Driver"}
}

// CreateSampleSession stores a track, a driver and a session and
// returns them ready for lap inserts.
func CreateSampleSession(pool *pgxpool.Pool) (
	*model.Track, *model.Driver, *model.Session,
) {
	track := SampleTrack()
	driver := SampleDriver()
	session := &model.Session{SessionDate: TestDate(), SessionType: "practice"}
	err := pgx.BeginFunc(context.Background(), pool, func(tx pgx.Tx) error {
		if err := trackrepos.Create(context.Background(), tx, track); err != nil {
			return err
		}
		if err := driverrepos.Create(context.Background(), tx, driver); err != nil {
			return err
		}
		session.TrackID = track.ID
		return sessionrepos.Create(context.Background(), tx, session)
	})
	if err != nil {
		log.Fatalf("createSampleSession: %v\n", err)
	}
	return track, driver, session
}
