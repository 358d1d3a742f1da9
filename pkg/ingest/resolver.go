// Package ingest orchestrates the import pipeline: decode, detect,
// extract, resolve, guard against duplicates and compute derived lap
// fields.
package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/TheMaksoo/kartlog/pkg/model"
	"github.com/TheMaksoo/kartlog/pkg/repository"
	driverrepos "github.com/TheMaksoo/kartlog/pkg/repository/driver"
	sessionrepos "github.com/TheMaksoo/kartlog/pkg/repository/session"
	trackrepos "github.com/TheMaksoo/kartlog/pkg/repository/track"
	"github.com/TheMaksoo/kartlog/pkg/tracks"
)

// ResolveTrack upserts the catalog entry so catalog edits (distance,
// heat price) propagate on the next run.
func ResolveTrack(ctx context.Context, q repository.Querier, t *tracks.Track) (*model.Track, error) {
	track := &model.Track{
		Name:      t.Name,
		Distance:  t.Specs.Distance,
		HeatPrice: t.Specs.HeatPrice,
	}
	if err := trackrepos.Upsert(ctx, q, track); err != nil {
		return nil, err
	}
	return track, nil
}

// ResolveDriver finds a driver by name, case insensitive, creating it
// on first sight. The stored spelling is the first one seen.
func ResolveDriver(ctx context.Context, q repository.Querier, name string) (*model.Driver, error) {
	d, err := driverrepos.LoadByName(ctx, q, name)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	created := &model.Driver{Name: name}
	if err := driverrepos.Create(ctx, q, created); err != nil {
		return nil, err
	}
	return created, nil
}

// ResolveSession finds or creates the session for a track and date.
// The (track, date) pair is the session identity; two files for the
// same track on the same day land in one session. The note is only
// stored on creation, existing sessions keep theirs.
func ResolveSession(
	ctx context.Context,
	q repository.Querier,
	trackID int,
	date time.Time,
	note string,
) (*model.Session, error) {
	s, err := sessionrepos.LoadByTrackAndDate(ctx, q, trackID, date)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	created := &model.Session{
		TrackID:     trackID,
		SessionDate: date,
		SessionType: "practice",
		Notes:       note,
	}
	if err := sessionrepos.Create(ctx, q, created); err != nil {
		return nil, err
	}
	return created, nil
}
