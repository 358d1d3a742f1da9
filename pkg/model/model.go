package model

import "time"

// Track as maintained by the portal. The importer only creates/updates rows
// via the catalog seeder and reads Distance for speed calculation.
type Track struct {
	ID        int
	Name      string
	Distance  *float64 // meters
	HeatPrice *float64 // price per heat
}

type Driver struct {
	ID    int
	Name  string
	Email *string
}

// Session is one timed event at one track on one date.
// At most one session exists per (track, date); re-imports merge.
type Session struct {
	ID          int
	TrackID     int
	SessionDate time.Time
	SessionType string
	Notes       string
}

// Lap is one timed circuit by one driver within one session.
// Position and the gap/interval/speed attributes are derived values,
// recomputed from the persisted laps of the session.
type Lap struct {
	ID            int
	SessionID     int
	DriverID      int
	LapNumber     int
	LapTime       float64 // seconds
	Position      *int
	KartNumber    *string
	IsBestLap     bool
	GapToBestLap  *float64
	Interval      *float64
	GapToPrevious *float64
	AvgSpeed      *float64 // km/h
}
