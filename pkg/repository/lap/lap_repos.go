package lap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/TheMaksoo/kartlog/pkg/model"
	"github.com/TheMaksoo/kartlog/pkg/repository"
)

func Create(ctx context.Context, conn repository.Querier, lap *model.Lap) error {
	row := conn.QueryRow(ctx, `
insert into lap (session_id, driver_id, lap_number, lap_time, position, kart_number)
values ($1,$2,$3,$4,$5,$6) returning id`,
		lap.SessionID, lap.DriverID, lap.LapNumber, lap.LapTime,
		lap.Position, lap.KartNumber)
	return row.Scan(&lap.ID)
}

// Exists reports whether a lap with the identical
// (session, driver, lap_number, lap_time) tuple is already persisted.
// This is the duplicate key of the import guard.
func Exists(
	ctx context.Context,
	conn repository.Querier,
	sessionID, driverID, lapNumber int,
	lapTime float64,
) (bool, error) {
	row := conn.QueryRow(ctx, `
select exists(
  select 1 from lap
  where session_id=$1 and driver_id=$2 and lap_number=$3 and lap_time=$4)`,
		sessionID, driverID, lapNumber, lapTime)
	var found bool
	if err := row.Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// LoadBySession returns all laps of a session ordered by driver and
// lap number. This is the input order the calculator expects.
func LoadBySession(
	ctx context.Context,
	conn repository.Querier,
	sessionID int,
) ([]*model.Lap, error) {
	rows, err := conn.Query(ctx,
		fmt.Sprintf("%s where session_id=$1 order by driver_id,lap_number", selector),
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.Lap, 0)
	for rows.Next() {
		var item model.Lap
		if err := scan(&item, rows); err != nil {
			return nil, err
		}
		ret = append(ret, &item)
	}
	return ret, nil
}

// UpdateDerived overwrites the derived attributes of a lap.
func UpdateDerived(ctx context.Context, conn repository.Querier, lap *model.Lap) error {
	_, err := conn.Exec(ctx, `
update lap set position=$1, is_best_lap=$2, gap_to_best_lap=$3,
  interval_to_prev_lap=$4, gap_to_previous=$5, avg_speed=$6
where id=$7`,
		lap.Position, lap.IsBestLap, lap.GapToBestLap,
		lap.Interval, lap.GapToPrevious, lap.AvgSpeed, lap.ID)
	return err
}

func CountBySession(
	ctx context.Context,
	conn repository.Querier,
	sessionID int,
) (int, error) {
	row := conn.QueryRow(ctx,
		"select count(*) from lap where session_id=$1", sessionID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func DeleteBySession(
	ctx context.Context,
	conn repository.Querier,
	sessionID int,
) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from lap where session_id=$1", sessionID)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

// little helper
const selector = string(`
select id,session_id,driver_id,lap_number,lap_time,position,kart_number,
  is_best_lap,gap_to_best_lap,interval_to_prev_lap,gap_to_previous,avg_speed
from lap`)

func scan(e *model.Lap, row pgx.Row) error {
	return row.Scan(&e.ID, &e.SessionID, &e.DriverID, &e.LapNumber, &e.LapTime,
		&e.Position, &e.KartNumber, &e.IsBestLap, &e.GapToBestLap,
		&e.Interval, &e.GapToPrevious, &e.AvgSpeed)
}
