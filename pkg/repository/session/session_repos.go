package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/TheMaksoo/kartlog/pkg/model"
	"github.com/TheMaksoo/kartlog/pkg/repository"
)

func Create(ctx context.Context, conn repository.Querier, sess *model.Session) error {
	row := conn.QueryRow(ctx, `
insert into session (track_id, session_date, session_type, notes)
values ($1,$2,$3,$4) returning id`,
		sess.TrackID, sess.SessionDate, sess.SessionType, sess.Notes)
	return row.Scan(&sess.ID)
}

func LoadById(
	ctx context.Context,
	conn repository.Querier,
	id int,
) (*model.Session, error) {
	row := conn.QueryRow(ctx,
		fmt.Sprintf("%s where id=$1", selector), id)
	var item model.Session
	if err := scan(&item, row); err != nil {
		return nil, err
	}
	return &item, nil
}

// LoadByTrackAndDate returns the session for (track, date) or pgx.ErrNoRows.
// The (track_id, session_date) pair is unique.
func LoadByTrackAndDate(
	ctx context.Context,
	conn repository.Querier,
	trackID int,
	date time.Time,
) (*model.Session, error) {
	row := conn.QueryRow(ctx,
		fmt.Sprintf("%s where track_id=$1 and session_date=$2::date", selector),
		trackID, date)
	var item model.Session
	if err := scan(&item, row); err != nil {
		return nil, err
	}
	return &item, nil
}

func LoadByTrack(
	ctx context.Context,
	conn repository.Querier,
	trackID int,
) ([]*model.Session, error) {
	rows, err := conn.Query(ctx,
		fmt.Sprintf("%s where track_id=$1 order by session_date", selector), trackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func LoadAll(
	ctx context.Context,
	conn repository.Querier,
) ([]*model.Session, error) {
	rows, err := conn.Query(ctx,
		fmt.Sprintf("%s order by session_date", selector))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func DeleteById(ctx context.Context, conn repository.Querier, id int) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from session where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func collect(rows pgx.Rows) ([]*model.Session, error) {
	ret := make([]*model.Session, 0)
	for rows.Next() {
		var item model.Session
		if err := scan(&item, rows); err != nil {
			return nil, err
		}
		ret = append(ret, &item)
	}
	return ret, nil
}

// little helper
const selector = string(`
select id,track_id,session_date,session_type,notes from session`)

func scan(e *model.Session, row pgx.Row) error {
	return row.Scan(&e.ID, &e.TrackID, &e.SessionDate, &e.SessionType, &e.Notes)
}
