package track

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/TheMaksoo/kartlog/pkg/model"
	"github.com/TheMaksoo/kartlog/pkg/repository"
)

func Create(ctx context.Context, conn repository.Querier, track *model.Track) error {
	row := conn.QueryRow(ctx,
		"insert into track (name, distance, heat_price) values ($1,$2,$3) returning id",
		track.Name, track.Distance, track.HeatPrice)
	return row.Scan(&track.ID)
}

// Upsert creates the track or updates distance and heat price of an
// existing track with the same name. Used by the catalog seeder.
func Upsert(ctx context.Context, conn repository.Querier, track *model.Track) error {
	row := conn.QueryRow(ctx, `
insert into track (name, distance, heat_price) values ($1,$2,$3)
on conflict (name) do update set distance=$2, heat_price=$3
returning id`,
		track.Name, track.Distance, track.HeatPrice)
	return row.Scan(&track.ID)
}

func LoadById(
	ctx context.Context,
	conn repository.Querier,
	id int,
) (*model.Track, error) {
	row := conn.QueryRow(ctx,
		fmt.Sprintf("%s where id=$1", selector), id)
	var item model.Track
	if err := scan(&item, row); err != nil {
		return nil, err
	}
	return &item, nil
}

func LoadByName(
	ctx context.Context,
	conn repository.Querier,
	name string,
) (*model.Track, error) {
	row := conn.QueryRow(ctx,
		fmt.Sprintf("%s where name=$1", selector), name)
	var item model.Track
	if err := scan(&item, row); err != nil {
		return nil, err
	}
	return &item, nil
}

func LoadAll(
	ctx context.Context,
	conn repository.Querier,
) ([]*model.Track, error) {
	rows, err := conn.Query(ctx, fmt.Sprintf("%s order by name", selector))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.Track, 0)
	for rows.Next() {
		var item model.Track
		if err := scan(&item, rows); err != nil {
			return nil, err
		}
		ret = append(ret, &item)
	}
	return ret, nil
}

// deletes an entry from the database, returns number of rows deleted.
func DeleteById(ctx context.Context, conn repository.Querier, id int) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from track where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

// little helper
const selector = string(`select id,name,distance,heat_price from track`)

func scan(e *model.Track, row pgx.Row) error {
	return row.Scan(&e.ID, &e.Name, &e.Distance, &e.HeatPrice)
}
