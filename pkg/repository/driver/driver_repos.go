package driver

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/TheMaksoo/kartlog/pkg/model"
	"github.com/TheMaksoo/kartlog/pkg/repository"
)

func Create(ctx context.Context, conn repository.Querier, driver *model.Driver) error {
	row := conn.QueryRow(ctx,
		"insert into driver (name, email) values ($1,$2) returning id",
		driver.Name, driver.Email)
	return row.Scan(&driver.ID)
}

func LoadById(
	ctx context.Context,
	conn repository.Querier,
	id int,
) (*model.Driver, error) {
	row := conn.QueryRow(ctx,
		fmt.Sprintf("%s where id=$1", selector), id)
	var item model.Driver
	if err := scan(&item, row); err != nil {
		return nil, err
	}
	return &item, nil
}

// LoadByName matches case-insensitive on the display name.
func LoadByName(
	ctx context.Context,
	conn repository.Querier,
	name string,
) (*model.Driver, error) {
	row := conn.QueryRow(ctx,
		fmt.Sprintf("%s where lower(name)=lower($1)", selector), name)
	var item model.Driver
	if err := scan(&item, row); err != nil {
		return nil, err
	}
	return &item, nil
}

func LoadAll(
	ctx context.Context,
	conn repository.Querier,
) ([]*model.Driver, error) {
	rows, err := conn.Query(ctx, fmt.Sprintf("%s order by name", selector))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.Driver, 0)
	for rows.Next() {
		var item model.Driver
		if err := scan(&item, rows); err != nil {
			return nil, err
		}
		ret = append(ret, &item)
	}
	return ret, nil
}

func DeleteById(ctx context.Context, conn repository.Querier, id int) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from driver where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

// little helper
const selector = string(`select id,name,email from driver`)

func scan(e *model.Driver, row pgx.Row) error {
	return row.Scan(&e.ID, &e.Name, &e.Email)
}
