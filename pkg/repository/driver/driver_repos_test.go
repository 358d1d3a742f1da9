//nolint:dupl,errcheck // ok for this test code
package driver

import (
	"context"
	"log"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gotest.tools/v3/assert"

	"github.com/TheMaksoo/kartlog/pkg/model"
	"github.com/TheMaksoo/kartlog/testsupport/testdb"
)

func createSampleEntry(db *pgxpool.Pool) *model.Driver {
	ctx := context.Background()
	driver := &model.Driver{Name: "Test Driver"}
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		return Create(ctx, tx, driver)
	})
	if err != nil {
		log.Fatalf("createSampleEntry: %v\n", err)
	}
	return driver
}

func TestCreate(t *testing.T) {
	pool := testdb.InitTestDb()
	driver := &model.Driver{Name: "Max"}
	err := pgx.BeginFunc(context.Background(), pool, func(tx pgx.Tx) error {
		return Create(context.Background(), tx, driver)
	})
	assert.NilError(t, err)
	assert.Assert(t, driver.ID > 0)
}

func TestLoadByNameCaseInsensitive(t *testing.T) {
	pool := testdb.InitTestDb()
	driver := createSampleEntry(pool)

	loaded, err := LoadByName(context.Background(), pool, "test driver")
	assert.NilError(t, err)
	assert.Equal(t, driver.ID, loaded.ID)
	// stored spelling wins
	assert.Equal(t, "Test Driver", loaded.Name)

	_, err = LoadByName(context.Background(), pool, "nobody")
	assert.Assert(t, err != nil)
}

func TestDeleteById(t *testing.T) {
	pool := testdb.InitTestDb()
	driver := createSampleEntry(pool)

	num, err := DeleteById(context.Background(), pool, driver.ID)
	assert.NilError(t, err)
	assert.Equal(t, 1, num)
}
