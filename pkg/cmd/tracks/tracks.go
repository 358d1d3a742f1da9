package tracks

import (
	"context"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/TheMaksoo/kartlog/log"
	"github.com/TheMaksoo/kartlog/pkg/config"
	"github.com/TheMaksoo/kartlog/pkg/db/postgres"
	"github.com/TheMaksoo/kartlog/pkg/ingest"
	"github.com/TheMaksoo/kartlog/pkg/tracks"
)

func NewTracksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "manages the track catalog",
	}
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newSeedCmd())
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "shows the catalog entries and their folder mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList()
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "upserts all catalog tracks into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}
}

func runList() error {
	catalog, err := tracks.Load(config.TrackCatalog)
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Track", "Distance (m)", "Heat price", "Folders"})
	for _, tr := range catalog.All() {
		t.AppendRow(table.Row{
			tr.Name,
			floatOrDash(tr.Specs.Distance),
			floatOrDash(tr.Specs.HeatPrice),
			strings.Join(tr.Folders, ", "),
		})
	}
	t.Render()
	return nil
}

func runSeed(ctx context.Context) error {
	logger := log.DevLogger(os.Stderr, log.InfoLevel)
	log.ResetDefault(logger)

	catalog, err := tracks.Load(config.TrackCatalog)
	if err != nil {
		return err
	}
	sqlLevel, lerr := log.ParseLevel(config.SQLLogLevel)
	if lerr != nil {
		sqlLevel = log.InfoLevel
	}
	pool := postgres.InitWithURL(config.DB,
		postgres.WithTracer(log.DevLogger(os.Stderr, sqlLevel).Named("sql")))
	defer pool.Close()

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for i := range catalog.All() {
			entry := catalog.All()[i]
			track, err := ingest.ResolveTrack(ctx, tx, &entry)
			if err != nil {
				return err
			}
			log.Info("track seeded", log.Int("id", track.ID), log.String("name", track.Name))
		}
		return nil
	})
}

func floatOrDash(v *float64) interface{} {
	if v == nil {
		return "-"
	}
	return *v
}
