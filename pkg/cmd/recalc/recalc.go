package recalc

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/TheMaksoo/kartlog/log"
	"github.com/TheMaksoo/kartlog/pkg/config"
	"github.com/TheMaksoo/kartlog/pkg/db/postgres"
	"github.com/TheMaksoo/kartlog/pkg/ingest"
	"github.com/TheMaksoo/kartlog/pkg/model"
	sessionrepos "github.com/TheMaksoo/kartlog/pkg/repository/session"
	trackrepos "github.com/TheMaksoo/kartlog/pkg/repository/track"
)

var (
	sessionID int
	trackID   int
)

// NewRecalcCmd rebuilds the derived lap fields. Useful after a track's
// distance changed in the catalog or after manual database edits.
func NewRecalcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "recomputes derived lap fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecalc(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&sessionID,
		"session",
		0,
		"recalculate a single session (default: all sessions)")
	cmd.Flags().IntVar(&trackID,
		"track",
		0,
		"recalculate all sessions of one track")
	return cmd
}

func runRecalc(ctx context.Context) error {
	logger := log.DevLogger(os.Stderr, log.InfoLevel)
	log.ResetDefault(logger)

	sqlLevel, lerr := log.ParseLevel(config.SQLLogLevel)
	if lerr != nil {
		sqlLevel = log.InfoLevel
	}
	pool := postgres.InitWithURL(config.DB,
		postgres.WithTracer(log.DevLogger(os.Stderr, sqlLevel).Named("sql")))
	defer pool.Close()

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		sessions, err := loadTargets(ctx, tx)
		if err != nil {
			return err
		}
		for _, s := range sessions {
			track, err := trackrepos.LoadById(ctx, tx, s.TrackID)
			if err != nil {
				return fmt.Errorf("loading track %d: %w", s.TrackID, err)
			}
			if err := ingest.Recalc(ctx, tx, s.ID, track.Distance); err != nil {
				return fmt.Errorf("session %d: %w", s.ID, err)
			}
			log.Info("session recalculated",
				log.Int("session", s.ID),
				log.String("track", track.Name))
		}
		log.Info("done", log.Int("sessions", len(sessions)))
		return nil
	})
}

func loadTargets(ctx context.Context, tx pgx.Tx) ([]*model.Session, error) {
	if sessionID > 0 {
		s, err := sessionrepos.LoadById(ctx, tx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("loading session %d: %w", sessionID, err)
		}
		return []*model.Session{s}, nil
	}
	if trackID > 0 {
		return sessionrepos.LoadByTrack(ctx, tx, trackID)
	}
	return sessionrepos.LoadAll(ctx, tx)
}
