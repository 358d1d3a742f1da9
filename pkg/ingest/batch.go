package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TheMaksoo/kartlog/log"
	"github.com/TheMaksoo/kartlog/pkg/decode"
	"github.com/TheMaksoo/kartlog/pkg/detect"
	"github.com/TheMaksoo/kartlog/pkg/extract"
	"github.com/TheMaksoo/kartlog/pkg/model"
	laprepos "github.com/TheMaksoo/kartlog/pkg/repository/lap"
	"github.com/TheMaksoo/kartlog/pkg/tracks"
)

// Options configures a batch run.
type Options struct {
	Root        string          // directory with one subfolder per vendor mailbox
	Catalog     *tracks.Catalog //
	DefaultDate time.Time       // session date when a file carries none
	Logger      *log.Logger
}

var importExts = map[string]bool{
	".eml": true, ".pdf": true, ".txt": true, ".csv": true, "": true,
}

// Run processes every result file under opts.Root. Each file runs in
// its own transaction; a failing file is rolled back and recorded,
// the batch always continues. The returned error covers only setup
// problems (unreadable root), never per-file failures.
func Run(ctx context.Context, pool *pgxpool.Pool, opts Options) (*Report, error) {
	l := opts.Logger
	if l == nil {
		l = log.Default().Named("ingest")
	}
	ctx = log.AddToContext(ctx, l)
	report := newReport()

	folders, err := listFolders(opts.Root)
	if err != nil {
		return nil, err
	}
	for _, folder := range folders {
		track, err := opts.Catalog.ForFolder(folder)
		if err != nil {
			l.Warn("skipping folder without track mapping", log.String("folder", folder))
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("folder %q has no track mapping", folder))
			continue
		}
		files, err := listFiles(filepath.Join(opts.Root, folder))
		if err != nil {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("folder %q not readable: %v", folder, err))
			continue
		}
		for _, path := range files {
			res := FileResult{Path: path}
			err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
				return processFile(ctx, tx, track, path, opts.DefaultDate, &res, report)
			})
			if err != nil {
				l.Error("file failed", log.String("file", path), log.ErrorField(err))
				res.Err = err
			} else {
				l.Debug("file done",
					log.String("file", path),
					log.Int("stored", res.LapsStored),
					log.Int("skipped", res.LapsSkipped))
			}
			report.Files = append(report.Files, res)
		}
	}
	report.Duration = time.Since(report.StartedAt)
	return report, nil
}

func processFile(
	ctx context.Context,
	tx pgx.Tx,
	catTrack *tracks.Track,
	path string,
	defaultDate time.Time,
	res *FileResult,
	report *Report,
) error {
	payload, err := decode.File(path)
	if err != nil {
		return fmt.Errorf("decoding: %w", err)
	}
	format, err := detect.Detect(payload)
	if err != nil {
		return fmt.Errorf("detecting format: %w", err)
	}
	res.Format = format.String()

	ex, err := extract.For(format)
	if err != nil {
		return err
	}
	records, err := ex.Extract(payload, extract.Hints{TrackName: catTrack.Name})
	if err != nil {
		return fmt.Errorf("extracting: %w", err)
	}
	res.LapsFound = len(records)
	if len(records) == 0 {
		log.GetFromContext(ctx).Warn("no laps found", log.String("file", path))
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("file %q yielded no laps", path))
		return nil
	}

	track, err := ResolveTrack(ctx, tx, catTrack)
	if err != nil {
		return fmt.Errorf("resolving track: %w", err)
	}

	sessions := make(map[time.Time]*model.Session)
	drivers := make(map[string]*model.Driver)
	touched := make(map[int]bool)
	dateDefaulted := false
	for _, rec := range records {
		date := defaultDate
		if rec.SessionDate != nil {
			date = *rec.SessionDate
		} else {
			dateDefaulted = true
		}
		date = dateOnly(date)

		sess, ok := sessions[date]
		if !ok {
			note := fmt.Sprintf("Imported from %s", filepath.Base(path))
			sess, err = ResolveSession(ctx, tx, track.ID, date, note)
			if err != nil {
				return fmt.Errorf("resolving session: %w", err)
			}
			sessions[date] = sess
		}
		drv, ok := drivers[strings.ToLower(rec.DriverName)]
		if !ok {
			drv, err = ResolveDriver(ctx, tx, rec.DriverName)
			if err != nil {
				return fmt.Errorf("resolving driver %q: %w", rec.DriverName, err)
			}
			drivers[strings.ToLower(rec.DriverName)] = drv
		}

		dup, err := laprepos.Exists(ctx, tx, sess.ID, drv.ID, rec.LapNumber, rec.LapTime)
		if err != nil {
			return err
		}
		if dup {
			res.LapsSkipped++
			continue
		}
		lap := &model.Lap{
			SessionID:  sess.ID,
			DriverID:   drv.ID,
			LapNumber:  rec.LapNumber,
			LapTime:    rec.LapTime,
			Position:   rec.Position,
			KartNumber: rec.KartNumber,
		}
		if err := laprepos.Create(ctx, tx, lap); err != nil {
			return fmt.Errorf("storing lap: %w", err)
		}
		res.LapsStored++
		touched[sess.ID] = true
		report.touchDriver(drv.Name)
	}

	if dateDefaulted {
		log.GetFromContext(ctx).Warn("no session date in file",
			log.String("file", path),
			log.Time("defaulted", dateOnly(defaultDate)))
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("file %q carries no session date, defaulted to %s",
				path, dateOnly(defaultDate).Format("2006-01-02")))
	}

	for sessionID := range touched {
		if err := Recalc(ctx, tx, sessionID, track.Distance); err != nil {
			return fmt.Errorf("recalculating session %d: %w", sessionID, err)
		}
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func listFolders(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading import root: %w", err)
	}
	var folders []string
	for _, e := range entries {
		if e.IsDir() {
			folders = append(folders, e.Name())
		}
	}
	sort.Strings(folders)
	return folders, nil
}

func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if importExts[strings.ToLower(filepath.Ext(d.Name()))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
