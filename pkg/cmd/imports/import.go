package imports

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/TheMaksoo/kartlog/log"
	"github.com/TheMaksoo/kartlog/pkg/config"
	"github.com/TheMaksoo/kartlog/pkg/db/postgres"
	"github.com/TheMaksoo/kartlog/pkg/ingest"
	"github.com/TheMaksoo/kartlog/pkg/tracks"
	"github.com/TheMaksoo/kartlog/pkg/utils"
)

var (
	sourceDir   string
	defaultDate string
)

func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "imports karting result files into the database",
		Long: `Walks a directory of vendor mailbox folders, parses every result
file (eml, pdf, txt, csv) and stores laps with derived fields.
Already imported laps are skipped, so re-running is safe.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&sourceDir,
		"source",
		"s",
		"./results",
		"directory containing one subfolder per vendor mailbox")
	cmd.Flags().StringVar(&defaultDate,
		"default-date",
		"",
		"session date (YYYY-MM-DD) for files without one, defaults to today")
	return cmd
}

func runImport(ctx context.Context) error {
	logger := setupLogger()
	log.ResetDefault(logger)

	fallback := time.Now()
	if defaultDate != "" {
		parsed, err := time.Parse("2006-01-02", defaultDate)
		if err != nil {
			return fmt.Errorf("invalid default-date: %w", err)
		}
		fallback = parsed
	}

	catalog, err := tracks.Load(config.TrackCatalog)
	if err != nil {
		return err
	}

	waitForDatabase()
	pool := postgres.InitWithURL(config.DB, postgres.WithTracer(sqlLogger()))
	defer pool.Close()

	report, err := ingest.Run(ctx, pool, ingest.Options{
		Root:        sourceDir,
		Catalog:     catalog,
		DefaultDate: fallback,
		Logger:      logger.Named("ingest"),
	})
	if err != nil {
		return err
	}
	report.Render(os.Stdout)
	if len(report.FailedFiles()) > 0 {
		return fmt.Errorf("%d file(s) failed", len(report.FailedFiles()))
	}
	return nil
}

func setupLogger() *log.Logger {
	logger := newLogger(parseLogLevel(config.LogLevel, log.InfoLevel))
	if config.LogFilter != "" {
		logger = log.FilteredLogger(logger, config.LogFilter)
	}
	return logger
}

// sqlLogger feeds the pgx query tracer. Statements only show up when
// --sql-log-level is debug.
func sqlLogger() *log.Logger {
	return newLogger(parseLogLevel(config.SQLLogLevel, log.InfoLevel)).Named("sql")
}

func newLogger(level log.Level, opts ...log.Option) *log.Logger {
	opts = append(opts, log.WithCaller(true), log.AddCallerSkip(1))
	switch config.LogFormat {
	case "json":
		return log.New(os.Stderr, level, opts...)
	default:
		return log.DevLogger(os.Stderr, level, opts...)
	}
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

func waitForDatabase() {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	postgresAddr := utils.ExtractFromDBURL(config.DB)
	if err := utils.WaitForTCP(postgresAddr, timeout); err != nil {
		log.Fatal("database not ready", log.ErrorField(err))
	}
}
