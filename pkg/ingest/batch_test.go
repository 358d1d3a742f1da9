//nolint:errcheck // ok for this test code
package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	laprepos "github.com/TheMaksoo/kartlog/pkg/repository/lap"
	sessionrepos "github.com/TheMaksoo/kartlog/pkg/repository/session"
	"github.com/TheMaksoo/kartlog/pkg/tracks"
	"github.com/TheMaksoo/kartlog/testsupport/testdb"
)

const resultMail = `Date: Thu, 21 Nov 2024 19:42:00 +0100
Content-Type: text/html; charset=utf-8

<html><body>
<p>Sessie 30 - 21/11/2024</p>
<table>
<tr><th>Pos</th><th>Rijder</th><th>Beste tijd</th></tr>
<tr><td>1</td><td>Max</td><td>52.998</td></tr>
<tr><td>2</td><td>Anna</td><td>53.123</td></tr>
</table>
</body></html>
`

const resultCsv = `Date,Driver,Lap,LapTime
21/11/2024,Max,1,52.998
21/11/2024,Max,2,54.511
`

const testCatalog = `{
  "tracks": [
    {
      "name": "Lot 66",
      "specifications": {"distance": 365},
      "folders": ["lot66"]
    }
  ]
}`

func setupInbox(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	folder := filepath.Join(root, "lot66")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(folder, "sessie30.eml"), []byte(resultMail), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(folder, "export.csv"), []byte(resultCsv), 0o644))
	// unmapped folder must only produce a warning
	require.NoError(t, os.MkdirAll(filepath.Join(root, "unknownvenue"), 0o755))
	return root
}

func TestBatchRunAndRerun(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()

	catalog, err := tracks.Parse([]byte(testCatalog))
	require.NoError(t, err)

	opts := Options{
		Root:        setupInbox(t),
		Catalog:     catalog,
		DefaultDate: time.Date(2024, 11, 21, 0, 0, 0, 0, time.UTC),
	}

	report, err := Run(ctx, pool, opts)
	require.NoError(t, err)

	assert.Equal(t, 2, report.FilesProcessed())
	// the csv lands first and already carries Max's best lap; the eml
	// then only adds Anna, Max's summary row is a duplicate
	assert.Equal(t, 3, report.LapsImported())
	assert.Equal(t, 1, report.LapsSkipped())
	assert.Equal(t, []string{"Anna", "Max"}, report.DriverNames())
	assert.Empty(t, report.FailedFiles())
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "unknownvenue")

	// a second run over the same inbox imports nothing new
	rerun, err := Run(ctx, pool, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, rerun.LapsImported())
	assert.Equal(t, 4, rerun.LapsSkipped())

	// derived fields end up in the database
	sessions, err := sessionrepos.LoadAll(ctx, pool)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Contains(t, sessions[0].Notes, "Imported from")

	laps, err := laprepos.LoadBySession(ctx, pool, sessions[0].ID)
	require.NoError(t, err)
	require.Len(t, laps, 3)
	for _, l := range laps {
		require.NotNil(t, l.Position, "lap %d", l.ID)
		require.NotNil(t, l.AvgSpeed)
	}
}

func TestBatchContinuesAfterBadFile(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()

	catalog, err := tracks.Parse([]byte(testCatalog))
	require.NoError(t, err)

	root := t.TempDir()
	folder := filepath.Join(root, "lot66")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(folder, "aaa_garbage.txt"), []byte("not a result file"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(folder, "good.csv"), []byte(resultCsv), 0o644))

	report, err := Run(ctx, pool, Options{
		Root:        root,
		Catalog:     catalog,
		DefaultDate: time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.FilesProcessed())
	require.Len(t, report.FailedFiles(), 1)
	assert.Contains(t, report.FailedFiles()[0].Path, "garbage")
	assert.Equal(t, 2, report.LapsImported())
}
