package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportRender(t *testing.T) {
	r := newReport()
	r.Files = []FileResult{
		{Path: "lot66/sessie30.eml", Format: "html-table", LapsFound: 4, LapsStored: 3, LapsSkipped: 1},
		{Path: "lot66/broken.pdf", Format: "", Err: errors.New("boom")},
	}
	r.Warnings = []string{`folder "foo" has no track mapping`}
	r.touchDriver("Max")
	r.touchDriver("Anna")

	var sb strings.Builder
	r.Render(&sb)
	out := sb.String()

	assert.Contains(t, out, "sessie30.eml")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "Laps imported: 3")
	assert.Contains(t, out, "Drivers: 2")
	assert.Contains(t, out, "no track mapping")
	assert.Contains(t, out, "1 file(s) failed")
	assert.NotEmpty(t, r.RunID)
}

func TestReportCounters(t *testing.T) {
	r := newReport()
	assert.Equal(t, 0, r.FilesProcessed())
	assert.Equal(t, 0, r.LapsImported())
	assert.Empty(t, r.FailedFiles())
	assert.Empty(t, r.DriverNames())
}
