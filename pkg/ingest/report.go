package ingest

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// FileResult holds the outcome of one processed file.
type FileResult struct {
	Path        string
	Format      string
	LapsFound   int
	LapsStored  int
	LapsSkipped int
	Err         error
}

// Report aggregates a batch run.
type Report struct {
	RunID       uuid.UUID
	StartedAt   time.Time
	Duration    time.Duration
	Files       []FileResult
	Warnings    []string
	driverNames map[string]struct{}
}

func newReport() *Report {
	id, _ := uuid.NewV4()
	return &Report{
		RunID:       id,
		StartedAt:   time.Now(),
		driverNames: map[string]struct{}{},
	}
}

func (r *Report) touchDriver(name string) {
	r.driverNames[name] = struct{}{}
}

func (r *Report) FilesProcessed() int { return len(r.Files) }

func (r *Report) LapsImported() int {
	sum := 0
	for _, f := range r.Files {
		sum += f.LapsStored
	}
	return sum
}

func (r *Report) LapsSkipped() int {
	sum := 0
	for _, f := range r.Files {
		sum += f.LapsSkipped
	}
	return sum
}

func (r *Report) DriversTouched() int { return len(r.driverNames) }

func (r *Report) FailedFiles() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Render writes the per-file table and the totals block.
func (r *Report) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Format", "Found", "Stored", "Skipped", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	for _, f := range r.Files {
		status := "ok"
		if f.Err != nil {
			status = f.Err.Error()
		}
		t.AppendRow(table.Row{f.Path, f.Format, f.LapsFound, f.LapsStored, f.LapsSkipped, status})
	}
	t.Render()

	fmt.Fprintf(w, "\nRun %s finished in %s\n", r.RunID, r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Files: %d  Laps imported: %d  Laps skipped: %d  Drivers: %d\n",
		r.FilesProcessed(), r.LapsImported(), r.LapsSkipped(), r.DriversTouched())
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warn)
	}
	if failed := r.FailedFiles(); len(failed) > 0 {
		fmt.Fprintf(w, "%d file(s) failed\n", len(failed))
	}
}

// DriverNames returns the touched drivers sorted, mainly for tests.
func (r *Report) DriverNames() []string {
	out := make([]string, 0, len(r.driverNames))
	for n := range r.driverNames {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
