// Package extract turns classified payloads into raw lap records.
// One strategy exists per vendor layout family; adding a vendor format
// means adding one strategy.
package extract

import (
	"fmt"
	"time"

	"github.com/TheMaksoo/kartlog/pkg/decode"
	"github.com/TheMaksoo/kartlog/pkg/detect"
)

// Record is one raw lap as found in a result file, before entity
// resolution. Extractors emit an empty slice (not an error) when the
// structural cues matched but no valid rows parsed.
type Record struct {
	DriverName  string
	LapNumber   int     // >= 1
	LapTime     float64 // seconds, > 0
	Position    *int
	KartNumber  *string
	SessionDate *time.Time
}

// Hints carries context the file itself may not repeat, e.g. the track
// the enclosing folder was mapped to.
type Hints struct {
	TrackName string
}

type Extractor interface {
	Extract(p *decode.Payload, hints Hints) ([]Record, error)
}

// For returns the extraction strategy for a detected format.
func For(format detect.Format) (Extractor, error) {
	switch format {
	case detect.FormatHTMLTable:
		return &htmlTableExtractor{}, nil
	case detect.FormatPlainColumnar, detect.FormatPDFColumnar:
		return &columnarExtractor{}, nil
	case detect.FormatCSV:
		return &csvExtractor{}, nil
	default:
		return nil, fmt.Errorf("no extractor for format %q", format)
	}
}

func intPtr(v int) *int              { return &v }
func strPtr(v string) *string        { return &v }
func datePtr(v time.Time) *time.Time { return &v }
