// Package detect classifies decoded payloads into one of the known
// vendor layout families.
package detect

import (
	"errors"
	"regexp"
	"strings"

	"github.com/TheMaksoo/kartlog/pkg/decode"
)

type Format int

const (
	FormatUnknown Format = iota
	FormatHTMLTable
	FormatPlainColumnar
	FormatPDFColumnar
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatHTMLTable:
		return "html-table"
	case FormatPlainColumnar:
		return "plain-columnar"
	case FormatPDFColumnar:
		return "pdf-columnar"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

var ErrUnrecognizedFormat = errors.New("unrecognized result format")

var (
	htmlTableRe = regexp.MustCompile(`(?is)<table[\s>]|<tr[\s>]|<td[\s>]`)
	// lap times as they appear across vendor templates: 26.123, 26,123,
	// 1:07.478, 01:07,478
	lapTimeRe = regexp.MustCompile(`(?m)(?:\d{1,2}:)?\d{1,2}[.,]\d{3}`)
	// localized headings used as secondary confidence signal only
	headingRe = regexp.MustCompile(
		`(?i)rondetijden|sessie overzicht|your lap times|vueltas|` +
			`resultados detallados|detailed results|jouw rondetijden`)
)

// Detect classifies a decoded payload. Fingerprints are structural so the
// detector is independent of the vendor template language; the decision
// order matters because fingerprints overlap.
func Detect(p *decode.Payload) (Format, error) {
	if htmlTableRe.MatchString(p.Text) {
		return FormatHTMLTable, nil
	}
	if p.Kind == decode.KindCSV || isCsvHeader(p.Text) {
		return FormatCSV, nil
	}
	if lapTimeRe.MatchString(p.Text) || headingRe.MatchString(p.Text) {
		if p.Kind == decode.KindPDF {
			return FormatPDFColumnar, nil
		}
		return FormatPlainColumnar, nil
	}
	return FormatUnknown, ErrUnrecognizedFormat
}

// isCsvHeader checks the first non-empty line against the known export
// schema: a comma separated header carrying at least Driver and LapTime.
func isCsvHeader(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sep := ","
		if strings.Count(line, ";") > strings.Count(line, ",") {
			sep = ";"
		}
		cols := strings.Split(line, sep)
		if len(cols) < 3 {
			return false
		}
		var hasDriver, hasLapTime bool
		for _, col := range cols {
			switch strings.ToLower(strings.TrimSpace(col)) {
			case "driver":
				hasDriver = true
			case "laptime", "lap_time", "lap time":
				hasLapTime = true
			}
		}
		return hasDriver && hasLapTime
	}
	return false
}
