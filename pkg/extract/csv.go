package extract

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/TheMaksoo/kartlog/pkg/decode"
)

// csvExtractor handles delimited exports. The delimiter is sniffed
// from the header line since both comma and semicolon exports occur
// (semicolon goes with decimal-comma lap times). Rows naming a track
// other than the hinted one are skipped, not failed.
type csvExtractor struct{}

func (e *csvExtractor) Extract(p *decode.Payload, hints Hints) ([]Record, error) {
	text := strings.TrimPrefix(p.Text, "\uFEFF")
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	cols := mapColumns(rows[0])
	trackCol := findColumn(rows[0], []string{"track", "baan", "circuit"})
	dateCol := findColumn(rows[0], []string{"date", "datum", "sessiondate", "fecha"})
	if cols.driver < 0 || cols.time < 0 {
		return nil, fmt.Errorf("csv header lacks driver or lap time column")
	}

	sessionDate := p.MailDate
	var out []Record
	lapCounters := make(map[string]int)
	for _, row := range rows[1:] {
		if cols.driver >= len(row) || cols.time >= len(row) {
			continue
		}
		if trackCol >= 0 && trackCol < len(row) && hints.TrackName != "" {
			if t := strings.TrimSpace(row[trackCol]); t != "" && !strings.EqualFold(t, hints.TrackName) {
				continue
			}
		}
		name := cleanName(row[cols.driver])
		if name == "" {
			continue
		}
		secs, err := ParseLapTime(row[cols.time])
		if err != nil {
			continue
		}
		rec := Record{DriverName: name, LapTime: secs, SessionDate: sessionDate}
		if dateCol >= 0 && dateCol < len(row) {
			if d := FindSessionDate(row[dateCol]); d != nil {
				rec.SessionDate = d
			}
		}
		if cols.lap >= 0 && cols.lap < len(row) {
			if v, err := strconv.Atoi(strings.TrimSpace(row[cols.lap])); err == nil {
				rec.LapNumber = v
			}
		}
		if rec.LapNumber == 0 {
			lapCounters[strings.ToLower(name)]++
			rec.LapNumber = lapCounters[strings.ToLower(name)]
		}
		if cols.pos >= 0 && cols.pos < len(row) {
			if v, err := strconv.Atoi(strings.TrimSpace(row[cols.pos])); err == nil {
				rec.Position = intPtr(v)
			}
		}
		if cols.kart >= 0 && cols.kart < len(row) {
			if k := strings.TrimSpace(row[cols.kart]); k != "" {
				rec.KartNumber = strPtr(k)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func sniffDelimiter(text string) rune {
	header, _, _ := strings.Cut(text, "\n")
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}

func findColumn(header []string, words []string) int {
	for i, cell := range header {
		w := strings.Trim(strings.ToLower(strings.TrimSpace(cell)), ".:")
		if matchesWord(w, words) {
			return i
		}
	}
	return -1
}
