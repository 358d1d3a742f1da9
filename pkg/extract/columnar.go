package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/TheMaksoo/kartlog/pkg/decode"
)

// columnarExtractor handles whitespace-aligned text layouts, both
// native text files and text reconstructed from PDFs. Columns are
// separated by runs of two or more spaces or by tabs. Two shapes
// occur: a header line followed by data rows, and headerless blocks
// of numbered lap lines per driver. In the headerless shape a block
// starts with a bare name line; the track name line preceding it (the
// lot66 layout) is skipped via the hint.
type columnarExtractor struct{}

var (
	columnSplitRe = regexp.MustCompile(`\s{2,}|\t+`)
	lapLineRe     = regexp.MustCompile(`^\s*(\d{1,3})[.)\s]\s*((?:\d{1,2}:)?\d{1,2}[.,]\d{1,3})\s*$`)
	bareTimeRe    = regexp.MustCompile(`^(?:\d{1,2}:)?\d{1,2}[.,]\d{1,3}$`)
	kartCellRe    = regexp.MustCompile(`^(?:kart\s*)?#?\d{1,3}$`)
)

func (e *columnarExtractor) Extract(p *decode.Payload, hints Hints) ([]Record, error) {
	lines := strings.Split(p.Text, "\n")
	sessionDate := p.MailDate
	if d := FindSessionDate(p.Text); d != nil {
		sessionDate = d
	}

	if recs := extractWithHeader(lines, sessionDate); len(recs) > 0 {
		return recs, nil
	}
	return extractBlocks(lines, hints, sessionDate), nil
}

// extractWithHeader handles the tabular shape: a recognizable header
// line, then one row per lap or per driver.
func extractWithHeader(lines []string, sessionDate *time.Time) []Record {
	for i, line := range lines {
		cells := splitColumns(line)
		if len(cells) < 2 {
			continue
		}
		cols := mapColumns(cells)
		if cols.time < 0 || (cols.driver < 0 && cols.lap < 0) {
			continue
		}
		return parseHeaderRows(lines[i+1:], cols, sessionDate)
	}
	return nil
}

func parseHeaderRows(lines []string, cols columns, sessionDate *time.Time) []Record {
	var out []Record
	lapCounters := make(map[string]int)
	for _, line := range lines {
		cells := splitColumns(line)
		if cols.time >= len(cells) {
			continue
		}
		secs, err := ParseLapTime(cells[cols.time])
		if err != nil {
			continue
		}
		rec := Record{LapTime: secs, SessionDate: sessionDate}
		if cols.driver >= 0 && cols.driver < len(cells) {
			rec.DriverName = cleanName(cells[cols.driver])
		}
		if cols.lap >= 0 && cols.lap < len(cells) {
			if v, err := strconv.Atoi(strings.TrimSpace(cells[cols.lap])); err == nil {
				rec.LapNumber = v
			}
		}
		if rec.LapNumber == 0 {
			lapCounters[strings.ToLower(rec.DriverName)]++
			rec.LapNumber = lapCounters[strings.ToLower(rec.DriverName)]
		}
		if cols.pos >= 0 && cols.pos < len(cells) {
			if v, err := strconv.Atoi(strings.TrimSpace(cells[cols.pos])); err == nil {
				rec.Position = intPtr(v)
			}
		}
		if cols.kart >= 0 && cols.kart < len(cells) {
			if k := strings.TrimSpace(cells[cols.kart]); k != "" {
				rec.KartNumber = strPtr(k)
			}
		}
		if rec.DriverName == "" || rec.LapNumber < 1 {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// extractBlocks handles headerless per-driver blocks: a name line
// followed by numbered lap lines, or by bare times that get numbered
// in file order.
func extractBlocks(lines []string, hints Hints, sessionDate *time.Time) []Record {
	var out []Record
	var current string
	var kart *string
	nextLap := 0
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if m := lapLineRe.FindStringSubmatch(line); m != nil && current != "" {
			num, _ := strconv.Atoi(m[1])
			if secs, err := ParseLapTime(m[2]); err == nil {
				out = append(out, Record{
					DriverName:  current,
					LapNumber:   num,
					LapTime:     secs,
					KartNumber:  kart,
					SessionDate: sessionDate,
				})
			}
			continue
		}
		if bareTimeRe.MatchString(line) && current != "" {
			if secs, err := ParseLapTime(line); err == nil {
				nextLap++
				out = append(out, Record{
					DriverName:  current,
					LapNumber:   nextLap,
					LapTime:     secs,
					KartNumber:  kart,
					SessionDate: sessionDate,
				})
			}
			continue
		}
		if name, k, ok := blockHeading(line, hints); ok {
			current, kart, nextLap = name, k, 0
		}
	}
	return out
}

// blockHeading decides whether a non-lap line introduces a new driver
// block. Track name lines and date lines are skipped.
func blockHeading(line string, hints Hints) (string, *string, bool) {
	if hints.TrackName != "" && strings.EqualFold(strings.TrimSpace(line), hints.TrackName) {
		return "", nil, false
	}
	if FindSessionDate(line) != nil && len(strings.Fields(line)) <= 6 {
		return "", nil, false
	}
	cells := splitColumns(line)
	name := cleanName(stripNameLabel(cells[0]))
	if name == "" || len(strings.Fields(name)) > 4 {
		return "", nil, false
	}
	if !hasLetters(name) {
		return "", nil, false
	}
	var kart *string
	for _, c := range cells[1:] {
		c = strings.TrimSpace(c)
		if kartCellRe.MatchString(strings.ToLower(c)) {
			k := strings.TrimPrefix(strings.ToLower(c), "kart")
			kart = strPtr(strings.TrimPrefix(strings.TrimSpace(k), "#"))
			break
		}
	}
	return name, kart, true
}

var nameLabels = []string{"driver:", "rijder:", "naam:", "name:", "piloto:", "coureur:"}

func stripNameLabel(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, l := range nameLabels {
		if strings.HasPrefix(lower, l) {
			return strings.TrimSpace(s)[len(l):]
		}
	}
	return s
}

func splitColumns(line string) []string {
	var cells []string
	for _, c := range columnSplitRe.Split(strings.TrimSpace(line), -1) {
		if c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

func hasLetters(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127 {
			return true
		}
	}
	return false
}
