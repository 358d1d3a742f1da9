package extract

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/TheMaksoo/kartlog/pkg/decode"
)

// htmlTableExtractor handles the mail bodies that carry results as one
// or more <table> elements. Two table shapes occur, sometimes in the
// same mail: a summary table (position, driver, best time per row) and
// per-driver lap tables (lap number, lap time per row). Per-lap tables
// often omit the driver name; they are joined to summary rows by block
// order, with a greeting line as fallback for single-driver mails.
type htmlTableExtractor struct{}

type htmlTable struct {
	rows [][]string
}

func (e *htmlTableExtractor) Extract(p *decode.Payload, hints Hints) ([]Record, error) {
	doc, err := html.Parse(strings.NewReader(p.Text))
	if err != nil {
		return nil, err
	}
	tables := collectTables(doc)
	fullText := collectText(doc)

	sessionDate := p.MailDate
	if d := FindSessionDate(fullText); d != nil {
		sessionDate = d
	}

	var summary []summaryRow
	var lapBlocks []lapBlock
	for _, t := range tables {
		if len(t.rows) < 2 {
			continue
		}
		cols := mapColumns(t.rows[0])
		switch {
		case cols.lap >= 0 && cols.time >= 0 && cols.pos < 0:
			lapBlocks = append(lapBlocks, parseLapBlock(t, cols))
		case cols.driver >= 0 && cols.time >= 0:
			summary = append(summary, parseSummary(t, cols)...)
		}
	}

	var out []Record
	withLaps := make(map[string]bool)
	for i, block := range lapBlocks {
		name := block.driver
		if name == "" && i < len(summary) {
			name = summary[i].driver
		}
		if name == "" {
			name = greetingName(fullText)
		}
		if name == "" || len(block.laps) == 0 {
			continue
		}
		withLaps[strings.ToLower(name)] = true
		var pos *int
		var kart *string
		for _, s := range summary {
			if strings.EqualFold(s.driver, name) {
				pos, kart = s.position, s.kart
				break
			}
		}
		for _, l := range block.laps {
			out = append(out, Record{
				DriverName:  name,
				LapNumber:   l.number,
				LapTime:     l.seconds,
				Position:    pos,
				KartNumber:  kart,
				SessionDate: sessionDate,
			})
		}
	}
	// Summary-only drivers keep their best time as a single lap.
	for _, s := range summary {
		if withLaps[strings.ToLower(s.driver)] || s.best <= 0 {
			continue
		}
		out = append(out, Record{
			DriverName:  s.driver,
			LapNumber:   1,
			LapTime:     s.best,
			Position:    s.position,
			KartNumber:  s.kart,
			SessionDate: sessionDate,
		})
	}
	return out, nil
}

type summaryRow struct {
	driver   string
	best     float64
	position *int
	kart     *string
}

type lapBlock struct {
	driver string
	laps   []lapRow
}

type lapRow struct {
	number  int
	seconds float64
}

// columns holds header cell indexes, -1 when absent.
type columns struct {
	pos, driver, lap, time, kart int
}

var headerWords = map[string][]string{
	"pos":    {"pos", "positie", "posicion", "posición", "position", "plaats", "#"},
	"driver": {"driver", "rijder", "naam", "name", "piloto", "coureur"},
	"lap":    {"lap", "ronde", "vuelta", "rondenr"},
	"time":   {"time", "tijd", "tiempo", "laptime", "rondetijd", "best", "beste", "besttime", "mejor"},
	"kart":   {"kart", "kartnr", "kart#"},
}

func mapColumns(header []string) columns {
	c := columns{pos: -1, driver: -1, lap: -1, time: -1, kart: -1}
	for i, cell := range header {
		w := strings.ToLower(strings.TrimSpace(cell))
		w = strings.Trim(w, ".:")
		switch {
		case c.time < 0 && matchesWord(w, headerWords["time"]):
			c.time = i
		case c.lap < 0 && matchesWord(w, headerWords["lap"]):
			c.lap = i
		case c.driver < 0 && matchesWord(w, headerWords["driver"]):
			c.driver = i
		case c.pos < 0 && matchesWord(w, headerWords["pos"]):
			c.pos = i
		case c.kart < 0 && matchesWord(w, headerWords["kart"]):
			c.kart = i
		}
	}
	return c
}

func matchesWord(cell string, words []string) bool {
	cell = strings.Join(strings.Fields(cell), "")
	for _, w := range words {
		if cell == w || (strings.HasPrefix(cell, w) && len(cell) <= len(w)+4) {
			return true
		}
	}
	return false
}

func parseSummary(t htmlTable, cols columns) []summaryRow {
	var rows []summaryRow
	for _, r := range t.rows[1:] {
		if cols.driver >= len(r) || cols.time >= len(r) {
			continue
		}
		name := cleanName(r[cols.driver])
		if name == "" {
			continue
		}
		best, err := ParseLapTime(r[cols.time])
		if err != nil {
			continue
		}
		row := summaryRow{driver: name, best: best}
		if cols.pos >= 0 && cols.pos < len(r) {
			if v, err := strconv.Atoi(strings.TrimSpace(r[cols.pos])); err == nil {
				row.position = intPtr(v)
			}
		}
		if cols.kart >= 0 && cols.kart < len(r) {
			if k := strings.TrimSpace(r[cols.kart]); k != "" {
				row.kart = strPtr(k)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func parseLapBlock(t htmlTable, cols columns) lapBlock {
	var b lapBlock
	for _, r := range t.rows[1:] {
		if cols.lap >= len(r) || cols.time >= len(r) {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSpace(r[cols.lap]))
		if err != nil || num < 1 {
			continue
		}
		secs, err := ParseLapTime(r[cols.time])
		if err != nil {
			continue
		}
		if cols.driver >= 0 && cols.driver < len(r) && b.driver == "" {
			b.driver = cleanName(r[cols.driver])
		}
		b.laps = append(b.laps, lapRow{number: num, seconds: secs})
	}
	return b
}

func collectTables(doc *html.Node) []htmlTable {
	var tables []htmlTable
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			tables = append(tables, htmlTable{rows: tableRows(n)})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tables
}

func tableRows(table *html.Node) [][]string {
	var rows [][]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, strings.TrimSpace(collectText(c)))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "style", "script":
				return
			case "br":
				sb.WriteString("\n")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "tr", "table", "h1", "h2", "h3", "li":
				sb.WriteString("\n")
			}
		}
	}
	walk(n)
	return sb.String()
}

// greetingName pulls a driver name out of lines like "Beste Max," or
// "Hi Max Verstappen,".
var greetingPrefixes = []string{"beste ", "hallo ", "hi ", "hello ", "dag ", "dear "}

func greetingName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		for _, p := range greetingPrefixes {
			if strings.HasPrefix(lower, p) {
				name := strings.TrimSpace(line[len(p):])
				name = strings.Trim(name, ",.!: ")
				if name != "" && len(strings.Fields(name)) <= 4 {
					return cleanName(name)
				}
			}
		}
	}
	return ""
}
