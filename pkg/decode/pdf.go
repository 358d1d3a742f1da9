package decode

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// geometry thresholds in PDF points
const (
	rowTolerance = 2.0  // glyphs within this Y distance belong to one line
	wordGap      = 1.0  // X gap starting a new word
	columnGap    = 12.0 // X gap starting a new column
)

// decodePdf extracts the text layer of a PDF in reading order. Glyphs are
// grouped into lines by Y coordinate and joined left to right; column
// breaks are rendered as multi-space runs so the columnar extractor can
// recover the original table structure.
func decodePdf(data []byte) (p *Payload, err error) {
	// the pdf library panics on malformed cross reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: pdf: %v", ErrUnsupportedEncoding, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: pdf: %v", ErrUnsupportedEncoding, err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		writePageText(&sb, page.Content().Text)
	}

	text := sb.String()
	if len(strings.TrimSpace(text)) == 0 {
		return nil, ErrEmptyPayload
	}
	return &Payload{Text: text, Kind: KindPDF}, nil
}

func writePageText(sb *strings.Builder, texts []pdf.Text) {
	lines := groupIntoLines(texts)
	for _, line := range lines {
		sort.Slice(line, func(i, j int) bool { return line[i].X < line[j].X })
		var prev *pdf.Text
		for i := range line {
			if prev != nil {
				gap := line[i].X - (prev.X + prev.W)
				switch {
				case gap > columnGap:
					sb.WriteString("   ")
				case gap > wordGap:
					sb.WriteString(" ")
				}
			}
			sb.WriteString(line[i].S)
			prev = &line[i]
		}
		sb.WriteString("\n")
	}
}

// groupIntoLines buckets glyphs by Y coordinate (top of page first).
func groupIntoLines(texts []pdf.Text) [][]pdf.Text {
	type line struct {
		y     float64
		texts []pdf.Text
	}
	var lines []line
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" && t.S != " " {
			continue
		}
		idx := -1
		for i := range lines {
			if math.Abs(lines[i].y-t.Y) <= rowTolerance {
				idx = i
				break
			}
		}
		if idx == -1 {
			lines = append(lines, line{y: t.Y, texts: []pdf.Text{t}})
			continue
		}
		lines[idx].texts = append(lines[idx].texts, t)
	}
	// PDF origin is bottom left; higher Y renders first
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })
	ret := make([][]pdf.Text, len(lines))
	for i := range lines {
		ret[i] = lines[i].texts
	}
	return ret
}
