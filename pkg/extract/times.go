package extract

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// 1:07.478 and 1:07,478
	lapTimeColonRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})[.,](\d{1,3})$`)
	// 53.123 and 53,123
	lapTimePlainRe = regexp.MustCompile(`^(\d{1,3})[.,](\d{1,3})$`)
)

// ParseLapTime converts a vendor lap time string to seconds. Both the
// M:SS.mmm and the bare SS.mmm notation occur in the wild, with either
// a dot or a decimal comma.
func ParseLapTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if m := lapTimeColonRe.FindStringSubmatch(s); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		seconds, _ := strconv.Atoi(m[2])
		return quantize(float64(minutes*60+seconds) + fraction(m[3])), nil
	}
	if m := lapTimePlainRe.FindStringSubmatch(s); m != nil {
		seconds, _ := strconv.Atoi(m[1])
		return quantize(float64(seconds) + fraction(m[2])), nil
	}
	return 0, fmt.Errorf("unparseable lap time %q", s)
}

// quantize snaps a composed seconds value to the exact double of its
// three-decimal representation. Summing whole seconds and a fraction
// can land one ulp away from what the numeric(8,3) lap_time column
// hands back, which would defeat the exact-match duplicate check.
func quantize(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func fraction(digits string) float64 {
	v, _ := strconv.Atoi(digits)
	switch len(digits) {
	case 1:
		return float64(v) / 10
	case 2:
		return float64(v) / 100
	default:
		return float64(v) / 1000
	}
}

var sessionDateRes = []struct {
	re     *regexp.Regexp
	layout string
}{
	// 21/11/2024, also with dashes
	{regexp.MustCompile(`\b(\d{2})[/-](\d{2})[/-](\d{4})\b`), "02-01-2006"},
	// 21.11.2024
	{regexp.MustCompile(`\b(\d{2})\.(\d{2})\.(\d{4})\b`), "02-01-2006"},
	// 2024-11-21
	{regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`), "2006-01-02"},
}

// FindSessionDate scans free text for a session date. Day-first
// notations win over ISO since the vendor mails are Dutch.
func FindSessionDate(text string) *time.Time {
	for _, cand := range sessionDateRes {
		m := cand.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		t, err := time.Parse(cand.layout, m[1]+"-"+m[2]+"-"+m[3])
		if err != nil {
			continue
		}
		return datePtr(t)
	}
	return nil
}

// cleanName strips decoration from a driver cell: surrounding
// whitespace, kart number suffixes in parens and trailing punctuation.
var parenSuffixRe = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

func cleanName(s string) string {
	s = strings.TrimSpace(s)
	s = parenSuffixRe.ReplaceAllString(s, "")
	s = strings.Trim(s, " .,:;-")
	return strings.Join(strings.Fields(s), " ")
}
