package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLapTime(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"53.123", 53.123},
		{"53,123", 53.123},
		{"1:07.478", 67.478},
		{"1:07,478", 67.478},
		{"01:07.478", 67.478},
		{"9.5", 9.5},
		{"1:07.4", 67.4},
		{" 53.123 ", 53.123},
	}
	for _, tc := range tests {
		got, err := ParseLapTime(tc.in)
		require.NoError(t, err, tc.in)
		assert.InDelta(t, tc.want, got, 0.0001, tc.in)
	}
}

// Parsed times must be the exact double a numeric(8,3) column hands
// back, otherwise re-imported laps slip past the duplicate check.
// Values like 20.548 compose to a neighbouring double when whole
// seconds and the fraction are summed naively, so exact equality
// against the literal matters here.
func TestParseLapTimeMatchesDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"20.548", 20.548},
		{"20,548", 20.548},
		{"0:20.548", 20.548},
		{"55.679", 55.679},
		{"1:02.943", 62.943},
	}
	for _, tc := range tests {
		got, err := ParseLapTime(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseLapTimeInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1:2:3.456", "53", "-"} {
		_, err := ParseLapTime(in)
		assert.Error(t, err, in)
	}
}

func TestFindSessionDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sessie 30 - 21/11/2024 om 19:30", "2024-11-21"},
		{"Datum: 05.01.2025", "2025-01-05"},
		{"exported 2024-11-21 19:30", "2024-11-21"},
	}
	for _, tc := range tests {
		got := FindSessionDate(tc.in)
		require.NotNil(t, got, tc.in)
		assert.Equal(t, tc.want, got.Format("2006-01-02"), tc.in)
	}
}

func TestFindSessionDateMissing(t *testing.T) {
	assert.Nil(t, FindSessionDate("no date in sight 12/34"))
}

func TestCleanName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Max  Verstappen ", "Max Verstappen"},
		{"Rene (kart 7)", "Rene"},
		{"Anna,", "Anna"},
		{"Jos:", "Jos"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, cleanName(tc.in), tc.in)
	}
}
