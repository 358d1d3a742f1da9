package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMaksoo/kartlog/pkg/decode"
)

const summaryMail = `
<html><body>
<p>Sessie 30 - 21/11/2024 om 19:30</p>
<table>
<tr><th>Pos</th><th>Rijder</th><th>Kart</th><th>Beste tijd</th></tr>
<tr><td>1</td><td>Max</td><td>7</td><td>52.998</td></tr>
<tr><td>2</td><td>Anna</td><td>12</td><td>53.123</td></tr>
</table>
</body></html>`

const perLapMail = `
<html><body>
<p>Beste Max,</p>
<p>Jouw rondetijden van 21/11/2024:</p>
<table>
<tr><th>Ronde</th><th>Tijd</th></tr>
<tr><td>1</td><td>54.511</td></tr>
<tr><td>2</td><td>53.001</td></tr>
<tr><td>3</td><td>52.998</td></tr>
</table>
</body></html>`

const combinedMail = `
<html><body>
<table>
<tr><th>Pos</th><th>Driver</th><th>Best time</th></tr>
<tr><td>1</td><td>Max</td><td>52.998</td></tr>
<tr><td>2</td><td>Anna</td><td>53.123</td></tr>
</table>
<table>
<tr><th>Lap</th><th>Time</th></tr>
<tr><td>1</td><td>54.511</td></tr>
<tr><td>2</td><td>52.998</td></tr>
</table>
<table>
<tr><th>Lap</th><th>Time</th></tr>
<tr><td>1</td><td>55.100</td></tr>
<tr><td>2</td><td>53.123</td></tr>
</table>
</body></html>`

func extractHTML(t *testing.T, text string) []Record {
	t.Helper()
	ex := &htmlTableExtractor{}
	recs, err := ex.Extract(&decode.Payload{Text: text, Kind: decode.KindEmail}, Hints{TrackName: "Lot 66"})
	require.NoError(t, err)
	return recs
}

func TestHTMLSummaryTable(t *testing.T) {
	recs := extractHTML(t, summaryMail)
	require.Len(t, recs, 2)

	assert.Equal(t, "Max", recs[0].DriverName)
	assert.InDelta(t, 52.998, recs[0].LapTime, 0.0001)
	assert.Equal(t, 1, recs[0].LapNumber)
	require.NotNil(t, recs[0].Position)
	assert.Equal(t, 1, *recs[0].Position)
	require.NotNil(t, recs[0].KartNumber)
	assert.Equal(t, "7", *recs[0].KartNumber)

	require.NotNil(t, recs[0].SessionDate)
	assert.Equal(t, "2024-11-21", recs[0].SessionDate.Format("2006-01-02"))
}

func TestHTMLPerLapWithGreeting(t *testing.T) {
	recs := extractHTML(t, perLapMail)
	require.Len(t, recs, 3)
	for i, r := range recs {
		assert.Equal(t, "Max", r.DriverName)
		assert.Equal(t, i+1, r.LapNumber)
	}
	assert.InDelta(t, 52.998, recs[2].LapTime, 0.0001)
}

func TestHTMLCombinedJoinsByBlockOrder(t *testing.T) {
	recs := extractHTML(t, combinedMail)
	require.Len(t, recs, 4)

	byDriver := map[string]int{}
	for _, r := range recs {
		byDriver[r.DriverName]++
	}
	assert.Equal(t, 2, byDriver["Max"])
	assert.Equal(t, 2, byDriver["Anna"])

	// positions from the summary carry over to the laps
	for _, r := range recs {
		require.NotNil(t, r.Position, r.DriverName)
		if r.DriverName == "Max" {
			assert.Equal(t, 1, *r.Position)
		} else {
			assert.Equal(t, 2, *r.Position)
		}
	}
}

func TestHTMLNoTables(t *testing.T) {
	recs := extractHTML(t, "<html><body><p>Bedankt voor je bezoek!</p></body></html>")
	assert.Empty(t, recs)
}
